// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tosca

import "testing"

func TestInterpreterRegistry_NameCollisionsAreDetected(t *testing.T) {
	const name = "something-just-for-this-test"
	factory := func(any) (Interpreter, error) {
		return nil, nil
	}
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterInterpreterFactory(name, factory); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestInterpreterRegistry_NilFactoriesAreRejected(t *testing.T) {
	const name = "something"
	if err := RegisterInterpreterFactory(name, nil); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestInterpreterRegistry_NewInterpreterUsesRegisteredFactory(t *testing.T) {
	const name = "Mixed-Case-Name"
	var config any
	factory := func(c any) (Interpreter, error) {
		config = c
		return nil, nil
	}
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewInterpreter("mixed-case-name", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := any(42), config; want != got {
		t.Errorf("unexpected configuration, wanted %v, got %v", want, got)
	}
	if _, found := GetAllRegisteredInterpreters()["mixed-case-name"]; !found {
		t.Errorf("registered interpreter not listed")
	}
}

func TestInterpreterRegistry_NewInterpreterFailsForUnknownNamesAndTooManyConfigs(t *testing.T) {
	if _, err := NewInterpreter("not-registered-anywhere"); err == nil {
		t.Errorf("expected error for unknown interpreter")
	}
	if _, err := NewInterpreter("not-registered-anywhere", 1, 2); err == nil {
		t.Errorf("expected error for too many configurations")
	}
}
