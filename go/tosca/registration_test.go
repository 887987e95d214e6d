// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tosca_test

import (
	"bytes"
	"testing"

	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/state"
	"github.com/Fantom-foundation/Modular/go/tosca"

	_ "github.com/Fantom-foundation/Modular/go/processor/floria"
)

func TestRegistration_FloriaRunsNativeContracts(t *testing.T) {
	echo := native.ContractFunc(func(params tosca.Parameters) (tosca.Result, error) {
		return tosca.Result{Success: true, Output: params.Input, GasLeft: params.Gas}, nil
	})
	interpreter, err := tosca.NewInterpreter("native", native.Contracts{"echo": echo})
	if err != nil {
		t.Fatalf("failed to create native interpreter: %v", err)
	}
	processor := tosca.GetProcessor("Floria", interpreter)
	if processor == nil {
		t.Fatalf("floria processor not registered")
	}

	context := state.NewContext(nil)
	recipient := tosca.Address{0xc0}
	context.SetCode(recipient, native.CodeFor("echo"))

	input := tosca.Data("hello")
	receipt, err := processor.Run(tosca.BlockParameters{Revision: tosca.R13_Cancun}, tosca.Transaction{
		Sender:    tosca.Address{0xaa},
		Recipient: &recipient,
		Input:     input,
		GasLimit:  100_000,
	}, context)
	if err != nil {
		t.Fatalf("failed to run transaction: %v", err)
	}
	if !receipt.Success {
		t.Fatalf("transaction failed: %x", receipt.Output)
	}
	if want, got := input, receipt.Output; !bytes.Equal(want, got) {
		t.Errorf("unexpected output, wanted %x, got %x", want, got)
	}
}

func TestRegistration_NativeInterpreterRejectsUnknownConfigurations(t *testing.T) {
	if _, err := tosca.NewInterpreter("native", 42); err == nil {
		t.Errorf("expected an error for an unsupported configuration")
	}
}
