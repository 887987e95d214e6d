// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package native

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Modular/go/tosca"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Handler implements a single method of a native contract. The resulting
// data is returned to the caller. Errors revert the frame, see Revert for
// the produced revert payloads.
type Handler func(*Frame) (tosca.Data, error)

// Methods is a Contract dispatching calls by the selector of their input.
type Methods struct {
	handlers map[tosca.Selector]Handler
	fallback Handler
}

// Handle registers a handler for the given function signature. It panics
// if the selector of the signature is registered already.
func (m *Methods) Handle(signature string, handler Handler) *Methods {
	return m.HandleSelector(tosca.SelectorOf(signature), handler)
}

// HandleSelector registers a handler for the given selector. It panics if
// the selector is registered already.
func (m *Methods) HandleSelector(selector tosca.Selector, handler Handler) *Methods {
	if m.handlers == nil {
		m.handlers = map[tosca.Selector]Handler{}
	}
	if _, found := m.handlers[selector]; found {
		panic(fmt.Sprintf("multiple handlers for selector %v", selector))
	}
	m.handlers[selector] = handler
	return m
}

// Fallback registers the handler for inputs not matching any method.
// Without fallback, such calls revert with ErrUnknownMethod.
func (m *Methods) Fallback(handler Handler) *Methods {
	m.fallback = handler
	return m
}

// Has reports whether a handler is registered for the given selector.
func (m *Methods) Has(selector tosca.Selector) bool {
	_, found := m.handlers[selector]
	return found
}

// Selectors lists the registered selectors in ascending order.
func (m *Methods) Selectors() []tosca.Selector {
	res := maps.Keys(m.handlers)
	slices.SortFunc(res, func(a, b tosca.Selector) int {
		return slices.Compare(a[:], b[:])
	})
	return res
}

func (m *Methods) Run(params tosca.Parameters) (tosca.Result, error) {
	handler := m.fallback
	if selector, ok := tosca.GetSelector(params.Input); ok {
		if cur, found := m.handlers[selector]; found {
			handler = cur
		}
	}

	frame := &Frame{Parameters: params}
	if handler == nil {
		return frame.revert(ErrUnknownMethod)
	}
	output, err := handler(frame)
	if err != nil {
		return frame.revert(err)
	}
	return tosca.Result{Success: true, Output: output, GasLeft: frame.Gas}, nil
}

func (f *Frame) revert(err error) (tosca.Result, error) {
	var abort abortError
	if errors.As(err, &abort) {
		return tosca.Result{}, abort.error
	}
	if errors.Is(err, ErrOutOfGas) || errors.Is(err, ErrWriteProtection) {
		return tosca.Result{}, nil
	}
	return tosca.Result{Output: Revert(err), GasLeft: f.Gas}, nil
}
