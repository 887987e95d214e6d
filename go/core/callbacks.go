// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package core

import (
	"github.com/Fantom-foundation/Modular/go/tosca"
)

// InvokeCallback calls the extension implementing the given callback with
// the given ABI encoded arguments, forwarding the value of the invocation.
// The second result reports whether an extension was called. Optional
// callbacks without implementation are skipped; required ones fail with
// ErrCallbackRequired.
func (i *Invocation) InvokeCallback(selector tosca.Selector, arguments tosca.Data) (tosca.Data, bool, error) {
	mode, declared := i.core.callbacks[selector]
	if !declared {
		return nil, false, ErrCallbackNotSupported.With(selector)
	}
	binding, found := i.Registry.Selectors.LookupCallback(selector)
	if !found {
		if mode == Required {
			return nil, false, ErrCallbackRequired.With(selector)
		}
		return nil, false, nil
	}
	if err := i.Registry.Integrity.Verify(binding.Implementation); err != nil {
		return nil, false, ErrIntegrityViolation.With(binding.Implementation)
	}

	input := append(append(tosca.Data{}, selector[:]...), arguments...)
	res, err := i.Call(binding.CallType.Kind(), binding.Implementation, i.Value, input)
	if err != nil {
		return nil, false, err
	}
	if !res.Success {
		return nil, false, ErrCallbackExecutionReverted.Bubble(res.Output)
	}
	return res.Output, true, nil
}
