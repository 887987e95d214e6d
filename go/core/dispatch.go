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

// revertPayload passes on the payload of a failed nested call unchanged.
type revertPayload tosca.Data

func (p revertPayload) Error() string {
	return (&RevertError{Payload: tosca.Data(p)}).Error()
}

func (p revertPayload) RevertData() []byte {
	return p
}

// dispatch forwards calls of functions not implemented by the core to the
// extension bound to their selector. The result of the forwarded call is
// passed on unchanged, successful or not.
func (c *Core) dispatch(inv *Invocation) (tosca.Data, error) {
	if len(inv.Input) == 0 {
		// plain transfers of value are accepted
		return nil, nil
	}
	var selector tosca.Selector
	copy(selector[:], inv.Input)

	binding, found := inv.Registry.Selectors.LookupFallback(selector)
	if !found {
		return nil, ErrFallbackNotInstalled.With(selector)
	}
	if err := inv.Registry.Integrity.Verify(binding.Implementation); err != nil {
		return nil, ErrIntegrityViolation.With(binding.Implementation)
	}
	if binding.RequiresPermission() && !inv.IsAuthorized(binding.PermissionBits) {
		return nil, ErrUnauthorized
	}

	res, err := inv.Call(binding.CallType.Kind(), binding.Implementation, inv.Value, inv.Input)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, revertPayload(res.Output)
	}
	return res.Output, nil
}
