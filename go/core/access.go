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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func (i *Invocation) onlyOwner() error {
	if i.Sender != i.Registry.Access.Owner() {
		return ErrUnauthorized
	}
	return nil
}

func (i *Invocation) updateRoles(account tosca.Address, roles *uint256.Int) {
	i.Registry.Access.SetRoles(account, roles)
	emit(i.Frame, RolesUpdatedTopic, addressTopic(account), roles.Bytes32())
}

func owner(inv *Invocation) (tosca.Data, error) {
	return result(addressArguments, common.Address(inv.Registry.Access.Owner()))
}

func transferOwnership(inv *Invocation) (tosca.Data, error) {
	args, err := arguments(inv.Frame, addressArguments)
	if err != nil {
		return nil, err
	}
	if err := inv.onlyOwner(); err != nil {
		return nil, err
	}
	previous, next := inv.Registry.Access.Owner(), asAddress(args[0])
	inv.Registry.Access.SetOwner(next)
	emit(inv.Frame, OwnershipTransferredTopic, addressTopic(previous), addressTopic(next))
	return nil, nil
}

func grantRoles(inv *Invocation) (tosca.Data, error) {
	account, roles, err := accountAndRoles(inv)
	if err != nil {
		return nil, err
	}
	if err := inv.onlyOwner(); err != nil {
		return nil, err
	}
	inv.updateRoles(account, roles.Or(roles, inv.Registry.Access.RolesOf(account)))
	return nil, nil
}

func revokeRoles(inv *Invocation) (tosca.Data, error) {
	account, roles, err := accountAndRoles(inv)
	if err != nil {
		return nil, err
	}
	if err := inv.onlyOwner(); err != nil {
		return nil, err
	}
	held := inv.Registry.Access.RolesOf(account)
	inv.updateRoles(account, held.And(held, roles.Not(roles)))
	return nil, nil
}

func renounceRoles(inv *Invocation) (tosca.Data, error) {
	args, err := arguments(inv.Frame, uint256Arguments)
	if err != nil {
		return nil, err
	}
	roles, err := asUint256(args[0])
	if err != nil {
		return nil, err
	}
	held := inv.Registry.Access.RolesOf(inv.Sender)
	inv.updateRoles(inv.Sender, held.And(held, roles.Not(roles)))
	return nil, nil
}

func rolesOf(inv *Invocation) (tosca.Data, error) {
	args, err := arguments(inv.Frame, addressArguments)
	if err != nil {
		return nil, err
	}
	return result(uint256Arguments, inv.Registry.Access.RolesOf(asAddress(args[0])).ToBig())
}

func hasAllRoles(inv *Invocation) (tosca.Data, error) {
	account, roles, err := accountAndRoles(inv)
	if err != nil {
		return nil, err
	}
	return result(boolArguments, inv.Registry.Access.HasAllRoles(account, roles))
}

func accountAndRoles(inv *Invocation) (tosca.Address, *uint256.Int, error) {
	args, err := arguments(inv.Frame, addressUint256Arguments)
	if err != nil {
		return tosca.Address{}, nil, err
	}
	roles, err := asUint256(args[1])
	if err != nil {
		return tosca.Address{}, nil, err
	}
	return asAddress(args[0]), roles, nil
}
