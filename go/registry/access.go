// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package registry

import (
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
)

var (
	ownerSlot = namespace("owner")
	rolesBase = namespace("roles")
)

// AccessControl keeps the owner of the hosting account and the roles
// granted to other accounts. Roles are bit masks.
type AccessControl struct {
	store
}

func (a AccessControl) Owner() tosca.Address {
	return wordAddress(a.get(ownerSlot))
}

func (a AccessControl) SetOwner(owner tosca.Address) {
	a.set(ownerSlot, addressWord(owner))
}

func (a AccessControl) RolesOf(account tosca.Address) *uint256.Int {
	return wordInt(a.get(mapSlot(rolesBase, addressWord(account))))
}

func (a AccessControl) SetRoles(account tosca.Address, roles *uint256.Int) {
	a.set(mapSlot(rolesBase, addressWord(account)), intWord(roles))
}

// HasAllRoles reports whether the given account holds all of the given
// role bits.
func (a AccessControl) HasAllRoles(account tosca.Address, roles *uint256.Int) bool {
	held := a.RolesOf(account)
	return new(uint256.Int).And(held, roles).Eq(roles)
}
