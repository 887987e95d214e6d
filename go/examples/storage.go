// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import (
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
)

// slot derives the storage slot of the named variable.
func slot(name string) tosca.Key {
	return tosca.Key(tosca.Keccak256([]byte("modular.examples." + name)))
}

// entry derives the slot of the entry of the given account in a mapping.
func entry(base tosca.Key, account tosca.Address) tosca.Key {
	var key tosca.Word
	copy(key[12:], account[:])
	return tosca.Key(tosca.Keccak256(key[:], base[:]))
}

func loadUint(state tosca.WorldState, account tosca.Address, key tosca.Key) *uint256.Int {
	word := state.GetStorage(account, key)
	return new(uint256.Int).SetBytes32(word[:])
}

func storeUint(state tosca.WorldState, account tosca.Address, key tosca.Key, value *uint256.Int) {
	state.SetStorage(account, key, value.Bytes32())
}
