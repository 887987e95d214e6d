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

// store provides typed access to the storage of the account hosting the
// registry. Every component of the registry owns a namespace. Mapping
// entries are located at keccak(key ‖ base), dynamic data is placed at
// consecutive slots starting at keccak(slot).
type store struct {
	state   tosca.WorldState
	address tosca.Address
}

func namespace(name string) tosca.Key {
	return tosca.Key(tosca.Keccak256([]byte("modular.registry." + name)))
}

func mapSlot(base tosca.Key, key tosca.Word) tosca.Key {
	return tosca.Key(tosca.Keccak256(key[:], base[:]))
}

func offset(slot tosca.Key, delta uint64) tosca.Key {
	res := new(uint256.Int).SetBytes32(slot[:])
	res.Add(res, uint256.NewInt(delta))
	return res.Bytes32()
}

func addressWord(address tosca.Address) (res tosca.Word) {
	copy(res[12:], address[:])
	return
}

func wordAddress(word tosca.Word) (res tosca.Address) {
	copy(res[:], word[12:])
	return
}

// selectorWord aligns selectors to the left, like fixed size byte arrays
// in the EVM.
func selectorWord(selector tosca.Selector) (res tosca.Word) {
	copy(res[:], selector[:])
	return
}

func intWord(value *uint256.Int) tosca.Word {
	return value.Bytes32()
}

func wordInt(word tosca.Word) *uint256.Int {
	return new(uint256.Int).SetBytes32(word[:])
}

func (s store) get(slot tosca.Key) tosca.Word {
	return s.state.GetStorage(s.address, slot)
}

func (s store) set(slot tosca.Key, value tosca.Word) {
	s.state.SetStorage(s.address, slot, value)
}

func (s store) getUint(slot tosca.Key) uint64 {
	return wordInt(s.get(slot)).Uint64()
}

func (s store) setUint(slot tosca.Key, value uint64) {
	s.set(slot, intWord(uint256.NewInt(value)))
}

func (s store) getBytes(slot tosca.Key) []byte {
	length := s.getUint(slot)
	res := make([]byte, length)
	data := tosca.Key(tosca.Keccak256(slot[:]))
	for i := uint64(0); i*32 < length; i++ {
		word := s.get(offset(data, i))
		copy(res[i*32:], word[:])
	}
	return res
}

func (s store) setBytes(slot tosca.Key, value []byte) {
	s.clearBytes(slot)
	length := uint64(len(value))
	s.setUint(slot, length)
	data := tosca.Key(tosca.Keccak256(slot[:]))
	for i := uint64(0); i*32 < length; i++ {
		var word tosca.Word
		copy(word[:], value[i*32:])
		s.set(offset(data, i), word)
	}
}

func (s store) clearBytes(slot tosca.Key) {
	length := s.getUint(slot)
	data := tosca.Key(tosca.Keccak256(slot[:]))
	for i := uint64(0); i*32 < length; i++ {
		s.set(offset(data, i), tosca.Word{})
	}
	s.set(slot, tosca.Word{})
}
