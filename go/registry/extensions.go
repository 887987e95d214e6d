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
	"fmt"

	"github.com/Fantom-foundation/Modular/go/tosca"
)

var (
	extensionsBase = namespace("extensions")
	positionsBase  = namespace("extensions.positions")
	configsBase    = namespace("extensions.configs")
)

// ExtensionSet is the enumerable set of installed extensions. For each
// member, the encoding of the configuration it was installed with is kept.
//
// Members are listed in insertion order, except that removing a member
// moves the last member into its position.
type ExtensionSet struct {
	store
}

// The members are kept in an array with its length at extensionsBase and
// its elements from keccak(extensionsBase) onwards. positionsBase maps
// members to their 1-based index in this array.
var membersBase = tosca.Key(tosca.Keccak256(extensionsBase[:]))

func (s ExtensionSet) Len() int {
	return int(s.getUint(extensionsBase))
}

func (s ExtensionSet) Contains(address tosca.Address) bool {
	return s.position(address) != 0
}

func (s ExtensionSet) position(address tosca.Address) uint64 {
	return s.getUint(mapSlot(positionsBase, addressWord(address)))
}

// Add inserts the given extension, failing with ErrAlreadyInstalled if it
// is a member already.
func (s ExtensionSet) Add(address tosca.Address) error {
	if s.Contains(address) {
		return fmt.Errorf("%v: %w", address, ErrAlreadyInstalled)
	}
	length := s.getUint(extensionsBase)
	s.set(offset(membersBase, length), addressWord(address))
	s.setUint(extensionsBase, length+1)
	s.setUint(mapSlot(positionsBase, addressWord(address)), length+1)
	return nil
}

// Remove deletes the given extension and its configuration, failing with
// ErrNotInstalled if it is no member.
func (s ExtensionSet) Remove(address tosca.Address) error {
	position := s.position(address)
	if position == 0 {
		return fmt.Errorf("%v: %w", address, ErrNotInstalled)
	}
	length := s.getUint(extensionsBase)
	if position != length {
		last := s.get(offset(membersBase, length-1))
		s.set(offset(membersBase, position-1), last)
		s.setUint(mapSlot(positionsBase, last), position)
	}
	s.set(offset(membersBase, length-1), tosca.Word{})
	s.setUint(extensionsBase, length-1)
	s.set(mapSlot(positionsBase, addressWord(address)), tosca.Word{})
	s.clearBytes(mapSlot(configsBase, addressWord(address)))
	return nil
}

// All lists the members of the set.
func (s ExtensionSet) All() []tosca.Address {
	length := s.getUint(extensionsBase)
	res := make([]tosca.Address, 0, length)
	for i := uint64(0); i < length; i++ {
		res = append(res, wordAddress(s.get(offset(membersBase, i))))
	}
	return res
}

// SetConfig records the encoded configuration of the given member.
func (s ExtensionSet) SetConfig(address tosca.Address, config tosca.Data) error {
	if !s.Contains(address) {
		return fmt.Errorf("%v: %w", address, ErrNotInstalled)
	}
	s.setBytes(mapSlot(configsBase, addressWord(address)), config)
	return nil
}

// Config returns the encoded configuration recorded for the given member.
func (s ExtensionSet) Config(address tosca.Address) (tosca.Data, error) {
	if !s.Contains(address) {
		return nil, fmt.Errorf("%v: %w", address, ErrNotInstalled)
	}
	return s.getBytes(mapSlot(configsBase, addressWord(address))), nil
}
