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

var interfacesBase = namespace("interfaces")

// InterfaceSupportTracker counts the installed extensions declaring support
// for each interface. An interface is supported while its count is positive.
type InterfaceSupportTracker struct {
	store
}

func (t InterfaceSupportTracker) Increment(id tosca.Selector) {
	slot := mapSlot(interfacesBase, selectorWord(id))
	t.setUint(slot, t.getUint(slot)+1)
}

// Decrement reduces the count of the given interface. Counts never drop
// below zero as long as increments and decrements are issued symmetrically;
// a violation of this is an internal error and causes a panic.
func (t InterfaceSupportTracker) Decrement(id tosca.Selector) {
	slot := mapSlot(interfacesBase, selectorWord(id))
	count := t.getUint(slot)
	if count == 0 {
		panic(fmt.Sprintf("reference count of interface %v dropped below zero", id))
	}
	t.setUint(slot, count-1)
}

func (t InterfaceSupportTracker) IsSupported(id tosca.Selector) bool {
	return t.Count(id) > 0
}

func (t InterfaceSupportTracker) Count(id tosca.Selector) uint64 {
	return t.getUint(mapSlot(interfacesBase, selectorWord(id)))
}
