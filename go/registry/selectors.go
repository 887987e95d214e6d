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

	"github.com/Fantom-foundation/Modular/go/extension"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
)

// CallbackBinding is the implementation bound to a callback selector.
type CallbackBinding struct {
	Implementation tosca.Address
	CallType       extension.CallType
}

// FallbackBinding is the implementation bound to a fallback selector,
// together with the way calls are forwarded and the permission bits
// required from callers.
type FallbackBinding struct {
	Implementation tosca.Address
	CallType       extension.CallType
	PermissionBits *uint256.Int
}

// RequiresPermission reports whether callers need to hold permission bits.
func (b *FallbackBinding) RequiresPermission() bool {
	return b.PermissionBits != nil && !b.PermissionBits.IsZero()
}

// SelectorRegistry maps selectors to the implementations bound to them.
// Callbacks and fallbacks are kept in separate tables; in each table a
// selector is bound to at most one implementation.
type SelectorRegistry struct {
	store
}

var (
	callbacksBase = namespace("callbacks")
	fallbacksBase = namespace("fallbacks")
)

// A binding occupies two consecutive slots. The first packs the call type
// into byte 11 and the implementation into bytes 12 to 31, the second holds
// permission bits. A zero implementation marks an absent binding.
func packBinding(implementation tosca.Address, callType extension.CallType) tosca.Word {
	res := addressWord(implementation)
	res[11] = byte(callType)
	return res
}

func unpackBinding(word tosca.Word) (tosca.Address, extension.CallType) {
	return wordAddress(word), extension.CallType(word[11])
}

func (r SelectorRegistry) BindCallback(selector tosca.Selector, implementation tosca.Address, callType extension.CallType) error {
	if implementation == (tosca.Address{}) {
		return ErrZeroImplementation
	}
	slot := mapSlot(callbacksBase, selectorWord(selector))
	if r.get(slot) != (tosca.Word{}) {
		return fmt.Errorf("callback %v: %w", selector, ErrAlreadyBound)
	}
	r.set(slot, packBinding(implementation, callType))
	return nil
}

func (r SelectorRegistry) UnbindCallback(selector tosca.Selector) error {
	slot := mapSlot(callbacksBase, selectorWord(selector))
	if r.get(slot) == (tosca.Word{}) {
		return fmt.Errorf("callback %v: %w", selector, ErrNotBound)
	}
	r.set(slot, tosca.Word{})
	return nil
}

func (r SelectorRegistry) LookupCallback(selector tosca.Selector) (CallbackBinding, bool) {
	word := r.get(mapSlot(callbacksBase, selectorWord(selector)))
	if word == (tosca.Word{}) {
		return CallbackBinding{}, false
	}
	implementation, callType := unpackBinding(word)
	return CallbackBinding{Implementation: implementation, CallType: callType}, true
}

func (r SelectorRegistry) BindFallback(selector tosca.Selector, implementation tosca.Address, callType extension.CallType, permissionBits *uint256.Int) error {
	if implementation == (tosca.Address{}) {
		return ErrZeroImplementation
	}
	slot := mapSlot(fallbacksBase, selectorWord(selector))
	if r.get(slot) != (tosca.Word{}) {
		return fmt.Errorf("fallback %v: %w", selector, ErrAlreadyBound)
	}
	r.set(slot, packBinding(implementation, callType))
	if permissionBits != nil {
		r.set(offset(slot, 1), intWord(permissionBits))
	}
	return nil
}

func (r SelectorRegistry) UnbindFallback(selector tosca.Selector) error {
	slot := mapSlot(fallbacksBase, selectorWord(selector))
	if r.get(slot) == (tosca.Word{}) {
		return fmt.Errorf("fallback %v: %w", selector, ErrNotBound)
	}
	r.set(slot, tosca.Word{})
	r.set(offset(slot, 1), tosca.Word{})
	return nil
}

func (r SelectorRegistry) LookupFallback(selector tosca.Selector) (FallbackBinding, bool) {
	slot := mapSlot(fallbacksBase, selectorWord(selector))
	word := r.get(slot)
	if word == (tosca.Word{}) {
		return FallbackBinding{}, false
	}
	implementation, callType := unpackBinding(word)
	return FallbackBinding{
		Implementation: implementation,
		CallType:       callType,
		PermissionBits: wordInt(r.get(offset(slot, 1))),
	}, true
}
