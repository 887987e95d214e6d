// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package registry implements the bookkeeping of a modular core: which
// extensions are installed, which selectors are bound to them, which
// interfaces they add to the core, and the code fingerprints guarding them.
// All state is kept in the storage of the core's account, such that it is
// subject to the snapshots and reverts of the enclosing transaction.
package registry

import "github.com/Fantom-foundation/Modular/go/tosca"

const (
	ErrAlreadyBound       = tosca.ConstError("selector already bound")
	ErrNotBound           = tosca.ConstError("selector not bound")
	ErrZeroImplementation = tosca.ConstError("zero implementation address")
	ErrAlreadyInstalled   = tosca.ConstError("extension already installed")
	ErrNotInstalled       = tosca.ConstError("extension not installed")
	ErrIntegrityViolation = tosca.ConstError("integrity violation")
)

// Registry bundles the components of the registry of a single core. It
// holds no state of its own; every access reads from or writes to the
// underlying world state.
type Registry struct {
	Selectors  SelectorRegistry
	Interfaces InterfaceSupportTracker
	Integrity  IntegrityGuard
	Extensions ExtensionSet
	Access     AccessControl
}

// New creates a view on the registry kept in the storage of the given
// account.
func New(state tosca.WorldState, address tosca.Address) Registry {
	s := store{state: state, address: address}
	return Registry{
		Selectors:  SelectorRegistry{s},
		Interfaces: InterfaceSupportTracker{s},
		Integrity:  IntegrityGuard{s},
		Extensions: ExtensionSet{s},
		Access:     AccessControl{s},
	}
}
