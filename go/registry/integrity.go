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

var fingerprintsBase = namespace("fingerprints")

// IntegrityGuard records the code hash of installed extensions and detects
// later changes of their code, e.g. a proxy switching its implementation.
type IntegrityGuard struct {
	store
}

// Snapshot records the current code hash of the given address.
func (g IntegrityGuard) Snapshot(address tosca.Address) {
	g.set(mapSlot(fingerprintsBase, addressWord(address)), tosca.Word(g.state.GetCodeHash(address)))
}

// Verify fails with ErrIntegrityViolation if the code hash of the given
// address differs from the recorded one, or if none was recorded.
func (g IntegrityGuard) Verify(address tosca.Address) error {
	recorded, found := g.Fingerprint(address)
	if !found {
		return fmt.Errorf("%w: no fingerprint of %v", ErrIntegrityViolation, address)
	}
	if live := g.state.GetCodeHash(address); live != recorded {
		return fmt.Errorf("%w: code hash of %v changed from %v to %v", ErrIntegrityViolation, address, recorded, live)
	}
	return nil
}

// Forget removes the recorded code hash of the given address.
func (g IntegrityGuard) Forget(address tosca.Address) {
	g.set(mapSlot(fingerprintsBase, addressWord(address)), tosca.Word{})
}

// Fingerprint returns the code hash recorded for the given address. Since
// even empty code has a non-zero hash, a zero slot marks an absent record.
func (g IntegrityGuard) Fingerprint(address tosca.Address) (tosca.Hash, bool) {
	word := g.get(mapSlot(fingerprintsBase, addressWord(address)))
	return tosca.Hash(word), word != (tosca.Word{})
}
