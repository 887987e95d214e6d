// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package native

import "github.com/Fantom-foundation/Modular/go/tosca"

// readOnlyContext is the view of static frames. Modifications are dropped
// and mark the frame as failed.
type readOnlyContext struct {
	tosca.RunContext
	violated bool
}

func (c *readOnlyContext) SetBalance(tosca.Address, tosca.Value) {
	c.violated = true
}

func (c *readOnlyContext) SetNonce(tosca.Address, uint64) {
	c.violated = true
}

func (c *readOnlyContext) SetCode(tosca.Address, tosca.Code) {
	c.violated = true
}

func (c *readOnlyContext) SetStorage(tosca.Address, tosca.Key, tosca.Word) tosca.StorageStatus {
	c.violated = true
	return tosca.StorageAssigned
}

func (c *readOnlyContext) SetTransientStorage(tosca.Address, tosca.Key, tosca.Word) {
	c.violated = true
}

func (c *readOnlyContext) EmitLog(tosca.Log) {
	c.violated = true
}
