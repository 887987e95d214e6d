// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"bytes"

	"github.com/Fantom-foundation/Modular/go/tosca"
	"golang.org/x/exp/slices"
)

// Context is an in-memory tosca.TransactionContext. Every modification is
// recorded in an undo log such that snapshots can be restored. The state
// the context was created with is treated as the committed state.
//
// A Context is not safe for concurrent use.
type Context struct {
	original  WorldState
	current   WorldState
	transient map[transientKey]tosca.Word
	logs      []tosca.Log
	undo      []func()
}

type transientKey struct {
	address tosca.Address
	key     tosca.Key
}

// NewContext creates a transaction context on top of the given initial state.
// The initial state is not modified.
func NewContext(initial WorldState) *Context {
	if initial == nil {
		initial = WorldState{}
	}
	return &Context{
		original:  initial,
		current:   initial.Clone(),
		transient: map[transientKey]tosca.Word{},
	}
}

// Current returns a copy of the current world state.
func (c *Context) Current() WorldState {
	return c.current.Clone()
}

// Commit makes the current state the committed state, clears logs and
// transient storage, and drops the undo log. It marks the end of a
// transaction.
func (c *Context) Commit() {
	c.original = c.current.Clone()
	c.transient = map[transientKey]tosca.Word{}
	c.logs = nil
	c.undo = nil
}

func (c *Context) AccountExists(addr tosca.Address) bool {
	return c.GetBalance(addr) != tosca.Value{} || c.GetNonce(addr) != 0 || c.GetCodeSize(addr) != 0
}

func (c *Context) GetBalance(addr tosca.Address) tosca.Value {
	return c.current[addr].Balance
}

func (c *Context) SetBalance(addr tosca.Address, value tosca.Value) {
	c.update(addr, func(account *Account) { account.Balance = value })
}

func (c *Context) GetNonce(addr tosca.Address) uint64 {
	return c.current[addr].Nonce
}

func (c *Context) SetNonce(addr tosca.Address, value uint64) {
	c.update(addr, func(account *Account) { account.Nonce = value })
}

func (c *Context) GetCode(addr tosca.Address) tosca.Code {
	return bytes.Clone(c.current[addr].Code)
}

func (c *Context) GetCodeHash(addr tosca.Address) tosca.Hash {
	return tosca.Keccak256(c.current[addr].Code)
}

func (c *Context) GetCodeSize(addr tosca.Address) int {
	return len(c.current[addr].Code)
}

func (c *Context) SetCode(addr tosca.Address, code tosca.Code) {
	code = bytes.Clone(code)
	c.update(addr, func(account *Account) { account.Code = code })
}

// update applies the given modification to the account and records its
// previous version in the undo log. Storage maps are shared between the
// versions, storage updates are journaled individually.
func (c *Context) update(addr tosca.Address, modify func(*Account)) {
	original, present := c.current[addr]
	modified := original
	modify(&modified)
	c.current[addr] = modified
	c.undo = append(c.undo, func() {
		if present {
			c.current[addr] = original
		} else {
			delete(c.current, addr)
		}
	})
}

func (c *Context) GetStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	return c.current[addr].Storage[key]
}

func (c *Context) GetCommittedStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	return c.original[addr].Storage[key]
}

func (c *Context) SetStorage(addr tosca.Address, key tosca.Key, new tosca.Word) tosca.StorageStatus {
	original := c.original[addr].Storage[key]

	account := c.current[addr]
	if account.Storage == nil {
		c.update(addr, func(account *Account) { account.Storage = Storage{} })
		account = c.current[addr]
	}

	current, present := account.Storage[key]
	account.Storage[key] = new
	c.undo = append(c.undo, func() {
		if present {
			account.Storage[key] = current
		} else {
			delete(account.Storage, key)
		}
	})
	return tosca.GetStorageStatus(original, current, new)
}

func (c *Context) GetTransientStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	return c.transient[transientKey{addr, key}]
}

func (c *Context) SetTransientStorage(addr tosca.Address, key tosca.Key, value tosca.Word) {
	slot := transientKey{addr, key}
	current, present := c.transient[slot]
	c.transient[slot] = value
	c.undo = append(c.undo, func() {
		if present {
			c.transient[slot] = current
		} else {
			delete(c.transient, slot)
		}
	})
}

func (c *Context) CreateSnapshot() tosca.Snapshot {
	return tosca.Snapshot(len(c.undo))
}

func (c *Context) RestoreSnapshot(snapshot tosca.Snapshot) {
	for len(c.undo) > int(snapshot) {
		c.undo[len(c.undo)-1]()
		c.undo = c.undo[:len(c.undo)-1]
	}
}

func (c *Context) EmitLog(log tosca.Log) {
	size := len(c.logs)
	c.logs = append(c.logs, log)
	c.undo = append(c.undo, func() { c.logs = c.logs[:size] })
}

func (c *Context) GetLogs() []tosca.Log {
	return slices.Clone(c.logs)
}
