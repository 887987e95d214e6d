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
	"testing"

	"github.com/Fantom-foundation/Modular/go/tosca"
)

var _ tosca.TransactionContext = (*Context)(nil)

func TestContext_AccountsAreImplicitlyCreated(t *testing.T) {
	addr := tosca.Address{1}
	tests := map[string]func(tosca.WorldState){
		"balance": func(s tosca.WorldState) {
			s.SetBalance(addr, tosca.NewValue(100))
		},
		"nonce": func(s tosca.WorldState) {
			s.SetNonce(addr, 12)
		},
		"code": func(s tosca.WorldState) {
			s.SetCode(addr, tosca.Code{1, 2, 3})
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			context := NewContext(WorldState{})
			if context.AccountExists(addr) {
				t.Errorf("test account should not exist")
			}
			test(context)
			if !context.AccountExists(addr) {
				t.Errorf("account should exist")
			}
		})
	}
}

func TestContext_SnapshotsRestoreAllModifications(t *testing.T) {
	addr := tosca.Address{1}
	key := tosca.Key{2}
	initial := WorldState{
		addr: Account{
			Balance: tosca.NewValue(10),
			Nonce:   1,
			Code:    tosca.Code{0xFE},
			Storage: Storage{key: tosca.Word{3}},
		},
	}
	context := NewContext(initial)

	snapshot := context.CreateSnapshot()
	context.SetBalance(addr, tosca.NewValue(100))
	context.SetNonce(addr, 5)
	context.SetCode(addr, tosca.Code{1, 2})
	context.SetStorage(addr, key, tosca.Word{4})
	context.SetStorage(addr, tosca.Key{5}, tosca.Word{6})
	context.SetStorage(tosca.Address{9}, key, tosca.Word{7})
	context.SetTransientStorage(addr, key, tosca.Word{8})
	context.EmitLog(tosca.Log{Address: addr})

	if context.Current().Equal(initial) {
		t.Fatalf("modifications should be visible")
	}

	context.RestoreSnapshot(snapshot)

	if got := context.Current(); !got.Equal(initial) {
		t.Errorf("unexpected state after restore: %v", got.Diff(initial))
	}
	if got := context.GetTransientStorage(addr, key); got != (tosca.Word{}) {
		t.Errorf("transient storage not restored: %v", got)
	}
	if got := len(context.GetLogs()); got != 0 {
		t.Errorf("logs not restored, got %d logs", got)
	}
}

func TestContext_NestedSnapshotsCanBeRestoredIndividually(t *testing.T) {
	addr := tosca.Address{1}
	context := NewContext(nil)

	context.SetBalance(addr, tosca.NewValue(1))
	outer := context.CreateSnapshot()
	context.SetBalance(addr, tosca.NewValue(2))
	inner := context.CreateSnapshot()
	context.SetBalance(addr, tosca.NewValue(3))

	context.RestoreSnapshot(inner)
	if want, got := tosca.NewValue(2), context.GetBalance(addr); want != got {
		t.Errorf("unexpected balance, want %v, got %v", want, got)
	}
	context.RestoreSnapshot(outer)
	if want, got := tosca.NewValue(1), context.GetBalance(addr); want != got {
		t.Errorf("unexpected balance, want %v, got %v", want, got)
	}
}

func TestContext_StorageStatusIsBasedOnCommittedState(t *testing.T) {
	addr := tosca.Address{1}
	key := tosca.Key{1}
	context := NewContext(WorldState{addr: Account{Storage: Storage{key: tosca.Word{1}}}})

	if want, got := tosca.StorageModified, context.SetStorage(addr, key, tosca.Word{2}); want != got {
		t.Errorf("unexpected status, want %v, got %v", want, got)
	}
	if want, got := tosca.StorageModifiedRestored, context.SetStorage(addr, key, tosca.Word{1}); want != got {
		t.Errorf("unexpected status, want %v, got %v", want, got)
	}
	if want, got := (tosca.Word{1}), context.GetCommittedStorage(addr, key); want != got {
		t.Errorf("unexpected committed value, want %v, got %v", want, got)
	}

	context.SetStorage(addr, key, tosca.Word{3})
	context.Commit()
	if want, got := (tosca.Word{3}), context.GetCommittedStorage(addr, key); want != got {
		t.Errorf("unexpected committed value after commit, want %v, got %v", want, got)
	}
}

func TestContext_CodeHashIsKeccakOfCode(t *testing.T) {
	addr := tosca.Address{1}
	context := NewContext(nil)
	if want, got := tosca.Keccak256(nil), context.GetCodeHash(addr); want != got {
		t.Errorf("unexpected hash of missing code, want %v, got %v", want, got)
	}
	context.SetCode(addr, tosca.Code{1, 2, 3})
	if want, got := tosca.Keccak256([]byte{1, 2, 3}), context.GetCodeHash(addr); want != got {
		t.Errorf("unexpected code hash, want %v, got %v", want, got)
	}
	if want, got := 3, context.GetCodeSize(addr); want != got {
		t.Errorf("unexpected code size, want %v, got %v", want, got)
	}
}

func TestContext_InitialStateIsNotModified(t *testing.T) {
	addr := tosca.Address{1}
	initial := WorldState{addr: Account{Storage: Storage{}}}
	context := NewContext(initial)
	context.SetStorage(addr, tosca.Key{1}, tosca.Word{1})
	context.SetBalance(addr, tosca.NewValue(1))
	if len(initial[addr].Storage) != 0 || initial[addr].Balance != (tosca.Value{}) {
		t.Errorf("initial state was modified: %v", initial)
	}
}
