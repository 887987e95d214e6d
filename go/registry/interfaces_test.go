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
	"testing"

	"github.com/Fantom-foundation/Modular/go/tosca"
	"pgregory.net/rand"
)

func TestInterfaceSupportTracker_SupportFollowsCount(t *testing.T) {
	tracker := InterfaceSupportTracker{newStore()}
	id := tosca.Selector{0x12, 0x34, 0x56, 0x78}

	if tracker.IsSupported(id) {
		t.Errorf("interface should not be supported")
	}
	tracker.Increment(id)
	tracker.Increment(id)
	if want, got := uint64(2), tracker.Count(id); want != got {
		t.Errorf("unexpected count, want %d, got %d", want, got)
	}
	tracker.Decrement(id)
	if !tracker.IsSupported(id) {
		t.Errorf("interface should still be supported")
	}
	tracker.Decrement(id)
	if tracker.IsSupported(id) {
		t.Errorf("interface should no longer be supported")
	}
}

func TestInterfaceSupportTracker_DecrementBelowZeroPanics(t *testing.T) {
	tracker := InterfaceSupportTracker{newStore()}
	defer func() {
		if recover() == nil {
			t.Errorf("decrementing a zero count should panic")
		}
	}()
	tracker.Decrement(tosca.Selector{1})
}

func TestInterfaceSupportTracker_CountsMatchRandomOperations(t *testing.T) {
	rnd := rand.New(0)
	tracker := InterfaceSupportTracker{newStore()}
	counts := map[tosca.Selector]uint64{}
	for i := 0; i < 1000; i++ {
		id := tosca.Selector{byte(rnd.Intn(4))}
		if counts[id] > 0 && rnd.Intn(2) == 0 {
			tracker.Decrement(id)
			counts[id]--
		} else {
			tracker.Increment(id)
			counts[id]++
		}
		if want, got := counts[id], tracker.Count(id); want != got {
			t.Fatalf("unexpected count of %v, want %d, got %d", id, want, got)
		}
		if want, got := counts[id] > 0, tracker.IsSupported(id); want != got {
			t.Fatalf("unexpected support of %v, want %v, got %v", id, want, got)
		}
	}
}
