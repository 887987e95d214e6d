// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tosca

import "testing"

func TestGetStorageStatus_CoversAllTransitions(t *testing.T) {
	zero := Word{}
	x := Word{1}
	y := Word{2}
	z := Word{3}

	tests := map[string]struct {
		original, current, new Word
		want                   StorageStatus
	}{
		"assigned":          {x, y, y, StorageAssigned},
		"added":             {zero, zero, z, StorageAdded},
		"deleted":           {x, x, zero, StorageDeleted},
		"modified":          {x, x, z, StorageModified},
		"deleted-added":     {x, zero, z, StorageDeletedAdded},
		"modified-deleted":  {x, y, zero, StorageModifiedDeleted},
		"deleted-restored":  {x, zero, x, StorageDeletedRestored},
		"added-deleted":     {zero, y, zero, StorageAddedDeleted},
		"modified-restored": {x, y, x, StorageModifiedRestored},
		"dirty-modified":    {zero, y, z, StorageAssigned},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, GetStorageStatus(test.original, test.current, test.new); want != got {
				t.Errorf("unexpected status, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestStorageStatus_UnknownValuesArePrintedNumerically(t *testing.T) {
	if want, got := "StorageStatus(42)", StorageStatus(42).String(); want != got {
		t.Errorf("unexpected print, wanted %v, got %v", want, got)
	}
}
