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

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/sha3"
)

// Selector is the 4-byte identifier of a function signature used as the
// dispatch key of contract calls. The same representation is used for
// ERC-165 interface identifiers.
type Selector [4]byte

// SelectorOf computes the selector of the given canonical function signature,
// e.g. "transfer(address,uint256)".
func SelectorOf(signature string) Selector {
	hash := Keccak256([]byte(signature))
	return Selector(hash[:4])
}

// GetSelector extracts the selector from the given call input. The second
// result is false if the input is too short to contain a selector.
func GetSelector(input Data) (Selector, bool) {
	if len(input) < 4 {
		return Selector{}, false
	}
	return Selector(input[:4]), true
}

// InterfaceID computes the ERC-165 interface identifier of the interface
// consisting of the given functions.
func InterfaceID(selectors ...Selector) Selector {
	var res Selector
	for _, s := range selectors {
		for i := range res {
			res[i] ^= s[i]
		}
	}
	return res
}

// IsZero reports whether the selector is all zeros, which is used to
// denote the absence of an interface requirement.
func (s Selector) IsZero() bool {
	return s == Selector{}
}

func (s Selector) String() string {
	return fmt.Sprintf("0x%x", s[:])
}

func (s Selector) MarshalText() ([]byte, error) {
	return bytesToText(s[:])
}

// UnmarshalText accepts either a 0x-prefixed 4-byte hex string or a function
// signature, in which case the selector of the signature is used.
func (s *Selector) UnmarshalText(data []byte) error {
	text := strings.TrimSpace(string(data))
	if strings.Contains(text, "(") {
		if !strings.HasSuffix(text, ")") {
			return fmt.Errorf("invalid function signature: %v", text)
		}
		*s = SelectorOf(text)
		return nil
	}
	return textToBytes(s[:], []byte(text))
}

var keccakHasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

type keccakHasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

// Keccak256 computes the Keccak-256 hash of the concatenation of the given
// byte slices.
func Keccak256(data ...[]byte) Hash {
	hasher := keccakHasherPool.Get().(keccakHasher)
	hasher.Reset()
	for _, cur := range data {
		hasher.Write(cur)
	}
	var res Hash
	hasher.Read(res[:])
	keccakHasherPool.Put(hasher)
	return res
}
