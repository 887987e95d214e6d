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

import (
	"errors"

	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// RevertDataProvider is implemented by errors carrying their own revert
// payload, e.g. ABI encoded custom errors or payloads bubbled up from
// nested calls.
type RevertDataProvider interface {
	RevertData() []byte
}

// ErrorSelector is the selector of Error(string).
var ErrorSelector = tosca.SelectorOf("Error(string)")

var errorStringArguments = abi.Arguments{{Type: MustType("string")}}

// Revert produces the revert payload for the given error. Errors providing
// revert data are encoded as such, all other errors as Error(string).
func Revert(err error) tosca.Data {
	var provider RevertDataProvider
	if errors.As(err, &provider) {
		return provider.RevertData()
	}
	return EncodeErrorString(err.Error())
}

// EncodeErrorString encodes the given message as Error(string) payload.
func EncodeErrorString(message string) tosca.Data {
	packed, err := errorStringArguments.Pack(message)
	if err != nil {
		// strings can always be packed
		panic(err)
	}
	return append(ErrorSelector[:], packed...)
}

// DecodeErrorString decodes an Error(string) payload. The second result is
// false if the payload is no such error.
func DecodeErrorString(data tosca.Data) (string, bool) {
	message, err := abi.UnpackRevert(data)
	if err != nil {
		return "", false
	}
	return message, true
}

// MustType creates an ABI type from its canonical name, e.g. "uint256" or
// "bytes4[]". It panics on invalid names.
func MustType(name string, components ...abi.ArgumentMarshaling) abi.Type {
	res, err := abi.NewType(name, "", components)
	if err != nil {
		panic(err)
	}
	return res
}

// Arguments creates an unnamed argument list of the given types.
func Arguments(types ...abi.Type) abi.Arguments {
	res := make(abi.Arguments, 0, len(types))
	for _, t := range types {
		res = append(res, abi.Argument{Type: t})
	}
	return res
}
