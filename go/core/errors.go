// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package core

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// CustomError is an ABI custom error, identified by the selector of its
// signature. Raised errors, with or without arguments, match their
// CustomError using errors.Is.
type CustomError struct {
	name      string
	signature string
	selector  tosca.Selector
	arguments abi.Arguments
}

// NewCustomError creates a custom error from its canonical signature, e.g.
// "IntegrityViolation(address)". It panics on malformed signatures.
func NewCustomError(signature string) *CustomError {
	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		panic(fmt.Sprintf("invalid error signature %q", signature))
	}
	res := &CustomError{
		name:      signature[:open],
		signature: signature,
		selector:  tosca.SelectorOf(signature),
		arguments: abi.Arguments{},
	}
	if types := signature[open+1 : len(signature)-1]; types != "" {
		for _, cur := range strings.Split(types, ",") {
			res.arguments = append(res.arguments, abi.Argument{Type: native.MustType(cur)})
		}
	}
	return res
}

var (
	ErrUnauthorized              = NewCustomError("Unauthorized()")
	ErrExtensionAlreadyInstalled = NewCustomError("ExtensionAlreadyInstalled()")
	ErrExtensionNotInstalled     = NewCustomError("ExtensionNotInstalled()")
	ErrInvalidExtensionConfig    = NewCustomError("InvalidExtensionConfig()")
	ErrIncompatibleInterface     = NewCustomError("IncompatibleInterface(bytes4)")
	ErrCallbackNotSupported      = NewCustomError("CallbackNotSupported(bytes4)")
	ErrCallbackAlreadyInstalled  = NewCustomError("CallbackAlreadyInstalled(bytes4)")
	ErrFallbackAlreadyInstalled  = NewCustomError("FallbackAlreadyInstalled(bytes4)")
	ErrFallbackNotInstalled      = NewCustomError("FallbackNotInstalled(bytes4)")
	ErrCallbackRequired          = NewCustomError("CallbackRequired(bytes4)")
	ErrIntegrityViolation        = NewCustomError("IntegrityViolation(address)")
	ErrInstallCallbackReverted   = NewCustomError("InstallCallbackReverted()")
	ErrUninstallCallbackReverted = NewCustomError("UninstallCallbackReverted()")
	ErrCallbackExecutionReverted = NewCustomError("CallbackExecutionReverted()")
)

// Errors lists the custom errors raised by cores.
var Errors = []*CustomError{
	ErrUnauthorized,
	ErrExtensionAlreadyInstalled,
	ErrExtensionNotInstalled,
	ErrInvalidExtensionConfig,
	ErrIncompatibleInterface,
	ErrCallbackNotSupported,
	ErrCallbackAlreadyInstalled,
	ErrFallbackAlreadyInstalled,
	ErrFallbackNotInstalled,
	ErrCallbackRequired,
	ErrIntegrityViolation,
	ErrInstallCallbackReverted,
	ErrUninstallCallbackReverted,
	ErrCallbackExecutionReverted,
}

func (e *CustomError) Error() string {
	return e.signature
}

func (e *CustomError) Name() string {
	return e.name
}

func (e *CustomError) Selector() tosca.Selector {
	return e.selector
}

// RevertData encodes the error. Errors declaring arguments need to be
// raised using With to be encoded with their arguments.
func (e *CustomError) RevertData() []byte {
	return append([]byte{}, e.selector[:]...)
}

// With raises the error with the given arguments. Selectors and addresses
// are accepted as tosca types, integers as *uint256.Int or *big.Int.
func (e *CustomError) With(arguments ...any) *RevertError {
	return &RevertError{Kind: e, Arguments: arguments}
}

// Bubble raises the error for a nested call that failed with the given
// revert payload. Non-empty payloads are passed on unchanged.
func (e *CustomError) Bubble(payload tosca.Data) *RevertError {
	return &RevertError{Kind: e, Payload: payload}
}

// RevertError is an error raised by a core, or the failure of a nested call
// passed on by a core.
type RevertError struct {
	Kind      *CustomError // nil if the payload is no known error
	Arguments []any
	Payload   tosca.Data // the unchanged payload of a failed nested call
}

func (e *RevertError) Error() string {
	if e.Kind == nil {
		return fmt.Sprintf("execution reverted: 0x%x", []byte(e.Payload))
	}
	args := make([]string, 0, len(e.Arguments))
	for _, cur := range e.Arguments {
		args = append(args, fmt.Sprintf("%v", cur))
	}
	res := e.Kind.name + "(" + strings.Join(args, ", ") + ")"
	if len(e.Payload) > 0 {
		res += fmt.Sprintf(": 0x%x", []byte(e.Payload))
	}
	return res
}

func (e *RevertError) Is(target error) bool {
	return e.Kind != nil && target == error(e.Kind)
}

func (e *RevertError) RevertData() []byte {
	if len(e.Payload) > 0 || e.Kind == nil {
		return e.Payload
	}
	values := make([]any, 0, len(e.Arguments))
	for _, cur := range e.Arguments {
		values = append(values, toABIValue(cur))
	}
	res := e.Kind.RevertData()
	packed, err := e.Kind.arguments.Pack(values...)
	if err != nil {
		// arguments not matching the error are dropped
		return res
	}
	return append(res, packed...)
}

// DecodeError restores the error encoded by the given revert payload. The
// errors of cores and the given additional errors are recognized.
// Error(string) payloads are decoded to plain errors, unknown payloads to a
// RevertError without kind.
func DecodeError(payload tosca.Data, known ...*CustomError) error {
	if message, ok := native.DecodeErrorString(payload); ok {
		return errors.New(message)
	}
	selector, ok := tosca.GetSelector(payload)
	if !ok {
		return &RevertError{Payload: payload}
	}
	for _, list := range [][]*CustomError{known, Errors} {
		for _, cur := range list {
			if cur.selector != selector {
				continue
			}
			values, err := cur.arguments.Unpack(payload[4:])
			if err != nil {
				return &RevertError{Payload: payload}
			}
			res := &RevertError{Kind: cur}
			for _, value := range values {
				res.Arguments = append(res.Arguments, fromABIValue(value))
			}
			return res
		}
	}
	return &RevertError{Payload: payload}
}

func toABIValue(value any) any {
	switch value := value.(type) {
	case tosca.Selector:
		return [4]byte(value)
	case tosca.Address:
		return common.Address(value)
	case *uint256.Int:
		return value.ToBig()
	}
	return value
}

func fromABIValue(value any) any {
	switch value := value.(type) {
	case [4]byte:
		return tosca.Selector(value)
	case common.Address:
		return tosca.Address(value)
	case *big.Int:
		res, _ := uint256.FromBig(value)
		return res
	}
	return value
}
