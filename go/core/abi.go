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
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrInvalidInput is raised for calls with malformed arguments.
const ErrInvalidInput = tosca.ConstError("invalid input")

// Signatures of the functions implemented by every core.
const (
	InstallExtensionSignature              = "installExtension(address,bytes)"
	UninstallExtensionSignature            = "uninstallExtension(address,bytes)"
	GetInstalledExtensionsSignature        = "getInstalledExtensions()"
	GetSupportedCallbackFunctionsSignature = "getSupportedCallbackFunctions()"
	SupportsInterfaceSignature             = "supportsInterface(bytes4)"
	OwnerSignature                         = "owner()"
	TransferOwnershipSignature             = "transferOwnership(address)"
	GrantRolesSignature                    = "grantRoles(address,uint256)"
	RevokeRolesSignature                   = "revokeRoles(address,uint256)"
	RenounceRolesSignature                 = "renounceRoles(uint256)"
	RolesOfSignature                       = "rolesOf(address)"
	HasAllRolesSignature                   = "hasAllRoles(address,uint256)"
)

var (
	// ERC165InterfaceID is the interface of supportsInterface(bytes4).
	ERC165InterfaceID = tosca.SelectorOf(SupportsInterfaceSignature)

	// InterfaceID is the interface of the extension management functions
	// of cores.
	InterfaceID = tosca.InterfaceID(
		tosca.SelectorOf(InstallExtensionSignature),
		tosca.SelectorOf(UninstallExtensionSignature),
		tosca.SelectorOf(GetInstalledExtensionsSignature),
		tosca.SelectorOf(GetSupportedCallbackFunctionsSignature),
	)
)

var (
	addressType = native.MustType("address")
	bytesType   = native.MustType("bytes")
	bytes4Type  = native.MustType("bytes4")
	uint256Type = native.MustType("uint256")
	boolType    = native.MustType("bool")

	supportedCallbacksType = native.MustType("tuple[]",
		abi.ArgumentMarshaling{Name: "selector", Type: "bytes4"},
		abi.ArgumentMarshaling{Name: "mode", Type: "uint8"},
	)

	addressBytesArguments       = native.Arguments(addressType, bytesType)
	addressUint256Arguments     = native.Arguments(addressType, uint256Type)
	addressArguments            = native.Arguments(addressType)
	uint256Arguments            = native.Arguments(uint256Type)
	bytes4Arguments             = native.Arguments(bytes4Type)
	boolArguments               = native.Arguments(boolType)
	supportedCallbacksArguments = native.Arguments(supportedCallbacksType)
)

type abiSupportedCallback struct {
	Selector [4]byte
	Mode     uint8
}

// arguments decodes the arguments of the call processed by the given frame.
func arguments(frame *native.Frame, args abi.Arguments) ([]any, error) {
	values, err := args.Unpack(frame.Input[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return values, nil
}

// result encodes the given return values of a call.
func result(args abi.Arguments, values ...any) (tosca.Data, error) {
	packed, err := args.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return packed, nil
}

func asAddress(value any) tosca.Address {
	res, _ := value.(common.Address)
	return tosca.Address(res)
}

func asBytes(value any) tosca.Data {
	res, _ := value.([]byte)
	return res
}

func asSelector(value any) tosca.Selector {
	res, _ := value.([4]byte)
	return res
}

func asUint256(value any) (*uint256.Int, error) {
	res, overflow := uint256.FromBig(value.(*big.Int))
	if overflow {
		return nil, fmt.Errorf("%w: integer out of range", ErrInvalidInput)
	}
	return res, nil
}

// EncodeSupportedCallbacks produces the result of getSupportedCallbackFunctions().
func EncodeSupportedCallbacks(callbacks []SupportedCallback) (tosca.Data, error) {
	in := make([]abiSupportedCallback, 0, len(callbacks))
	for _, cur := range callbacks {
		in = append(in, abiSupportedCallback{Selector: cur.Selector, Mode: uint8(cur.Mode)})
	}
	return result(supportedCallbacksArguments, in)
}

// DecodeSupportedCallbacks parses the result of getSupportedCallbackFunctions().
func DecodeSupportedCallbacks(data tosca.Data) ([]SupportedCallback, error) {
	values, err := supportedCallbacksArguments.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	out := *abi.ConvertType(values[0], new([]abiSupportedCallback)).(*[]abiSupportedCallback)
	res := make([]SupportedCallback, 0, len(out))
	for _, cur := range out {
		res = append(res, SupportedCallback{Selector: cur.Selector, Mode: CallbackMode(cur.Mode)})
	}
	return res, nil
}

// InstallExtensionCall builds the input of a call of installExtension.
func InstallExtensionCall(extension tosca.Address, data tosca.Data) tosca.Data {
	return encodeCall(InstallExtensionSignature, addressBytesArguments, common.Address(extension), []byte(data))
}

func UninstallExtensionCall(extension tosca.Address, data tosca.Data) tosca.Data {
	return encodeCall(UninstallExtensionSignature, addressBytesArguments, common.Address(extension), []byte(data))
}

func GetInstalledExtensionsCall() tosca.Data {
	return encodeCall(GetInstalledExtensionsSignature, abi.Arguments{})
}

func GetSupportedCallbackFunctionsCall() tosca.Data {
	return encodeCall(GetSupportedCallbackFunctionsSignature, abi.Arguments{})
}

func SupportsInterfaceCall(id tosca.Selector) tosca.Data {
	return encodeCall(SupportsInterfaceSignature, bytes4Arguments, [4]byte(id))
}

func OwnerCall() tosca.Data {
	return encodeCall(OwnerSignature, abi.Arguments{})
}

func TransferOwnershipCall(owner tosca.Address) tosca.Data {
	return encodeCall(TransferOwnershipSignature, addressArguments, common.Address(owner))
}

func GrantRolesCall(account tosca.Address, roles *uint256.Int) tosca.Data {
	return encodeCall(GrantRolesSignature, addressUint256Arguments, common.Address(account), roles.ToBig())
}

func RevokeRolesCall(account tosca.Address, roles *uint256.Int) tosca.Data {
	return encodeCall(RevokeRolesSignature, addressUint256Arguments, common.Address(account), roles.ToBig())
}

func RenounceRolesCall(roles *uint256.Int) tosca.Data {
	return encodeCall(RenounceRolesSignature, uint256Arguments, roles.ToBig())
}

func RolesOfCall(account tosca.Address) tosca.Data {
	return encodeCall(RolesOfSignature, addressArguments, common.Address(account))
}

func HasAllRolesCall(account tosca.Address, roles *uint256.Int) tosca.Data {
	return encodeCall(HasAllRolesSignature, addressUint256Arguments, common.Address(account), roles.ToBig())
}

func encodeCall(signature string, args abi.Arguments, values ...any) tosca.Data {
	packed, err := args.Pack(values...)
	if err != nil {
		panic(fmt.Sprintf("failed to encode call of %v: %v", signature, err))
	}
	selector := tosca.SelectorOf(signature)
	return append(selector[:], packed...)
}

// DecodeBool parses a single boolean result.
func DecodeBool(data tosca.Data) (bool, error) {
	values, err := boolArguments.Unpack(data)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return values[0].(bool), nil
}

// DecodeAddress parses a single address result.
func DecodeAddress(data tosca.Data) (tosca.Address, error) {
	values, err := addressArguments.Unpack(data)
	if err != nil {
		return tosca.Address{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return asAddress(values[0]), nil
}

// DecodeUint256 parses a single integer result.
func DecodeUint256(data tosca.Data) (*uint256.Int, error) {
	values, err := uint256Arguments.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return asUint256(values[0])
}
