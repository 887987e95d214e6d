// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/Modular/go/core"
	"github.com/Fantom-foundation/Modular/go/extension"
	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Extension is a contract that can be installed in cores.
type Extension interface {
	native.Contract
	Config() extension.Config
}

// AdminRole is the permission required by the greeter.
var AdminRole = uint256.NewInt(2)

// Errors raised by the example extensions.
var (
	ErrMintLimitExceeded = core.NewCustomError("MintLimitExceeded(uint256)")
	ErrGreeterFailure    = core.NewCustomError("GreeterFailure(uint256)")
	ErrHookRejected      = core.NewCustomError("HookRejected()")
)

// Errors lists the errors of the examples.
var Errors = []*core.CustomError{
	ErrInsufficientBalance,
	ErrMintLimitExceeded,
	ErrGreeterFailure,
	ErrHookRejected,
}

var stringArguments = native.Arguments(native.MustType("string"))

// contract implements Extension for a fixed configuration and set of
// methods. getExtensionConfig() is provided for all extensions.
type contract struct {
	config  extension.Config
	methods native.Methods
}

func newContract(config extension.Config) *contract {
	res := &contract{config: config}
	encoded, err := extension.EncodeConfig(config)
	if err != nil {
		panic(fmt.Sprintf("invalid extension config: %v", err))
	}
	res.methods.Handle(extension.GetExtensionConfigSignature, func(*native.Frame) (tosca.Data, error) {
		return bytes.Clone(encoded), nil
	})
	return res
}

func (c *contract) Config() extension.Config {
	return c.config.Clone()
}

func (c *contract) Run(params tosca.Parameters) (tosca.Result, error) {
	return c.methods.Run(params)
}

func call(signature string, args abi.Arguments, values ...any) tosca.Data {
	selector := tosca.SelectorOf(signature)
	packed, err := args.Pack(values...)
	if err != nil {
		panic(fmt.Sprintf("failed to encode call of %v: %v", signature, err))
	}
	return append(selector[:], packed...)
}

// ----------------------------------------------------------------------------
// MintLimit
// ----------------------------------------------------------------------------

var mintedSlot = slot("mintLimit.minted")

// NewMintLimit creates an extension implementing the beforeMint callback of
// tokens, limiting the total amount minted by each token.
func NewMintLimit(limit uint64) Extension {
	res := newContract(extension.Config{
		CallbackFunctions: []extension.CallbackFunction{
			{Selector: BeforeMintSelector, CallType: extension.Call},
		},
	})
	res.methods.Handle(BeforeMintSignature, func(frame *native.Frame) (tosca.Data, error) {
		values, err := addressUint256Arguments.Unpack(frame.Input[4:])
		if err != nil {
			return nil, err
		}
		amount, _ := uint256.FromBig(values[1].(*big.Int))
		// the token is the caller, limits are kept per token
		key := entry(mintedSlot, frame.Sender)
		minted := loadUint(frame.Context, frame.Self(), key)
		minted, overflow := minted.AddOverflow(minted, amount)
		if overflow || minted.GtUint64(limit) {
			return nil, ErrMintLimitExceeded.With(uint256.NewInt(limit))
		}
		storeUint(frame.Context, frame.Self(), key, minted)
		return nil, nil
	})
	return res
}

// ----------------------------------------------------------------------------
// Greeter
// ----------------------------------------------------------------------------

const (
	GreetSignature = "greet()"
	FailSignature  = "fail(uint256)"
)

// Greeting is the message returned by the greeter.
const Greeting = "hello from the greeter"

// NewGreeter creates an extension exposing greet() to holders of AdminRole
// and fail(uint256) to everyone. Both are forwarded using calls.
func NewGreeter() Extension {
	res := newContract(extension.Config{
		FallbackFunctions: []extension.FallbackFunction{
			{Selector: tosca.SelectorOf(GreetSignature), CallType: extension.Call, PermissionBits: AdminRole},
			{Selector: tosca.SelectorOf(FailSignature), CallType: extension.Call},
		},
	})
	res.methods.Handle(GreetSignature, func(*native.Frame) (tosca.Data, error) {
		return stringArguments.Pack(Greeting)
	})
	res.methods.Handle(FailSignature, func(frame *native.Frame) (tosca.Data, error) {
		values, err := uint256Arguments.Unpack(frame.Input[4:])
		if err != nil {
			return nil, err
		}
		code, _ := uint256.FromBig(values[0].(*big.Int))
		return nil, ErrGreeterFailure.With(code)
	})
	return res
}

// GreetCall builds the input of a call of greet.
func GreetCall() tosca.Data {
	return call(GreetSignature, nil)
}

// FailCall builds the input of a call of fail.
func FailCall(code uint64) tosca.Data {
	return call(FailSignature, uint256Arguments, new(big.Int).SetUint64(code))
}

// DecodeGreeting parses the result of greet.
func DecodeGreeting(data tosca.Data) (string, error) {
	values, err := stringArguments.Unpack(data)
	if err != nil {
		return "", err
	}
	return values[0].(string), nil
}

// ----------------------------------------------------------------------------
// Counter
// ----------------------------------------------------------------------------

const (
	IncrementSignature = "increment()"
	CountSignature     = "count()"
)

// CounterSlot is the slot of the counter in the storage of the core.
var CounterSlot = slot("counter")

// NewCounter creates an extension keeping a counter in the storage of the
// core it is installed in. Its functions are forwarded as delegate calls.
func NewCounter() Extension {
	res := newContract(extension.Config{
		FallbackFunctions: []extension.FallbackFunction{
			{Selector: tosca.SelectorOf(IncrementSignature), CallType: extension.DelegateCall},
			{Selector: tosca.SelectorOf(CountSignature), CallType: extension.DelegateCall},
		},
	})
	res.methods.Handle(IncrementSignature, func(frame *native.Frame) (tosca.Data, error) {
		count := loadUint(frame.Context, frame.Self(), CounterSlot)
		storeUint(frame.Context, frame.Self(), CounterSlot, count.AddUint64(count, 1))
		return uint256Arguments.Pack(count.ToBig())
	})
	res.methods.Handle(CountSignature, func(frame *native.Frame) (tosca.Data, error) {
		return uint256Arguments.Pack(loadUint(frame.Context, frame.Self(), CounterSlot).ToBig())
	})
	return res
}

// IncrementCall builds the input of a call of increment.
func IncrementCall() tosca.Data {
	return call(IncrementSignature, nil)
}

// CountCall builds the input of a call of count.
func CountCall() tosca.Data {
	return call(CountSignature, nil)
}

// ----------------------------------------------------------------------------
// Reader
// ----------------------------------------------------------------------------

const (
	DoubleSignature = "double(uint256)"
	TouchSignature  = "touch()"
)

var touchedSlot = slot("reader.touched")

// NewReader creates an extension whose functions are forwarded as static
// calls. double(uint256) is a pure function, touch() attempts to modify
// storage and thus always fails when forwarded.
func NewReader() Extension {
	res := newContract(extension.Config{
		FallbackFunctions: []extension.FallbackFunction{
			{Selector: tosca.SelectorOf(DoubleSignature), CallType: extension.StaticCall},
			{Selector: tosca.SelectorOf(TouchSignature), CallType: extension.StaticCall},
		},
	})
	res.methods.Handle(DoubleSignature, func(frame *native.Frame) (tosca.Data, error) {
		values, err := uint256Arguments.Unpack(frame.Input[4:])
		if err != nil {
			return nil, err
		}
		value := values[0].(*big.Int)
		return uint256Arguments.Pack(new(big.Int).Lsh(value, 1))
	})
	res.methods.Handle(TouchSignature, func(frame *native.Frame) (tosca.Data, error) {
		storeUint(frame.Context, frame.Self(), touchedSlot, uint256.NewInt(1))
		return nil, nil
	})
	return res
}

// DoubleCall builds the input of a call of double.
func DoubleCall(value uint64) tosca.Data {
	return call(DoubleSignature, uint256Arguments, new(big.Int).SetUint64(value))
}

// TouchCall builds the input of a call of touch.
func TouchCall() tosca.Data {
	return call(TouchSignature, nil)
}

// ----------------------------------------------------------------------------
// Advertiser
// ----------------------------------------------------------------------------

// NewAdvertiser creates an extension without functions, adding the given
// interfaces to the core it is installed in. If required is non-zero, the
// core needs to support it before the advertiser can be installed.
func NewAdvertiser(required tosca.Selector, interfaces ...tosca.Selector) Extension {
	return newContract(extension.Config{
		RequiredInterface:   required,
		SupportedInterfaces: interfaces,
	})
}

// ----------------------------------------------------------------------------
// Hooked
// ----------------------------------------------------------------------------

const InstallerSignature = "installer()"

// RejectedInstallData makes the hooks of Hooked extensions fail.
var RejectedInstallData = []byte("reject")

var installerSlot = slot("hooked.installer")

// NewHooked creates an extension registering installation callbacks. The
// installer of each core is recorded on installation and cleared on
// uninstallation, and may be queried using installer(). Hooks receiving
// RejectedInstallData fail with ErrHookRejected.
func NewHooked() Extension {
	res := newContract(extension.Config{
		RegisterInstallationCallback: true,
		FallbackFunctions: []extension.FallbackFunction{
			{Selector: tosca.SelectorOf(InstallerSignature), CallType: extension.Call},
		},
	})
	hook := func(installer func(tosca.Address) tosca.Address) native.Handler {
		return func(frame *native.Frame) (tosca.Data, error) {
			sender, data, err := extension.DecodeLifecycleCall(frame.Input[4:])
			if err != nil {
				return nil, err
			}
			if bytes.Equal(data, RejectedInstallData) {
				return nil, ErrHookRejected
			}
			var word tosca.Word
			recorded := installer(sender)
			copy(word[12:], recorded[:])
			frame.Context.SetStorage(frame.Self(), entry(installerSlot, frame.Sender), word)
			return nil, nil
		}
	}
	res.methods.Handle(extension.OnInstallSignature, hook(func(sender tosca.Address) tosca.Address { return sender }))
	res.methods.Handle(extension.OnUninstallSignature, hook(func(tosca.Address) tosca.Address { return tosca.Address{} }))
	res.methods.Handle(InstallerSignature, func(frame *native.Frame) (tosca.Data, error) {
		word := frame.Context.GetStorage(frame.Self(), entry(installerSlot, frame.Sender))
		return addressArguments.Pack(common.BytesToAddress(word[12:]))
	})
	return res
}

// InstallerCall builds the input of a call of installer.
func InstallerCall() tosca.Data {
	return call(InstallerSignature, nil)
}
