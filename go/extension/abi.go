// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package extension

import (
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const ErrInvalidEncoding = tosca.ConstError("invalid encoding")

// Signatures of the functions every extension offers to its core.
const (
	GetExtensionConfigSignature = "getExtensionConfig()"
	OnInstallSignature          = "onInstall(address,bytes)"
	OnUninstallSignature        = "onUninstall(address,bytes)"
)

var (
	GetExtensionConfigSelector = tosca.SelectorOf(GetExtensionConfigSignature)
	OnInstallSelector          = tosca.SelectorOf(OnInstallSignature)
	OnUninstallSelector        = tosca.SelectorOf(OnUninstallSignature)
)

// ConfigComponents are the fields of the ABI tuple encoding a configuration.
var ConfigComponents = []abi.ArgumentMarshaling{
	{Name: "registerInstallationCallback", Type: "bool"},
	{Name: "requiredInterface", Type: "bytes4"},
	{Name: "supportedInterfaces", Type: "bytes4[]"},
	{Name: "callbackFunctions", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
		{Name: "selector", Type: "bytes4"},
		{Name: "callType", Type: "uint8"},
	}},
	{Name: "fallbackFunctions", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
		{Name: "selector", Type: "bytes4"},
		{Name: "callType", Type: "uint8"},
		{Name: "permissionBits", Type: "uint256"},
	}},
}

// ConfigType is the ABI type of an extension configuration.
var ConfigType = native.MustType("tuple", ConfigComponents...)

// InstalledType is the ABI type of a list of installed extensions.
var InstalledType = native.MustType("tuple[]",
	abi.ArgumentMarshaling{Name: "implementation", Type: "address"},
	abi.ArgumentMarshaling{Name: "config", Type: "tuple", Components: ConfigComponents},
)

var (
	configArguments    = native.Arguments(ConfigType)
	installedArguments = native.Arguments(InstalledType)
	lifecycleArguments = native.Arguments(native.MustType("address"), native.MustType("bytes"))
)

// abiConfig mirrors Config using the types of the go-ethereum ABI codec.
type abiConfig struct {
	RegisterInstallationCallback bool
	RequiredInterface            [4]byte
	SupportedInterfaces          [][4]byte
	CallbackFunctions            []abiCallbackFunction
	FallbackFunctions            []abiFallbackFunction
}

type abiCallbackFunction struct {
	Selector [4]byte
	CallType uint8
}

type abiFallbackFunction struct {
	Selector       [4]byte
	CallType       uint8
	PermissionBits *big.Int
}

type abiInstalled struct {
	Implementation common.Address
	Config         abiConfig
}

func toABI(config *Config) abiConfig {
	res := abiConfig{
		RegisterInstallationCallback: config.RegisterInstallationCallback,
		RequiredInterface:            config.RequiredInterface,
		SupportedInterfaces:          make([][4]byte, 0, len(config.SupportedInterfaces)),
		CallbackFunctions:            make([]abiCallbackFunction, 0, len(config.CallbackFunctions)),
		FallbackFunctions:            make([]abiFallbackFunction, 0, len(config.FallbackFunctions)),
	}
	for _, cur := range config.SupportedInterfaces {
		res.SupportedInterfaces = append(res.SupportedInterfaces, cur)
	}
	for _, cur := range config.CallbackFunctions {
		res.CallbackFunctions = append(res.CallbackFunctions, abiCallbackFunction{
			Selector: cur.Selector,
			CallType: uint8(cur.CallType),
		})
	}
	for _, cur := range config.FallbackFunctions {
		bits := new(big.Int)
		if cur.PermissionBits != nil {
			bits = cur.PermissionBits.ToBig()
		}
		res.FallbackFunctions = append(res.FallbackFunctions, abiFallbackFunction{
			Selector:       cur.Selector,
			CallType:       uint8(cur.CallType),
			PermissionBits: bits,
		})
	}
	return res
}

func fromABI(in *abiConfig) (Config, error) {
	res := Config{
		RegisterInstallationCallback: in.RegisterInstallationCallback,
		RequiredInterface:            in.RequiredInterface,
	}
	for _, cur := range in.SupportedInterfaces {
		res.SupportedInterfaces = append(res.SupportedInterfaces, cur)
	}
	for _, cur := range in.CallbackFunctions {
		res.CallbackFunctions = append(res.CallbackFunctions, CallbackFunction{
			Selector: cur.Selector,
			CallType: CallType(cur.CallType),
		})
	}
	for _, cur := range in.FallbackFunctions {
		bits, overflow := uint256.FromBig(cur.PermissionBits)
		if overflow {
			return Config{}, fmt.Errorf("%w: permission bits out of range", ErrInvalidEncoding)
		}
		res.FallbackFunctions = append(res.FallbackFunctions, FallbackFunction{
			Selector:       cur.Selector,
			CallType:       CallType(cur.CallType),
			PermissionBits: bits,
		})
	}
	if err := res.Validate(); err != nil {
		return Config{}, err
	}
	return res, nil
}

// EncodeConfig produces the ABI encoding of the given configuration, as
// returned by getExtensionConfig().
func EncodeConfig(config Config) (tosca.Data, error) {
	return configArguments.Pack(toABI(&config))
}

// DecodeConfig parses the ABI encoding of a configuration. The result is
// validated.
func DecodeConfig(data tosca.Data) (Config, error) {
	values, err := configArguments.Unpack(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	out, ok := abi.ConvertType(values[0], new(abiConfig)).(*abiConfig)
	if !ok {
		return Config{}, fmt.Errorf("%w: unexpected type %T", ErrInvalidEncoding, values[0])
	}
	return fromABI(out)
}

// Installed is an installed extension together with the configuration it
// was installed with.
type Installed struct {
	Implementation tosca.Address
	Config         Config
}

// EncodeInstalled produces the result of getInstalledExtensions().
func EncodeInstalled(installed []Installed) (tosca.Data, error) {
	in := make([]abiInstalled, 0, len(installed))
	for _, cur := range installed {
		in = append(in, abiInstalled{
			Implementation: common.Address(cur.Implementation),
			Config:         toABI(&cur.Config),
		})
	}
	return installedArguments.Pack(in)
}

// DecodeInstalled parses the result of getInstalledExtensions().
func DecodeInstalled(data tosca.Data) ([]Installed, error) {
	values, err := installedArguments.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	out, ok := abi.ConvertType(values[0], new([]abiInstalled)).(*[]abiInstalled)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected type %T", ErrInvalidEncoding, values[0])
	}
	res := make([]Installed, 0, len(*out))
	for _, cur := range *out {
		config, err := fromABI(&cur.Config)
		if err != nil {
			return nil, err
		}
		res = append(res, Installed{
			Implementation: tosca.Address(cur.Implementation),
			Config:         config,
		})
	}
	return res, nil
}

// EncodeOnInstall produces the input of an onInstall call.
func EncodeOnInstall(sender tosca.Address, data tosca.Data) tosca.Data {
	return encodeLifecycleCall(OnInstallSelector, sender, data)
}

// EncodeOnUninstall produces the input of an onUninstall call.
func EncodeOnUninstall(sender tosca.Address, data tosca.Data) tosca.Data {
	return encodeLifecycleCall(OnUninstallSelector, sender, data)
}

func encodeLifecycleCall(selector tosca.Selector, sender tosca.Address, data tosca.Data) tosca.Data {
	packed, err := lifecycleArguments.Pack(common.Address(sender), []byte(data))
	if err != nil {
		// addresses and byte strings can always be packed
		panic(err)
	}
	return append(selector[:], packed...)
}

// DecodeLifecycleCall parses the arguments of an onInstall or onUninstall
// call, excluding the selector.
func DecodeLifecycleCall(arguments tosca.Data) (tosca.Address, tosca.Data, error) {
	values, err := lifecycleArguments.Unpack(arguments)
	if err != nil {
		return tosca.Address{}, nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	sender, ok1 := values[0].(common.Address)
	data, ok2 := values[1].([]byte)
	if !ok1 || !ok2 {
		return tosca.Address{}, nil, ErrInvalidEncoding
	}
	return tosca.Address(sender), data, nil
}
