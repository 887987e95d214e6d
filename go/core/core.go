// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package core implements modular cores: contracts offering a fixed set of
// functions whose behavior is extended by installing extension contracts at
// runtime. Extensions contribute callbacks, invoked by the functions of the
// core, and fallback functions, exposed by the core on behalf of the
// extension. All bookkeeping is kept in the storage of the core's account,
// see package registry.
package core

import (
	"fmt"

	"github.com/Fantom-foundation/Modular/go/extension"
	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/registry"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

const (
	ErrDuplicateCallback = tosca.ConstError("duplicate callback")
	ErrFunctionConflict  = tosca.ConstError("function conflicts with core function")
)

// CallbackMode defines whether a core requires a callback to be installed.
type CallbackMode uint8

const (
	// Optional callbacks are skipped if no extension implements them.
	Optional CallbackMode = iota
	// Required callbacks fail the invoking function if no extension
	// implements them.
	Required
)

func (m CallbackMode) String() string {
	switch m {
	case Optional:
		return "optional"
	case Required:
		return "required"
	}
	return fmt.Sprintf("CallbackMode(%d)", uint8(m))
}

// SupportedCallback declares a callback invoked by a core.
type SupportedCallback struct {
	Selector tosca.Selector
	Mode     CallbackMode
}

// Handler implements a function of a core.
type Handler func(*Invocation) (tosca.Data, error)

// Function is a function of a concrete core, e.g. the transfer function of
// a token.
type Function struct {
	Signature string
	Run       Handler
}

// Config describes a concrete core.
type Config struct {
	Callbacks       []SupportedCallback // callbacks invoked by the functions
	Interfaces      []tosca.Selector    // interfaces implemented by the functions
	Functions       []Function
	ConfigCacheSize int         // see extension.NewCodec
	Logger          *zap.Logger // defaults to a no-op logger
}

// InstallerRole is the role permitting accounts other than the owner to
// install and uninstall extensions.
var InstallerRole = new(uint256.Int).Lsh(uint256.NewInt(1), 255)

// invalidInterfaceID is never supported, see ERC-165.
var invalidInterfaceID = tosca.Selector{0xff, 0xff, 0xff, 0xff}

// Core is a modular core. A single Core may run at any number of accounts;
// it keeps no state besides its configuration and is safe for concurrent
// use.
type Core struct {
	name       string
	methods    native.Methods
	callbacks  map[tosca.Selector]CallbackMode
	supported  []SupportedCallback
	interfaces map[tosca.Selector]struct{}
	codec      *extension.Codec
	log        *zap.Logger
}

// New creates a core with the given name. The name selects the code of the
// accounts running the core, see native.CodeFor.
func New(name string, config Config) (*Core, error) {
	codec, err := extension.NewCodec(config.ConfigCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create config codec: %w", err)
	}
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	res := &Core{
		name:       name,
		callbacks:  map[tosca.Selector]CallbackMode{},
		supported:  make([]SupportedCallback, 0, len(config.Callbacks)),
		interfaces: map[tosca.Selector]struct{}{ERC165InterfaceID: {}, InterfaceID: {}},
		codec:      codec,
		log:        log.With(zap.String("core", name)),
	}

	for _, cur := range config.Callbacks {
		if _, found := res.callbacks[cur.Selector]; found {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateCallback, cur.Selector)
		}
		res.callbacks[cur.Selector] = cur.Mode
		res.supported = append(res.supported, cur)
	}
	for _, cur := range config.Interfaces {
		res.interfaces[cur] = struct{}{}
	}

	res.handle(InstallExtensionSignature, res.installExtension)
	res.handle(UninstallExtensionSignature, res.uninstallExtension)
	res.handle(GetInstalledExtensionsSignature, res.getInstalledExtensions)
	res.handle(GetSupportedCallbackFunctionsSignature, res.getSupportedCallbackFunctions)
	res.handle(SupportsInterfaceSignature, res.supportsInterface)
	res.handle(OwnerSignature, owner)
	res.handle(TransferOwnershipSignature, transferOwnership)
	res.handle(GrantRolesSignature, grantRoles)
	res.handle(RevokeRolesSignature, revokeRoles)
	res.handle(RenounceRolesSignature, renounceRoles)
	res.handle(RolesOfSignature, rolesOf)
	res.handle(HasAllRolesSignature, hasAllRoles)
	for _, cur := range config.Functions {
		if res.methods.Has(tosca.SelectorOf(cur.Signature)) {
			return nil, fmt.Errorf("%w: %v", ErrFunctionConflict, cur.Signature)
		}
		res.handle(cur.Signature, cur.Run)
	}
	res.methods.Fallback(res.wrap(res.dispatch))
	return res, nil
}

func (c *Core) handle(signature string, handler Handler) {
	c.methods.Handle(signature, c.wrap(handler))
}

func (c *Core) wrap(handler Handler) native.Handler {
	return func(frame *native.Frame) (tosca.Data, error) {
		return handler(&Invocation{
			Frame:    frame,
			Registry: registry.New(frame.Context, frame.Recipient),
			core:     c,
		})
	}
}

func (c *Core) Name() string {
	return c.name
}

// Code is the code of the accounts running this core.
func (c *Core) Code() tosca.Code {
	return native.CodeFor(c.name)
}

// Register makes the given interpreter run this core for accounts carrying
// its code.
func (c *Core) Register(interpreter *native.Interpreter) error {
	return interpreter.Register(c.Code(), c)
}

// Deploy places the code of this core at the given address and makes the
// given account its owner.
func (c *Core) Deploy(state tosca.WorldState, address tosca.Address, owner tosca.Address) {
	state.SetCode(address, c.Code())
	registry.New(state, address).Access.SetOwner(owner)
}

// SupportedCallbacks lists the callbacks invoked by this core.
func (c *Core) SupportedCallbacks() []SupportedCallback {
	return append([]SupportedCallback{}, c.supported...)
}

func (c *Core) Run(params tosca.Parameters) (tosca.Result, error) {
	return c.methods.Run(params)
}

// Invocation is the state of a single invocation of a core function.
type Invocation struct {
	*native.Frame
	Registry registry.Registry
	core     *Core
}

// IsAuthorized reports whether the caller is the owner of the core or holds
// all of the given roles.
func (i *Invocation) IsAuthorized(roles *uint256.Int) bool {
	return i.Sender == i.Registry.Access.Owner() || i.Registry.Access.HasAllRoles(i.Sender, roles)
}

// SupportsInterface reports whether the core implements the given
// interface, natively or through an installed extension.
func (i *Invocation) SupportsInterface(id tosca.Selector) bool {
	if id == invalidInterfaceID {
		return false
	}
	if _, found := i.core.interfaces[id]; found {
		return true
	}
	return i.Registry.Interfaces.IsSupported(id)
}

func (c *Core) getSupportedCallbackFunctions(*Invocation) (tosca.Data, error) {
	return EncodeSupportedCallbacks(c.supported)
}

func (c *Core) supportsInterface(inv *Invocation) (tosca.Data, error) {
	args, err := arguments(inv.Frame, bytes4Arguments)
	if err != nil {
		return nil, err
	}
	return result(boolArguments, inv.SupportsInterface(asSelector(args[0])))
}
