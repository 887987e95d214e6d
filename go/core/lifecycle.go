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

	"github.com/Fantom-foundation/Modular/go/extension"
	"github.com/Fantom-foundation/Modular/go/registry"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"go.uber.org/zap"
)

// installExtension implements installExtension(address,bytes). Failures
// revert the enclosing frame, undoing all modifications of the registry.
func (c *Core) installExtension(inv *Invocation) (tosca.Data, error) {
	args, err := arguments(inv.Frame, addressBytesArguments)
	if err != nil {
		return nil, err
	}
	address, data := asAddress(args[0]), asBytes(args[1])
	log := c.log.With(zap.Stringer("extension", address), zap.Stringer("caller", inv.Sender))

	config, err := c.install(inv, address, data)
	if err != nil {
		log.Debug("extension installation failed", zap.Error(err))
		return nil, err
	}

	emit(inv.Frame, ExtensionInstalledTopic, addressTopic(inv.Sender), addressTopic(address))
	log.Debug("extension installed",
		zap.Int("interfaces", len(config.SupportedInterfaces)),
		zap.Int("callbacks", len(config.CallbackFunctions)),
		zap.Int("fallbacks", len(config.FallbackFunctions)),
	)
	return nil, nil
}

func (c *Core) install(inv *Invocation, address tosca.Address, data tosca.Data) (extension.Config, error) {
	if !inv.IsAuthorized(InstallerRole) {
		return extension.Config{}, ErrUnauthorized
	}
	reg := inv.Registry
	if err := reg.Extensions.Add(address); err != nil {
		return extension.Config{}, ErrExtensionAlreadyInstalled
	}
	reg.Integrity.Snapshot(address)

	res, err := inv.Call(tosca.StaticCall, address, tosca.Value{}, extension.GetExtensionConfigSelector[:])
	if err != nil {
		return extension.Config{}, err
	}
	if !res.Success {
		return extension.Config{}, ErrInvalidExtensionConfig.Bubble(res.Output)
	}
	encoded := res.Output
	config, err := c.codec.Decode(encoded)
	if err != nil {
		return extension.Config{}, ErrInvalidExtensionConfig
	}

	if config.HasRequiredInterface() && !inv.SupportsInterface(config.RequiredInterface) {
		return extension.Config{}, ErrIncompatibleInterface.With(config.RequiredInterface)
	}
	for _, id := range config.SupportedInterfaces {
		reg.Interfaces.Increment(id)
	}
	for _, cur := range config.CallbackFunctions {
		if _, found := c.callbacks[cur.Selector]; !found {
			return extension.Config{}, ErrCallbackNotSupported.With(cur.Selector)
		}
		if err := reg.Selectors.BindCallback(cur.Selector, address, cur.CallType); err != nil {
			return extension.Config{}, bindError(err, ErrCallbackAlreadyInstalled, cur.Selector)
		}
	}
	for _, cur := range config.FallbackFunctions {
		// functions of the core take precedence, such bindings are unreachable
		if c.methods.Has(cur.Selector) {
			return extension.Config{}, ErrFallbackAlreadyInstalled.With(cur.Selector)
		}
		if err := reg.Selectors.BindFallback(cur.Selector, address, cur.CallType, cur.PermissionBits); err != nil {
			return extension.Config{}, bindError(err, ErrFallbackAlreadyInstalled, cur.Selector)
		}
	}
	if err := reg.Extensions.SetConfig(address, encoded); err != nil {
		return extension.Config{}, err
	}

	if config.RegisterInstallationCallback {
		input := extension.EncodeOnInstall(inv.Sender, data)
		res, err := inv.Call(tosca.Call, address, inv.Value, input)
		if err != nil {
			return extension.Config{}, err
		}
		if !res.Success {
			return extension.Config{}, ErrInstallCallbackReverted.Bubble(res.Output)
		}
	}
	return config, nil
}

// bindError maps conflicts of selector bindings to the given error. Other
// failures, e.g. the binding of the zero address, are passed on.
func bindError(err error, conflict *CustomError, selector tosca.Selector) error {
	if errors.Is(err, registry.ErrAlreadyBound) {
		return conflict.With(selector)
	}
	return err
}

// uninstallExtension implements uninstallExtension(address,bytes). The
// configuration recorded at installation is used for the teardown, such
// that exactly the installed bindings are removed.
func (c *Core) uninstallExtension(inv *Invocation) (tosca.Data, error) {
	args, err := arguments(inv.Frame, addressBytesArguments)
	if err != nil {
		return nil, err
	}
	address, data := asAddress(args[0]), asBytes(args[1])
	log := c.log.With(zap.Stringer("extension", address), zap.Stringer("caller", inv.Sender))

	if err := c.uninstall(inv, address, data); err != nil {
		log.Debug("extension uninstallation failed", zap.Error(err))
		return nil, err
	}

	emit(inv.Frame, ExtensionUninstalledTopic, addressTopic(inv.Sender), addressTopic(address))
	log.Debug("extension uninstalled")
	return nil, nil
}

func (c *Core) uninstall(inv *Invocation, address tosca.Address, data tosca.Data) error {
	if !inv.IsAuthorized(InstallerRole) {
		return ErrUnauthorized
	}
	reg := inv.Registry
	encoded, err := reg.Extensions.Config(address)
	if err != nil {
		return ErrExtensionNotInstalled
	}
	config, err := c.codec.Decode(encoded)
	if err != nil {
		return err
	}
	if err := reg.Extensions.Remove(address); err != nil {
		return err
	}
	reg.Integrity.Forget(address)

	for _, id := range config.SupportedInterfaces {
		reg.Interfaces.Decrement(id)
	}
	for _, cur := range config.CallbackFunctions {
		if err := reg.Selectors.UnbindCallback(cur.Selector); err != nil {
			return err
		}
	}
	for _, cur := range config.FallbackFunctions {
		if err := reg.Selectors.UnbindFallback(cur.Selector); err != nil {
			return err
		}
	}

	if config.RegisterInstallationCallback {
		input := extension.EncodeOnUninstall(inv.Sender, data)
		res, err := inv.Call(tosca.Call, address, inv.Value, input)
		if err != nil {
			return err
		}
		if !res.Success {
			return ErrUninstallCallbackReverted.Bubble(res.Output)
		}
	}
	return nil
}

func (c *Core) getInstalledExtensions(inv *Invocation) (tosca.Data, error) {
	members := inv.Registry.Extensions.All()
	installed := make([]extension.Installed, 0, len(members))
	for _, address := range members {
		encoded, err := inv.Registry.Extensions.Config(address)
		if err != nil {
			return nil, err
		}
		config, err := c.codec.Decode(encoded)
		if err != nil {
			return nil, err
		}
		installed = append(installed, extension.Installed{Implementation: address, Config: config})
	}
	return extension.EncodeInstalled(installed)
}
