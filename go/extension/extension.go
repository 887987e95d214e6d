// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package extension defines the contract between a modular core and the
// extensions it hosts: the configuration an extension declares, and the
// encoding of the calls a core issues to its extensions.
package extension

import (
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
)

const (
	ErrDuplicateSelector = tosca.ConstError("duplicate selector")
	ErrInvalidCallType   = tosca.ConstError("invalid call type")
)

// CallType selects how a core forwards calls to an extension.
type CallType uint8

const (
	// Call runs the extension in its own storage, forwarding value.
	Call CallType = iota
	// StaticCall runs the extension read-only.
	StaticCall
	// DelegateCall runs the code of the extension in the storage of the core.
	DelegateCall
)

// Kind is the call kind used for forwarding calls of this type.
func (t CallType) Kind() tosca.CallKind {
	switch t {
	case StaticCall:
		return tosca.StaticCall
	case DelegateCall:
		return tosca.DelegateCall
	default:
		return tosca.Call
	}
}

func (t CallType) IsValid() bool {
	return t <= DelegateCall
}

func (t CallType) String() string {
	switch t {
	case Call:
		return "call"
	case StaticCall:
		return "staticcall"
	case DelegateCall:
		return "delegatecall"
	}
	return fmt.Sprintf("CallType(%d)", uint8(t))
}

func (t CallType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCallType, uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *CallType) UnmarshalText(data []byte) error {
	text := strings.ToLower(strings.TrimSpace(string(data)))
	for _, cur := range []CallType{Call, StaticCall, DelegateCall} {
		if cur.String() == text {
			*t = cur
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidCallType, text)
}

// CallbackFunction declares the implementation of one of the callbacks a
// core invokes during its own operations.
type CallbackFunction struct {
	Selector tosca.Selector `yaml:"selector"`
	CallType CallType       `yaml:"callType"`
}

// FallbackFunction declares a function of the extension that the core
// exposes. Callers need to hold all of the permission bits, if any.
type FallbackFunction struct {
	Selector       tosca.Selector `yaml:"selector"`
	CallType       CallType       `yaml:"callType"`
	PermissionBits *uint256.Int   `yaml:"permissionBits,omitempty"`
}

// Config is the configuration an extension declares to the core installing
// it. A zero RequiredInterface means the extension has no requirements.
type Config struct {
	RegisterInstallationCallback bool               `yaml:"registerInstallationCallback,omitempty"`
	RequiredInterface            tosca.Selector     `yaml:"requiredInterface,omitempty"`
	SupportedInterfaces          []tosca.Selector   `yaml:"supportedInterfaces,omitempty"`
	CallbackFunctions            []CallbackFunction `yaml:"callbackFunctions,omitempty"`
	FallbackFunctions            []FallbackFunction `yaml:"fallbackFunctions,omitempty"`
}

// HasRequiredInterface reports whether the extension requires the core to
// support an interface.
func (c *Config) HasRequiredInterface() bool {
	return c.RequiredInterface != (tosca.Selector{})
}

// Validate checks that call types are valid and that no selector is
// declared twice, neither as callback nor as fallback function.
func (c *Config) Validate() error {
	callbacks := map[tosca.Selector]struct{}{}
	for _, cur := range c.CallbackFunctions {
		if !cur.CallType.IsValid() {
			return fmt.Errorf("callback %v: %w: %d", cur.Selector, ErrInvalidCallType, uint8(cur.CallType))
		}
		if _, found := callbacks[cur.Selector]; found {
			return fmt.Errorf("callback %v: %w", cur.Selector, ErrDuplicateSelector)
		}
		callbacks[cur.Selector] = struct{}{}
	}
	fallbacks := map[tosca.Selector]struct{}{}
	for _, cur := range c.FallbackFunctions {
		if !cur.CallType.IsValid() {
			return fmt.Errorf("fallback %v: %w: %d", cur.Selector, ErrInvalidCallType, uint8(cur.CallType))
		}
		if _, found := fallbacks[cur.Selector]; found {
			return fmt.Errorf("fallback %v: %w", cur.Selector, ErrDuplicateSelector)
		}
		fallbacks[cur.Selector] = struct{}{}
	}
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() Config {
	res := Config{
		RegisterInstallationCallback: c.RegisterInstallationCallback,
		RequiredInterface:            c.RequiredInterface,
	}
	if c.SupportedInterfaces != nil {
		res.SupportedInterfaces = append([]tosca.Selector{}, c.SupportedInterfaces...)
	}
	if c.CallbackFunctions != nil {
		res.CallbackFunctions = append([]CallbackFunction{}, c.CallbackFunctions...)
	}
	if c.FallbackFunctions != nil {
		res.FallbackFunctions = make([]FallbackFunction, len(c.FallbackFunctions))
		for i, cur := range c.FallbackFunctions {
			if cur.PermissionBits != nil {
				cur.PermissionBits = cur.PermissionBits.Clone()
			}
			res.FallbackFunctions[i] = cur
		}
	}
	return res
}
