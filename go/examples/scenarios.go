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
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Modular/go/core"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// Accounts used by the scenarios.
var (
	Owner = tosca.Address{0xaa, 19: 0x01}
	Admin = tosca.Address{0xad, 19: 0x02}
	User  = tosca.Address{0xee, 19: 0x03}

	TokenAddress = tosca.Address{0xc0, 19: 0x01}
)

// ExtensionAddress is the address of the i-th extension deployed by a scenario.
func ExtensionAddress(i byte) tosca.Address {
	return tosca.Address{0xe0, 19: i}
}

// Setup is a chain with a token core owned by Owner at TokenAddress.
type Setup struct {
	*Chain
	Token *core.Core
}

func NewSetup(logger *zap.Logger) (*Setup, error) {
	chain, err := NewChain()
	if err != nil {
		return nil, err
	}
	token, err := NewToken(logger)
	if err != nil {
		return nil, err
	}
	if err := chain.DeployCore(TokenAddress, token, Owner); err != nil {
		return nil, err
	}
	return &Setup{Chain: chain, Token: token}, nil
}

// Install deploys the given extension under the given name and installs it
// in the token on behalf of Owner.
func (s *Setup) Install(address tosca.Address, name string, extension Extension, data []byte) (tosca.Receipt, error) {
	if err := s.Deploy(address, name, extension); err != nil {
		return tosca.Receipt{}, err
	}
	return s.Call(Owner, TokenAddress, core.InstallExtensionCall(address, data))
}

// Uninstall uninstalls the given extension from the token on behalf of Owner.
func (s *Setup) Uninstall(address tosca.Address, data []byte) (tosca.Receipt, error) {
	return s.Call(Owner, TokenAddress, core.UninstallExtensionCall(address, data))
}

// BalanceOf queries the token balance of the given account.
func (s *Setup) BalanceOf(account tosca.Address) (uint64, error) {
	receipt, err := s.Call(User, TokenAddress, BalanceOfCall(account))
	if err != nil {
		return 0, err
	}
	balance, err := core.DecodeUint256(receipt.Output)
	if err != nil {
		return 0, err
	}
	return balance.Uint64(), nil
}

// SupportsInterface queries the token for the given interface.
func (s *Setup) SupportsInterface(id tosca.Selector) (bool, error) {
	receipt, err := s.Call(User, TokenAddress, core.SupportsInterfaceCall(id))
	if err != nil {
		return false, err
	}
	return core.DecodeBool(receipt.Output)
}

// Scenario is an end-to-end use of a token core and its extensions.
type Scenario struct {
	Name string
	Run  func(*Setup) error
}

// Scenarios lists all scenarios.
var Scenarios = []Scenario{
	{"required callback", runRequiredCallback},
	{"missing required callback", runMissingRequiredCallback},
	{"permissioned fallback", runPermissionedFallback},
	{"uninstalled fallback", runUninstalledFallback},
	{"supported interface", runSupportedInterface},
	{"integrity violation", runIntegrityViolation},
}

// Execute runs the scenario on a new setup.
func (s Scenario) Execute(logger *zap.Logger) (*Setup, error) {
	setup, err := NewSetup(logger)
	if err != nil {
		return nil, err
	}
	if err := s.Run(setup); err != nil {
		return setup, fmt.Errorf("%v: %w", s.Name, err)
	}
	return setup, nil
}

func expectError(err error, want error) error {
	if !errors.Is(err, want) {
		return fmt.Errorf("unexpected error, wanted %v, got %v", want, err)
	}
	return nil
}

func runRequiredCallback(s *Setup) error {
	if _, err := s.Install(ExtensionAddress(1), "mintLimit", NewMintLimit(1000), nil); err != nil {
		return err
	}
	if _, err := s.Call(Owner, TokenAddress, MintCall(User, 600)); err != nil {
		return err
	}
	if balance, err := s.BalanceOf(User); err != nil || balance != 600 {
		return fmt.Errorf("unexpected balance %d, %v", balance, err)
	}
	// the callback enforces the limit of the extension
	_, err := s.Call(Owner, TokenAddress, MintCall(User, 600))
	return expectError(err, ErrMintLimitExceeded)
}

func runMissingRequiredCallback(s *Setup) error {
	_, err := s.Call(Owner, TokenAddress, MintCall(User, 1))
	return expectError(err, core.ErrCallbackRequired)
}

func runPermissionedFallback(s *Setup) error {
	if _, err := s.Install(ExtensionAddress(1), "greeter", NewGreeter(), nil); err != nil {
		return err
	}
	_, err := s.Call(Admin, TokenAddress, GreetCall())
	if err := expectError(err, core.ErrUnauthorized); err != nil {
		return err
	}
	if _, err := s.Call(Owner, TokenAddress, core.GrantRolesCall(Admin, AdminRole)); err != nil {
		return err
	}
	receipt, err := s.Call(Admin, TokenAddress, GreetCall())
	if err != nil {
		return err
	}
	if greeting, err := DecodeGreeting(receipt.Output); err != nil || greeting != Greeting {
		return fmt.Errorf("unexpected greeting %q, %v", greeting, err)
	}
	// failures of the extension are passed on unchanged
	_, err = s.Call(User, TokenAddress, FailCall(7))
	var revert *core.RevertError
	if !errors.As(err, &revert) || revert.Kind != ErrGreeterFailure || !revert.Arguments[0].(*uint256.Int).Eq(uint256.NewInt(7)) {
		return fmt.Errorf("unexpected error %v", err)
	}
	return nil
}

func runUninstalledFallback(s *Setup) error {
	if _, err := s.Install(ExtensionAddress(1), "counter", NewCounter(), nil); err != nil {
		return err
	}
	if _, err := s.Call(User, TokenAddress, IncrementCall()); err != nil {
		return err
	}
	if _, err := s.Uninstall(ExtensionAddress(1), nil); err != nil {
		return err
	}
	_, err := s.Call(User, TokenAddress, IncrementCall())
	return expectError(err, core.ErrFallbackNotInstalled)
}

// AdvertisedInterface is the interface advertised in the scenarios.
var AdvertisedInterface = tosca.Selector{0x12, 0x34, 0x56, 0x78}

func runSupportedInterface(s *Setup) error {
	if _, err := s.Install(ExtensionAddress(1), "advertiser", NewAdvertiser(tosca.Selector{}, AdvertisedInterface), nil); err != nil {
		return err
	}
	if supported, err := s.SupportsInterface(AdvertisedInterface); err != nil || !supported {
		return fmt.Errorf("interface should be supported after installation, got %v, %v", supported, err)
	}
	if _, err := s.Uninstall(ExtensionAddress(1), nil); err != nil {
		return err
	}
	if supported, err := s.SupportsInterface(AdvertisedInterface); err != nil || supported {
		return fmt.Errorf("interface should not be supported after uninstallation, got %v, %v", supported, err)
	}
	return nil
}

func runIntegrityViolation(s *Setup) error {
	address := ExtensionAddress(1)
	if _, err := s.Install(address, "greeter", NewGreeter(), nil); err != nil {
		return err
	}
	if _, err := s.Call(User, TokenAddress, FailCall(1)); !errors.Is(err, ErrGreeterFailure) {
		return fmt.Errorf("extension should be reachable before the upgrade, got %v", err)
	}
	// replacing the code of the extension simulates the upgrade of a proxy
	if err := s.Deploy(address, "greeter.v2", NewGreeter()); err != nil {
		return err
	}
	_, err := s.Call(User, TokenAddress, FailCall(1))
	return expectError(err, core.ErrIntegrityViolation)
}
