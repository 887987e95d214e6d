// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package core_test

import (
	"errors"
	"testing"

	"github.com/Fantom-foundation/Modular/go/core"
	"github.com/Fantom-foundation/Modular/go/examples"
	"github.com/Fantom-foundation/Modular/go/extension"
	"github.com/Fantom-foundation/Modular/go/interpreter/native"
	"github.com/Fantom-foundation/Modular/go/registry"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
)

var (
	token = examples.TokenAddress
	owner = examples.Owner
	admin = examples.Admin
	user  = examples.User
)

func newSetup(t *testing.T) *examples.Setup {
	t.Helper()
	setup, err := examples.NewSetup(nil)
	if err != nil {
		t.Fatalf("failed to create setup: %v", err)
	}
	return setup
}

func install(t *testing.T, setup *examples.Setup, address tosca.Address, name string, extension native.Contract) {
	t.Helper()
	if err := setup.Deploy(address, name, extension); err != nil {
		t.Fatalf("failed to deploy %v: %v", name, err)
	}
	if _, err := setup.Call(owner, token, core.InstallExtensionCall(address, nil)); err != nil {
		t.Fatalf("failed to install %v: %v", name, err)
	}
}

// newExtension creates an extension with the given config and no functions.
func newExtension(t *testing.T, config extension.Config) *native.Methods {
	t.Helper()
	encoded, err := extension.EncodeConfig(config)
	if err != nil {
		t.Fatalf("failed to encode config: %v", err)
	}
	res := &native.Methods{}
	res.Handle(extension.GetExtensionConfigSignature, func(*native.Frame) (tosca.Data, error) {
		return encoded, nil
	})
	return res
}

func TestNew_RejectsInvalidConfigurations(t *testing.T) {
	tests := map[string]core.Config{
		"duplicate callback": {
			Callbacks: []core.SupportedCallback{
				{Selector: tosca.Selector{1}, Mode: core.Optional},
				{Selector: tosca.Selector{1}, Mode: core.Required},
			},
		},
		"function shadowing a core function": {
			Functions: []core.Function{{Signature: core.OwnerSignature}},
		},
	}
	for name, config := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := core.New("test", config); err == nil {
				t.Errorf("expected configuration to be rejected")
			}
		})
	}
}

func TestCore_ReportsSupportedCallbacks(t *testing.T) {
	setup := newSetup(t)
	receipt, err := setup.Call(user, token, core.GetSupportedCallbackFunctionsCall())
	if err != nil {
		t.Fatalf("failed to query callbacks: %v", err)
	}
	callbacks, err := core.DecodeSupportedCallbacks(receipt.Output)
	if err != nil {
		t.Fatalf("failed to decode callbacks: %v", err)
	}
	want := []core.SupportedCallback{
		{Selector: examples.BeforeMintSelector, Mode: core.Required},
		{Selector: examples.BeforeTransferSelector, Mode: core.Optional},
	}
	if len(want) != len(callbacks) || want[0] != callbacks[0] || want[1] != callbacks[1] {
		t.Errorf("unexpected callbacks, want %v, got %v", want, callbacks)
	}
}

func TestCore_SupportsNativeInterfaces(t *testing.T) {
	setup := newSetup(t)
	tests := map[string]struct {
		id   tosca.Selector
		want bool
	}{
		"erc165":  {core.ERC165InterfaceID, true},
		"core":    {core.InterfaceID, true},
		"token":   {examples.TokenInterfaceID, true},
		"invalid": {tosca.Selector{0xff, 0xff, 0xff, 0xff}, false},
		"unknown": {tosca.Selector{1, 2, 3, 4}, false},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := setup.SupportsInterface(test.id)
			if err != nil {
				t.Fatalf("failed to query interface: %v", err)
			}
			if test.want != got {
				t.Errorf("unexpected support of %v, want %v, got %v", test.id, test.want, got)
			}
		})
	}
}

func TestInstall_RecordsConfigurationAndEmitsEvent(t *testing.T) {
	setup := newSetup(t)
	address := examples.ExtensionAddress(1)
	greeter := examples.NewGreeter()
	if err := setup.Deploy(address, "greeter", greeter); err != nil {
		t.Fatalf("failed to deploy: %v", err)
	}
	receipt, err := setup.Call(owner, token, core.InstallExtensionCall(address, nil))
	if err != nil {
		t.Fatalf("failed to install: %v", err)
	}

	if len(receipt.Logs) != 1 {
		t.Fatalf("expected a single log, got %v", receipt.Logs)
	}
	log := receipt.Logs[0]
	if log.Address != token || log.Topics[0] != core.ExtensionInstalledTopic {
		t.Errorf("unexpected log %v", log)
	}

	receipt, err = setup.Call(user, token, core.GetInstalledExtensionsCall())
	if err != nil {
		t.Fatalf("failed to list extensions: %v", err)
	}
	installed, err := extension.DecodeInstalled(receipt.Output)
	if err != nil {
		t.Fatalf("failed to decode extensions: %v", err)
	}
	if len(installed) != 1 || installed[0].Implementation != address {
		t.Fatalf("unexpected extensions %v", installed)
	}
	if want, got := len(greeter.Config().FallbackFunctions), len(installed[0].Config.FallbackFunctions); want != got {
		t.Errorf("unexpected number of fallback functions, want %d, got %d", want, got)
	}

	reg := registry.New(setup.State, token)
	for _, cur := range greeter.Config().FallbackFunctions {
		binding, found := reg.Selectors.LookupFallback(cur.Selector)
		if !found || binding.Implementation != address || binding.CallType != cur.CallType {
			t.Errorf("unexpected binding of %v: %v", cur.Selector, binding)
		}
	}
	if _, found := reg.Integrity.Fingerprint(address); !found {
		t.Errorf("fingerprint of extension should be recorded")
	}
}

func TestInstall_RequiresOwnerOrInstallerRole(t *testing.T) {
	setup := newSetup(t)
	address := examples.ExtensionAddress(1)
	if err := setup.Deploy(address, "counter", examples.NewCounter()); err != nil {
		t.Fatalf("failed to deploy: %v", err)
	}

	_, err := setup.Call(admin, token, core.InstallExtensionCall(address, nil))
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("unexpected error, want %v, got %v", core.ErrUnauthorized, err)
	}
	if _, err := setup.Call(owner, token, core.GrantRolesCall(admin, core.InstallerRole)); err != nil {
		t.Fatalf("failed to grant role: %v", err)
	}
	if _, err := setup.Call(admin, token, core.InstallExtensionCall(address, nil)); err != nil {
		t.Fatalf("installer should be able to install: %v", err)
	}
	if _, err := setup.Call(user, token, core.UninstallExtensionCall(address, nil)); !errors.Is(err, core.ErrUnauthorized) {
		t.Fatalf("unexpected error, want %v, got %v", core.ErrUnauthorized, err)
	}
	if _, err := setup.Call(admin, token, core.UninstallExtensionCall(address, nil)); err != nil {
		t.Fatalf("installer should be able to uninstall: %v", err)
	}
}

func TestInstall_Failures(t *testing.T) {
	unsupported := tosca.SelectorOf("beforeBurn(address,uint256)")
	tests := map[string]struct {
		setup     func(*testing.T, *examples.Setup)
		extension func(*testing.T) native.Contract
		want      error
	}{
		"already installed": {
			setup: func(t *testing.T, s *examples.Setup) {
				if _, err := s.Call(owner, token, core.InstallExtensionCall(examples.ExtensionAddress(1), nil)); err != nil {
					t.Fatalf("failed to install: %v", err)
				}
			},
			extension: func(*testing.T) native.Contract { return examples.NewCounter() },
			want:      core.ErrExtensionAlreadyInstalled,
		},
		"no extension": {
			extension: func(*testing.T) native.Contract {
				return native.ContractFunc(func(params tosca.Parameters) (tosca.Result, error) {
					return tosca.Result{Success: true, GasLeft: params.Gas}, nil
				})
			},
			want: core.ErrInvalidExtensionConfig,
		},
		"required interface missing": {
			extension: func(*testing.T) native.Contract {
				return examples.NewAdvertiser(examples.AdvertisedInterface)
			},
			want: core.ErrIncompatibleInterface,
		},
		"unsupported callback": {
			extension: func(t *testing.T) native.Contract {
				return newExtension(t, extension.Config{
					CallbackFunctions: []extension.CallbackFunction{{Selector: unsupported}},
				})
			},
			want: core.ErrCallbackNotSupported,
		},
		"callback already installed": {
			setup: func(t *testing.T, s *examples.Setup) {
				install(t, s, examples.ExtensionAddress(2), "mintLimit", examples.NewMintLimit(10))
			},
			extension: func(*testing.T) native.Contract { return examples.NewMintLimit(20) },
			want:      core.ErrCallbackAlreadyInstalled,
		},
		"fallback already installed": {
			setup: func(t *testing.T, s *examples.Setup) {
				install(t, s, examples.ExtensionAddress(2), "greeter.original", examples.NewGreeter())
			},
			extension: func(*testing.T) native.Contract { return examples.NewGreeter() },
			want:      core.ErrFallbackAlreadyInstalled,
		},
		"fallback shadowing core function": {
			extension: func(t *testing.T) native.Contract {
				return newExtension(t, extension.Config{
					FallbackFunctions: []extension.FallbackFunction{{Selector: tosca.SelectorOf(core.OwnerSignature)}},
				})
			},
			want: core.ErrFallbackAlreadyInstalled,
		},
		"fallback shadowing token function": {
			extension: func(t *testing.T) native.Contract {
				return newExtension(t, extension.Config{
					FallbackFunctions: []extension.FallbackFunction{{Selector: tosca.SelectorOf(examples.MintSignature)}},
				})
			},
			want: core.ErrFallbackAlreadyInstalled,
		},
		"install hook failure": {
			extension: func(*testing.T) native.Contract { return examples.NewHooked() },
			want:      examples.ErrHookRejected,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			setup := newSetup(t)
			address := examples.ExtensionAddress(1)
			if err := setup.Deploy(address, "extension", test.extension(t)); err != nil {
				t.Fatalf("failed to deploy: %v", err)
			}
			if test.setup != nil {
				test.setup(t, setup)
			}
			before := setup.State.Current()

			_, err := setup.Call(owner, token, core.InstallExtensionCall(address, examples.RejectedInstallData))
			if !errors.Is(err, test.want) {
				t.Fatalf("unexpected error, want %v, got %v", test.want, err)
			}

			// failed installations leave no trace
			after := setup.State.Current()
			for _, account := range []tosca.Address{token, address} {
				want, got := before[account], after[account]
				if !want.Equal(&got) {
					t.Errorf("account %v modified by failed installation: %v", account, want.Diff("", &got))
				}
			}
		})
	}
}

func TestInstall_HookFailuresWithoutPayloadAreReported(t *testing.T) {
	setup := newSetup(t)
	methods := newExtension(t, extension.Config{RegisterInstallationCallback: true})
	hooked := native.ContractFunc(func(params tosca.Parameters) (tosca.Result, error) {
		if selector, _ := tosca.GetSelector(params.Input); selector == extension.OnInstallSelector {
			return tosca.Result{GasLeft: params.Gas}, nil
		}
		return methods.Run(params)
	})
	address := examples.ExtensionAddress(1)
	if err := setup.Deploy(address, "hooked", hooked); err != nil {
		t.Fatalf("failed to deploy: %v", err)
	}
	_, err := setup.Call(owner, token, core.InstallExtensionCall(address, nil))
	if !errors.Is(err, core.ErrInstallCallbackReverted) {
		t.Errorf("unexpected error, want %v, got %v", core.ErrInstallCallbackReverted, err)
	}
}

func TestInstall_RequiredInterfaceProvidedByOtherExtension(t *testing.T) {
	setup := newSetup(t)
	dependent := examples.ExtensionAddress(2)
	if err := setup.Deploy(dependent, "dependent", examples.NewAdvertiser(examples.AdvertisedInterface)); err != nil {
		t.Fatalf("failed to deploy: %v", err)
	}
	if _, err := setup.Call(owner, token, core.InstallExtensionCall(dependent, nil)); !errors.Is(err, core.ErrIncompatibleInterface) {
		t.Fatalf("unexpected error, want %v, got %v", core.ErrIncompatibleInterface, err)
	}

	install(t, setup, examples.ExtensionAddress(1), "provider", examples.NewAdvertiser(tosca.Selector{}, examples.AdvertisedInterface))
	if _, err := setup.Call(owner, token, core.InstallExtensionCall(dependent, nil)); err != nil {
		t.Fatalf("failed to install dependent extension: %v", err)
	}

	// interfaces implemented by the core itself satisfy requirements too
	install(t, setup, examples.ExtensionAddress(3), "tokenDependent", examples.NewAdvertiser(examples.TokenInterfaceID))
}

func TestInstall_HooksReceiveInstaller(t *testing.T) {
	setup := newSetup(t)
	address := examples.ExtensionAddress(1)
	if err := setup.Deploy(address, "hooked", examples.NewHooked()); err != nil {
		t.Fatalf("failed to deploy: %v", err)
	}
	if _, err := setup.Call(owner, token, core.GrantRolesCall(admin, core.InstallerRole)); err != nil {
		t.Fatalf("failed to grant role: %v", err)
	}
	if _, err := setup.Call(admin, token, core.InstallExtensionCall(address, []byte("data"))); err != nil {
		t.Fatalf("failed to install: %v", err)
	}
	receipt, err := setup.Call(user, token, examples.InstallerCall())
	if err != nil {
		t.Fatalf("failed to query installer: %v", err)
	}
	if got, err := core.DecodeAddress(receipt.Output); err != nil || got != admin {
		t.Errorf("unexpected installer, want %v, got %v (%v)", admin, got, err)
	}

	// failing uninstall hooks prevent the uninstallation
	_, err = setup.Call(owner, token, core.UninstallExtensionCall(address, examples.RejectedInstallData))
	if !errors.Is(err, examples.ErrHookRejected) {
		t.Fatalf("unexpected error, want %v, got %v", examples.ErrHookRejected, err)
	}
	if _, err := setup.Call(user, token, examples.InstallerCall()); err != nil {
		t.Fatalf("extension should still be installed: %v", err)
	}
	if _, err := setup.Call(owner, token, core.UninstallExtensionCall(address, nil)); err != nil {
		t.Fatalf("failed to uninstall: %v", err)
	}
}

func TestInstall_ForwardsValueToHooks(t *testing.T) {
	setup := newSetup(t)
	address := examples.ExtensionAddress(1)
	if err := setup.Deploy(address, "hooked", examples.NewHooked()); err != nil {
		t.Fatalf("failed to deploy: %v", err)
	}
	setup.Fund(owner, tosca.NewValue(100))
	if _, err := setup.Transfer(owner, token, tosca.NewValue(40), core.InstallExtensionCall(address, nil)); err != nil {
		t.Fatalf("failed to install: %v", err)
	}
	if want, got := tosca.NewValue(40), setup.State.GetBalance(address); want != got {
		t.Errorf("unexpected balance of extension, want %v, got %v", want, got)
	}
	if want, got := tosca.NewValue(0), setup.State.GetBalance(token); want != got {
		t.Errorf("unexpected balance of core, want %v, got %v", want, got)
	}
}

func TestUninstall_NotInstalledExtensionsAreRejected(t *testing.T) {
	setup := newSetup(t)
	_, err := setup.Call(owner, token, core.UninstallExtensionCall(examples.ExtensionAddress(1), nil))
	if !errors.Is(err, core.ErrExtensionNotInstalled) {
		t.Errorf("unexpected error, want %v, got %v", core.ErrExtensionNotInstalled, err)
	}
}

func TestUninstall_Failures(t *testing.T) {
	silent := newExtension(t, extension.Config{RegisterInstallationCallback: true})
	tests := map[string]struct {
		extension native.Contract
		caller    tosca.Address
		data      []byte
		want      error
	}{
		"unauthorized caller": {
			extension: examples.NewCounter(),
			caller:    user,
			want:      core.ErrUnauthorized,
		},
		"uninstall hook failure": {
			extension: examples.NewHooked(),
			caller:    owner,
			data:      examples.RejectedInstallData,
			want:      examples.ErrHookRejected,
		},
		"uninstall hook failure without payload": {
			extension: native.ContractFunc(func(params tosca.Parameters) (tosca.Result, error) {
				switch selector, _ := tosca.GetSelector(params.Input); selector {
				case extension.OnInstallSelector:
					return tosca.Result{Success: true, GasLeft: params.Gas}, nil
				case extension.OnUninstallSelector:
					return tosca.Result{GasLeft: params.Gas}, nil
				}
				return silent.Run(params)
			}),
			caller: owner,
			want:   core.ErrUninstallCallbackReverted,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			setup := newSetup(t)
			address := examples.ExtensionAddress(1)
			install(t, setup, address, "extension", test.extension)
			before := setup.State.Current()

			_, err := setup.Call(test.caller, token, core.UninstallExtensionCall(address, test.data))
			if !errors.Is(err, test.want) {
				t.Fatalf("unexpected error, want %v, got %v", test.want, err)
			}

			// failed uninstallations leave no trace
			after := setup.State.Current()
			for _, account := range []tosca.Address{token, address} {
				want, got := before[account], after[account]
				if !want.Equal(&got) {
					t.Errorf("account %v modified by failed uninstallation: %v", account, want.Diff("", &got))
				}
			}
			if !registry.New(setup.State, token).Extensions.Contains(address) {
				t.Errorf("extension should still be installed")
			}
		})
	}
}

func TestUninstall_HookFailuresBubblePayloadUnchanged(t *testing.T) {
	setup := newSetup(t)
	address := examples.ExtensionAddress(1)
	install(t, setup, address, "hooked", examples.NewHooked())

	receipt, err := setup.Call(owner, token, core.UninstallExtensionCall(address, examples.RejectedInstallData))
	if !errors.Is(err, examples.ErrHookRejected) {
		t.Fatalf("unexpected error, want %v, got %v", examples.ErrHookRejected, err)
	}
	if want, got := tosca.Data(examples.ErrHookRejected.RevertData()), receipt.Output; string(want) != string(got) {
		t.Errorf("unexpected revert payload, want %x, got %x", want, got)
	}
}

func TestUninstall_UsesConfigurationRecordedAtInstallation(t *testing.T) {
	setup := newSetup(t)
	first := tosca.SelectorOf("first()")
	second := tosca.SelectorOf("second()")

	configs := []*native.Methods{
		newExtension(t, extension.Config{FallbackFunctions: []extension.FallbackFunction{{Selector: first}}}),
		newExtension(t, extension.Config{FallbackFunctions: []extension.FallbackFunction{{Selector: second}}}),
	}
	current := 0
	changing := native.ContractFunc(func(params tosca.Parameters) (tosca.Result, error) {
		return configs[current].Run(params)
	})

	address := examples.ExtensionAddress(1)
	install(t, setup, address, "changing", changing)
	current = 1
	if _, err := setup.Uninstall(address, nil); err != nil {
		t.Fatalf("failed to uninstall: %v", err)
	}

	reg := registry.New(setup.State, token)
	if _, found := reg.Selectors.LookupFallback(first); found {
		t.Errorf("fallback bound at installation should be removed")
	}
	if reg.Extensions.Contains(address) {
		t.Errorf("extension should no longer be installed")
	}
	if _, found := reg.Integrity.Fingerprint(address); found {
		t.Errorf("fingerprint should be removed")
	}
}

func TestDispatch_ForwardingStrategies(t *testing.T) {
	setup := newSetup(t)
	install(t, setup, examples.ExtensionAddress(1), "counter", examples.NewCounter())
	install(t, setup, examples.ExtensionAddress(2), "reader", examples.NewReader())

	// delegate calls operate on the storage of the core
	for i := 0; i < 2; i++ {
		if _, err := setup.Call(user, token, examples.IncrementCall()); err != nil {
			t.Fatalf("failed to increment: %v", err)
		}
	}
	if want, got := (tosca.Word{31: 2}), setup.State.GetStorage(token, examples.CounterSlot); want != got {
		t.Errorf("unexpected counter in core storage, want %v, got %v", want, got)
	}
	if got := setup.State.GetStorage(examples.ExtensionAddress(1), examples.CounterSlot); got != (tosca.Word{}) {
		t.Errorf("extension storage should not be modified, got %v", got)
	}
	receipt, err := setup.Call(user, token, examples.CountCall())
	if err != nil {
		t.Fatalf("failed to query count: %v", err)
	}
	if count, err := core.DecodeUint256(receipt.Output); err != nil || count.Uint64() != 2 {
		t.Errorf("unexpected count %v, %v", count, err)
	}

	// static calls run read-only
	receipt, err = setup.Call(user, token, examples.DoubleCall(21))
	if err != nil {
		t.Fatalf("failed to double: %v", err)
	}
	if value, err := core.DecodeUint256(receipt.Output); err != nil || value.Uint64() != 42 {
		t.Errorf("unexpected result %v, %v", value, err)
	}
	_, err = setup.Call(user, token, examples.TouchCall())
	var revert *core.RevertError
	if !errors.As(err, &revert) || revert.Kind != nil || len(revert.Payload) != 0 {
		t.Errorf("writes in static calls should fail without payload, got %v", err)
	}
}

func TestDispatch_ForwardsValueOfCalls(t *testing.T) {
	setup := newSetup(t)
	address := examples.ExtensionAddress(1)
	install(t, setup, address, "hooked", examples.NewHooked())
	setup.Fund(user, tosca.NewValue(10))

	if _, err := setup.Transfer(user, token, tosca.NewValue(3), examples.InstallerCall()); err != nil {
		t.Fatalf("failed to call: %v", err)
	}
	if want, got := tosca.NewValue(3), setup.State.GetBalance(address); want != got {
		t.Errorf("unexpected balance of extension, want %v, got %v", want, got)
	}
}

func TestDispatch_AcceptsPlainTransfers(t *testing.T) {
	setup := newSetup(t)
	setup.Fund(user, tosca.NewValue(10))
	if _, err := setup.Transfer(user, token, tosca.NewValue(4), nil); err != nil {
		t.Fatalf("failed to transfer: %v", err)
	}
	if want, got := tosca.NewValue(4), setup.State.GetBalance(token); want != got {
		t.Errorf("unexpected balance, want %v, got %v", want, got)
	}
}

func TestDispatch_UnknownSelectorsAreRejected(t *testing.T) {
	setup := newSetup(t)
	for _, input := range []tosca.Data{{1, 2}, {0xbb, 0xbb, 0xbb, 0xbb}} {
		_, err := setup.Call(user, token, input)
		if !errors.Is(err, core.ErrFallbackNotInstalled) {
			t.Errorf("unexpected error for %x, want %v, got %v", []byte(input), core.ErrFallbackNotInstalled, err)
		}
	}
}

func TestCallbacks_IntegrityIsVerified(t *testing.T) {
	setup := newSetup(t)
	address := examples.ExtensionAddress(1)
	install(t, setup, address, "mintLimit", examples.NewMintLimit(100))
	if _, err := setup.Call(owner, token, examples.MintCall(user, 1)); err != nil {
		t.Fatalf("failed to mint: %v", err)
	}
	if err := setup.Deploy(address, "mintLimit.v2", examples.NewMintLimit(1000)); err != nil {
		t.Fatalf("failed to redeploy: %v", err)
	}
	_, err := setup.Call(owner, token, examples.MintCall(user, 1))
	if !errors.Is(err, core.ErrIntegrityViolation) {
		t.Errorf("unexpected error, want %v, got %v", core.ErrIntegrityViolation, err)
	}

	// reinstalling accepts the new code
	if _, err := setup.Uninstall(address, nil); err != nil {
		t.Fatalf("failed to uninstall: %v", err)
	}
	if _, err := setup.Call(owner, token, core.InstallExtensionCall(address, nil)); err != nil {
		t.Fatalf("failed to reinstall: %v", err)
	}
	if _, err := setup.Call(owner, token, examples.MintCall(user, 1)); err != nil {
		t.Errorf("failed to mint after reinstallation: %v", err)
	}
}

func TestAccess_OwnershipAndRoles(t *testing.T) {
	setup := newSetup(t)

	if _, err := setup.Call(user, token, core.TransferOwnershipCall(user)); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("unexpected error, want %v, got %v", core.ErrUnauthorized, err)
	}
	if _, err := setup.Call(user, token, core.GrantRolesCall(user, examples.MinterRole)); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("unexpected error, want %v, got %v", core.ErrUnauthorized, err)
	}

	roles := uint256.NewInt(0b111)
	if _, err := setup.Call(owner, token, core.GrantRolesCall(admin, roles)); err != nil {
		t.Fatalf("failed to grant roles: %v", err)
	}
	if _, err := setup.Call(owner, token, core.RevokeRolesCall(admin, uint256.NewInt(0b001))); err != nil {
		t.Fatalf("failed to revoke roles: %v", err)
	}
	if _, err := setup.Call(admin, token, core.RenounceRolesCall(uint256.NewInt(0b100))); err != nil {
		t.Fatalf("failed to renounce roles: %v", err)
	}
	receipt, err := setup.Call(user, token, core.RolesOfCall(admin))
	if err != nil {
		t.Fatalf("failed to query roles: %v", err)
	}
	if got, err := core.DecodeUint256(receipt.Output); err != nil || got.Uint64() != 0b010 {
		t.Errorf("unexpected roles %v, %v", got, err)
	}
	receipt, err = setup.Call(user, token, core.HasAllRolesCall(admin, uint256.NewInt(0b011)))
	if err != nil {
		t.Fatalf("failed to query roles: %v", err)
	}
	if got, err := core.DecodeBool(receipt.Output); err != nil || got {
		t.Errorf("admin should not hold all roles, got %v, %v", got, err)
	}

	receipt, err = setup.Call(owner, token, core.TransferOwnershipCall(admin))
	if err != nil {
		t.Fatalf("failed to transfer ownership: %v", err)
	}
	if len(receipt.Logs) != 1 || receipt.Logs[0].Topics[0] != core.OwnershipTransferredTopic {
		t.Errorf("unexpected logs %v", receipt.Logs)
	}
	receipt, err = setup.Call(user, token, core.OwnerCall())
	if err != nil {
		t.Fatalf("failed to query owner: %v", err)
	}
	if got, err := core.DecodeAddress(receipt.Output); err != nil || got != admin {
		t.Errorf("unexpected owner, want %v, got %v (%v)", admin, got, err)
	}
}
