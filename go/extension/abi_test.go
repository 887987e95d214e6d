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
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/holiman/uint256"
)

func TestEncodeConfig_ProducesAbiLayout(t *testing.T) {
	config := Config{
		RegisterInstallationCallback: true,
		RequiredInterface:            tosca.Selector{0x12, 0x34, 0x56, 0x78},
	}
	data, err := EncodeConfig(config)
	if err != nil {
		t.Fatalf("failed to encode config: %v", err)
	}

	word := func(value ...byte) []byte {
		res := make([]byte, 32)
		copy(res[32-len(value):], value)
		return res
	}
	want := bytes.Join([][]byte{
		word(0x20), // offset of the tuple
		word(1),    // registerInstallationCallback
		append([]byte{0x12, 0x34, 0x56, 0x78}, make([]byte, 28)...),
		word(0xa0), // offset of supportedInterfaces
		word(0xc0), // offset of callbackFunctions
		word(0xe0), // offset of fallbackFunctions
		word(0), word(0), word(0),
	}, nil)
	if !bytes.Equal(want, data) {
		t.Errorf("unexpected encoding\nwant %x\ngot  %x", want, data)
	}
}

func TestDecodeConfig_RestoresEncodedConfig(t *testing.T) {
	config := Config{
		RegisterInstallationCallback: true,
		RequiredInterface:            tosca.SelectorOf("a()"),
		SupportedInterfaces:          []tosca.Selector{{1, 2, 3, 4}, {5, 6, 7, 8}},
		CallbackFunctions: []CallbackFunction{
			{Selector: tosca.SelectorOf("beforeMint(address,uint256)"), CallType: Call},
			{Selector: tosca.SelectorOf("beforeTransfer(address,address,uint256)"), CallType: StaticCall},
		},
		FallbackFunctions: []FallbackFunction{
			{Selector: tosca.SelectorOf("greet()"), CallType: Call, PermissionBits: uint256.NewInt(1)},
			{Selector: tosca.SelectorOf("count()"), CallType: DelegateCall, PermissionBits: new(uint256.Int).Lsh(uint256.NewInt(1), 255)},
		},
	}

	data, err := EncodeConfig(config)
	if err != nil {
		t.Fatalf("failed to encode config: %v", err)
	}
	restored, err := DecodeConfig(data)
	if err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if !reflect.DeepEqual(config, restored) {
		t.Errorf("unexpected config\nwant %+v\ngot  %+v", config, restored)
	}
}

func TestEncodeConfig_MissingPermissionBitsAreZero(t *testing.T) {
	data, err := EncodeConfig(Config{FallbackFunctions: []FallbackFunction{{Selector: tosca.Selector{1}}}})
	if err != nil {
		t.Fatalf("failed to encode config: %v", err)
	}
	restored, err := DecodeConfig(data)
	if err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if bits := restored.FallbackFunctions[0].PermissionBits; bits == nil || !bits.IsZero() {
		t.Errorf("unexpected permission bits: %v", bits)
	}
}

func TestDecodeConfig_RejectsInvalidInput(t *testing.T) {
	duplicate, err := EncodeConfig(Config{
		CallbackFunctions: []CallbackFunction{{Selector: tosca.Selector{1}}, {Selector: tosca.Selector{1}}},
	})
	if err != nil {
		t.Fatalf("failed to encode config: %v", err)
	}
	invalidCallType, err := EncodeConfig(Config{
		FallbackFunctions: []FallbackFunction{{Selector: tosca.Selector{1}, CallType: 7}},
	})
	if err != nil {
		t.Fatalf("failed to encode config: %v", err)
	}

	tests := map[string]struct {
		data tosca.Data
		err  error
	}{
		"empty":           {nil, ErrInvalidEncoding},
		"truncated":       {duplicate[:64], ErrInvalidEncoding},
		"duplicate":       {duplicate, ErrDuplicateSelector},
		"invalidCallType": {invalidCallType, ErrInvalidCallType},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeConfig(test.data)
			if !errors.Is(err, test.err) {
				t.Errorf("unexpected error, want %v, got %v", test.err, err)
			}
		})
	}
}

func TestLifecycleCalls_EncodeSenderAndData(t *testing.T) {
	sender := tosca.Address{1, 2, 3}
	data := tosca.Data("init")

	tests := map[string]struct {
		input    tosca.Data
		selector tosca.Selector
	}{
		"install":   {EncodeOnInstall(sender, data), OnInstallSelector},
		"uninstall": {EncodeOnUninstall(sender, data), OnUninstallSelector},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			selector, ok := tosca.GetSelector(test.input)
			if !ok || selector != test.selector {
				t.Fatalf("unexpected selector, want %v, got %v", test.selector, selector)
			}
			gotSender, gotData, err := DecodeLifecycleCall(test.input[4:])
			if err != nil {
				t.Fatalf("failed to decode call: %v", err)
			}
			if sender != gotSender || !bytes.Equal(data, gotData) {
				t.Errorf("unexpected arguments, want %v/%q, got %v/%q", sender, data, gotSender, gotData)
			}
		})
	}

	if _, _, err := DecodeLifecycleCall(tosca.Data{1, 2}); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("unexpected error, want %v, got %v", ErrInvalidEncoding, err)
	}
}

func TestDecodeInstalled_RestoresEncodedList(t *testing.T) {
	installed := []Installed{
		{
			Implementation: tosca.Address{1},
			Config: Config{
				SupportedInterfaces: []tosca.Selector{{0x12, 0x34, 0x56, 0x78}},
			},
		},
		{
			Implementation: tosca.Address{2},
			Config: Config{
				RegisterInstallationCallback: true,
				FallbackFunctions: []FallbackFunction{
					{Selector: tosca.Selector{0xbb, 0xbb, 0xbb, 0xbb}, CallType: DelegateCall, PermissionBits: uint256.NewInt(1)},
				},
			},
		},
	}
	data, err := EncodeInstalled(installed)
	if err != nil {
		t.Fatalf("failed to encode list: %v", err)
	}
	got, err := DecodeInstalled(data)
	if err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if want, got := len(installed), len(got); want != got {
		t.Fatalf("unexpected number of entries, want %d, got %d", want, got)
	}
	for i := range installed {
		if want, got := installed[i].Implementation, got[i].Implementation; want != got {
			t.Errorf("unexpected implementation, want %v, got %v", want, got)
		}
		want, _ := EncodeConfig(installed[i].Config)
		have, _ := EncodeConfig(got[i].Config)
		if !bytes.Equal(want, have) {
			t.Errorf("unexpected config of entry %d", i)
		}
	}
}

func TestDecodeInstalled_EmptyList(t *testing.T) {
	data, err := EncodeInstalled(nil)
	if err != nil {
		t.Fatalf("failed to encode list: %v", err)
	}
	got, err := DecodeInstalled(data)
	if err != nil || len(got) != 0 {
		t.Errorf("unexpected result %v, %v", got, err)
	}
}
