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
	"io"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a configuration from its YAML description. Selectors and
// interface ids may be given in hex or as function signatures, e.g.
//
//	requiredInterface: 0x01ffc9a7
//	supportedInterfaces: [0x12345678]
//	callbackFunctions:
//	  - selector: beforeMint(address,uint256)
//	    callType: call
//	fallbackFunctions:
//	  - selector: greet()
//	    callType: staticcall
//	    permissionBits: 0x1
func LoadConfig(reader io.Reader) (Config, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var res Config
	if err := decoder.Decode(&res); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("failed to parse extension config: %w", err)
	}
	if err := res.Validate(); err != nil {
		return Config{}, err
	}
	return res, nil
}

// WriteConfig writes the YAML description of the given configuration.
func WriteConfig(writer io.Writer, config Config) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(config); err != nil {
		return err
	}
	return encoder.Close()
}
