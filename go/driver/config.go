// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"

	"github.com/Fantom-foundation/Modular/go/extension"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

var ConfigCmd = cli.Command{
	Name:  "config",
	Usage: "Converts extension configurations between YAML and ABI encoding",
	Subcommands: []*cli.Command{
		{
			Action:    doConfigEncode,
			Name:      "encode",
			Usage:     "ABI encodes the configuration described by the given YAML file",
			ArgsUsage: "<file.yaml>",
		},
		{
			Action:    doConfigDecode,
			Name:      "decode",
			Usage:     "Prints the YAML description of an ABI encoded configuration",
			ArgsUsage: "<hex>",
		},
	},
}

func doConfigEncode(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one configuration file")
	}
	file, err := os.Open(context.Args().First())
	if err != nil {
		return err
	}
	defer file.Close()

	config, err := extension.LoadConfig(file)
	if err != nil {
		return err
	}
	encoded, err := extension.EncodeConfig(config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	fmt.Fprintln(context.App.Writer, hexutil.Encode(encoded))
	return nil
}

func doConfigDecode(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one hex encoded configuration")
	}
	data, err := hexutil.Decode(context.Args().First())
	if err != nil {
		return fmt.Errorf("invalid hex input: %w", err)
	}
	config, err := extension.DecodeConfig(data)
	if err != nil {
		return err
	}
	return extension.WriteConfig(context.App.Writer, config)
}
