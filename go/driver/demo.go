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
	"io"

	"github.com/Fantom-foundation/Modular/go/core"
	cliUtils "github.com/Fantom-foundation/Modular/go/driver/cli"
	"github.com/Fantom-foundation/Modular/go/examples"
	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var DemoCmd = cli.Command{
	Action: doDemo,
	Name:   "demo",
	Usage:  "Runs the example scenarios on an in-memory chain",
	Flags: []cli.Flag{
		cliUtils.FilterFlag.GetFlag(),
		cliUtils.VerboseFlag.GetFlag(),
	},
}

func doDemo(context *cli.Context) error {
	filter, err := cliUtils.FilterFlag.Fetch(context)
	if err != nil {
		return err
	}
	logger, err := cliUtils.VerboseFlag.Logger(context)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	out := context.App.Writer
	failed := 0
	for _, scenario := range examples.Scenarios {
		if !filter.MatchString(scenario.Name) {
			continue
		}
		fmt.Fprintf(out, "=== %s\n", scenario.Name)
		if err := runScenario(out, scenario, logger); err != nil {
			fmt.Fprintf(out, "--- FAIL: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(out, "--- PASS\n")
	}
	if failed > 0 {
		return fmt.Errorf("%d scenario(s) failed", failed)
	}
	return nil
}

func runScenario(out io.Writer, scenario examples.Scenario, logger *zap.Logger) error {
	setup, err := examples.NewSetup(logger)
	if err != nil {
		return err
	}
	setup.OnReceipt = func(transaction tosca.Transaction, receipt tosca.Receipt) {
		printReceipt(out, transaction, receipt)
	}
	return scenario.Run(setup)
}

func printReceipt(out io.Writer, transaction tosca.Transaction, receipt tosca.Receipt) {
	status := "ok"
	if !receipt.Success {
		status = "reverted"
	}
	selector, _ := tosca.GetSelector(transaction.Input)
	fmt.Fprintf(out, "    %v -> %v %v: %s, gas %s\n",
		transaction.Sender, *transaction.Recipient, selector, status,
		unitconv.FormatPrefix(float64(receipt.GasUsed), unitconv.SI, 1),
	)
	for _, log := range receipt.Logs {
		if description, ok := core.DescribeLog(log); ok {
			fmt.Fprintf(out, "      %s\n", description)
		}
	}
}
