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
	"strings"

	"github.com/Fantom-foundation/Modular/go/tosca"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/urfave/cli/v2"
)

var SelectorCmd = cli.Command{
	Action:    doSelector,
	Name:      "selector",
	Usage:     "Computes the selectors of function signatures and their interface id",
	ArgsUsage: "<signature>...",
}

func doSelector(context *cli.Context) error {
	signatures := context.Args().Slice()
	if len(signatures) == 0 {
		return fmt.Errorf("no function signature given")
	}

	selectors := make([]tosca.Selector, 0, len(signatures))
	for _, signature := range signatures {
		if err := checkSignature(signature); err != nil {
			return err
		}
		selector := tosca.SelectorOf(signature)
		selectors = append(selectors, selector)
		fmt.Fprintf(context.App.Writer, "%v %s\n", selector, signature)
	}
	fmt.Fprintf(context.App.Writer, "%v interface\n", tosca.InterfaceID(selectors...))
	return nil
}

// checkSignature verifies that the given text is a canonical function
// signature. The parser panics on input without a parameter list, so the
// shape is checked first.
func checkSignature(signature string) error {
	if strings.Index(signature, "(") <= 0 || !strings.HasSuffix(signature, ")") {
		return fmt.Errorf("invalid function signature %q: expected name(types)", signature)
	}
	if _, err := abi.ParseSelector(signature); err != nil {
		return fmt.Errorf("invalid function signature %q: %w", signature, err)
	}
	return nil
}
