// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cliUtils

import (
	"regexp"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

type filterFlagType struct {
	flag cli.StringFlag
}

var FilterFlag = filterFlagType{flag: cli.StringFlag{
	Name:    "filter",
	Aliases: []string{"f"},
	Usage:   "run only scenarios which name matches the given regex",
	Value:   "",
},
}

func (f *filterFlagType) GetFlag() cli.Flag {
	return &f.flag
}

func (f *filterFlagType) Fetch(context *cli.Context) (*regexp.Regexp, error) {
	return regexp.Compile(context.String(f.flag.Name))
}

type verboseFlagType struct {
	flag cli.BoolFlag
}

var VerboseFlag = verboseFlagType{
	cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log the operations of the cores at debug level",
	},
}

func (f *verboseFlagType) GetFlag() cli.Flag {
	return &f.flag
}

func (f *verboseFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.flag.Name)
}

// Logger creates a development logger if verbose logging was requested and
// a production logger otherwise.
func (f *verboseFlagType) Logger(context *cli.Context) (*zap.Logger, error) {
	if f.Fetch(context) {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
