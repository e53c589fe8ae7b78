// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/sigil/internal/errors"
	"github.com/kraklabs/sigil/internal/ui"
)

// runApprove executes 'sigil approve <id>': move a Pending item to Approved.
func runApprove(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sigil approve <id>\n\nMoves a Pending quarantine item to the Approved area.\n")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		errors.FatalError(errors.NewInputError(
			"Missing id argument",
			"approve requires a quarantine id",
			"Run 'sigil list' to find the id, then 'sigil approve <id>'",
		), globals.JSON)
	}
	id := fs.Arg(0)

	cfg := loadConfigOrDefault(configPath)
	root, err := resolveRoot(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	mgr, _, err := newManager(root, cfg, false, nil, globals)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if err := mgr.Approve(id); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	ui.Successf("Approved %s", id)
	return 0
}
