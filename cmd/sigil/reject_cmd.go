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

// runReject executes 'sigil reject <id>': delete a Pending item's staged
// tree, retaining its report as an audit trail.
func runReject(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("reject", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sigil reject <id>\n\nDeletes a Pending quarantine item's staged tree. The report is kept.\n")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		errors.FatalError(errors.NewInputError(
			"Missing id argument",
			"reject requires a quarantine id",
			"Run 'sigil list' to find the id, then 'sigil reject <id>'",
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

	if err := mgr.Reject(id); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	ui.Successf("Rejected %s", id)
	return 0
}
