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

// runInit executes 'sigil init': writes a default .sigil/config.yaml in the
// current directory, so every later command has a root to resolve.
func runInit(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing configuration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sigil init [options]

Description:
  Creates .sigil/config.yaml with default scan settings in the current
  directory.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}

	dir, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError("Cannot access working directory", err.Error(), "Check system permissions and try again", err), globals.JSON)
	}

	path := configPath
	if path == "" {
		path = ConfigPath(dir)
	}

	if _, err := os.Stat(path); err == nil && !*force {
		errors.FatalError(errors.NewInputError(
			"Configuration already exists",
			fmt.Sprintf("%s already exists", path),
			"Use --force to overwrite it",
		), globals.JSON)
	}

	cfg := DefaultConfig()
	if err := SaveConfig(cfg, path); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	root, err := resolveRoot(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if err := ensureLayout(root); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	ui.Successf("Created %s", path)
	return 0
}
