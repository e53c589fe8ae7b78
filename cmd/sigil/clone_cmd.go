// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/sigil/internal/errors"
	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/report"
	"github.com/kraklabs/sigil/pkg/scorer"
)

// runClone executes 'sigil clone <url>': clone a git repository into
// quarantine via the configured GitFetcher, then scan it.
func runClone(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("clone", flag.ExitOnError)
	format := fs.String("format", "text", "Output format: text, json, sarif")
	noCache := fs.Bool("no-cache", false, "Bypass the content-addressed scan cache")
	failOnFindings := fs.Bool("fail-on-findings", false, "Raise LowRisk to a nonzero exit code")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sigil clone <url> [options]

Description:
  Clones a git repository into the quarantine area without executing any
  hook or script it carries, then scans it.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n  sigil clone https://github.com/example/pkg\n\n")
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		errors.FatalError(errors.NewInputError(
			"Missing URL argument",
			"clone requires a git repository URL",
			"Run 'sigil clone <url>'",
		), globals.JSON)
	}
	url := fs.Arg(0)

	cfg := loadConfigOrDefault(configPath)
	if *failOnFindings {
		cfg.Scan.FailOnFindings = true
	}

	root, err := resolveRoot(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	mgr, _, err := newManager(root, cfg, *noCache, newProgressReporter(globals), globals)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	item, err := mgr.StageGit(context.Background(), url)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	result, err := mgr.Scan(context.Background(), item, model.TargetGit, url)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	fmtName := report.Format(*format)
	if err := report.Write(os.Stdout, result, fmtName); err != nil {
		errors.FatalError(errors.NewInternalError("Failed to write report", err.Error(), "This is a bug; please report it", err), globals.JSON)
	}
	if fmtName != report.FormatJSON {
		fmt.Printf("Quarantine ID: %s\n", item.ID)
	}

	return scorer.ExitCode(result.Verdict, cfg.Scan.FailOnFindings)
}
