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

// runFetch executes 'sigil fetch <url>': stage an arbitrary URL payload
// (auto-extracting recognized archives), then scan it.
func runFetch(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	format := fs.String("format", "text", "Output format: text, json, sarif")
	noCache := fs.Bool("no-cache", false, "Bypass the content-addressed scan cache")
	failOnFindings := fs.Bool("fail-on-findings", false, "Raise LowRisk to a nonzero exit code")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sigil fetch <url> [options]

Description:
  Downloads an arbitrary URL payload into quarantine, auto-extracting it if
  it is a recognized archive (tar.gz, zip), then scans it.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n  sigil fetch https://example.com/release.tar.gz\n\n")
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		errors.FatalError(errors.NewInputError(
			"Missing URL argument",
			"fetch requires a URL",
			"Run 'sigil fetch <url>'",
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

	item, err := mgr.StageURL(context.Background(), url)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	result, err := mgr.Scan(context.Background(), item, model.TargetURL, url)
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
