// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/sigil/internal/errors"
	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/report"
	"github.com/kraklabs/sigil/pkg/scorer"
)

// runPackage executes 'sigil pip <name[@version]>' and 'sigil npm
// <name[@version]>': download a registry package into quarantine, then scan
// it. manager is "pip" or "npm".
func runPackage(args []string, configPath string, globals GlobalFlags, manager string) int {
	fs := flag.NewFlagSet(manager, flag.ExitOnError)
	format := fs.String("format", "text", "Output format: text, json, sarif")
	noCache := fs.Bool("no-cache", false, "Bypass the content-addressed scan cache")
	failOnFindings := fs.Bool("fail-on-findings", false, "Raise LowRisk to a nonzero exit code")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sigil %s <name[@version]> [options]

Description:
  Downloads a package from the public %s registry into quarantine without
  running any install-time hook, then scans it.

Options:
`, manager, registryName(manager))
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n  sigil %s left-pad\n  sigil %s left-pad@1.3.0\n\n", manager, manager)
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		errors.FatalError(errors.NewInputError(
			"Missing package argument",
			fmt.Sprintf("%s requires a package name, optionally suffixed with @version", manager),
			fmt.Sprintf("Run 'sigil %s <name[@version]>'", manager),
		), globals.JSON)
	}
	name, version := splitNameVersion(fs.Arg(0))

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

	item, err := mgr.StagePackage(context.Background(), manager, name, version)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	targetType := model.TargetPip
	if manager == "npm" {
		targetType = model.TargetNpm
	}

	result, err := mgr.Scan(context.Background(), item, targetType, fs.Arg(0))
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

func registryName(manager string) string {
	if manager == "npm" {
		return "npm"
	}
	return "PyPI"
}

// splitNameVersion splits "name@version" into its parts; a bare name
// returns an empty version, which the package fetcher resolves to latest.
func splitNameVersion(spec string) (name, version string) {
	if i := strings.LastIndex(spec, "@"); i > 0 {
		return spec[:i], spec[i+1:]
	}
	return spec, ""
}
