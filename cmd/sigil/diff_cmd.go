// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/sigil/internal/errors"
	"github.com/kraklabs/sigil/internal/ui"
	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/report"
)

// findingKey identifies a finding independent of its position in either
// report's findings slice, for set comparison.
func findingKey(f model.Finding) string {
	return fmt.Sprintf("%s|%s|%s|%d", f.Phase, f.RuleID, f.File, f.Line)
}

type diffResult struct {
	New       []model.Finding `json:"new"`
	Resolved  []model.Finding `json:"resolved"`
	Unchanged []model.Finding `json:"unchanged"`
}

// runDiff executes 'sigil diff <baseline> <current>': compares two JSON
// scan reports and reports new, resolved, and unchanged findings.
func runDiff(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sigil diff <baseline.json> <current.json>\n\nCompares two JSON scan reports, printing new, resolved, and unchanged findings.\n")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 2 {
		errors.FatalError(errors.NewInputError(
			"Missing arguments",
			"diff requires two JSON report paths: <baseline> <current>",
			"Run 'sigil diff <baseline.json> <current.json>'",
		), globals.JSON)
	}

	baseline, err := readReport(fs.Arg(0))
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	current, err := readReport(fs.Arg(1))
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	d := classifyFindings(baseline, current)

	if globals.JSON {
		_ = json.NewEncoder(os.Stdout).Encode(d)
		return exitForDiff(d)
	}

	printFindingGroup("New", d.New)
	printFindingGroup("Resolved", d.Resolved)
	printFindingGroup("Unchanged", d.Unchanged)
	return exitForDiff(d)
}

// classifyFindings splits the findings of two reports into new (only in
// current), resolved (only in baseline), and unchanged (in both), keyed by
// findingKey.
func classifyFindings(baseline, current *model.ScanResult) diffResult {
	baseSet := map[string]model.Finding{}
	for _, f := range baseline.Findings {
		baseSet[findingKey(f)] = f
	}
	curSet := map[string]model.Finding{}
	for _, f := range current.Findings {
		curSet[findingKey(f)] = f
	}

	var d diffResult
	for k, f := range curSet {
		if _, ok := baseSet[k]; ok {
			d.Unchanged = append(d.Unchanged, f)
		} else {
			d.New = append(d.New, f)
		}
	}
	for k, f := range baseSet {
		if _, ok := curSet[k]; !ok {
			d.Resolved = append(d.Resolved, f)
		}
	}
	return d
}

func exitForDiff(d diffResult) int {
	if len(d.New) > 0 {
		return 1
	}
	return 0
}

func printFindingGroup(label string, findings []model.Finding) {
	ui.SubHeader(fmt.Sprintf("%s (%d)", label, len(findings)))
	for _, f := range findings {
		fmt.Printf("  [%s] %s %s:%d\n", f.Severity, f.RuleID, f.File, f.Line)
	}
}

func readReport(path string) (*model.ScanResult, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is an operator-supplied CLI argument
	if err != nil {
		return nil, errors.NewInputError(
			"Cannot read report file",
			fmt.Sprintf("%s does not exist or is not accessible", path),
			"Check the path and try again",
		)
	}
	defer f.Close()
	result, err := report.ReadJSON(f)
	if err != nil {
		return nil, errors.NewInputError(
			"Invalid report file",
			fmt.Sprintf("%s is not a valid JSON scan report", path),
			"Use a report produced by 'sigil scan --format json'",
		)
	}
	return result, nil
}
