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
)

type listRow struct {
	ID     string  `json:"id"`
	Target string  `json:"target"`
	State  string  `json:"state"`
	Verdict string `json:"verdict,omitempty"`
	Score  float64 `json:"score,omitempty"`
}

// runList executes 'sigil list': enumerate quarantine items with id,
// target, verdict, score, and state.
func runList(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sigil list [--json]\n\nEnumerate quarantine items with id, target, verdict, score, and state.\n")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := loadConfigOrDefault(configPath)
	root, err := resolveRoot(cfg)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	mgr, _, err := newManager(root, cfg, false, nil, globals)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	items, err := mgr.List()
	if err != nil {
		errors.FatalError(errors.NewInternalError("Failed to list quarantine items", err.Error(), "This is a bug; please report it", err), globals.JSON)
	}

	if globals.JSON {
		rows := make([]listRow, 0, len(items))
		for _, it := range items {
			rows = append(rows, toRow(it))
		}
		_ = json.NewEncoder(os.Stdout).Encode(rows)
		return 0
	}

	if len(items) == 0 {
		ui.Info("No quarantine items.")
		return 0
	}

	ui.Header("Quarantine Items")
	for _, it := range items {
		row := toRow(it)
		vc := ui.VerdictColor(row.Verdict)
		fmt.Printf("%-32s %-10s %-40s %s\n", row.ID, row.State, row.Target, vc.Sprintf("%s (%.1f)", row.Verdict, row.Score))
	}
	return 0
}

func toRow(it *model.QuarantineItem) listRow {
	row := listRow{ID: it.ID, Target: it.Path, State: string(it.State)}
	if it.Result != nil {
		row.Target = it.Result.Target
		row.Verdict = string(it.Result.Verdict)
		row.Score = it.Result.Score
	}
	return row
}
