// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/sigil/pkg/scanner"
)

// newProgressReporter renders a single progress bar for a scan, suppressed
// under --quiet/--json exactly as cmd/cie/index.go suppresses its own bars.
func newProgressReporter(globals GlobalFlags) scanner.ProgressCallback {
	if globals.Quiet {
		return nil
	}

	var bar *progressbar.ProgressBar
	return func(current, total int64, phase string) {
		if bar == nil {
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetDescription(phase),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionShowCount(),
			)
		}
		_ = bar.Set64(current)
	}
}
