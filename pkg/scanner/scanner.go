// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scanner applies the signature store to the files a walk produced:
// a fixed-size worker pool evaluates every applicable signature against
// each file, pushing findings to a shared, mutex-protected collector. The
// final ordering is imposed once, after collection, so worker scheduling
// never affects the result.
package scanner

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/signatures"
	"github.com/kraklabs/sigil/pkg/walker"
)

// ProgressCallback reports scan progress; current and total are file counts.
type ProgressCallback func(current, total int64, phase string)

// Options bounds and tunes a single scan.
type Options struct {
	Workers    int
	WallClock  time.Duration
	SnippetCap int
	OnProgress ProgressCallback

	// Root is the staged tree's root path, used only for the Provenance
	// checks that need raw filesystem access beyond the walked file set
	// (e.g. a shallow git history marker living under .git, which the
	// default ignore patterns exclude from Files). Empty skips those checks.
	Root string
	// OversizeFiles carries the relative paths walker.Walk skipped for
	// exceeding the per-file byte cap, so the skip is surfaced as a
	// Provenance finding instead of only a log line.
	OversizeFiles []string
}

// Result is the raw output of a scan, before scoring: an ordered findings
// list and whether the wall-clock cap cut the scan short.
type Result struct {
	Findings  []model.Finding
	Truncated bool
}

// disabledRules tracks signature ids disabled for the remainder of a single
// scan after a pattern runtime panic; scoped per-Scan call, never shared
// across scans.
type disabledRules struct {
	mu   sync.Mutex
	ids  map[string]bool
}

func newDisabledRules() *disabledRules {
	return &disabledRules{ids: make(map[string]bool)}
}

func (d *disabledRules) disable(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids[id] = true
}

func (d *disabledRules) isDisabled(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ids[id]
}

// Scan evaluates store's signatures against files using a fixed-size worker
// pool. Once the wall-clock deadline has passed, workers skip every file they
// have not yet started, Result.Truncated is set, and the findings collected so
// far are still returned. Scan takes no cancellation signal: the wall-clock
// deadline is the only thing that cuts it short.
func Scan(files []walker.File, store *signatures.Store, opts Options, logger *slog.Logger) *Result {
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	snippetCap := opts.SnippetCap
	if snippetCap <= 0 {
		snippetCap = 240
	}

	var deadline time.Time
	if opts.WallClock > 0 {
		deadline = time.Now().Add(opts.WallClock)
	}

	disabled := newDisabledRules()

	jobs := make(chan int, len(files))
	type fileFindings struct {
		findings []model.Finding
	}
	resultsChan := make(chan fileFindings, len(files))

	var truncated int32
	var progressCount int64
	total := int64(len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if !deadline.IsZero() && time.Now().After(deadline) {
					atomic.StoreInt32(&truncated, 1)
					continue
				}
				f := files[i]
				findings := scanFile(f, store, disabled, snippetCap, logger)
				resultsChan <- fileFindings{findings: findings}

				current := atomic.AddInt64(&progressCount, 1)
				if opts.OnProgress != nil {
					opts.OnProgress(current, total, "scanning")
				}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var all []model.Finding
	for fr := range resultsChan {
		all = append(all, fr.findings...)
	}

	all = append(all, provenanceFindings(files, opts.Root, opts.OversizeFiles)...)

	SortFindings(all)

	return &Result{
		Findings:  all,
		Truncated: atomic.LoadInt32(&truncated) == 1,
	}
}

// scanFile evaluates every applicable, non-disabled signature against a
// single file. A regex runtime panic (unreachable for patterns that passed
// Store validation, but guarded against regardless) is caught, logged, and
// the offending rule disabled for the rest of the scan rather than aborting
// it.
func scanFile(f walker.File, store *signatures.Store, disabled *disabledRules, snippetCap int, logger *slog.Logger) []model.Finding {
	var findings []model.Finding

	for _, phase := range signatures.Phases {
		if phase == signatures.PhaseProvenance {
			continue // handled once per scan in provenanceFindings
		}
		if !phaseApplies(phase, f.RelPath, f.Binary) {
			continue
		}
		for _, sig := range store.ForPhase(phase) {
			if disabled.isDisabled(sig.ID) {
				continue
			}
			if !sig.AcceptsLanguage(f.LanguageHint) {
				continue
			}
			findings = append(findings, matchSignature(f, sig, disabled, snippetCap, logger)...)
		}
	}
	return findings
}

func matchSignature(f walker.File, sig *signatures.Signature, disabled *disabledRules, snippetCap int, logger *slog.Logger) (findings []model.Finding) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("scanner.rule_panic", "rule", sig.ID, "file", f.RelPath, "panic", r)
			disabled.disable(sig.ID)
			findings = nil
		}
	}()

	re := sig.Compiled()
	if re == nil {
		return nil
	}
	locs := re.FindAllIndex(f.Bytes, -1)
	if locs == nil {
		return nil
	}

	out := make([]model.Finding, 0, len(locs))
	for _, loc := range locs {
		line := lineNumber(f.Bytes, loc[0])
		snippet := extractSnippet(f.Bytes, loc[0], loc[1], snippetCap)
		out = append(out, model.Finding{
			Phase:    sig.Phase,
			RuleID:   sig.ID,
			Severity: sig.Severity,
			Weight:   sig.Weight,
			File:     f.RelPath,
			Line:     line,
			Snippet:  snippet,
		})
	}
	return out
}

// lineNumber returns the 1-based line on which byte offset pos falls.
func lineNumber(content []byte, pos int) int {
	return bytes.Count(content[:pos], []byte("\n")) + 1
}

// extractSnippet returns up to maxLen bytes of the line holding [start,end),
// taken from a window centered on the match when the line is longer, with
// control characters stripped, matching the finding's display contract.
func extractSnippet(content []byte, start, end, maxLen int) string {
	lineStart := bytes.LastIndexByte(content[:start], '\n') + 1
	lineEnd := bytes.IndexByte(content[end:], '\n')
	if lineEnd == -1 {
		lineEnd = len(content)
	} else {
		lineEnd += end
	}
	if lineEnd-lineStart > maxLen {
		ws := (start+end)/2 - maxLen/2
		if ws < lineStart {
			ws = lineStart
		}
		if ws > lineEnd-maxLen {
			ws = lineEnd - maxLen
		}
		lineStart, lineEnd = ws, ws+maxLen
	}
	line := string(content[lineStart:lineEnd])
	line = stripControl(line)
	line = strings.TrimSpace(line)
	if len(line) > maxLen {
		line = line[:maxLen]
	}
	return line
}

func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// provenanceFindings computes the filesystem-fact rules of the Provenance
// phase once per scan, at most one finding per rule, independent of the
// per-file worker pool. root and oversizeFiles cover the two facts that
// can't be derived from the walked file set alone: a shallow git history
// (which lives under .git, excluded from files by the default ignore
// patterns) and files the walker skipped outright for exceeding the
// per-file byte cap.
func provenanceFindings(files []walker.File, root string, oversizeFiles []string) []model.Finding {
	var (
		binaryInSource bool
		hiddenFile     bool
		suspiciousName bool
		doubleExt      bool
	)
	var sample map[string]string = map[string]string{}

	for _, f := range files {
		if f.Binary && !binaryInSource {
			binaryInSource = true
			sample["pr-binary-in-source-tree"] = f.RelPath
		}
		if isHiddenFile(f.RelPath) && !hiddenFile {
			hiddenFile = true
			sample["pr-hidden-file"] = f.RelPath
		}
		if isSuspiciousFilename(f.RelPath) && !suspiciousName {
			suspiciousName = true
			sample["pr-suspicious-filename"] = f.RelPath
		}
		if hasDoubleExtension(f.RelPath) && !doubleExt {
			doubleExt = true
			sample["pr-double-extension"] = f.RelPath
		}
	}

	var findings []model.Finding
	emit := func(ruleID string, ok bool, severity signatures.Severity, weight float64, desc string) {
		if !ok {
			return
		}
		findings = append(findings, model.Finding{
			Phase:    signatures.PhaseProvenance,
			RuleID:   ruleID,
			Severity: severity,
			Weight:   weight,
			File:     sample[ruleID],
			Line:     0,
			Snippet:  desc,
		})
	}
	emit("pr-binary-in-source-tree", binaryInSource, signatures.SeverityMedium, 3, "binary executable present in a source-only tree")
	emit("pr-hidden-file", hiddenFile, signatures.SeverityLow, 1, "hidden file outside the conventional allowlist")
	emit("pr-suspicious-filename", suspiciousName, signatures.SeverityMedium, 3, "filename impersonates a common system or VCS file")
	emit("pr-double-extension", doubleExt, signatures.SeverityMedium, 3, "filename carries a double extension disguising an executable")

	if len(oversizeFiles) > 0 {
		findings = append(findings, model.Finding{
			Phase:    signatures.PhaseProvenance,
			RuleID:   "pr-oversize-file",
			Severity: signatures.SeverityLow,
			Weight:   1,
			File:     oversizeFiles[0],
			Line:     0,
			Snippet:  "file exceeded the per-file byte cap and was skipped unscanned",
		})
	}

	if root != "" && shallowHistory(root) {
		findings = append(findings, model.Finding{
			Phase:    signatures.PhaseProvenance,
			RuleID:   "pr-shallow-history",
			Severity: signatures.SeverityLow,
			Weight:   2,
			File:     ".git/shallow",
			Line:     0,
			Snippet:  "repository has a shallow or single-commit history",
		})
	}

	return findings
}

// shallowHistory reports whether root's .git directory carries the marker
// git itself writes for a shallow clone (git clone --depth). This is a
// filesystem check only; no git command is ever invoked.
func shallowHistory(root string) bool {
	_, err := os.Stat(filepath.Join(root, ".git", "shallow"))
	return err == nil
}
