// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report encodes a ScanResult into the three output formats the
// command surface supports: a human-readable text report, a machine
// readable JSON document, and SARIF 2.1.0 for ingestion by code-scanning
// tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kraklabs/sigil/internal/ui"
	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/scorer"
	"github.com/kraklabs/sigil/pkg/signatures"
)

func durationFromMs(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Format is the closed set of output formats Write may produce.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// Write encodes result to w in the given format.
func Write(w io.Writer, result *model.ScanResult, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatSARIF:
		return writeSARIF(w, result)
	default:
		return writeText(w, result)
	}
}

func writeText(w io.Writer, r *model.ScanResult) error {
	var phaseFindings = map[signatures.Phase][]model.Finding{}
	for _, f := range r.Findings {
		phaseFindings[f.Phase] = append(phaseFindings[f.Phase], f)
	}

	for i, phase := range signatures.Phases {
		findings := phaseFindings[phase]
		if len(findings) == 0 {
			continue
		}
		fmt.Fprintf(w, "=== Phase %d: %s ===\n", i+1, phase)
		for _, f := range findings {
			fmt.Fprintf(w, "[%s] %s:\n", f.Severity, f.RuleID)
			fmt.Fprintf(w, "  %s:%d: %s\n", f.File, f.Line, f.Snippet)
		}
		fmt.Fprintln(w)
	}

	vc := ui.VerdictColor(string(r.Verdict))
	advice := adviceFor(r.Verdict)
	border := strings.Repeat("-", 40)
	fmt.Fprintf(w, "+%s+\n", border)
	fmt.Fprintf(w, "|  VERDICT: %-28s|\n", colorize(vc, string(r.Verdict)))
	fmt.Fprintf(w, "|  Risk Score: %-25.1f|\n", r.Score)
	fmt.Fprintf(w, "|  %-38s|\n", advice)
	fmt.Fprintf(w, "+%s+\n", border)
	if r.Truncated {
		fmt.Fprintln(w, "Note: scan truncated before full completion (wall-clock or file-count cap reached).")
	}
	return nil
}

func colorize(c *color.Color, s string) string {
	return c.Sprint(s)
}

func adviceFor(v model.Verdict) string {
	switch v {
	case model.VerdictClean:
		return "No patterns matched."
	case model.VerdictLowRisk:
		return "Review findings before use."
	case model.VerdictMediumRisk:
		return "Manual review recommended."
	case model.VerdictHighRisk:
		return "Do not approve without review."
	case model.VerdictCritical:
		return "Reject unless explicitly justified."
	default:
		return ""
	}
}

// jsonFinding is the wire shape for a single finding in the JSON report.
type jsonFinding struct {
	Phase    signatures.Phase    `json:"phase"`
	Severity signatures.Severity `json:"severity"`
	Weight   float64             `json:"weight"`
	Rule     string              `json:"rule"`
	File     string              `json:"file"`
	Line     int                 `json:"line"`
	Snippet  string              `json:"snippet"`
}

// jsonPhase is the wire shape for a phase rollup.
type jsonPhase struct {
	Findings    int                 `json:"findings"`
	MaxSeverity signatures.Severity `json:"max_severity,omitempty"`
	Weight      float64             `json:"weight"`
}

// jsonResult is the top-level JSON output schema from the external
// interfaces contract: scan_id, target, target_type, content_digest,
// files_scanned, verdict, score, duration_ms, phases, findings, truncated.
type jsonResult struct {
	ScanID        string                      `json:"scan_id"`
	Target        string                      `json:"target"`
	TargetType    model.TargetType            `json:"target_type"`
	ContentDigest string                      `json:"content_digest"`
	FilesScanned  int                         `json:"files_scanned"`
	Verdict       model.Verdict               `json:"verdict"`
	Score         float64                     `json:"score"`
	DurationMs    int64                       `json:"duration_ms"`
	Phases        map[signatures.Phase]jsonPhase `json:"phases"`
	Findings      []jsonFinding               `json:"findings"`
	Truncated     bool                        `json:"truncated"`
}

func writeJSON(w io.Writer, r *model.ScanResult) error {
	out := jsonResult{
		ScanID:        r.ScanID,
		Target:        r.Target,
		TargetType:    r.TargetType,
		ContentDigest: r.ContentDigest,
		FilesScanned:  r.FilesScanned,
		Verdict:       r.Verdict,
		Score:         r.Score,
		DurationMs:    r.Duration.Milliseconds(),
		Phases:        map[signatures.Phase]jsonPhase{},
		Truncated:     r.Truncated,
	}
	for phase, roll := range r.Phases {
		out.Phases[phase] = jsonPhase{Findings: roll.Findings, MaxSeverity: roll.MaxSeverity, Weight: roll.Weight}
	}
	for _, f := range r.Findings {
		out.Findings = append(out.Findings, jsonFinding{
			Phase: f.Phase, Severity: f.Severity, Weight: f.Weight,
			Rule: f.RuleID, File: f.File, Line: f.Line, Snippet: f.Snippet,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ReadJSON parses a machine-readable report back into a ScanResult,
// supporting the round-trip law write(json) -> read_json == original for
// every field except CreatedAt and SignaturesVersion, which the JSON schema
// does not carry.
func ReadJSON(r io.Reader) (*model.ScanResult, error) {
	var out jsonResult
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, err
	}
	result := &model.ScanResult{
		ScanID:            out.ScanID,
		Target:            out.Target,
		TargetType:        out.TargetType,
		ContentDigest:     out.ContentDigest,
		FilesScanned:      out.FilesScanned,
		Verdict:           out.Verdict,
		Score:             out.Score,
		Duration:          durationFromMs(out.DurationMs),
		Truncated:         out.Truncated,
		Phases:            map[signatures.Phase]model.PhaseRollup{},
	}
	for phase, p := range out.Phases {
		result.Phases[phase] = model.PhaseRollup{Findings: p.Findings, Weight: p.Weight, MaxSeverity: p.MaxSeverity}
	}
	for _, f := range out.Findings {
		result.Findings = append(result.Findings, model.Finding{
			Phase: f.Phase, Severity: f.Severity, Weight: f.Weight,
			RuleID: f.Rule, File: f.File, Line: f.Line, Snippet: f.Snippet,
		})
	}
	return result, nil
}

// Recompute derives score/verdict from a result's findings; used by tests
// asserting the scorer and the persisted report agree.
func Recompute(r *model.ScanResult) {
	r.Score = scorer.Score(r.Findings)
	r.Verdict = scorer.Verdict(r.Score, r.Findings)
	r.Phases = scorer.Rollups(r.Findings)
}
