// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model holds the data types shared across the scan/quarantine
// pipeline: Finding, ScanResult, QuarantineItem, and the closed enumerations
// they depend on. Centralizing them here avoids import cycles between the
// scanner, scorer, cache, quarantine, and report packages, all of which
// read and write the same records.
package model

import (
	"time"

	"github.com/kraklabs/sigil/pkg/signatures"
)

// Finding is a single positive match of one signature against one file
// location. Findings are append-only within a scan; ordering is imposed
// once, at the end, by scanner.SortFindings.
type Finding struct {
	Phase    signatures.Phase    `json:"phase"`
	RuleID   string              `json:"rule"`
	Severity signatures.Severity `json:"severity"`
	Weight   float64             `json:"weight"`
	File     string              `json:"file"`
	Line     int                 `json:"line"`
	Snippet  string              `json:"snippet"`
}

// TargetType identifies how a scan's target was acquired.
type TargetType string

const (
	TargetDirectory TargetType = "Directory"
	TargetGit       TargetType = "Git"
	TargetPip       TargetType = "Pip"
	TargetNpm       TargetType = "Npm"
	TargetURL       TargetType = "Url"
	TargetFile      TargetType = "File"
)

// Verdict is the bucketed risk label derived from a ScanResult's score.
type Verdict string

const (
	VerdictClean      Verdict = "Clean"
	VerdictLowRisk    Verdict = "LowRisk"
	VerdictMediumRisk Verdict = "MediumRisk"
	VerdictHighRisk   Verdict = "HighRisk"
	VerdictCritical   Verdict = "Critical"
)

// PhaseRollup summarizes one phase's contribution to a ScanResult for
// reporting: how many findings it produced, their combined weighted
// contribution, and the highest severity observed.
type PhaseRollup struct {
	Findings    int                 `json:"findings"`
	Weight      float64             `json:"weight"`
	MaxSeverity signatures.Severity `json:"max_severity,omitempty"`
}

// ScanResult is produced once by a scan and never mutated; a re-scan
// produces a new result with a new ScanID.
type ScanResult struct {
	ScanID            string                              `json:"scan_id"`
	Target            string                              `json:"target"`
	TargetType        TargetType                          `json:"target_type"`
	ContentDigest     string                              `json:"content_digest"`
	FilesScanned      int                                 `json:"files_scanned"`
	Findings          []Finding                           `json:"findings"`
	Score             float64                             `json:"score"`
	Verdict           Verdict                             `json:"verdict"`
	CreatedAt         time.Time                           `json:"created_at"`
	Duration          time.Duration                       `json:"duration"`
	SignaturesVersion string                              `json:"signatures_version"`
	Truncated         bool                                `json:"truncated"`
	Phases            map[signatures.Phase]PhaseRollup     `json:"phases,omitempty"`
}

// QuarantineState is the closed set of lifecycle states a QuarantineItem may
// occupy. Approved and Rejected are terminal.
type QuarantineState string

const (
	StatePending  QuarantineState = "Pending"
	StateApproved QuarantineState = "Approved"
	StateRejected QuarantineState = "Rejected"
)

// QuarantineItem is the user-visible record of one staged artifact.
type QuarantineItem struct {
	ID         string          `json:"id"`
	Path       string          `json:"path"`
	Result     *ScanResult     `json:"result,omitempty"`
	State      QuarantineState `json:"state"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
