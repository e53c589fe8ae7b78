// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package scanner

import (
	"sort"

	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/signatures"
)

var phaseOrder = func() map[signatures.Phase]int {
	m := make(map[signatures.Phase]int, len(signatures.Phases))
	for i, p := range signatures.Phases {
		m[p] = i
	}
	return m
}()

// SortFindings imposes the deterministic final ordering on a findings slice:
// phase (fixed catalog order), then severity descending, then file path
// ascending, then line ascending, then rule id, weight, and snippet as a
// final tiebreaker. Workers push findings to the collector in whatever order
// they finish, and Store.ForPhase itself iterates a Go map, so two findings
// tied on every other key (e.g. two same-phase, same-severity rules matching
// the same line) need a total order here or the result stops being
// byte-for-byte reproducible across runs.
func SortFindings(findings []model.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if phaseOrder[a.Phase] != phaseOrder[b.Phase] {
			return phaseOrder[a.Phase] < phaseOrder[b.Phase]
		}
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.Snippet < b.Snippet
	})
}
