// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scorer aggregates a scan's findings into a numeric risk score and
// a verdict, applying the InstallHooks override rule and producing
// per-phase rollups for presentation.
package scorer

import (
	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/signatures"
)

// Score sums finding.weight * phase_multiplier[finding.phase] over every
// finding. Adding a finding with non-negative weight never decreases the
// score; removing one never increases it, since every term is
// non-negative.
func Score(findings []model.Finding) float64 {
	var total float64
	for _, f := range findings {
		total += f.Weight * f.Phase.Multiplier()
	}
	return total
}

// Verdict buckets a score per the fixed thresholds, then applies the
// InstallHooks override: any single Critical-severity InstallHooks finding
// forces the verdict to at least HighRisk; if that finding's weight is also
// >= 10, the verdict is forced to Critical.
func Verdict(score float64, findings []model.Finding) model.Verdict {
	v := bucket(score)

	for _, f := range findings {
		if f.Phase == signatures.PhaseInstallHooks && f.Severity == signatures.SeverityCritical {
			if f.Weight >= 10 {
				return model.VerdictCritical
			}
			if rank(v) < rank(model.VerdictHighRisk) {
				v = model.VerdictHighRisk
			}
		}
	}
	return v
}

func bucket(score float64) model.Verdict {
	switch {
	case score == 0:
		return model.VerdictClean
	case score < 10:
		return model.VerdictLowRisk
	case score < 25:
		return model.VerdictMediumRisk
	case score < 50:
		return model.VerdictHighRisk
	default:
		return model.VerdictCritical
	}
}

var verdictRank = map[model.Verdict]int{
	model.VerdictClean:      0,
	model.VerdictLowRisk:    1,
	model.VerdictMediumRisk: 2,
	model.VerdictHighRisk:   3,
	model.VerdictCritical:   4,
}

func rank(v model.Verdict) int {
	return verdictRank[v]
}

// Rollups computes per-phase counts, weighted contribution, and maximum
// severity observed, for presentation in text and JSON reports.
func Rollups(findings []model.Finding) map[signatures.Phase]model.PhaseRollup {
	out := make(map[signatures.Phase]model.PhaseRollup)
	for _, f := range findings {
		r := out[f.Phase]
		first := r.Findings == 0
		r.Findings++
		r.Weight += f.Weight * f.Phase.Multiplier()
		if first || f.Severity.Rank() > r.MaxSeverity.Rank() {
			r.MaxSeverity = f.Severity
		}
		out[f.Phase] = r
	}
	return out
}

// ExitCode maps a verdict to the command's exit code, per the configurable
// threshold contract: Clean=0, LowRisk=0 unless failOnFindings raises it to
// match MediumRisk's code, MediumRisk=3, HighRisk=2, Critical=1.
func ExitCode(v model.Verdict, failOnFindings bool) int {
	switch v {
	case model.VerdictClean:
		return 0
	case model.VerdictLowRisk:
		if failOnFindings {
			return 3
		}
		return 0
	case model.VerdictMediumRisk:
		return 3
	case model.VerdictHighRisk:
		return 2
	case model.VerdictCritical:
		return 1
	default:
		return 1
	}
}

// MeetsThreshold reports whether a verdict is at or above a named severity
// threshold (used by `scan --threshold`), per the closed verdict
// enumeration's natural ordering.
func MeetsThreshold(v model.Verdict, threshold string) bool {
	t, ok := verdictRank[model.Verdict(threshold)]
	if !ok {
		return true
	}
	return rank(v) >= t
}
