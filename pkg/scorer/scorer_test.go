// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/signatures"
)

func TestScore_EmptyFindingsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Score(nil))
}

func TestScore_SumsWeightTimesPhaseMultiplier(t *testing.T) {
	findings := []model.Finding{
		{Phase: signatures.PhaseCredentials, Weight: 2}, // x2 = 4
		{Phase: signatures.PhaseInstallHooks, Weight: 1}, // x10 = 10
	}
	assert.Equal(t, 14.0, Score(findings))
}

func TestScore_MonotonicOnAddingFinding(t *testing.T) {
	base := []model.Finding{{Phase: signatures.PhaseCodePatterns, Weight: 3}}
	before := Score(base)
	after := Score(append(base, model.Finding{Phase: signatures.PhaseCredentials, Weight: 1}))
	assert.Greater(t, after, before)
}

func TestVerdict_BucketsByScore(t *testing.T) {
	assert.Equal(t, model.VerdictClean, Verdict(0, nil))
	assert.Equal(t, model.VerdictLowRisk, Verdict(5, nil))
	assert.Equal(t, model.VerdictMediumRisk, Verdict(15, nil))
	assert.Equal(t, model.VerdictHighRisk, Verdict(30, nil))
	assert.Equal(t, model.VerdictCritical, Verdict(100, nil))
}

func TestVerdict_InstallHooksCriticalOverridesToAtLeastHighRisk(t *testing.T) {
	findings := []model.Finding{
		{Phase: signatures.PhaseInstallHooks, Severity: signatures.SeverityCritical, Weight: 5},
	}
	v := Verdict(Score(findings), findings) // score = 5*10 = 50 -> already Critical by bucket
	assert.Equal(t, model.VerdictCritical, v)
}

func TestVerdict_InstallHooksCriticalLowScoreForcesHighRisk(t *testing.T) {
	findings := []model.Finding{
		{Phase: signatures.PhaseInstallHooks, Severity: signatures.SeverityCritical, Weight: 0.5},
		{Phase: signatures.PhaseCredentials, Severity: signatures.SeverityLow, Weight: 0.1},
	}
	v := Verdict(Score(findings), findings)
	assert.Equal(t, model.VerdictHighRisk, v, "a Critical-severity InstallHooks finding must force at least HighRisk even at a low score")
}

func TestVerdict_InstallHooksCriticalHeavyWeightForcesCritical(t *testing.T) {
	findings := []model.Finding{
		{Phase: signatures.PhaseInstallHooks, Severity: signatures.SeverityCritical, Weight: 10},
	}
	v := Verdict(Score(findings), findings)
	assert.Equal(t, model.VerdictCritical, v)
}

func TestVerdict_NeverDowngradesBelowBucket(t *testing.T) {
	findings := []model.Finding{
		{Phase: signatures.PhaseCredentials, Severity: signatures.SeverityHigh, Weight: 5},
	}
	score := Score(findings) // 5*2=10 -> MediumRisk
	v := Verdict(score, findings)
	assert.Equal(t, model.VerdictMediumRisk, v)
}

func TestRollups_CountsWeightAndMaxSeverityPerPhase(t *testing.T) {
	findings := []model.Finding{
		{Phase: signatures.PhaseCredentials, Severity: signatures.SeverityLow, Weight: 1},
		{Phase: signatures.PhaseCredentials, Severity: signatures.SeverityHigh, Weight: 2},
	}
	rollups := Rollups(findings)
	r := rollups[signatures.PhaseCredentials]
	assert.Equal(t, 2, r.Findings)
	assert.Equal(t, signatures.SeverityHigh, r.MaxSeverity)
}

func TestRollups_SingleLowSeverityFindingIsNotLostAsMaxSeverity(t *testing.T) {
	findings := []model.Finding{
		{Phase: signatures.PhaseCredentials, Severity: signatures.SeverityLow, Weight: 1},
	}
	rollups := Rollups(findings)
	r := rollups[signatures.PhaseCredentials]
	assert.Equal(t, signatures.SeverityLow, r.MaxSeverity, "a lone Low-severity finding must still populate MaxSeverity")
}

func TestExitCode_MapsVerdictsPerContract(t *testing.T) {
	assert.Equal(t, 0, ExitCode(model.VerdictClean, false))
	assert.Equal(t, 0, ExitCode(model.VerdictLowRisk, false))
	assert.Equal(t, 3, ExitCode(model.VerdictLowRisk, true))
	assert.Equal(t, 3, ExitCode(model.VerdictMediumRisk, false))
	assert.Equal(t, 2, ExitCode(model.VerdictHighRisk, false))
	assert.Equal(t, 1, ExitCode(model.VerdictCritical, false))
}

func TestMeetsThreshold_RespectsOrdering(t *testing.T) {
	assert.True(t, MeetsThreshold(model.VerdictHighRisk, "MediumRisk"))
	assert.False(t, MeetsThreshold(model.VerdictLowRisk, "MediumRisk"))
	assert.True(t, MeetsThreshold(model.VerdictClean, "unknown-threshold"), "an unrecognized threshold never raises the exit code")
}
