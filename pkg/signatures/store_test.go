// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package signatures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltin_AllValid(t *testing.T) {
	store, err := LoadBuiltin()
	require.NoError(t, err)
	assert.Greater(t, store.Len(), 0, "builtin catalog should be non-empty")

	for _, phase := range Phases {
		for _, sig := range store.ForPhase(phase) {
			assert.Equal(t, phase, sig.Phase)
			if phase != PhaseProvenance {
				assert.NotNil(t, sig.Compiled(), "signature %s should compile", sig.ID)
			}
		}
	}
}

func TestLoadBuiltin_VersionDeterministic(t *testing.T) {
	a, err := LoadBuiltin()
	require.NoError(t, err)
	b, err := LoadBuiltin()
	require.NoError(t, err)
	assert.Equal(t, a.Version(), b.Version(), "two loads of the same catalog must produce the same version")
}

func TestNewStore_RejectsUnknownPhase(t *testing.T) {
	_, err := newStore([]*Signature{
		{ID: "bad-phase", Phase: "NotAPhase", Severity: SeverityLow, Weight: 1, Pattern: "x", Description: "d"},
	})
	assert.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNewStore_RejectsOutOfRangeWeight(t *testing.T) {
	_, err := newStore([]*Signature{
		{ID: "bad-weight", Phase: PhaseCodePatterns, Severity: SeverityLow, Weight: 999, Pattern: "x", Description: "d"},
	})
	assert.Error(t, err)
}

func TestNewStore_RejectsInvalidRegex(t *testing.T) {
	_, err := newStore([]*Signature{
		{ID: "bad-pattern", Phase: PhaseCodePatterns, Severity: SeverityLow, Weight: 1, Pattern: "(unclosed", Description: "d"},
	})
	assert.Error(t, err)
}

func TestNewStore_RejectsDuplicateID(t *testing.T) {
	_, err := newStore([]*Signature{
		{ID: "dup", Phase: PhaseCodePatterns, Severity: SeverityLow, Weight: 1, Pattern: "x", Description: "d"},
		{ID: "dup", Phase: PhaseCodePatterns, Severity: SeverityLow, Weight: 1, Pattern: "y", Description: "d"},
	})
	assert.Error(t, err)
}

func TestNewStore_ProvenanceAllowsEmptyPattern(t *testing.T) {
	store, err := newStore([]*Signature{
		{ID: "prov-1", Phase: PhaseProvenance, Severity: SeverityMedium, Weight: 3, Description: "no manifest checksum"},
	})
	require.NoError(t, err)
	sig, ok := store.Get("prov-1")
	require.True(t, ok)
	assert.Nil(t, sig.Compiled())
}

func TestMerge_ReplacesByIDAndAddsNew(t *testing.T) {
	store, err := newStore([]*Signature{
		{ID: "a", Phase: PhaseCodePatterns, Severity: SeverityLow, Weight: 1, Pattern: "foo", Description: "d"},
	})
	require.NoError(t, err)
	before := store.Version()

	err = store.Merge([]*Signature{
		{ID: "a", Phase: PhaseCodePatterns, Severity: SeverityHigh, Weight: 5, Pattern: "bar", Description: "replaced"},
		{ID: "b", Phase: PhaseCredentials, Severity: SeverityMedium, Weight: 2, Pattern: "baz", Description: "new"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	sig, _ := store.Get("a")
	assert.Equal(t, SeverityHigh, sig.Severity)
	assert.NotEqual(t, before, store.Version(), "merging should change the version stamp")
}

func TestMerge_RejectsWholeSetOnOneBadEntry(t *testing.T) {
	store, err := newStore([]*Signature{
		{ID: "a", Phase: PhaseCodePatterns, Severity: SeverityLow, Weight: 1, Pattern: "foo", Description: "d"},
	})
	require.NoError(t, err)

	err = store.Merge([]*Signature{
		{ID: "b", Phase: PhaseCredentials, Severity: SeverityMedium, Weight: 2, Pattern: "ok", Description: "d"},
		{ID: "c", Phase: "Bogus", Severity: SeverityMedium, Weight: 2, Pattern: "ok", Description: "d"},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, store.Len(), "a failed merge must not partially apply")
	_, ok := store.Get("b")
	assert.False(t, ok)
}

func TestMerge_RejectsDuplicateWithinIncomingSet(t *testing.T) {
	store, err := newStore([]*Signature{
		{ID: "a", Phase: PhaseCodePatterns, Severity: SeverityLow, Weight: 1, Pattern: "foo", Description: "d"},
	})
	require.NoError(t, err)

	err = store.Merge([]*Signature{
		{ID: "b", Phase: PhaseCredentials, Severity: SeverityMedium, Weight: 2, Pattern: "ok", Description: "d"},
		{ID: "b", Phase: PhaseCredentials, Severity: SeverityMedium, Weight: 2, Pattern: "ok2", Description: "d"},
	})
	assert.Error(t, err)
}

func TestPhaseMultiplier_KnownPhasesNonDefault(t *testing.T) {
	assert.Equal(t, 10.0, PhaseInstallHooks.Multiplier())
	assert.Equal(t, 1.0, Phase("unknown").Multiplier())
}

func TestSeverityRank_Ordering(t *testing.T) {
	assert.True(t, SeverityCritical.Rank() > SeverityHigh.Rank())
	assert.True(t, SeverityHigh.Rank() > SeverityMedium.Rank())
	assert.True(t, SeverityMedium.Rank() > SeverityLow.Rank())
}

func TestAcceptsLanguage_NoHintsAcceptsAll(t *testing.T) {
	sig := &Signature{}
	assert.True(t, sig.AcceptsLanguage("python"))
	assert.True(t, sig.AcceptsLanguage("go"))
}

func TestAcceptsLanguage_RestrictsToHints(t *testing.T) {
	sig := &Signature{LanguageHints: []string{"python", "json"}}
	assert.True(t, sig.AcceptsLanguage("json"))
	assert.False(t, sig.AcceptsLanguage("go"))
}
