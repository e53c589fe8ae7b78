// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/report"
	"github.com/kraklabs/sigil/pkg/signatures"
)

func TestFindingKey_DistinguishesByPhaseRuleFileLine(t *testing.T) {
	a := model.Finding{Phase: signatures.PhaseInstallHooks, RuleID: "r1", File: "a.js", Line: 1}
	b := model.Finding{Phase: signatures.PhaseInstallHooks, RuleID: "r1", File: "a.js", Line: 2}
	assert.NotEqual(t, findingKey(a), findingKey(b))

	c := a
	assert.Equal(t, findingKey(a), findingKey(c))
}

func writeReportFile(t *testing.T, path string, findings []model.Finding) {
	t.Helper()
	result := &model.ScanResult{Findings: findings}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, report.Write(f, result, report.FormatJSON))
}

func TestRunDiff_ClassifiesNewResolvedUnchanged(t *testing.T) {
	dir := t.TempDir()
	baselinePath := filepath.Join(dir, "baseline.json")
	currentPath := filepath.Join(dir, "current.json")

	shared := model.Finding{Phase: signatures.PhaseCredentials, RuleID: "shared", File: "x.py", Line: 5}
	resolved := model.Finding{Phase: signatures.PhaseCredentials, RuleID: "resolved", File: "y.py", Line: 1}
	fresh := model.Finding{Phase: signatures.PhaseCredentials, RuleID: "fresh", File: "z.py", Line: 9}

	writeReportFile(t, baselinePath, []model.Finding{shared, resolved})
	writeReportFile(t, currentPath, []model.Finding{shared, fresh})

	baseline, err := readReport(baselinePath)
	require.NoError(t, err)
	current, err := readReport(currentPath)
	require.NoError(t, err)

	d := classifyFindings(baseline, current)

	assert.Len(t, d.New, 1)
	assert.Equal(t, "fresh", d.New[0].RuleID)
	assert.Len(t, d.Resolved, 1)
	assert.Equal(t, "resolved", d.Resolved[0].RuleID)
	assert.Len(t, d.Unchanged, 1)
	assert.Equal(t, "shared", d.Unchanged[0].RuleID)
	assert.Equal(t, 1, exitForDiff(d))
}

func TestExitForDiff_ZeroWhenNoNewFindings(t *testing.T) {
	d := diffResult{Resolved: []model.Finding{{}}, Unchanged: []model.Finding{{}}}
	assert.Equal(t, 0, exitForDiff(d))
}

func TestReadReport_MissingFileIsError(t *testing.T) {
	_, err := readReport(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestReadReport_InvalidJSONIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))
	_, err := readReport(path)
	assert.Error(t, err)
}
