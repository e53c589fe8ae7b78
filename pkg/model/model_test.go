// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sigil/pkg/signatures"
)

func TestScanResult_MarshalsPhaseMapKeysAsStrings(t *testing.T) {
	r := ScanResult{
		Phases: map[signatures.Phase]PhaseRollup{
			signatures.PhaseCredentials: {Findings: 2, Weight: 4, MaxSeverity: signatures.SeverityHigh},
		},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	phases, ok := raw["phases"].(map[string]interface{})
	require.True(t, ok)
	_, ok = phases["Credentials"]
	assert.True(t, ok, "Phase map keys should marshal as their underlying string value")
}

func TestQuarantineItem_ResultOmittedWhenNil(t *testing.T) {
	item := QuarantineItem{ID: "20260101_000000_test", State: StatePending}
	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	_, ok := raw["result"]
	assert.False(t, ok, "a nil Result should be omitted from the JSON representation")
}
