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
)

func TestDetectTargetKind_DistinguishesFileFromDirectory(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, model.TargetDirectory, detectTargetKind(dir))

	file := filepath.Join(dir, "payload.js")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))
	assert.Equal(t, model.TargetFile, detectTargetKind(file))
}

func TestDetectTargetKind_MissingPathDefaultsToDirectory(t *testing.T) {
	assert.Equal(t, model.TargetDirectory, detectTargetKind(filepath.Join(t.TempDir(), "nonexistent")))
}
