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
)

func TestDefaultConfig_PassesValidation(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, validate.Struct(cfg))
}

func TestSaveConfigThenLoadConfig_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)
	cfg := DefaultConfig()
	cfg.Root = filepath.Join(dir, "root")

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Root, loaded.Root)
	assert.Equal(t, cfg.Scan.Workers, loaded.Scan.Workers)
}

func TestLoadConfig_RejectsMismatchedVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"99\"\n"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_RejectsInvalidScanValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\nscan:\n  workers: 0\n"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: [unterminated\n"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFileIsError(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides_RootAndWorkers(t *testing.T) {
	t.Setenv("SIGIL_ROOT", "/custom/root")
	t.Setenv("SIGIL_WORKERS", "16")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "/custom/root", cfg.Root)
	assert.Equal(t, 16, cfg.Scan.Workers)
}

func TestApplyEnvOverrides_IgnoresInvalidWorkerCount(t *testing.T) {
	t.Setenv("SIGIL_WORKERS", "not-a-number")

	cfg := DefaultConfig()
	original := cfg.Scan.Workers
	cfg.applyEnvOverrides()

	assert.Equal(t, original, cfg.Scan.Workers)
}

func TestConfigPathAndConfigDir_JoinUnderDotSigil(t *testing.T) {
	assert.Equal(t, filepath.Join("/tmp/proj", ".sigil"), ConfigDir("/tmp/proj"))
	assert.Equal(t, filepath.Join("/tmp/proj", ".sigil", "config.yaml"), ConfigPath("/tmp/proj"))
}
