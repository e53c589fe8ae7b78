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

func TestResolveRoot_EnvTakesPrecedenceOverConfig(t *testing.T) {
	t.Setenv("SIGIL_ROOT", "/env/root")
	cfg := &Config{Root: "/config/root"}

	root, err := resolveRoot(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/env/root", root)
}

func TestResolveRoot_FallsBackToConfigWhenEnvUnset(t *testing.T) {
	cfg := &Config{Root: "/config/root"}
	root, err := resolveRoot(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/config/root", root)
}

func TestResolveRoot_FallsBackToHomeDotSigilRoot(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	root, err := resolveRoot(&Config{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".sigil", "root"), root)
}

func TestSubdirHelpers_JoinUnderRoot(t *testing.T) {
	root := "/var/sigil"
	assert.Equal(t, filepath.Join(root, "quarantine"), quarantineDir(root))
	assert.Equal(t, filepath.Join(root, "approved"), approvedDir(root))
	assert.Equal(t, filepath.Join(root, "reports"), reportsDir(root))
	assert.Equal(t, filepath.Join(root, "cache"), cacheDir(root))
	assert.Equal(t, filepath.Join(root, "signatures"), signaturesDir(root))
	assert.Equal(t, filepath.Join(root, "signatures", "overrides.yaml"), overridesPath(root))
}

func TestEnsureLayout_CreatesOwnerOnlySubdirsIdempotently(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")

	require.NoError(t, ensureLayout(root))
	require.NoError(t, ensureLayout(root), "must be safe to call again on an existing layout")

	for _, dir := range []string{quarantineDir(root), approvedDir(root), reportsDir(root), cacheDir(root), signaturesDir(root)} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	}
}

func TestAbsPath_CleansRelativeAndAbsolutePaths(t *testing.T) {
	abs, err := absPath("/a/b/../c")
	require.NoError(t, err)
	assert.Equal(t, "/a/c", abs)

	rel, err := absPath("relative/dir")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rel))
}
