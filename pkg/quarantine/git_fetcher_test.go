// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package quarantine

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=sigil-test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=sigil-test", "GIT_COMMITTER_EMAIL=test@example.com")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestDefaultGitFetcher_ClonesIntoDest(t *testing.T) {
	requireGit(t)

	src := t.TempDir()
	runGit(t, src, "init", "--quiet")
	require.NoError(t, os.WriteFile(filepath.Join(src, "file.txt"), []byte("hello"), 0600))
	runGit(t, src, "add", ".")
	runGit(t, src, "commit", "--quiet", "-m", "initial")

	dest := filepath.Join(t.TempDir(), "clone")
	g := &DefaultGitFetcher{}
	require.NoError(t, g.Clone(context.Background(), src, dest))

	data, err := os.ReadFile(filepath.Join(dest, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDefaultGitFetcher_InvalidSourceFails(t *testing.T) {
	requireGit(t)

	dest := filepath.Join(t.TempDir(), "clone")
	g := &DefaultGitFetcher{}
	err := g.Clone(context.Background(), filepath.Join(t.TempDir(), "not-a-repo"), dest)
	assert.Error(t, err)
}

func TestDefaultGitFetcher_ContextCancellationReported(t *testing.T) {
	requireGit(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "clone")
	g := &DefaultGitFetcher{}
	err := g.Clone(ctx, "https://example.com/repo.git", dest)
	assert.Error(t, err)
}
