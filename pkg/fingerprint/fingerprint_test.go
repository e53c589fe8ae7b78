// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0600))
	}
	return root
}

func TestDigest_DeterministicAcrossCalls(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.txt":        "hello",
		"sub/b.txt":    "world",
		"sub/deep/c.go": "package sub",
	})

	d1, err := Digest(root)
	require.NoError(t, err)
	d2, err := Digest(root)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestDigest_IndependentOfEnumerationOrder(t *testing.T) {
	rootA := writeTree(t, map[string]string{
		"a.txt": "1",
		"b.txt": "2",
		"c.txt": "3",
	})
	rootB := writeTree(t, map[string]string{
		"c.txt": "3",
		"a.txt": "1",
		"b.txt": "2",
	})

	dA, err := Digest(rootA)
	require.NoError(t, err)
	dB, err := Digest(rootB)
	require.NoError(t, err)
	assert.Equal(t, dA, dB)
}

func TestDigest_ContentChangeChangesDigest(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "hello"})
	before, err := Digest(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("goodbye"), 0600))
	after, err := Digest(root)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestDigest_RenameChangesDigest(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "hello"})
	before, err := Digest(root)
	require.NoError(t, err)

	require.NoError(t, os.Rename(filepath.Join(root, "a.txt"), filepath.Join(root, "z.txt")))
	after, err := Digest(root)
	require.NoError(t, err)

	assert.NotEqual(t, before, after, "relative path is part of the digest input")
}

func TestDigest_SymlinkUsesTargetNotContent(t *testing.T) {
	root := writeTree(t, map[string]string{"real.txt": "payload"})
	require.NoError(t, os.Symlink("real.txt", filepath.Join(root, "link.txt")))

	withLink, err := Digest(root)
	require.NoError(t, err)

	root2 := writeTree(t, map[string]string{"real.txt": "payload"})
	require.NoError(t, os.WriteFile(filepath.Join(root2, "link.txt"), []byte("real.txt"), 0600))
	withRegularFile, err := Digest(root2)
	require.NoError(t, err)

	assert.NotEqual(t, withLink, withRegularFile, "a symlink and a regular file holding its target string must not collide")
}

func TestDigest_EmptyDirTreeIsStable(t *testing.T) {
	root := t.TempDir()
	d1, err := Digest(root)
	require.NoError(t, err)
	d2, err := Digest(root)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}
