// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSet_DefaultsExcludeVendorAndVCS(t *testing.T) {
	s := NewSet(nil)
	assert.True(t, s.Match(".git/config"))
	assert.True(t, s.Match("node_modules/left-pad/index.js"))
	assert.True(t, s.Match("vendor/github.com/x/y/z.go"))
	assert.False(t, s.Match("src/main.go"))
}

func TestSet_DoubleStarMatchesAnyDepth(t *testing.T) {
	s := NewSet([]string{"build/**"})
	assert.True(t, s.Match("build/out.bin"))
	assert.True(t, s.Match("build/nested/deep/out.bin"))
	assert.False(t, s.Match("notbuild/out.bin"))
}

func TestSet_SingleStarDoesNotCrossSegment(t *testing.T) {
	s := NewSet([]string{"*.pyc"})
	assert.True(t, s.Match("module.pyc"))
	assert.False(t, s.Match("pkg/module.pyc"), "bare *.pyc with no ** should only match at the root segment")
}

func TestSet_ExtraPatternsAppendToDefaults(t *testing.T) {
	s := NewSet([]string{"secrets/**"})
	assert.True(t, s.Match(".git/HEAD"), "built-in defaults should still apply")
	assert.True(t, s.Match("secrets/key.pem"))
}

func TestLoadFile_MissingFileIsNotAnError(t *testing.T) {
	patterns, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Nil(t, patterns)
}

func TestLoadFile_SkipsBlankAndCommentLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".sigilignore")
	content := "# comment\n\nsecrets/**\n  \n*.key\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	patterns, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"secrets/**", "*.key"}, patterns)
}
