// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunCompletion_KnownShellsReturnZero(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		assert.Equal(t, 0, runCompletion([]string{shell}, GlobalFlags{}), shell)
	}
}

func TestRunCompletion_UnknownShellReturnsNonZero(t *testing.T) {
	assert.Equal(t, 1, runCompletion([]string{"powershell"}, GlobalFlags{}))
}

func TestRunCompletion_MissingArgumentReturnsNonZero(t *testing.T) {
	assert.Equal(t, 1, runCompletion(nil, GlobalFlags{}))
}
