// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package quarantine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_SecondAcquisitionFailsWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.lock")

	unlock, err := acquireLock(path)
	require.NoError(t, err)

	_, err = acquireLock(path)
	assert.Error(t, err)

	unlock()
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "unlock should remove the lock file")
}

func TestAcquireLock_ReacquirableAfterUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.lock")

	unlock, err := acquireLock(path)
	require.NoError(t, err)
	unlock()

	unlock2, err := acquireLock(path)
	require.NoError(t, err)
	unlock2()
}
