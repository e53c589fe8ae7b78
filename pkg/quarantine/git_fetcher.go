// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package quarantine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// DefaultGitFetcher clones via the system git binary. It runs exactly one
// command, "git clone --no-local", and nothing else, so no hook or script
// from the cloned repository ever executes as part of acquisition.
type DefaultGitFetcher struct {
	// ShallowDepth limits the clone to the given number of commits when
	// positive. Zero means a full clone.
	ShallowDepth int
}

// Clone implements GitFetcher.
func (g *DefaultGitFetcher) Clone(ctx context.Context, url, dest string) error {
	args := []string{"clone", "--no-local", "--quiet"}
	if g.ShallowDepth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", g.ShallowDepth))
	}
	args = append(args, url, dest)

	cmd := exec.CommandContext(ctx, "git", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("git clone timed out or canceled: %w", ctx.Err())
		}
		msg := stderr.String()
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("git clone failed: %s", msg)
	}
	return nil
}
