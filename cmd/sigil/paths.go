// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kraklabs/sigil/internal/errors"
)

// resolveRoot resolves the quarantine root with precedence:
// SIGIL_ROOT > cfg.Root > ~/.sigil/root, per spec.md 4.1.
func resolveRoot(cfg *Config) (string, error) {
	if envRoot := os.Getenv("SIGIL_ROOT"); envRoot != "" {
		return absPath(envRoot)
	}
	if cfg != nil && cfg.Root != "" {
		return absPath(cfg.Root)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot determine home directory",
			"Operating system did not provide a user home directory path",
			"Check your system configuration or set the HOME environment variable",
			err,
		)
	}
	return filepath.Join(home, ".sigil", "root"), nil
}

// quarantineDir, approvedDir, reportsDir, cacheDir, and signaturesDir are
// the fixed subdirectories of root described in spec.md 6's persisted
// state layout.
func quarantineDir(root string) string { return filepath.Join(root, "quarantine") }
func approvedDir(root string) string   { return filepath.Join(root, "approved") }
func reportsDir(root string) string    { return filepath.Join(root, "reports") }
func cacheDir(root string) string      { return filepath.Join(root, "cache") }
func signaturesDir(root string) string { return filepath.Join(root, "signatures") }
func overridesPath(root string) string { return filepath.Join(signaturesDir(root), "overrides.yaml") }

// ensureLayout idempotently creates root's five quarantine-area
// subdirectories owner-only (0700), per spec.md 4.1: the root holds
// unreviewed, potentially hostile bytes and must never be group- or
// world-readable.
func ensureLayout(root string) error {
	for _, dir := range []string{
		quarantineDir(root),
		approvedDir(root),
		reportsDir(root),
		cacheDir(root),
		signaturesDir(root),
	} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errors.NewPermissionError(
				"Cannot create quarantine directory layout",
				fmt.Sprintf("Permission denied creating %s", dir),
				"Check directory permissions",
				err,
			)
		}
	}
	return nil
}

func absPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
