// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/kraklabs/sigil/internal/errors"
	"github.com/kraklabs/sigil/pkg/cache"
	"github.com/kraklabs/sigil/pkg/quarantine"
	"github.com/kraklabs/sigil/pkg/scanner"
	"github.com/kraklabs/sigil/pkg/signatures"
)

// newLogger builds the single *slog.Logger threaded through every
// constructor in the command, leveled by -v/-vv.
func newLogger(globals GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case globals.Verbose >= 2:
		level = slog.LevelDebug
	case globals.Verbose >= 1:
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// loadStore loads the builtin signature catalog and merges in a local
// override file, if present, exercising spec.md 4.2's merge(cloud_set)
// contract offline.
func loadStore(root string, logger *slog.Logger) (*signatures.Store, error) {
	store, err := signatures.LoadBuiltin()
	if err != nil {
		return nil, errors.NewConfigError(
			"Failed to load builtin signatures",
			err.Error(),
			"This is a bug; please report it",
			err,
		)
	}

	path := overridesPath(root)
	if _, statErr := os.Stat(path); statErr == nil {
		extra, loadErr := signatures.LoadSetFile(path)
		if loadErr != nil {
			return nil, errors.NewConfigError(
				"Failed to load signature overrides",
				loadErr.Error(),
				"Fix the syntax or contents of "+path,
				loadErr,
			)
		}
		if mergeErr := store.Merge(extra); mergeErr != nil {
			return nil, errors.NewConfigError(
				"Invalid signature overrides",
				mergeErr.Error(),
				"Fix the invalid signatures in "+path,
				mergeErr,
			)
		}
		logger.Info("signatures.overrides_merged", "path", path, "count", len(extra))
	}

	return store, nil
}

// newManager wires a quarantine.Manager from resolved paths, the active
// signature store, the content-addressed cache, and the default
// collaborator implementations.
func newManager(root string, cfg *Config, noCache bool, onProgress scanner.ProgressCallback, globals GlobalFlags) (*quarantine.Manager, *signatures.Store, error) {
	logger := newLogger(globals)

	if err := ensureLayout(root); err != nil {
		return nil, nil, err
	}

	store, err := loadStore(root, logger)
	if err != nil {
		return nil, nil, err
	}

	c := cache.New(cacheDir(root), logger)
	urlFetcher := &quarantine.DefaultUrlFetcher{}

	mgr := quarantine.New(quarantine.Config{
		QuarantineDir: quarantineDir(root),
		ApprovedDir:   approvedDir(root),
		ReportsDir:    reportsDir(root),
		Store:         store,
		Cache:         c,
		Git:           &quarantine.DefaultGitFetcher{},
		Package:       &quarantine.DefaultPackageFetcher{URL: *urlFetcher},
		URL:           urlFetcher,
		Scan: quarantine.ScanOptions{
			Workers:      cfg.Scan.Workers,
			MaxFileBytes: cfg.Scan.MaxFileBytes,
			MaxFiles:     cfg.Scan.MaxFiles,
			WallClock:    time.Duration(cfg.Scan.WallClockSeconds) * time.Second,
			SnippetCap:   cfg.Scan.SnippetCap,
			NoCache:      noCache,
			OnProgress:   onProgress,
		},
		Logger: logger,
	})
	return mgr, store, nil
}

// loadConfigOrDefault loads the config at configPath, falling back to
// DefaultConfig when none exists yet so read-only commands (like scan on a
// fresh machine) still work without requiring 'sigil init' first.
func loadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}
