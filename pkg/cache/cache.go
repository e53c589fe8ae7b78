// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache implements the content-addressed scan result cache: key is
// content digest combined with the active signature set's version, value is
// a serialized ScanResult. Entries are read-only once written; a signature
// set change is observed lazily, by key mismatch, rather than an eager
// sweep.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/kraklabs/sigil/pkg/model"
)

// Cache persists ScanResults under a directory, one file per key.
type Cache struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex // single-writer per cache directory; readers need no lock, files are read-only once written
}

// New returns a Cache rooted at dir. The directory is created lazily on
// first write.
func New(dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{dir: dir, logger: logger}
}

// Key combines a content digest with the signatures version that produced a
// result. A version change changes the key, so stale entries are simply
// never looked up again rather than requiring eager eviction.
func Key(contentDigest, signaturesVersion string) string {
	return contentDigest + "_" + signaturesVersion
}

// Get returns the cached ScanResult for key, or (nil, false) on a miss. A
// cache entry that fails to deserialize is treated as a miss and the
// corrupt file is removed; the caller never sees a deserialization error.
func (c *Cache) Get(key string) (*model.ScanResult, bool) {
	path := c.path(key)
	data, err := os.ReadFile(path) //nolint:gosec // G304: key is a digest computed internally, not operator input
	if err != nil {
		return nil, false
	}

	var result model.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("cache.corrupt_entry", "key", key, "err", err)
		_ = os.Remove(path)
		return nil, false
	}
	return &result, true
}

// Put writes result under key, atomically (temp file then rename) so a
// concurrent reader never observes a partially written entry.
func (c *Cache) Put(key string, result *model.ScanResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan result: %w", err)
	}

	path := c.path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename cache entry: %w", err)
	}
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
