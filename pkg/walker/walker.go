// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package walker implements the bounded, symlink-safe file traversal that
// feeds the scanner: Walk enumerates the tree sequentially and collects File
// values into a slice, applying ignore rules, byte caps, and a file-count
// cap before any content reaches the scanner's worker pool.
package walker

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/sigil/pkg/ignore"
)

// File is a single scannable unit produced by the walker.
type File struct {
	RelPath      string
	AbsPath      string
	Bytes        []byte
	LanguageHint string
	Binary       bool
	Truncated    bool // never set by Walk, which skips oversize files instead of capping them
}

// Options bounds a single walk.
type Options struct {
	MaxFileBytes  int64
	MaxFileCount  int
	Ignore        *ignore.Set
}

// Result summarizes a completed walk.
type Result struct {
	Files          []File
	OversizeFiles  []string // relative paths skipped for exceeding MaxFileBytes
	TruncatedCount bool     // true if MaxFileCount was reached before the tree was fully enumerated
	SymlinkSkips   []string // relative paths of symlinks rejected for escaping the root
}

var extToLanguage = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".rb":   "ruby",
	".java": "java",
	".rs":   "rust",
	".sh":   "shell",
	".bash": "shell",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
	".toml": "toml",
	".md":   "markdown",
}

// LanguageHint derives a language tag from a file's extension. Files with no
// recognized extension get an empty hint, which matches every signature
// with no language_hints restriction and none with a restriction.
func LanguageHint(relPath string) string {
	ext := strings.ToLower(filepath.Ext(relPath))
	return extToLanguage[ext]
}

// Walk enumerates root according to opts, applying the safety contract: it
// never follows a symlink whose resolved target escapes root, it stops once
// MaxFileCount files have been accepted, and it skips (with a provenance
// note, not an error) any file larger than MaxFileBytes.
func Walk(root string, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	res := &Result{}

	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			logger.Warn("walker.read_error", "path", path, "err", walkErr)
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			resolved, linkErr := filepath.EvalSymlinks(path)
			if linkErr != nil || !withinRoot(absRoot, resolved) {
				res.SymlinkSkips = append(res.SymlinkSkips, rel)
				logger.Warn("walker.symlink_escape", "path", rel)
				return nil
			}
			// A symlink resolving inside root to a file is read through its
			// resolved path; one resolving to a directory is skipped, not
			// walked.
			resolvedInfo, statErr := os.Stat(resolved)
			if statErr != nil {
				return nil
			}
			if resolvedInfo.IsDir() {
				return nil
			}
			info = resolvedInfo
			path = resolved
		}

		if info.IsDir() {
			if opts.Ignore != nil && opts.Ignore.Match(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if opts.Ignore != nil && opts.Ignore.Match(rel) {
			return nil
		}

		if opts.MaxFileCount > 0 && len(res.Files) >= opts.MaxFileCount {
			res.TruncatedCount = true
			return filepath.SkipAll
		}

		if opts.MaxFileBytes > 0 && info.Size() > opts.MaxFileBytes {
			res.OversizeFiles = append(res.OversizeFiles, rel)
			logger.Warn("walker.skip_oversize", "path", rel, "size", info.Size())
			return nil
		}

		content, readErr := os.ReadFile(path) //nolint:gosec // G304: path is produced by filepath.Walk under the scan root
		if readErr != nil {
			logger.Warn("walker.read_error", "path", rel, "err", readErr)
			return nil
		}

		res.Files = append(res.Files, File{
			RelPath:      rel,
			AbsPath:      path,
			Bytes:        content,
			LanguageHint: LanguageHint(rel),
			Binary:       isBinary(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// withinRoot reports whether resolved is root itself or a descendant of it.
func withinRoot(root, resolved string) bool {
	if resolved == root {
		return true
	}
	return strings.HasPrefix(resolved, root+string(filepath.Separator))
}

// isBinary applies a conventional heuristic: the presence of a NUL byte in
// the first 8000 bytes marks a file as binary, matching the convention
// `git diff` itself uses to decide whether to treat a file as text.
func isBinary(content []byte) bool {
	n := len(content)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(content[:n], 0) != -1
}
