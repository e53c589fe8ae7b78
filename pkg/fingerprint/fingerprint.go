// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fingerprint computes a deterministic content digest of a directory
// tree, used as the cache key and as part of a ScanResult's attestation.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// entry is one file discovered while enumerating a tree, ready for hashing.
type entry struct {
	relPath string
	isLink  bool
	target  string // symlink target, only set when isLink
	absPath string
}

// Digest computes the content digest of the tree rooted at root. Enumeration
// order, file timestamps, and inode numbers never affect the result: files
// are hashed in a fixed order (relative path, forward slashes, case
// sensitive), and symlinks contribute their target string rather than
// followed content. Empty directories contribute nothing.
func Digest(root string) (string, error) {
	entries, err := collect(root)
	if err != nil {
		return "", err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].relPath < entries[j].relPath })

	h := sha256.New()
	for _, e := range entries {
		if err := hashEntry(h, e); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func collect(root string) ([]entry, error) {
	var entries []entry
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			entries = append(entries, entry{relPath: rel, isLink: true, target: target})
			return nil
		}

		entries = append(entries, entry{relPath: rel, absPath: path})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// hashEntry folds len(relpath) ‖ relpath ‖ len(content) ‖ content into h, or,
// for a symlink, len(relpath) ‖ relpath ‖ len(target) ‖ target (prefixed with
// a tag byte so a symlink can never collide with a regular file of the same
// relative path and byte length).
func hashEntry(h io.Writer, e entry) error {
	writeLenPrefixed(h, e.relPath)

	if e.isLink {
		_, _ = h.Write([]byte{'L'})
		writeLenPrefixed(h, e.target)
		return nil
	}
	_, _ = h.Write([]byte{'F'})

	f, err := os.Open(e.absPath) //nolint:gosec // G304: path comes from the tree being fingerprinted
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(size))
	_, _ = h.Write(lenBuf[:])

	_, err = io.Copy(h, f)
	return err
}

func writeLenPrefixed(h io.Writer, s string) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(s)))
	_, _ = h.Write(lenBuf[:])
	_, _ = h.Write([]byte(s))
}

// NormalizeRel normalizes a path the same way Digest does, for callers that
// need to compare a walker-produced relative path against fingerprint input.
func NormalizeRel(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(strings.TrimPrefix(rel, "./")), nil
}
