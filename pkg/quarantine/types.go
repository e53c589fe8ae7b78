// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quarantine is the user-visible lifecycle boundary: it acquires
// untrusted artifacts into an isolated staging area, drives a scan, and
// manages the Pending -> Approved | Rejected state machine. It is the sole
// writer of the filesystem under its root; every other component receives
// read-only views.
package quarantine

import (
	"context"

	"github.com/kraklabs/sigil/pkg/signatures"
)

// GitFetcher populates dest with the contents of a git repository. An
// implementation must not execute any hook or script from the repository.
type GitFetcher interface {
	Clone(ctx context.Context, url, dest string) error
}

// PackageFetcher downloads and extracts a named package (pip/npm) into
// dest. An implementation must not execute install-time hooks.
type PackageFetcher interface {
	Download(ctx context.Context, manager, name, version, dest string) error
}

// UrlFetcher retrieves an arbitrary URL payload into dest, honoring size
// caps, and reports the response content type so the caller can decide
// whether to auto-extract a recognized archive.
type UrlFetcher interface {
	Get(ctx context.Context, url, dest string, maxBytes int64) (contentType string, err error)
}

// SignatureSync optionally pulls an upstream signature set. A nil return
// with no error means offline: the caller keeps using its current set.
type SignatureSync interface {
	Fetch(ctx context.Context) ([]*signatures.Signature, error)
}
