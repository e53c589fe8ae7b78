// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package quarantine

import (
	"archive/tar"
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/klauspost/compress/gzip"
)

// DefaultUrlFetcher retrieves a URL over HTTP(S), capping the response body
// at maxBytes and retrying transient failures with an exponential backoff.
type DefaultUrlFetcher struct {
	Client *http.Client
}

func (u *DefaultUrlFetcher) client() *http.Client {
	if u.Client != nil {
		return u.Client
	}
	return &http.Client{Timeout: 2 * time.Minute}
}

// Get implements UrlFetcher. The payload is first downloaded into a single
// file under dest; if its content type (or the URL's extension) identifies
// a recognized archive, it is extracted in place and the raw download is
// removed.
func (u *DefaultUrlFetcher) Get(ctx context.Context, url, dest string, maxBytes int64) (string, error) {
	op := func() (string, error) {
		return u.fetchOnce(ctx, url, dest, maxBytes)
	}

	return backoff.Retry(ctx, op,
		backoff.WithMaxTries(4),
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
	)
}

func (u *DefaultUrlFetcher) fetchOnce(ctx context.Context, url, dest string, maxBytes int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}

	resp, err := u.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("fetch %s: server error %d", url, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", backoff.Permanent(fmt.Errorf("fetch %s: status %d", url, resp.StatusCode))
	}

	rawPath := filepath.Join(dest, "download.raw")
	f, err := os.Create(rawPath) //nolint:gosec // G304: rawPath is a fixed name under a freshly created staging directory
	if err != nil {
		return "", backoff.Permanent(err)
	}

	limited := io.LimitReader(resp.Body, maxBytes+1)
	n, err := io.Copy(f, limited)
	closeErr := f.Close()
	if err != nil {
		return "", err
	}
	if closeErr != nil {
		return "", closeErr
	}
	if n > maxBytes {
		return "", backoff.Permanent(fmt.Errorf("fetch %s: payload exceeds %d byte cap", url, maxBytes))
	}

	contentType := resp.Header.Get("Content-Type")
	if err := maybeExtract(rawPath, dest, contentType, url); err != nil {
		return "", backoff.Permanent(err)
	}
	return contentType, nil
}

// maybeExtract recognizes gzip-compressed tarballs and zip archives by
// content type or file extension and extracts them into dest, removing the
// raw download afterward. Anything unrecognized is left as the single
// downloaded file.
func maybeExtract(rawPath, dest, contentType, url string) error {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(contentType, "gzip") || strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		if err := extractTarGz(rawPath, dest); err != nil {
			return err
		}
		return os.Remove(rawPath)
	case strings.Contains(contentType, "zip") || strings.HasSuffix(lower, ".zip"):
		if err := extractZip(rawPath, dest); err != nil {
			return err
		}
		return os.Remove(rawPath)
	default:
		return nil
	}
}

func extractTarGz(src, destDir string) error {
	f, err := os.Open(src) //nolint:gosec // G304: src is a path this package just wrote
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0700); err != nil {
				return err
			}
		case tar.TypeSymlink:
			// Archive-embedded symlinks are never materialized: a malicious
			// tarball could otherwise point one outside the staging tree.
			continue
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
				return err
			}
			out, err := os.Create(target) //nolint:gosec // G304: target passed through safeJoin
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, io.LimitReader(tr, hdr.Size)); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
}

func extractZip(src, destDir string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, zf := range zr.File {
		target, err := safeJoin(destDir, zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0700); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
			return err
		}

		rc, err := zf.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(target) //nolint:gosec // G304: target passed through safeJoin
		if err != nil {
			rc.Close()
			return err
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		out.Close()
		if copyErr != nil {
			return copyErr
		}
	}
	return nil
}

// safeJoin joins destDir with an archive-member name, rejecting any member
// whose resolved path would escape destDir (a zip-slip / tar-slip guard).
func safeJoin(destDir, name string) (string, error) {
	joined := filepath.Join(destDir, name)
	cleanDest := filepath.Clean(destDir)
	if joined != cleanDest && !strings.HasPrefix(joined, cleanDest+string(filepath.Separator)) {
		return "", fmt.Errorf("archive member %q escapes staging directory", name)
	}
	return joined, nil
}
