// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package quarantine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kraklabs/sigil/internal/errors"
	"github.com/kraklabs/sigil/pkg/cache"
	"github.com/kraklabs/sigil/pkg/fingerprint"
	"github.com/kraklabs/sigil/pkg/ignore"
	"github.com/kraklabs/sigil/pkg/model"
	"github.com/kraklabs/sigil/pkg/report"
	"github.com/kraklabs/sigil/pkg/scanner"
	"github.com/kraklabs/sigil/pkg/scorer"
	"github.com/kraklabs/sigil/pkg/signatures"
	"github.com/kraklabs/sigil/pkg/walker"
)

// ScanOptions bounds a single walk+scan, mirroring the Paths & Config
// component's option contract (§4.1): concurrency, per-file byte cap,
// per-scan file-count cap, per-scan wall-clock cap, and snippet length cap.
type ScanOptions struct {
	Workers      int
	MaxFileBytes int64
	MaxFiles     int
	WallClock    time.Duration
	SnippetCap   int
	NoCache      bool
	OnProgress   scanner.ProgressCallback
}

// Config wires a Manager's dependencies: the directories it owns, the
// active signature store and cache, and the injected acquirer
// collaborators. GitFetcher/PackageFetcher/UrlFetcher may be nil if the
// corresponding stage_* operation is never invoked.
type Config struct {
	QuarantineDir string
	ApprovedDir   string
	ReportsDir    string

	Store *signatures.Store
	Cache *cache.Cache

	Git     GitFetcher
	Package PackageFetcher
	URL     UrlFetcher

	Scan   ScanOptions
	Logger *slog.Logger
}

// Manager is the sole writer of the filesystem under its quarantine and
// approved directories. Scanner and cache operations it delegates to are
// read-only with respect to that filesystem.
type Manager struct {
	cfg Config
	log *slog.Logger
}

// New constructs a Manager from cfg.
func New(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{cfg: cfg, log: cfg.Logger}
}

// StageLocal copies path into quarantine/<id>/. <id> is
// YYYYMMDD_HHMMSS_<slug>, collision-suffixed, slug derived from path.
func (m *Manager) StageLocal(path string) (*model.QuarantineItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewAcquisitionError(
			"Cannot stage local path",
			fmt.Sprintf("%s does not exist or is not accessible", path),
			"Check the path and try again",
			err,
		)
	}

	id := generateID(path, m.cfg.QuarantineDir)
	dest := filepath.Join(m.cfg.QuarantineDir, id)

	if err := stageInto(dest, func(tmp string) error {
		if info.IsDir() {
			return copyTree(path, tmp)
		}
		return copyFile(path, filepath.Join(tmp, filepath.Base(path)))
	}); err != nil {
		return nil, errors.NewAcquisitionError(
			"Failed to stage local artifact",
			err.Error(),
			"Check filesystem permissions and available disk space",
			err,
		)
	}

	return m.newItem(id, dest), nil
}

// StageGit delegates cloning to the configured GitFetcher. Bytes land in
// staging only after the fetcher succeeds; a failed clone leaves no partial
// directory behind.
func (m *Manager) StageGit(ctx context.Context, url string) (*model.QuarantineItem, error) {
	if m.cfg.Git == nil {
		return nil, errors.NewAcquisitionError(
			"No git acquirer configured",
			"This build of sigil has no GitFetcher implementation wired in",
			"Configure a GitFetcher collaborator before calling clone",
			nil,
		)
	}

	id := generateID(url, m.cfg.QuarantineDir)
	dest := filepath.Join(m.cfg.QuarantineDir, id)

	if err := stageInto(dest, func(tmp string) error {
		return m.cfg.Git.Clone(ctx, url, tmp)
	}); err != nil {
		return nil, errors.NewAcquisitionError(
			"Failed to clone repository",
			err.Error(),
			"Verify the URL is reachable and that git is installed",
			err,
		)
	}

	return m.newItem(id, dest), nil
}

// StagePackage delegates download+extraction to the configured
// PackageFetcher (manager is "pip" or "npm").
func (m *Manager) StagePackage(ctx context.Context, manager, name, version string) (*model.QuarantineItem, error) {
	if m.cfg.Package == nil {
		return nil, errors.NewAcquisitionError(
			"No package acquirer configured",
			"This build of sigil has no PackageFetcher implementation wired in",
			"Configure a PackageFetcher collaborator before calling pip/npm",
			nil,
		)
	}

	id := generateID(name, m.cfg.QuarantineDir)
	dest := filepath.Join(m.cfg.QuarantineDir, id)

	if err := stageInto(dest, func(tmp string) error {
		return m.cfg.Package.Download(ctx, manager, name, version, tmp)
	}); err != nil {
		return nil, errors.NewAcquisitionError(
			"Failed to download package",
			err.Error(),
			fmt.Sprintf("Verify %q exists on the %s registry", name, manager),
			err,
		)
	}

	return m.newItem(id, dest), nil
}

// StageURL delegates retrieval to the configured UrlFetcher. A recognized
// archive payload (tar.gz or zip) is extracted; anything else is staged as a
// single file.
func (m *Manager) StageURL(ctx context.Context, url string) (*model.QuarantineItem, error) {
	if m.cfg.URL == nil {
		return nil, errors.NewAcquisitionError(
			"No URL acquirer configured",
			"This build of sigil has no UrlFetcher implementation wired in",
			"Configure a UrlFetcher collaborator before calling fetch",
			nil,
		)
	}

	id := generateID(url, m.cfg.QuarantineDir)
	dest := filepath.Join(m.cfg.QuarantineDir, id)

	if err := stageInto(dest, func(tmp string) error {
		_, err := m.cfg.URL.Get(ctx, url, tmp, m.cfg.Scan.MaxFileBytes*int64(maxInt(m.cfg.Scan.MaxFiles, 1)))
		return err
	}); err != nil {
		return nil, errors.NewAcquisitionError(
			"Failed to fetch URL",
			err.Error(),
			"Verify the URL is reachable and returns a supported payload",
			err,
		)
	}

	return m.newItem(id, dest), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (m *Manager) newItem(id, path string) *model.QuarantineItem {
	now := time.Now()
	return &model.QuarantineItem{
		ID:        id,
		Path:      path,
		State:     model.StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// stageInto runs populate against a freshly created empty temp directory
// beside dest, then renames it into place only on success. This is the
// enforcement point for the "acquirer wrote only under the designated
// staging directory" guarantee: populate is never handed dest's parent,
// and a failure never leaves a partial tree at dest.
func stageInto(dest string, populate func(tmp string) error) error {
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0700); err != nil {
		return err
	}
	tmp := dest + ".staging"
	if err := os.RemoveAll(tmp); err != nil {
		return err
	}
	if err := os.MkdirAll(tmp, 0700); err != nil {
		return err
	}

	if err := populate(tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}
	return nil
}

// Scan computes the content fingerprint of item's staged tree, looks it up
// in the cache, and on a miss walks, scans, and scores it, persisting both
// a text report and a JSON result. The ScanResult is also attached to
// item.Result for immediate display.
func (m *Manager) Scan(ctx context.Context, item *model.QuarantineItem, targetType model.TargetType, targetLabel string) (*model.ScanResult, error) {
	unlock, err := acquireLock(filepath.Join(m.cfg.QuarantineDir, item.ID+".lock"))
	if err != nil {
		return nil, errors.NewLifecycleError("Quarantine item is busy", err.Error(), "Wait for the other sigil process to finish and retry")
	}
	defer unlock()

	start := time.Now()

	digest, err := fingerprint.Digest(item.Path)
	if err != nil {
		return nil, errors.NewInternalError("Failed to fingerprint staged artifact", err.Error(), "This is a bug; please report it", err)
	}

	sigVersion := m.cfg.Store.Version()
	key := cache.Key(digest, sigVersion)

	if !m.cfg.Scan.NoCache && m.cfg.Cache != nil {
		if cached, ok := m.cfg.Cache.Get(key); ok {
			m.log.Info("quarantine.cache_hit", "id", item.ID, "digest", digest)
			item.Result = cached
			return cached, nil
		}
	}

	ignoreExtra, _ := ignore.LoadFile(filepath.Join(item.Path, ".sigilignore"))
	ignoreSet := ignore.NewSet(ignoreExtra)

	walkResult, err := walker.Walk(item.Path, walker.Options{
		MaxFileBytes: m.cfg.Scan.MaxFileBytes,
		MaxFileCount: m.cfg.Scan.MaxFiles,
		Ignore:       ignoreSet,
	}, m.log)
	if err != nil {
		return nil, errors.NewInternalError("Failed to walk staged artifact", err.Error(), "This is a bug; please report it", err)
	}

	scanRes := scanner.Scan(walkResult.Files, m.cfg.Store, scanner.Options{
		Workers:       m.cfg.Scan.Workers,
		WallClock:     m.cfg.Scan.WallClock,
		SnippetCap:    m.cfg.Scan.SnippetCap,
		OnProgress:    m.cfg.Scan.OnProgress,
		Root:          item.Path,
		OversizeFiles: walkResult.OversizeFiles,
	}, m.log)

	score := scorer.Score(scanRes.Findings)
	verdict := scorer.Verdict(score, scanRes.Findings)

	result := &model.ScanResult{
		ScanID:            uuid.NewString(),
		Target:            targetLabel,
		TargetType:        targetType,
		ContentDigest:     digest,
		FilesScanned:      len(walkResult.Files),
		Findings:          scanRes.Findings,
		Score:             score,
		Verdict:           verdict,
		CreatedAt:         start,
		Duration:          time.Since(start),
		SignaturesVersion: sigVersion,
		Truncated:         scanRes.Truncated || walkResult.TruncatedCount,
		Phases:            scorer.Rollups(scanRes.Findings),
	}

	if err := m.persistReport(item.ID, result); err != nil {
		return nil, err
	}

	if !m.cfg.Scan.NoCache && m.cfg.Cache != nil {
		if err := m.cfg.Cache.Put(key, result); err != nil {
			m.log.Warn("quarantine.cache_write_failed", "id", item.ID, "err", err)
		}
	}

	item.Result = result
	item.UpdatedAt = time.Now()
	return result, nil
}

func (m *Manager) persistReport(id string, result *model.ScanResult) error {
	if err := os.MkdirAll(m.cfg.ReportsDir, 0700); err != nil {
		return errors.NewPermissionError("Cannot create reports directory", err.Error(), "Check filesystem permissions", err)
	}

	jsonPath := filepath.Join(m.cfg.ReportsDir, id+".json")
	jf, err := os.Create(jsonPath) //nolint:gosec // G304: path built from a validated quarantine id
	if err != nil {
		return errors.NewPermissionError("Cannot write JSON report", err.Error(), "Check filesystem permissions", err)
	}
	defer jf.Close()
	if err := report.Write(jf, result, report.FormatJSON); err != nil {
		return errors.NewInternalError("Failed to encode JSON report", err.Error(), "This is a bug; please report it", err)
	}

	textPath := filepath.Join(m.cfg.ReportsDir, id+"_report.txt")
	tf, err := os.Create(textPath) //nolint:gosec // G304: path built from a validated quarantine id
	if err != nil {
		return errors.NewPermissionError("Cannot write text report", err.Error(), "Check filesystem permissions", err)
	}
	defer tf.Close()
	if err := report.Write(tf, result, report.FormatText); err != nil {
		return errors.NewInternalError("Failed to encode text report", err.Error(), "This is a bug; please report it", err)
	}
	fmt.Fprintf(tf, "Quarantine ID: %s\n", id)

	return nil
}

// List enumerates items across the Pending and Approved areas, attaching
// whatever result was last persisted for each.
func (m *Manager) List() ([]*model.QuarantineItem, error) {
	var items []*model.QuarantineItem

	pending, err := m.listDir(m.cfg.QuarantineDir, model.StatePending)
	if err != nil {
		return nil, err
	}
	approved, err := m.listDir(m.cfg.ApprovedDir, model.StateApproved)
	if err != nil {
		return nil, err
	}
	items = append(items, pending...)
	items = append(items, approved...)

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *Manager) listDir(dir string, state model.QuarantineState) ([]*model.QuarantineItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var items []*model.QuarantineItem
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		item := &model.QuarantineItem{
			ID:        e.Name(),
			Path:      filepath.Join(dir, e.Name()),
			State:     state,
			CreatedAt: info.ModTime(),
			UpdatedAt: info.ModTime(),
		}
		item.Result = m.loadReport(e.Name())
		items = append(items, item)
	}
	return items, nil
}

func (m *Manager) loadReport(id string) *model.ScanResult {
	path := filepath.Join(m.cfg.ReportsDir, id+".json")
	f, err := os.Open(path) //nolint:gosec // G304: path built from an on-disk quarantine id
	if err != nil {
		return nil
	}
	defer f.Close()
	result, err := report.ReadJSON(f)
	if err != nil {
		return nil
	}
	return result
}

// Approve moves id's staged tree from quarantine/<id>/ to approved/<id>/.
// id must be Pending and must resolve to a direct child of the quarantine
// area; any other id is rejected with no filesystem mutation.
func (m *Manager) Approve(id string) error {
	if !ValidID(id) {
		return errors.NewLifecycleError("Invalid quarantine id", fmt.Sprintf("%q is not a valid quarantine id", id), "Use the id shown by 'sigil list'")
	}
	src := filepath.Join(m.cfg.QuarantineDir, id)
	if !isDirectChild(m.cfg.QuarantineDir, src) {
		return errors.NewLifecycleError("Invalid quarantine id", "id resolves outside the quarantine area", "Use the id shown by 'sigil list'")
	}
	if _, err := os.Stat(src); err != nil {
		return errors.NewLifecycleError("Item is not Pending", fmt.Sprintf("no pending quarantine item with id %q", id), "Run 'sigil list' to see current items")
	}

	unlock, err := acquireLock(src + ".lock")
	if err != nil {
		return errors.NewLifecycleError("Quarantine item is busy", err.Error(), "Wait for the other sigil process to finish and retry")
	}
	defer unlock()

	dest := filepath.Join(m.cfg.ApprovedDir, id)
	if err := os.MkdirAll(m.cfg.ApprovedDir, 0700); err != nil {
		return errors.NewPermissionError("Cannot create approved directory", err.Error(), "Check filesystem permissions", err)
	}
	if err := os.Rename(src, dest); err != nil {
		return errors.NewPermissionError("Failed to approve item", err.Error(), "Check filesystem permissions and that the destination is on the same filesystem", err)
	}
	return nil
}

// Reject recursively deletes id's staged tree, retaining the report file as
// an audit trail. id must be Pending and a direct child of the quarantine
// area.
func (m *Manager) Reject(id string) error {
	if !ValidID(id) {
		return errors.NewLifecycleError("Invalid quarantine id", fmt.Sprintf("%q is not a valid quarantine id", id), "Use the id shown by 'sigil list'")
	}
	src := filepath.Join(m.cfg.QuarantineDir, id)
	if !isDirectChild(m.cfg.QuarantineDir, src) {
		return errors.NewLifecycleError("Invalid quarantine id", "id resolves outside the quarantine area", "Use the id shown by 'sigil list'")
	}
	if _, err := os.Stat(src); err != nil {
		return errors.NewLifecycleError("Item is not Pending", fmt.Sprintf("no pending quarantine item with id %q", id), "Run 'sigil list' to see current items")
	}

	unlock, err := acquireLock(src + ".lock")
	if err != nil {
		return errors.NewLifecycleError("Quarantine item is busy", err.Error(), "Wait for the other sigil process to finish and retry")
	}
	defer unlock()

	if err := os.RemoveAll(src); err != nil {
		return errors.NewPermissionError("Failed to reject item", err.Error(), "Check filesystem permissions", err)
	}
	return nil
}

// isDirectChild reports whether child is exactly one path segment below
// parent, with no ".." components that could escape it - the defense
// against path traversal in an id argument required by the safety contract.
func isDirectChild(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." {
		return false
	}
	return filepath.Base(rel) == rel
}

// copyTree copies src (a directory) into dst, preserving the tree shape.
// Symlinks are recreated as symlinks, never followed, matching the
// fingerprinter's own treatment of them.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if rel == "." {
			return os.MkdirAll(target, 0700)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(linkTarget, target)
		}
		if info.IsDir() {
			return os.MkdirAll(target, 0700)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return err
	}
	in, err := os.Open(src) //nolint:gosec // G304: path comes from a caller-supplied local staging source
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst) //nolint:gosec // G304: dst is a freshly created staging path owned by the manager
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
