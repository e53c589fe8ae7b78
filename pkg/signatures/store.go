// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package signatures

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Store is the in-memory catalog of signatures currently active for a scan.
// A Store is read-only once loaded: scanning workers share it concurrently
// without locking, and mutation happens only through Merge, which produces
// no data race because it runs before any scan starts.
type Store struct {
	byID    map[string]*Signature
	version string
}

// LoadBuiltin compiles the embedded catalog bundled with the binary. It never
// fails in a correctly built binary; an error return indicates the embedded
// catalog itself is corrupt, which is treated as an internal error upstream.
func LoadBuiltin() (*Store, error) {
	return newStore(builtinCatalog())
}

// LoadSet parses a JSON or YAML signature set from raw bytes. isYAML selects
// the decoder; both formats share the same Signature shape. The entries are
// not validated here; validation happens when the set is passed to Merge.
func LoadSet(data []byte, isYAML bool) ([]*Signature, error) {
	var sigs []*Signature
	var err error
	if isYAML {
		err = yaml.Unmarshal(data, &sigs)
	} else {
		err = json.Unmarshal(data, &sigs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse signature set: %w", err)
	}
	return sigs, nil
}

// LoadSetFile reads and parses a signature set file, selecting the decoder by
// extension (.yaml/.yml vs .json).
func LoadSetFile(path string) ([]*Signature, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied signature source
	if err != nil {
		return nil, fmt.Errorf("read signature set %s: %w", path, err)
	}
	isYAML := strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
	return LoadSet(data, isYAML)
}

// newStore validates every signature in sigs, rejecting the whole set on the
// first failure (a signature store is either entirely valid or unusable),
// then builds the id index and a version stamp.
func newStore(sigs []*Signature) (*Store, error) {
	byID := make(map[string]*Signature, len(sigs))
	for _, sig := range sigs {
		if err := validate.Struct(sig); err != nil {
			return nil, newValidationError(sig.ID, "%v", err)
		}
		if err := compile(sig); err != nil {
			return nil, err
		}
		if _, dup := byID[sig.ID]; dup {
			return nil, newValidationError(sig.ID, "duplicate id within source")
		}
		byID[sig.ID] = sig
	}
	return &Store{byID: byID, version: computeVersion(byID)}, nil
}

// Merge overlays additional signatures onto the store by id: entries with an
// id already present replace the earlier entry, new ids are added. The whole
// incoming set is validated before anything is merged, so a bad cloud set
// cannot leave the store partially updated.
func (s *Store) Merge(extra []*Signature) error {
	merged := make([]*Signature, 0, len(s.byID)+len(extra))
	for _, sig := range s.byID {
		merged = append(merged, sig)
	}
	seen := make(map[string]bool, len(extra))
	for _, sig := range extra {
		if seen[sig.ID] {
			return newValidationError(sig.ID, "duplicate id within source")
		}
		seen[sig.ID] = true
	}

	next := make(map[string]*Signature, len(s.byID)+len(extra))
	for _, sig := range merged {
		next[sig.ID] = sig
	}
	for _, sig := range extra {
		cp := *sig
		if err := validate.Struct(&cp); err != nil {
			return newValidationError(cp.ID, "%v", err)
		}
		if err := compile(&cp); err != nil {
			return err
		}
		next[cp.ID] = &cp
	}

	s.byID = next
	s.version = computeVersion(next)
	return nil
}

// Version returns a content hash of the current set of signatures. It
// changes whenever membership or any pattern changes; it carries no order, so
// two versions cannot be compared to tell which is newer. It is used as half
// of the cache key so a signature-set change never yields a stale cache hit.
func (s *Store) Version() string {
	return s.version
}

// ForPhase returns every signature belonging to the given phase. The
// returned slice is a fresh copy of pointers; callers must not mutate the
// pointed-to Signature values.
func (s *Store) ForPhase(phase Phase) []*Signature {
	out := make([]*Signature, 0, len(s.byID)/len(Phases)+1)
	for _, sig := range s.byID {
		if sig.Phase == phase {
			out = append(out, sig)
		}
	}
	return out
}

// Len returns the number of distinct signature ids currently loaded.
func (s *Store) Len() int {
	return len(s.byID)
}

// Get returns the signature with the given id, if present.
func (s *Store) Get(id string) (*Signature, bool) {
	sig, ok := s.byID[id]
	return sig, ok
}

// computeVersion derives a short, stable fingerprint of set membership and
// pattern content so any edit to the active signature set is observable
// without re-hashing every file in the cache.
func computeVersion(byID map[string]*Signature) string {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sortStrings(ids)

	h := newVersionHash()
	for _, id := range ids {
		sig := byID[id]
		h.writeString(sig.ID)
		h.writeString(string(sig.Phase))
		h.writeString(string(sig.Severity))
		h.writeString(fmt.Sprintf("%v", sig.Weight))
		h.writeString(sig.Pattern)
	}
	return h.sum()
}
