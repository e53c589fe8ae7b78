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

// Package signatures holds the catalog of pattern rules the scanner applies
// to scanned files: a closed record type for phase and severity, a
// validated loader, and the built-in rule set.
package signatures

import (
	"fmt"
	"regexp"
)

// Phase identifies one of the six fixed categories of patterns evaluated
// against each file. Phases are applied in a fixed order and each carries
// an intrinsic severity multiplier used by the scorer.
type Phase string

const (
	PhaseInstallHooks  Phase = "InstallHooks"
	PhaseCodePatterns  Phase = "CodePatterns"
	PhaseNetworkExfil  Phase = "NetworkExfil"
	PhaseCredentials   Phase = "Credentials"
	PhaseObfuscation   Phase = "Obfuscation"
	PhaseProvenance    Phase = "Provenance"
)

// Phases lists the six phases in their fixed evaluation and report order.
var Phases = []Phase{
	PhaseInstallHooks,
	PhaseCodePatterns,
	PhaseNetworkExfil,
	PhaseCredentials,
	PhaseObfuscation,
	PhaseProvenance,
}

// Multiplier returns the intrinsic scoring multiplier for a phase. spec.md's
// Provenance design calls for a per-rule multiplier in [1,3]; this catalog
// collapses that to a flat 2 applied uniformly by the scorer, so two
// Provenance rules with different per-rule weight (e.g. weight 1 vs weight 3)
// still scale by the same constant here, not by an individual factor.
func (p Phase) Multiplier() float64 {
	switch p {
	case PhaseInstallHooks:
		return 10
	case PhaseCodePatterns:
		return 5
	case PhaseNetworkExfil:
		return 3
	case PhaseCredentials:
		return 2
	case PhaseObfuscation:
		return 5
	case PhaseProvenance:
		return 2
	default:
		return 1
	}
}

func (p Phase) valid() bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

// Severity is a closed enumeration of finding/signature severity levels.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

func (s Severity) valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank returns an ordinal for sorting findings by severity, descending.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Signature is a single immutable pattern rule. Signatures are identified by
// a globally unique id; updates replace an existing entry by id rather than
// mutating it in place.
type Signature struct {
	ID                      string         `json:"id" yaml:"id" validate:"required"`
	Phase                   Phase          `json:"phase" yaml:"phase" validate:"required,oneof=InstallHooks CodePatterns NetworkExfil Credentials Obfuscation Provenance"`
	Severity                Severity       `json:"severity" yaml:"severity" validate:"required,oneof=Critical High Medium Low"`
	Weight                  float64        `json:"weight" yaml:"weight" validate:"gte=0,lte=20"`
	Pattern                 string         `json:"pattern" yaml:"pattern"`
	Description             string         `json:"description" yaml:"description" validate:"required"`
	LanguageHints           []string       `json:"language_hints,omitempty" yaml:"language_hints,omitempty"`
	Category                string         `json:"category,omitempty" yaml:"category,omitempty"`
	FalsePositiveLikelihood string         `json:"false_positive_likelihood,omitempty" yaml:"false_positive_likelihood,omitempty"`
	ManifestOnly            bool           `json:"manifest_only,omitempty" yaml:"manifest_only,omitempty"`
	compiled                *regexp.Regexp `json:"-" yaml:"-"`
}

// Compiled returns the compiled pattern. It is only valid after the
// signature has passed through a Store's validated load.
func (s *Signature) Compiled() *regexp.Regexp {
	return s.compiled
}

// AcceptsLanguage reports whether the signature applies to a file with the
// given language hint. A signature with no language hints applies to every
// language.
func (s *Signature) AcceptsLanguage(hint string) bool {
	if len(s.LanguageHints) == 0 {
		return true
	}
	for _, h := range s.LanguageHints {
		if h == hint {
			return true
		}
	}
	return false
}

// ValidationError reports a problem found while loading a signature set. It
// names the offending signature id and the reason, matching the failure
// taxonomy in the component design (InvalidPattern, UnknownPhase,
// OutOfRangeWeight, DuplicateID).
type ValidationError struct {
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("signature %q: %s", e.ID, e.Reason)
}

func newValidationError(id, format string, args ...interface{}) *ValidationError {
	return &ValidationError{ID: id, Reason: fmt.Sprintf(format, args...)}
}

// compile validates and compiles a single signature in place. It is called
// once per signature during a Store load; a signature store is either
// entirely valid or unusable, so the first error aborts the whole load.
func compile(sig *Signature) error {
	if sig.ID == "" {
		return newValidationError("", "id must not be empty")
	}
	if !sig.Phase.valid() {
		return newValidationError(sig.ID, "unknown phase %q", sig.Phase)
	}
	if !sig.Severity.valid() {
		return newValidationError(sig.ID, "unknown severity %q", sig.Severity)
	}
	if sig.Weight < 0 || sig.Weight > 20 {
		return newValidationError(sig.ID, "weight %v out of range [0,20]", sig.Weight)
	}
	if sig.Pattern == "" {
		// Provenance rules operate on filesystem facts, not content; they
		// carry no regular expression and are evaluated by dedicated Go code
		// in the scanner instead of pattern matching.
		if sig.Phase != PhaseProvenance {
			return newValidationError(sig.ID, "pattern must not be empty")
		}
		return nil
	}
	re, err := regexp.Compile("(?im)" + sig.Pattern)
	if err != nil {
		return newValidationError(sig.ID, "invalid pattern: %v", err)
	}
	sig.compiled = re
	return nil
}
