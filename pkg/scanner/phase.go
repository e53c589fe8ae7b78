// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package scanner

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/sigil/pkg/signatures"
)

// manifestPatterns recognizes the file paths InstallHooks rules are allowed
// to match against. Matching an InstallHooks rule outside these paths is
// suppressed, per the phase's manifest-only policy.
var manifestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|/)package\.json$`),
	regexp.MustCompile(`(^|/)setup\.py$`),
	regexp.MustCompile(`(^|/)setup\.cfg$`),
	regexp.MustCompile(`(^|/)pyproject\.toml$`),
	regexp.MustCompile(`(^|/)Makefile$`),
	regexp.MustCompile(`(^|/)\.github/workflows/.*\.ya?ml$`),
	regexp.MustCompile(`(^|/)mcp\.json$`),
	regexp.MustCompile(`(^|/)\.mcp/.*\.json$`),
	regexp.MustCompile(`(^|/)Gemfile$`),
	regexp.MustCompile(`\.gemspec$`),
	regexp.MustCompile(`(^|/)Cargo\.toml$`),
]

// isManifestPath reports whether relPath is one of the recognized manifest
// files InstallHooks rules may be evaluated against.
func isManifestPath(relPath string) bool {
	for _, re := range manifestPatterns {
		if re.MatchString(relPath) {
			return true
		}
	}
	return false
}

// phaseApplies reports whether a signature in the given phase should even be
// attempted against a file, before running its pattern. It encodes the
// per-phase policies from the component design that are cheaper to check up
// front than inside the regex.
func phaseApplies(phase signatures.Phase, relPath string, binary bool) bool {
	switch phase {
	case signatures.PhaseInstallHooks:
		return isManifestPath(relPath)
	case signatures.PhaseProvenance:
		return false // Provenance findings are computed separately, from filesystem facts
	default:
		return !binary
	}
}

// hiddenFileAllowlist lists dotfiles that are routine and should not trigger
// the hidden-file Provenance rule.
var hiddenFileAllowlist = map[string]bool{
	".gitignore":     true,
	".gitattributes": true,
	".sigilignore":   true,
	".editorconfig":  true,
	".npmignore":     true,
	".dockerignore":  true,
	".env.example":   true,
}

// suspiciousFilenames lists filenames that impersonate a well-known system
// or VCS file when found somewhere that is not its legitimate location.
var suspiciousFilenames = map[string]bool{
	"passwd":   true,
	"shadow":   true,
	"id_rsa":   true,
	".git":     true,
	".ssh":     true,
	"authorized_keys": true,
}

// isHiddenFile reports whether relPath names a dotfile outside the
// conventional allowlist.
func isHiddenFile(relPath string) bool {
	base := filepath.Base(relPath)
	if !strings.HasPrefix(base, ".") {
		return false
	}
	return !hiddenFileAllowlist[base]
}

// isSuspiciousFilename reports whether relPath's base name impersonates a
// well-known system/VCS path while living somewhere else in the tree.
func isSuspiciousFilename(relPath string) bool {
	base := filepath.Base(relPath)
	return suspiciousFilenames[strings.ToLower(base)]
}

// hasDoubleExtension reports whether relPath's name carries two extensions
// where the final one is an executable type, e.g. "invoice.pdf.exe".
func hasDoubleExtension(relPath string) bool {
	base := filepath.Base(relPath)
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return false
	}
	last := strings.ToLower(parts[len(parts)-1])
	switch last {
	case "exe", "scr", "bat", "cmd", "com", "pif", "vbs", "js", "jar", "msi":
		return true
	default:
		return false
	}
}
