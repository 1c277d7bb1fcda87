// Package pattern matches repository paths against glob patterns.
//
// The dialect is doublestar: `*` matches within a path segment, `**` matches
// any number of segments, and dotfiles are not treated specially. Matching is
// case-sensitive.
package pattern

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are paths that never contribute to size or risk analysis.
var DefaultExcludes = []string{
	".vscode/**",
	".idea/**",
	".husky/**",
	".git/**",
	"node_modules/**",
	"**/*.lock",
	"**/package-lock.json",
	"**/pnpm-lock.yaml",
	"**/yarn.lock",
	"**/composer.lock",
	"**/Gemfile.lock",
	"**/Cargo.lock",
	"**/poetry.lock",
	"**/Pipfile.lock",
	"**/.DS_Store",
	"**/Thumbs.db",
	"**/.dependency-cruiser.js",
	"**/.dockerignore",
	"**/.coderabbit.yaml",
	"**/.github/actionlint.yaml",
}

// Match reports whether path matches pattern. Invalid patterns never match.
func Match(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, normalize(path))
	return err == nil && ok
}

// MatchAny reports whether path matches at least one of patterns.
func MatchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if Match(p, path) {
			return true
		}
	}
	return false
}

// Filter returns the paths matching at least one pattern, preserving order.
func Filter(patterns, paths []string) []string {
	var out []string
	for _, p := range paths {
		if MatchAny(patterns, p) {
			out = append(out, p)
		}
	}
	return out
}

// Valid reports whether pattern is a well-formed glob.
func Valid(pattern string) bool {
	if strings.TrimSpace(pattern) == "" {
		return false
	}
	return doublestar.ValidatePattern(pattern)
}

func normalize(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.TrimPrefix(path, "./")
}

// Excluder decides whether a path is excluded from analysis.
type Excluder struct {
	patterns []string
}

// NewExcluder builds an Excluder from the default excludes (when useDefaults
// is set) followed by additional patterns. Duplicates are dropped.
func NewExcluder(useDefaults bool, additional ...string) *Excluder {
	seen := make(map[string]bool)
	var patterns []string
	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		patterns = append(patterns, p)
	}
	if useDefaults {
		for _, p := range DefaultExcludes {
			add(p)
		}
	}
	for _, p := range additional {
		add(p)
	}
	return &Excluder{patterns: patterns}
}

// Excluded reports whether path matches any exclusion pattern.
func (e *Excluder) Excluded(path string) bool {
	if e == nil {
		return false
	}
	return MatchAny(e.patterns, path)
}

// Patterns returns the effective exclusion patterns.
func (e *Excluder) Patterns() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.patterns...)
}
