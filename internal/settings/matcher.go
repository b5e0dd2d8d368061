package settings

import (
	"path/filepath"
	"regexp"
	"strings"
)

// PathMatcher matches filesystem paths against blocked-path patterns.
type PathMatcher struct{}

// NewPathMatcher creates a new path matcher
func NewPathMatcher() *PathMatcher {
	return &PathMatcher{}
}

// Match checks if a path matches a blocked-path pattern.
// Patterns support:
//   - Base name match: ".env" blocks any file named .env
//   - Glob wildcard: "*.pem" blocks any file ending in .pem
//   - Component match: ".ssh" blocks anything under a .ssh directory
//   - Path glob: "*/secrets/*" matched against the full path
func (pm *PathMatcher) Match(path, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}

	path = filepath.ToSlash(filepath.Clean(path))
	base := filepath.Base(path)

	// Full-path glob patterns
	if strings.Contains(pattern, "/") {
		return pm.matchGlob(path, filepath.ToSlash(pattern))
	}

	// Base name patterns, with or without wildcards
	if strings.Contains(pattern, "*") {
		return pm.matchGlob(base, pattern)
	}
	if base == pattern {
		return true
	}

	// Bare name also matches any directory component
	for _, part := range strings.Split(path, "/") {
		if part == pattern {
			return true
		}
	}

	return false
}

// matchGlob matches a string against a pattern with * wildcards
func (pm *PathMatcher) matchGlob(s, pattern string) bool {
	regexPattern := regexp.QuoteMeta(pattern)
	regexPattern = strings.ReplaceAll(regexPattern, `\*`, `.*`)
	regexPattern = "^" + regexPattern + "$"

	re, err := regexp.Compile(regexPattern)
	if err != nil {
		return false
	}

	return re.MatchString(s)
}

// MatchAny checks a path against a list of blocked-path patterns
func (pm *PathMatcher) MatchAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pm.Match(path, pattern) {
			return true
		}
	}
	return false
}
