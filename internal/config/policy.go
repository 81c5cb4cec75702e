package config

import (
	"fmt"

	"github.com/gobwas/glob"

	"xnav/internal/paths"
)

// Policy answers "is this path ignorable?" against a set of compiled globs.
// `*` matches within one path segment, `**` matches across segments.
// Matching is case-sensitive and runs on the canonical stored path.
type Policy struct {
	patterns []string
	matchers []glob.Glob
}

// Compile compiles every pattern once. The first invalid pattern aborts
// compilation with a ConfigError naming it.
func Compile(patterns []string) (*Policy, error) {
	p := &Policy{
		patterns: append([]string(nil), patterns...),
		matchers: make([]glob.Glob, 0, len(patterns)),
	}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, &ConfigError{
				Field:   "ignored_patterns",
				Message: fmt.Sprintf("invalid glob pattern %q: %v", pattern, err),
			}
		}
		p.matchers = append(p.matchers, g)
	}
	return p, nil
}

// MustCompile is Compile for patterns known to be valid.
func MustCompile(patterns []string) *Policy {
	p, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return p
}

// IsIgnored reports whether path matches any ignore pattern.
func (p *Policy) IsIgnored(path string) bool {
	if p == nil {
		return false
	}
	normalized := paths.NormalizePath(path)
	for _, m := range p.matchers {
		if m.Match(normalized) {
			return true
		}
	}
	return false
}

// MatchingPattern returns the first pattern that matches path.
func (p *Policy) MatchingPattern(path string) (string, bool) {
	if p == nil {
		return "", false
	}
	normalized := paths.NormalizePath(path)
	for i, m := range p.matchers {
		if m.Match(normalized) {
			return p.patterns[i], true
		}
	}
	return "", false
}

// Patterns returns the source patterns in order.
func (p *Policy) Patterns() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.patterns...)
}
