// Package patterns holds the field pattern catalog: for each report field, an
// ordered list of regular expressions with exactly one capture group each.
package patterns

import (
	"fmt"
	"regexp"
)

// matchFlags applies case-insensitive, multi-line and dot-matches-newline modes.
const matchFlags = "(?ims)"

// Pattern is one candidate expression for a field.
// A pattern that failed to compile keeps its error and never matches.
type Pattern struct {
	Source string

	re  *regexp.Regexp
	err error
}

// CompilePattern compiles src with the catalog match flags.
// Compile failures are recorded on the returned Pattern rather than returned.
func CompilePattern(src string) Pattern {
	p := Pattern{Source: src}
	re, err := regexp.Compile(matchFlags + src)
	if err != nil {
		p.err = fmt.Errorf("compile %q: %w", src, err)
		return p
	}
	if n := re.NumSubexp(); n != 1 {
		p.err = fmt.Errorf("pattern %q must have exactly one capture group, has %d", src, n)
		return p
	}
	p.re = re
	return p
}

// Err returns the compile error, if any.
func (p Pattern) Err() error { return p.err }

// Broken reports whether the pattern can never match.
func (p Pattern) Broken() bool { return p.re == nil }

// Find searches text and returns the raw capture group.
func (p Pattern) Find(text string) (string, bool) {
	if p.re == nil {
		return "", false
	}
	m := p.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Rule is the ordered fallback list for one field. Order is significant.
type Rule struct {
	Field    string
	Patterns []Pattern
}

// NewRule compiles sources in order.
func NewRule(field string, sources ...string) Rule {
	r := Rule{Field: field, Patterns: make([]Pattern, 0, len(sources))}
	for _, src := range sources {
		r.Patterns = append(r.Patterns, CompilePattern(src))
	}
	return r
}
