// Package privacy masks configured patterns in post text before it is
// written to the archive.
package privacy

import (
	"fmt"
	"regexp"
)

const redactedPlaceholder = "[REDACTED]"

// Redactor replaces every match of its patterns with [REDACTED].
// A nil or empty Redactor leaves text unchanged.
type Redactor struct {
	patterns []*regexp.Regexp
}

// New compiles patterns into a Redactor. Returns an error if any pattern
// is invalid.
func New(patterns []string) (*Redactor, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile redact pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &Redactor{patterns: compiled}, nil
}

// Enabled reports whether r has at least one pattern.
func (r *Redactor) Enabled() bool {
	return r != nil && len(r.patterns) > 0
}

// Apply returns text with all matches replaced.
func (r *Redactor) Apply(text string) string {
	if !r.Enabled() {
		return text
	}
	for _, re := range r.patterns {
		text = re.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}

// ApplyAll returns a new slice with Apply run on each element.
func (r *Redactor) ApplyAll(texts []string) []string {
	if len(texts) == 0 {
		return texts
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = r.Apply(t)
	}
	return out
}
