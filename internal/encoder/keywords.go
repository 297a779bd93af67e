// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package encoder

import "strings"

// DefaultKeywords flag a diagnostic line as stream-breaking.
//
// The table is deliberately broad: several entries also appear in harmless
// ffmpeg chatter, and such lines still abort the attempt. Fast failure beats
// precision here.
var DefaultKeywords = []string{
	"error",
	"invalid",
	"corrupt",
	"broken",
	"non-monotonous",
	"mismatch",
	"decode",
	"incomplete",
	"unavailable",
}

// Matcher tests diagnostic lines against a keyword table.
type Matcher struct {
	keywords []string
}

// NewMatcher builds a matcher; an empty table selects DefaultKeywords.
func NewMatcher(keywords []string) *Matcher {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	m := &Matcher{keywords: make([]string, 0, len(keywords))}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			m.keywords = append(m.keywords, k)
		}
	}
	return m
}

// Match reports the first keyword (in table order) contained in the lower-cased line.
func (m *Matcher) Match(line string) (string, bool) {
	lower := strings.ToLower(line)
	for _, k := range m.keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

// MaxLen is the byte length of the longest keyword.
func (m *Matcher) MaxLen() int {
	n := 0
	for _, k := range m.keywords {
		n = max(n, len(k))
	}
	return n
}

// Keywords returns a copy of the table.
func (m *Matcher) Keywords() []string {
	return append([]string(nil), m.keywords...)
}
