package search

import (
	"regexp"
	"strings"

	"github.com/samhita-labs/grantha/internal/norm"
)

// Matcher is one compiled query. Three forms are recognized:
//
//	/pattern/flags   regex, flags drawn from i m s
//	pattern with * ? wildcard, * spans any run, ? one character
//	anything else    literal substring
//
// A regex is tried against the original text first, then against the
// normalized text, then a normalized copy of the pattern is tried, so
// matching stays case- and diacritic-insensitive without losing
// escape-bearing patterns that only make sense verbatim. The other
// forms run over normalized text directly. A regex form that fails to
// compile falls back to the literal form rather than erroring.
type Matcher struct {
	raw     string
	re      *regexp.Regexp
	reNorm  *regexp.Regexp
	literal string
	empty   bool
}

var regexForm = regexp.MustCompile(`^/(.*)/([ims]*)$`)

// Compile parses a query into a Matcher. Never fails; an empty or
// all-whitespace query yields a matcher that matches nothing.
func Compile(query string) *Matcher {
	m := &Matcher{raw: query}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		m.empty = true
		return m
	}

	if parts := regexForm.FindStringSubmatch(trimmed); parts != nil && parts[1] != "" {
		pattern := parts[1]
		if flags := parts[2]; flags != "" {
			pattern = "(?" + flags + ")" + pattern
		}
		if re, err := regexp.Compile(pattern); err == nil {
			m.re = re
			// A pattern carrying diacritics can never hit the normalized
			// haystack, so a normalized copy is tried alongside it. Skipped
			// when the pattern has escapes: lowercasing flips their class.
			if normalized := norm.Normalize(pattern); normalized != pattern && !strings.Contains(pattern, `\`) {
				if reNorm, err := regexp.Compile(normalized); err == nil {
					m.reNorm = reNorm
				}
			}
			return m
		}
		// Unparseable regex degrades to searching the raw form.
	}

	if strings.ContainsAny(trimmed, "*?") {
		pattern := regexp.QuoteMeta(norm.Normalize(trimmed))
		pattern = strings.ReplaceAll(pattern, `\*`, `.*`)
		pattern = strings.ReplaceAll(pattern, `\?`, `.`)
		if re, err := regexp.Compile(pattern); err == nil {
			m.re = re
			return m
		}
	}

	m.literal = norm.Normalize(trimmed)
	return m
}

// Empty reports whether the query was blank.
func (m *Matcher) Empty() bool {
	return m.empty
}

// Match reports whether s contains the query.
func (m *Matcher) Match(s string) bool {
	if m.empty || s == "" {
		return false
	}
	if m.re != nil {
		if m.re.MatchString(s) {
			return true
		}
		text := norm.Normalize(s)
		if m.re.MatchString(text) {
			return true
		}
		return m.reNorm != nil && m.reNorm.MatchString(text)
	}
	return strings.Contains(norm.Normalize(s), m.literal)
}

// Spans returns the non-overlapping match ranges in s, as byte offsets
// into the original text. Empty-width regex matches are dropped.
func (m *Matcher) Spans(s string) []Span {
	if m.empty || s == "" {
		return nil
	}

	// Spans from the original haystack need no projection.
	if m.re != nil {
		var out []Span
		for _, loc := range m.re.FindAllStringIndex(s, -1) {
			if loc[1] > loc[0] {
				out = append(out, Span{Start: loc[0], End: loc[1]})
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	a := norm.NewAligned(s)

	var normSpans [][2]int
	if m.re != nil {
		for _, loc := range m.re.FindAllStringIndex(a.Norm, -1) {
			if loc[1] > loc[0] {
				normSpans = append(normSpans, [2]int{loc[0], loc[1]})
			}
		}
		if len(normSpans) == 0 && m.reNorm != nil {
			for _, loc := range m.reNorm.FindAllStringIndex(a.Norm, -1) {
				if loc[1] > loc[0] {
					normSpans = append(normSpans, [2]int{loc[0], loc[1]})
				}
			}
		}
	} else if m.literal != "" {
		for from := 0; ; {
			i := strings.Index(a.Norm[from:], m.literal)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(m.literal)
			normSpans = append(normSpans, [2]int{start, end})
			from = end
		}
	}

	var out []Span
	for _, ns := range normSpans {
		start, end := a.Original(ns[0], ns[1])
		if end <= start {
			continue
		}
		// Projection can widen adjacent spans onto the same rune.
		if n := len(out); n > 0 && start < out[n-1].End {
			if end > out[n-1].End {
				out[n-1].End = end
			}
			continue
		}
		out = append(out, Span{Start: start, End: end})
	}
	return out
}
