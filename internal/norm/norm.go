// Package norm canonicalizes text for accent- and diacritic-insensitive
// comparison. Every matching path in the lexical engine runs through it.
package norm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and removes combining marks, so "śiva"
// compares equal to "siva" while "shiva" stays distinct.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// dashMapper folds en and em dashes into a plain hyphen.
var dashMapper = strings.NewReplacer("–", "-", "—", "-")

// Normalize canonicalizes text for comparison: lower-case, canonical
// decomposition, combining marks stripped, en/em dashes mapped to "-".
// Idempotent; empty input yields empty output, never an error.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		// Transform failure leaves the lower-cased input usable as-is.
		out = strings.ToLower(s)
	}
	return dashMapper.Replace(out)
}

// Aligned normalizes text while recording, for every byte of the
// normalized output, the byte offset of the originating rune in the
// original string. Matchers use the map to project match positions found
// on normalized text back onto the original for highlighting.
type Aligned struct {
	// Norm is the normalized text.
	Norm string
	// starts[i] is the original byte offset of the rune that produced
	// normalized byte i. ends[i] is the offset just past that rune.
	starts []int
	ends   []int
}

// NewAligned builds an Aligned view of s.
func NewAligned(s string) *Aligned {
	var b strings.Builder
	var starts, ends []int

	for i, r := range s {
		next := i + len(string(r))
		piece := Normalize(string(r))
		b.WriteString(piece)
		for range len(piece) {
			starts = append(starts, i)
			ends = append(ends, next)
		}
	}

	return &Aligned{Norm: b.String(), starts: starts, ends: ends}
}

// Original maps a [start,end) byte range in the normalized text to the
// covering byte range in the original string. An empty or out-of-bounds
// range maps to (0,0).
func (a *Aligned) Original(start, end int) (int, int) {
	if start < 0 || end <= start || start >= len(a.starts) {
		return 0, 0
	}
	if end > len(a.ends) {
		end = len(a.ends)
	}
	return a.starts[start], a.ends[end-1]
}
