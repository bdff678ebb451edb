// Package corpus holds the relational verse corpus and its in-memory,
// denormalized search view. The repository owns its rows for the lifetime
// of a session; it is rebuilt on reload, never mutated concurrently.
package corpus

import (
	"fmt"
	"strings"
)

// Work identifies a book or collection in the corpus.
// Immutable once loaded.
type Work struct {
	ID       int64
	Title    string
	TypeCode string
	Author   string
	Slug     string
}

// Division is a chapter-like grouping, ordered by ordinal within a work.
type Division struct {
	ID      int64
	WorkID  int64
	Ordinal int
}

// Verse is the smallest addressable unit.
// Uniquely addressed by (work, division, ordinal).
type Verse struct {
	ID         int64
	WorkID     int64
	DivisionID int64
	Ordinal    int
	Citation   string
}

// VerseText holds the parallel renderings of a verse.
// Any field may be empty; absence is not an error.
type VerseText struct {
	Source      string // source script (e.g. Devanagari)
	Translit    string // transliteration (e.g. IAST)
	Translation string
}

// GlossToken is one surface-form/gloss pair of a verse's word-for-word
// apparatus, in verse order.
type GlossToken struct {
	Surface string
	Gloss   string
}

// Locator is the stable, shareable address of a single verse,
// usable to deep-link results.
type Locator struct {
	WorkID   int64
	Division int
	Verse    int
}

// String renders the locator as a citation, e.g. "3:1.12".
func (l Locator) String() string {
	return fmt.Sprintf("%d:%d.%d", l.WorkID, l.Division, l.Verse)
}

// VerseRow is the denormalized search view of one verse: the verse and its
// texts joined with resolved work metadata and division ordinal.
type VerseRow struct {
	Verse           Verse
	Text            VerseText
	WorkTitle       string
	WorkType        string
	DivisionOrdinal int

	gloss       []GlossToken
	wordForWord string
	glossJoined bool
}

// WordForWord returns the verse's gloss pairs concatenated into a single
// haystack string: pairs joined by an em dash, tokens joined by "; ".
// Computed once per row and cached.
func (r *VerseRow) WordForWord() string {
	if r.glossJoined {
		return r.wordForWord
	}
	parts := make([]string, 0, len(r.gloss))
	for _, g := range r.gloss {
		parts = append(parts, g.Surface+" — "+g.Gloss)
	}
	r.wordForWord = strings.Join(parts, "; ")
	r.glossJoined = true
	return r.wordForWord
}

// Gloss returns the ordered gloss tokens of the verse.
func (r *VerseRow) Gloss() []GlossToken {
	return r.gloss
}

// Locator returns the stable verse address of this row.
func (r *VerseRow) Locator() Locator {
	return Locator{
		WorkID:   r.Verse.WorkID,
		Division: r.DivisionOrdinal,
		Verse:    r.Verse.Ordinal,
	}
}
