// Package search implements lexical verse search: query parsing with
// regex and wildcard forms, diacritic-insensitive matching, scope and
// work filtering, snippets with highlight spans, and pagination.
// The engine is pure and synchronous; results always follow corpus order.
package search

import (
	"github.com/samhita-labs/grantha/internal/corpus"
)

// Scope names one searchable text field of a verse. Scopes double as
// match filters and display columns.
type Scope string

const (
	ScopeSource      Scope = "source"
	ScopeTranslit    Scope = "translit"
	ScopeTranslation Scope = "translation"
	ScopeGloss       Scope = "gloss"
)

// AllScopes lists every scope in snippet preference order.
var AllScopes = []Scope{ScopeTranslation, ScopeTranslit, ScopeSource, ScopeGloss}

// Valid reports whether s names a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeSource, ScopeTranslit, ScopeTranslation, ScopeGloss:
		return true
	}
	return false
}

// Filters restricts a search. Zero value means no restriction: all
// works, all scopes.
type Filters struct {
	// WorkIDs limits matching to the listed works when non-empty.
	WorkIDs map[int64]bool

	// Scopes limits which fields are matched when non-empty.
	Scopes []Scope
}

func (f Filters) scopes() []Scope {
	if len(f.Scopes) == 0 {
		return AllScopes
	}
	out := make([]Scope, 0, len(f.Scopes))
	for _, s := range f.Scopes {
		if s.Valid() {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return AllScopes
	}
	return out
}

// Span is a half-open byte range into the original (unnormalized)
// snippet text.
type Span struct {
	Start int
	End   int
}

// Result is one matching verse with its presentation fields resolved.
type Result struct {
	Row *corpus.VerseRow

	// MatchedScopes lists the scopes whose text matched, in snippet
	// preference order.
	MatchedScopes []Scope

	// Snippet is the full text of the preferred matched scope, and
	// Highlights are the match spans within it.
	Snippet      string
	SnippetScope Scope
	Highlights   []Span

	Locator corpus.Locator
}
