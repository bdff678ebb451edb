package search

import (
	"github.com/samhita-labs/grantha/internal/corpus"
)

// Engine runs lexical queries over a loaded corpus. Stateless apart
// from the repository reference; safe for concurrent use.
type Engine struct {
	repo *corpus.Repository
}

// New creates an Engine over repo.
func New(repo *corpus.Repository) *Engine {
	return &Engine{repo: repo}
}

// Search compiles query, scans the corpus in order, and returns every
// matching verse. A blank query matches nothing.
func (e *Engine) Search(query string, f Filters) []Result {
	m := Compile(query)
	if m.Empty() {
		return nil
	}
	scopes := f.scopes()

	var results []Result
	for _, row := range e.repo.Rows() {
		if len(f.WorkIDs) > 0 && !f.WorkIDs[row.Verse.WorkID] {
			continue
		}
		var matched []Scope
		for _, s := range scopes {
			if m.Match(scopeText(row, s)) {
				matched = append(matched, s)
			}
		}
		if len(matched) == 0 {
			continue
		}
		r := Result{
			Row:           row,
			MatchedScopes: orderScopes(matched),
			Locator:       row.Locator(),
		}
		r.SnippetScope = r.MatchedScopes[0]
		r.Snippet = scopeText(row, r.SnippetScope)
		r.Highlights = m.Spans(r.Snippet)
		results = append(results, r)
	}
	return results
}

// scopeText resolves a scope to its verse field.
func scopeText(row *corpus.VerseRow, s Scope) string {
	switch s {
	case ScopeSource:
		return row.Text.Source
	case ScopeTranslit:
		return row.Text.Translit
	case ScopeTranslation:
		return row.Text.Translation
	case ScopeGloss:
		return row.WordForWord()
	}
	return ""
}

// orderScopes sorts matched scopes into snippet preference order.
func orderScopes(matched []Scope) []Scope {
	set := make(map[Scope]bool, len(matched))
	for _, s := range matched {
		set[s] = true
	}
	out := make([]Scope, 0, len(matched))
	for _, s := range AllScopes {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}
