package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samhita-labs/grantha/internal/corpus"
)

// ============================================================================
// Fixtures
// ============================================================================

// testRepo builds a two-work corpus: a short hymn with parallel texts
// and a prose work with translations only.
func testRepo() *corpus.Repository {
	works := []corpus.Work{
		{ID: 1, Slug: "vp", Title: "Vishnu Purana", TypeCode: "purana"},
		{ID: 2, Slug: "upadesa", Title: "Upadesa Sara", TypeCode: "prakarana"},
	}
	rows := []*corpus.VerseRow{
		corpus.NewVerseRow(
			corpus.Verse{ID: 1, WorkID: 1, DivisionID: 1, Ordinal: 1, Citation: "VP 1.1"},
			corpus.VerseText{
				Source:      "ॐ नमो वासुदेवाय",
				Translit:    "oṁ namo vāsudevāya",
				Translation: "I bow to Vasudeva.",
			},
			"Vishnu Purana", "purana", 1,
			[]corpus.GlossToken{{Surface: "namaḥ", Gloss: "bow, salutation"}},
		),
		corpus.NewVerseRow(
			corpus.Verse{ID: 2, WorkID: 1, DivisionID: 1, Ordinal: 2, Citation: "VP 1.2"},
			corpus.VerseText{
				Translit:    "jagataś ca sthitau",
				Translation: "For the continuance of the world.",
			},
			"Vishnu Purana", "purana", 1,
			nil,
		),
		corpus.NewVerseRow(
			corpus.Verse{ID: 3, WorkID: 2, DivisionID: 2, Ordinal: 1, Citation: "US 1"},
			corpus.VerseText{
				Translit:    "kartur ājñayā prāpyate phalam",
				Translation: "By the will of the maker, the fruit is gained.",
			},
			"Upadesa Sara", "prakarana", 1,
			nil,
		),
	}
	return corpus.NewRepository(works, rows)
}

// bulkRepo builds one work with n translation-only verses for
// pagination scenarios.
func bulkRepo(n int) *corpus.Repository {
	works := []corpus.Work{{ID: 1, Slug: "bulk", Title: "Bulk"}}
	rows := make([]*corpus.VerseRow, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, corpus.NewVerseRow(
			corpus.Verse{ID: int64(i), WorkID: 1, DivisionID: 1, Ordinal: i},
			corpus.VerseText{Translation: fmt.Sprintf("verse %d speaks of dharma", i)},
			"Bulk", "", 1, nil,
		))
	}
	return corpus.NewRepository(works, rows)
}

// ============================================================================
// Engine
// ============================================================================

func TestSearchLiteralAcrossScopes(t *testing.T) {
	// Given a query that matches the source text of one verse
	e := New(testRepo())

	// When searching without filters
	results := e.Search("नमो", Filters{})

	// Then only the hymn verse matches, in its source scope
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Row.Verse.ID)
	assert.Equal(t, []Scope{ScopeSource}, results[0].MatchedScopes)
	assert.Equal(t, ScopeSource, results[0].SnippetScope)
}

func TestSearchRegexOverSourceScope(t *testing.T) {
	// A Devanagari regex restricted to the source scope hits the hymn
	// verse; the same word never appears in translations.
	e := New(testRepo())

	results := e.Search("/नमो/", Filters{Scopes: []Scope{ScopeSource}})
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Row.Verse.ID)

	assert.Empty(t, e.Search("नमो", Filters{Scopes: []Scope{ScopeTranslation}}))
}

func TestSearchDiacriticInsensitive(t *testing.T) {
	// "vasudevaya" in plain ASCII matches "vāsudevāya"
	e := New(testRepo())

	results := e.Search("vasudevaya", Filters{})

	require.Len(t, results, 1)
	assert.Equal(t, ScopeTranslit, results[0].SnippetScope)
}

func TestSearchSnippetPrefersTranslation(t *testing.T) {
	// Given a query matching both translation and gloss of one verse
	e := New(testRepo())

	results := e.Search("bow", Filters{})

	// Then both scopes are reported and the snippet comes from the
	// translation
	require.Len(t, results, 1)
	assert.Equal(t, []Scope{ScopeTranslation, ScopeGloss}, results[0].MatchedScopes)
	assert.Equal(t, ScopeTranslation, results[0].SnippetScope)
	assert.Equal(t, "I bow to Vasudeva.", results[0].Snippet)
}

func TestSearchScopeFilter(t *testing.T) {
	// Given a gloss-only scope filter
	e := New(testRepo())

	results := e.Search("salutation", Filters{Scopes: []Scope{ScopeGloss}})

	require.Len(t, results, 1)
	assert.Equal(t, ScopeGloss, results[0].SnippetScope)
	assert.Contains(t, results[0].Snippet, "namaḥ — bow, salutation")

	// And the same query outside its scope finds nothing
	assert.Empty(t, e.Search("salutation", Filters{Scopes: []Scope{ScopeTranslation}}))
}

func TestSearchWorkFilter(t *testing.T) {
	e := New(testRepo())

	all := e.Search("the", Filters{})
	only := e.Search("the", Filters{WorkIDs: map[int64]bool{2: true}})

	require.Len(t, all, 2)
	require.Len(t, only, 1)
	assert.Equal(t, int64(3), only[0].Row.Verse.ID)
}

func TestSearchEmptyQuery(t *testing.T) {
	e := New(testRepo())

	assert.Empty(t, e.Search("", Filters{}))
	assert.Empty(t, e.Search("   ", Filters{}))
}

func TestSearchCorpusOrder(t *testing.T) {
	e := New(bulkRepo(30))

	results := e.Search("dharma", Filters{})

	require.Len(t, results, 30)
	for i, r := range results {
		assert.Equal(t, i+1, r.Row.Verse.Ordinal)
	}
}

func TestSearchHighlightsOnOriginalText(t *testing.T) {
	// Given a match found on normalized text
	e := New(testRepo())

	results := e.Search("vasudevaya", Filters{})
	require.Len(t, results, 1)
	require.Len(t, results[0].Highlights, 1)

	// Then spans index the original snippet, diacritics included
	h := results[0].Highlights[0]
	assert.Equal(t, "vāsudevāya", results[0].Snippet[h.Start:h.End])
}

func TestSearchLocator(t *testing.T) {
	e := New(testRepo())

	results := e.Search("fruit", Filters{})
	require.Len(t, results, 1)
	assert.Equal(t, corpus.Locator{WorkID: 2, Division: 1, Verse: 1}, results[0].Locator)
}

// ============================================================================
// Pagination
// ============================================================================

func TestPaginatorDefaults(t *testing.T) {
	p := NewPaginator(57)

	assert.Equal(t, 25, p.PerPage())
	assert.Equal(t, 1, p.Page())
	assert.Equal(t, 3, p.PageCount())
}

func TestPaginatorClampsPage(t *testing.T) {
	// Given 57 results at 25 per page
	p := NewPaginator(57)

	// When asking for a page far out of range
	p.SetPage(99)

	// Then it clamps to the last page with the 7 remaining results
	assert.Equal(t, 3, p.Page())
	start, end := p.Window()
	assert.Equal(t, 50, start)
	assert.Equal(t, 57, end)

	p.SetPage(0)
	assert.Equal(t, 1, p.Page())
}

func TestPaginatorPageSizeResetsPage(t *testing.T) {
	p := NewPaginator(300)
	p.SetPage(5)

	p.SetPageSize(100)

	assert.Equal(t, 100, p.PerPage())
	assert.Equal(t, 1, p.Page())
}

func TestPaginatorRejectsUnknownSize(t *testing.T) {
	p := NewPaginator(60)
	p.SetPage(2)

	p.SetPageSize(33)

	assert.Equal(t, 25, p.PerPage())
	assert.Equal(t, 2, p.Page())
}

func TestPaginatorEmpty(t *testing.T) {
	p := NewPaginator(0)

	assert.Equal(t, 1, p.PageCount())
	start, end := p.Window()
	assert.Zero(t, start)
	assert.Zero(t, end)
	assert.Empty(t, p.Slice(nil))
}

func TestPaginatorSliceEndToEnd(t *testing.T) {
	e := New(bulkRepo(57))
	results := e.Search("dharma", Filters{})
	require.Len(t, results, 57)

	p := NewPaginator(len(results))
	p.SetPage(3)
	page := p.Slice(results)

	require.Len(t, page, 7)
	assert.Equal(t, 51, page[0].Row.Verse.Ordinal)
	assert.Equal(t, 57, page[6].Row.Verse.Ordinal)
}
