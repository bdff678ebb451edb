package corpus

// Repository is the loaded corpus: works in load order and verse rows in
// corpus order (work, then division ordinal, then verse ordinal).
// It is read-only after construction.
type Repository struct {
	works    []Work
	workByID map[int64]Work
	rows     []*VerseRow
}

// NewRepository builds a repository from works in load order and rows
// already in corpus order. Used when the corpus is assembled in memory
// rather than loaded from SQLite.
func NewRepository(works []Work, rows []*VerseRow) *Repository {
	r := &Repository{works: works, rows: rows, workByID: make(map[int64]Work, len(works))}
	for _, w := range works {
		r.workByID[w.ID] = w
	}
	return r
}

// NewVerseRow builds a row with its gloss tokens attached.
func NewVerseRow(v Verse, t VerseText, workTitle, workType string, divOrdinal int, gloss []GlossToken) *VerseRow {
	return &VerseRow{
		Verse:           v,
		Text:            t,
		WorkTitle:       workTitle,
		WorkType:        workType,
		DivisionOrdinal: divOrdinal,
		gloss:           gloss,
	}
}

// Works returns the works in load order.
func (r *Repository) Works() []Work {
	return r.works
}

// Work resolves a work by id.
func (r *Repository) Work(id int64) (Work, bool) {
	w, ok := r.workByID[id]
	return w, ok
}

// Rows returns all verse rows in corpus order. Callers must not mutate
// the returned slice.
func (r *Repository) Rows() []*VerseRow {
	return r.rows
}

// Len reports the number of verse rows.
func (r *Repository) Len() int {
	return len(r.rows)
}

// Scan visits rows in corpus order, collecting those for which pred
// returns true.
func (r *Repository) Scan(pred func(*VerseRow) bool) []*VerseRow {
	var out []*VerseRow
	for _, row := range r.rows {
		if pred(row) {
			out = append(out, row)
		}
	}
	return out
}
