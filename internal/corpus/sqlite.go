package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// Schema is the corpus database layout. Verse ordering is reconstructed
// from ordinals at load time, so row order in the file is irrelevant.
const Schema = `
CREATE TABLE IF NOT EXISTS works (
    work_id   INTEGER PRIMARY KEY,
    slug      TEXT NOT NULL UNIQUE,
    title     TEXT NOT NULL,
    type_code TEXT NOT NULL DEFAULT '',
    author    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS divisions (
    division_id INTEGER PRIMARY KEY,
    work_id     INTEGER NOT NULL REFERENCES works(work_id),
    ordinal     INTEGER NOT NULL,
    UNIQUE (work_id, ordinal)
);

CREATE TABLE IF NOT EXISTS verses (
    verse_id    INTEGER PRIMARY KEY,
    work_id     INTEGER NOT NULL REFERENCES works(work_id),
    division_id INTEGER NOT NULL REFERENCES divisions(division_id),
    ordinal     INTEGER NOT NULL,
    citation    TEXT NOT NULL DEFAULT '',
    UNIQUE (division_id, ordinal)
);

CREATE TABLE IF NOT EXISTS verse_texts (
    verse_id         INTEGER PRIMARY KEY REFERENCES verses(verse_id),
    source_text      TEXT NOT NULL DEFAULT '',
    translit_text    TEXT NOT NULL DEFAULT '',
    translation_text TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS gloss_tokens (
    verse_id INTEGER NOT NULL REFERENCES verses(verse_id),
    pos      INTEGER NOT NULL,
    surface  TEXT NOT NULL,
    gloss    TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (verse_id, pos)
);
`

// Open opens a corpus database read-write, creating the schema if needed.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "open corpus database", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "create corpus schema", err)
	}
	return db, nil
}

// Load reads the entire corpus into a Repository in one pass per table.
// The connection is not retained; searching never touches SQLite again.
func Load(ctx context.Context, db *sql.DB) (*Repository, error) {
	repo := &Repository{workByID: make(map[int64]Work)}

	workOrder := make(map[int64]int)
	rows, err := db.QueryContext(ctx,
		`SELECT work_id, slug, title, type_code, author FROM works ORDER BY work_id`)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "load works", err)
	}
	for rows.Next() {
		var w Work
		if err := rows.Scan(&w.ID, &w.Slug, &w.Title, &w.TypeCode, &w.Author); err != nil {
			rows.Close()
			return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "scan work", err)
		}
		workOrder[w.ID] = len(repo.works)
		repo.works = append(repo.works, w)
		repo.workByID[w.ID] = w
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "load works", err)
	}

	divOrdinal := make(map[int64]int)
	rows, err = db.QueryContext(ctx,
		`SELECT division_id, work_id, ordinal FROM divisions`)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "load divisions", err)
	}
	for rows.Next() {
		var d Division
		if err := rows.Scan(&d.ID, &d.WorkID, &d.Ordinal); err != nil {
			rows.Close()
			return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "scan division", err)
		}
		divOrdinal[d.ID] = d.Ordinal
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "load divisions", err)
	}

	byVerse := make(map[int64]*VerseRow)
	rows, err = db.QueryContext(ctx, `
		SELECT v.verse_id, v.work_id, v.division_id, v.ordinal, v.citation,
		       COALESCE(t.source_text, ''), COALESCE(t.translit_text, ''),
		       COALESCE(t.translation_text, '')
		  FROM verses v
		  LEFT JOIN verse_texts t ON t.verse_id = v.verse_id`)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "load verses", err)
	}
	for rows.Next() {
		row := &VerseRow{}
		if err := rows.Scan(
			&row.Verse.ID, &row.Verse.WorkID, &row.Verse.DivisionID,
			&row.Verse.Ordinal, &row.Verse.Citation,
			&row.Text.Source, &row.Text.Translit, &row.Text.Translation,
		); err != nil {
			rows.Close()
			return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "scan verse", err)
		}
		w, ok := repo.workByID[row.Verse.WorkID]
		if !ok {
			rows.Close()
			return nil, grerrors.New(grerrors.ErrCodePackCorrupt,
				fmt.Sprintf("verse %d references unknown work %d", row.Verse.ID, row.Verse.WorkID), nil)
		}
		row.WorkTitle = w.Title
		row.WorkType = w.TypeCode
		row.DivisionOrdinal = divOrdinal[row.Verse.DivisionID]
		byVerse[row.Verse.ID] = row
		repo.rows = append(repo.rows, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "load verses", err)
	}

	rows, err = db.QueryContext(ctx,
		`SELECT verse_id, surface, gloss FROM gloss_tokens ORDER BY verse_id, pos`)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "load gloss tokens", err)
	}
	for rows.Next() {
		var verseID int64
		var g GlossToken
		if err := rows.Scan(&verseID, &g.Surface, &g.Gloss); err != nil {
			rows.Close()
			return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "scan gloss token", err)
		}
		if row, ok := byVerse[verseID]; ok {
			row.gloss = append(row.gloss, g)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "load gloss tokens", err)
	}

	sortRows(repo.rows, workOrder)
	return repo, nil
}

// LoadFile opens path, loads the corpus, and closes the connection.
func LoadFile(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeCorpusLoad, "open corpus database", err)
	}
	defer db.Close()
	return Load(ctx, db)
}

// sortRows orders rows by work load order, then division ordinal, then
// verse ordinal. This is the corpus order all search results follow.
func sortRows(rows []*VerseRow, workOrder map[int64]int) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if wa, wb := workOrder[a.Verse.WorkID], workOrder[b.Verse.WorkID]; wa != wb {
			return wa < wb
		}
		if a.DivisionOrdinal != b.DivisionOrdinal {
			return a.DivisionOrdinal < b.DivisionOrdinal
		}
		return a.Verse.Ordinal < b.Verse.Ordinal
	})
}
