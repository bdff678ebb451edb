package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// Book is the interchange form a source text arrives in. Field names
// vary across exports, so several aliases are accepted per field.
type Book struct {
	Slug     string        `json:"id"`
	Title    string        `json:"title"`
	TypeCode string        `json:"type"`
	Author   string        `json:"author"`
	Chapters []BookChapter `json:"chapters"`
}

// BookChapter is one division of a Book.
type BookChapter struct {
	Number int         `json:"number"`
	Verses []BookVerse `json:"verses"`
}

// BookVerse is one verse of a BookChapter. Parallel texts use whichever
// alias the export carries; the first non-empty alias wins.
type BookVerse struct {
	Number      int    `json:"number"`
	Citation    string `json:"citation"`
	Source      string `json:"devanagari"`
	SourceAlt   string `json:"original_sanskrit"`
	Translit    string `json:"iast"`
	TranslitAlt string `json:"iast_transliteration"`
	Translation string `json:"translation"`
	TransAlt    string `json:"translation_en"`

	// WordByWord entries are either two-element arrays or objects with
	// surface/gloss keys under varying names. Decoded leniently.
	WordByWord []json.RawMessage `json:"word_by_word"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// glossPair decodes one word-for-word entry. Malformed entries are
// skipped rather than failing the whole book.
func glossPair(raw json.RawMessage) (GlossToken, bool) {
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) == 0 {
			return GlossToken{}, false
		}
		g := GlossToken{Surface: arr[0]}
		if len(arr) > 1 {
			g.Gloss = arr[1]
		}
		return g, g.Surface != ""
	}
	var obj struct {
		Sanskrit string `json:"sanskrit"`
		Word     string `json:"word"`
		Surface  string `json:"surface"`
		English  string `json:"english"`
		Meaning  string `json:"meaning"`
		Gloss    string `json:"gloss"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return GlossToken{}, false
	}
	g := GlossToken{
		Surface: firstNonEmpty(obj.Sanskrit, obj.Word, obj.Surface),
		Gloss:   firstNonEmpty(obj.English, obj.Meaning, obj.Gloss),
	}
	return g, g.Surface != ""
}

// ReadBook parses a book JSON file.
func ReadBook(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeFileNotFound, "read book file", err)
	}
	var b Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, grerrors.New(grerrors.ErrCodeInvalidInput,
			fmt.Sprintf("parse book %s", path), err)
	}
	if b.Slug == "" || b.Title == "" {
		return nil, grerrors.New(grerrors.ErrCodeInvalidInput,
			fmt.Sprintf("book %s missing id or title", path), nil)
	}
	return &b, nil
}

// InsertBook writes a book into the corpus database inside one
// transaction. Re-ingesting an existing slug replaces the work.
func InsertBook(ctx context.Context, db *sql.DB, b *Book) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return grerrors.New(grerrors.ErrCodeCorpusLoad, "begin ingest transaction", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT work_id FROM works WHERE slug = ?`, b.Slug).Scan(&existing)
	if err == nil {
		if err := deleteWork(ctx, tx, existing); err != nil {
			return err
		}
	} else if err != sql.ErrNoRows {
		return grerrors.New(grerrors.ErrCodeCorpusLoad, "check existing work", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO works (slug, title, type_code, author) VALUES (?, ?, ?, ?)`,
		b.Slug, b.Title, b.TypeCode, b.Author)
	if err != nil {
		return grerrors.New(grerrors.ErrCodeCorpusLoad, "insert work", err)
	}
	workID, err := res.LastInsertId()
	if err != nil {
		return grerrors.New(grerrors.ErrCodeCorpusLoad, "insert work", err)
	}

	for _, ch := range b.Chapters {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO divisions (work_id, ordinal) VALUES (?, ?)`, workID, ch.Number)
		if err != nil {
			return grerrors.New(grerrors.ErrCodeCorpusLoad,
				fmt.Sprintf("insert division %d", ch.Number), err)
		}
		divID, err := res.LastInsertId()
		if err != nil {
			return grerrors.New(grerrors.ErrCodeCorpusLoad, "insert division", err)
		}
		for _, v := range ch.Verses {
			citation := v.Citation
			if citation == "" {
				citation = fmt.Sprintf("%s %d.%d", b.Title, ch.Number, v.Number)
			}
			res, err := tx.ExecContext(ctx,
				`INSERT INTO verses (work_id, division_id, ordinal, citation) VALUES (?, ?, ?, ?)`,
				workID, divID, v.Number, citation)
			if err != nil {
				return grerrors.New(grerrors.ErrCodeCorpusLoad,
					fmt.Sprintf("insert verse %d.%d", ch.Number, v.Number), err)
			}
			verseID, err := res.LastInsertId()
			if err != nil {
				return grerrors.New(grerrors.ErrCodeCorpusLoad, "insert verse", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO verse_texts (verse_id, source_text, translit_text, translation_text)
				 VALUES (?, ?, ?, ?)`,
				verseID,
				firstNonEmpty(v.Source, v.SourceAlt),
				firstNonEmpty(v.Translit, v.TranslitAlt),
				firstNonEmpty(v.Translation, v.TransAlt),
			); err != nil {
				return grerrors.New(grerrors.ErrCodeCorpusLoad, "insert verse texts", err)
			}
			pos := 0
			for _, raw := range v.WordByWord {
				g, ok := glossPair(raw)
				if !ok {
					continue
				}
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO gloss_tokens (verse_id, pos, surface, gloss) VALUES (?, ?, ?, ?)`,
					verseID, pos, g.Surface, g.Gloss); err != nil {
					return grerrors.New(grerrors.ErrCodeCorpusLoad, "insert gloss token", err)
				}
				pos++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return grerrors.New(grerrors.ErrCodeCorpusLoad, "commit ingest transaction", err)
	}
	return nil
}

func deleteWork(ctx context.Context, tx *sql.Tx, workID int64) error {
	stmts := []string{
		`DELETE FROM gloss_tokens WHERE verse_id IN (SELECT verse_id FROM verses WHERE work_id = ?)`,
		`DELETE FROM verse_texts WHERE verse_id IN (SELECT verse_id FROM verses WHERE work_id = ?)`,
		`DELETE FROM verses WHERE work_id = ?`,
		`DELETE FROM divisions WHERE work_id = ?`,
		`DELETE FROM works WHERE work_id = ?`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, workID); err != nil {
			return grerrors.New(grerrors.ErrCodeCorpusLoad, "replace existing work", err)
		}
	}
	return nil
}
