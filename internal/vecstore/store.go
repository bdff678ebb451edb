// Package vecstore loads the semantic pack and serves dense and hybrid
// search over its passage embeddings. The pack is a SQLite file of
// passages plus a contiguous float32 embedding matrix; search is exact
// dot-product scoring, with an optional HNSW accelerator for candidate
// generation on large packs.
package vecstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	_ "modernc.org/sqlite"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// Passage is one embedded text span of the pack, addressed back into
// the corpus by work, division, and verse range.
type Passage struct {
	ID         int64
	WorkID     int64
	DivisionID int64
	Chapter    int
	VerseStart int
	VerseEnd   int
	Text       string
}

// Result is one scored passage.
type Result struct {
	Passage *Passage
	Score   float64
}

// Store holds the loaded pack: passages in id order and their
// embeddings as one contiguous row-major matrix.
type Store struct {
	mu     sync.RWMutex
	dim    int
	rows   []Passage
	matrix []float32
	byID   map[int64]int
	ann    *annIndex
	closed bool
}

// Open loads the pack database at path entirely into memory. Any
// structural problem surfaces as a pack-corrupt error; callers treat
// that as "not installed" rather than aborting the session.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodePackCorrupt, "open pack database", err)
	}
	defer db.Close()

	var dimStr string
	err = db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'dim'`).Scan(&dimStr)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodePackCorrupt, "pack meta missing dim", err)
	}
	dim, err := strconv.Atoi(dimStr)
	if err != nil || dim <= 0 {
		return nil, grerrors.New(grerrors.ErrCodePackCorrupt,
			fmt.Sprintf("pack meta dim invalid: %q", dimStr), err)
	}

	s := &Store{dim: dim, byID: make(map[int64]int)}

	rows, err := db.QueryContext(ctx, `
		SELECT id, work_id, division_id, chapter, verse_start, verse_end, text
		  FROM passages ORDER BY id`)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodePackCorrupt, "read pack passages", err)
	}
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.ID, &p.WorkID, &p.DivisionID, &p.Chapter,
			&p.VerseStart, &p.VerseEnd, &p.Text); err != nil {
			rows.Close()
			return nil, grerrors.New(grerrors.ErrCodePackCorrupt, "scan pack passage", err)
		}
		s.byID[p.ID] = len(s.rows)
		s.rows = append(s.rows, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, grerrors.New(grerrors.ErrCodePackCorrupt, "read pack passages", err)
	}

	s.matrix = make([]float32, len(s.rows)*dim)
	seen := make([]bool, len(s.rows))
	rows, err = db.QueryContext(ctx, `SELECT id, vector FROM embeddings`)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodePackCorrupt, "read pack embeddings", err)
	}
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			rows.Close()
			return nil, grerrors.New(grerrors.ErrCodePackCorrupt, "scan pack embedding", err)
		}
		idx, ok := s.byID[id]
		if !ok {
			rows.Close()
			return nil, grerrors.New(grerrors.ErrCodePackCorrupt,
				fmt.Sprintf("embedding %d has no passage", id), nil)
		}
		if len(blob) != dim*4 {
			rows.Close()
			return nil, grerrors.New(grerrors.ErrCodePackCorrupt,
				fmt.Sprintf("embedding %d has %d bytes, want %d", id, len(blob), dim*4), nil)
		}
		row := s.matrix[idx*dim : (idx+1)*dim]
		for i := range row {
			row[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
		}
		seen[idx] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, grerrors.New(grerrors.ErrCodePackCorrupt, "read pack embeddings", err)
	}
	for i, ok := range seen {
		if !ok {
			return nil, grerrors.New(grerrors.ErrCodePackCorrupt,
				fmt.Sprintf("passage %d has no embedding", s.rows[i].ID), nil)
		}
	}

	if len(s.rows) >= annThreshold {
		s.ann = buildANN(s.dim, s.rows, s.matrix)
	}
	return s, nil
}

// Dimensions returns the pack's embedding width.
func (s *Store) Dimensions() int { return s.dim }

// Count returns the number of passages.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Passage resolves a passage by id.
func (s *Store) Passage(id int64) (*Passage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.rows[idx], true
}

// VecSearch scores every passage by dot product against query and
// returns the top k, highest first, ties broken by ascending id.
// k larger than the passage count returns everything.
func (s *Store) VecSearch(query []float32, k int) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, grerrors.New(grerrors.ErrCodeInternal, "pack store is closed", nil)
	}
	if len(query) != s.dim {
		return nil, grerrors.New(grerrors.ErrCodeDimensionMismatch,
			fmt.Sprintf("query has %d dimensions, pack has %d", len(query), s.dim), nil)
	}
	if k <= 0 || len(s.rows) == 0 {
		return nil, nil
	}

	results := make([]Result, len(s.rows))
	for i := range s.rows {
		row := s.matrix[i*s.dim : (i+1)*s.dim]
		var sum float64
		for j, q := range query {
			sum += float64(q) * float64(row[j])
		}
		results[i] = Result{Passage: &s.rows[i], Score: sum}
	}
	sortResults(results)
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Dense returns the top k dense candidates. Large packs go through the
// HNSW graph first and re-score exactly; small packs score exhaustively.
func (s *Store) Dense(query []float32, k int) ([]Result, error) {
	s.mu.RLock()
	ann := s.ann
	s.mu.RUnlock()

	if ann == nil {
		return s.VecSearch(query, k)
	}
	if len(query) != s.dim {
		return nil, grerrors.New(grerrors.ErrCodeDimensionMismatch,
			fmt.Sprintf("query has %d dimensions, pack has %d", len(query), s.dim), nil)
	}
	ids := ann.search(query, k)
	results := make([]Result, 0, len(ids))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range ids {
		idx, ok := s.byID[id]
		if !ok {
			continue
		}
		row := s.matrix[idx*s.dim : (idx+1)*s.dim]
		var sum float64
		for j, q := range query {
			sum += float64(q) * float64(row[j])
		}
		results = append(results, Result{Passage: &s.rows[idx], Score: sum})
	}
	sortResults(results)
	return results, nil
}

// Close releases the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.rows = nil
	s.matrix = nil
	s.ann = nil
	return nil
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Passage.ID < results[j].Passage.ID
	})
}
