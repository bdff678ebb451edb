package vecstore

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// Hybrid search defaults. Alpha weights the dense score; the lexical
// score, normalized by the best observed hit, gets the remainder.
const (
	DefaultAlpha    = 0.6
	DefaultDenseK   = 150
	DefaultLexicalK = 300
)

// HybridConfig tunes score fusion and candidate pool sizes.
type HybridConfig struct {
	Alpha    float64
	DenseK   int
	LexicalK int
}

// DefaultHybridConfig returns the standard fusion parameters.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{Alpha: DefaultAlpha, DenseK: DefaultDenseK, LexicalK: DefaultLexicalK}
}

// HybridSearcher fuses dense passage scores with an in-memory lexical
// index over the same passages. The lexical index is rebuilt from the
// store on construction; nothing is persisted.
type HybridSearcher struct {
	store *Store
	index bleve.Index
	cfg   HybridConfig
}

type passageDoc struct {
	Text string `json:"text"`
}

// NewHybridSearcher indexes every passage of store into a memory-only
// lexical index.
func NewHybridSearcher(store *Store, cfg HybridConfig) (*HybridSearcher, error) {
	if cfg.Alpha < 0 || cfg.Alpha > 1 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.DenseK <= 0 {
		cfg.DenseK = DefaultDenseK
	}
	if cfg.LexicalK <= 0 {
		cfg.LexicalK = DefaultLexicalK
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeSearchFailed, "create lexical index", err)
	}

	batch := idx.NewBatch()
	store.mu.RLock()
	for i := range store.rows {
		p := &store.rows[i]
		if err := batch.Index(strconv.FormatInt(p.ID, 10), passageDoc{Text: p.Text}); err != nil {
			store.mu.RUnlock()
			idx.Close()
			return nil, grerrors.New(grerrors.ErrCodeSearchFailed, "index passage", err)
		}
	}
	store.mu.RUnlock()
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, grerrors.New(grerrors.ErrCodeSearchFailed, "build lexical index", err)
	}

	return &HybridSearcher{store: store, index: idx, cfg: cfg}, nil
}

// Search blends dense similarity for queryVec with lexical relevance
// for queryText and returns the top k fused results, highest first,
// ties broken by ascending passage id.
func (h *HybridSearcher) Search(ctx context.Context, queryText string, queryVec []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	dense, err := h.store.Dense(queryVec, h.cfg.DenseK)
	if err != nil {
		return nil, err
	}

	combined := make(map[int64]float64, len(dense))
	for _, r := range dense {
		combined[r.Passage.ID] = h.cfg.Alpha * r.Score
	}

	if strings.TrimSpace(queryText) != "" {
		req := bleve.NewSearchRequest(bleve.NewMatchQuery(queryText))
		req.Size = h.cfg.LexicalK
		res, err := h.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, grerrors.New(grerrors.ErrCodeSearchFailed, "lexical search", err)
		}
		var maxScore float64
		for _, hit := range res.Hits {
			if hit.Score > maxScore {
				maxScore = hit.Score
			}
		}
		if maxScore > 0 {
			for _, hit := range res.Hits {
				id, err := strconv.ParseInt(hit.ID, 10, 64)
				if err != nil {
					continue
				}
				combined[id] += (1 - h.cfg.Alpha) * (hit.Score / maxScore)
			}
		}
	}

	results := make([]Result, 0, len(combined))
	for id, score := range combined {
		p, ok := h.store.Passage(id)
		if !ok {
			continue
		}
		results = append(results, Result{Passage: p, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Passage.ID < results[j].Passage.ID
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Close releases the lexical index. The store is owned by the caller.
func (h *HybridSearcher) Close() error {
	return h.index.Close()
}
