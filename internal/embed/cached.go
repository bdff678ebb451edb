package embed

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// CachedEmbedder wraps an Embedder with an LRU cache keyed by exact
// text. Queries repeat heavily in an interactive session, so even a
// small cache removes most encoder work.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with a cache of the given size.
func NewCachedEmbedder(inner Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = 1000
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeInternal, "create embedding cache", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector or delegates to the inner embedder.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v, nil
	}
	v, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(text, v)
	return v, nil
}

// EmbedBatch serves cached entries and delegates only the misses,
// preserving input order.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, t := range texts {
		if v, ok := e.cache.Get(t); ok {
			out[i] = v
			continue
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}
	vecs, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, v := range vecs {
		out[missIdx[j]] = v
		e.cache.Add(missTexts[j], v)
	}
	return out, nil
}

// Dimensions returns the inner embedder's width.
func (e *CachedEmbedder) Dimensions() int { return e.inner.Dimensions() }

// ModelName returns the inner embedder's model name.
func (e *CachedEmbedder) ModelName() string { return e.inner.ModelName() }

// Available reports the inner embedder's availability.
func (e *CachedEmbedder) Available(ctx context.Context) bool { return e.inner.Available(ctx) }

// Close purges the cache and closes the inner embedder.
func (e *CachedEmbedder) Close() error {
	e.cache.Purge()
	return e.inner.Close()
}

// Len reports the number of cached entries.
func (e *CachedEmbedder) Len() int { return e.cache.Len() }

var _ Embedder = (*CachedEmbedder)(nil)
