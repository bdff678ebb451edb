package embed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps HashedEmbedder and counts inner calls.
type countingEmbedder struct {
	*HashedEmbedder
	calls atomic.Int64
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return c.HashedEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(int64(len(texts)))
	return c.HashedEmbedder.EmbedBatch(ctx, texts)
}

// ============================================================================
// CachedEmbedder
// ============================================================================

func TestCachedEmbedHitsSkipInner(t *testing.T) {
	// Given a cached encoder
	ctx := context.Background()
	inner := &countingEmbedder{HashedEmbedder: NewHashedEmbedder(0)}
	cached, err := NewCachedEmbedder(inner, 10)
	require.NoError(t, err)

	// When the same text is embedded twice
	v1, err := cached.Embed(ctx, "dharma")
	require.NoError(t, err)
	v2, err := cached.Embed(ctx, "dharma")
	require.NoError(t, err)

	// Then the inner encoder ran once and the vectors agree
	assert.Equal(t, int64(1), inner.calls.Load())
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, cached.Len())
}

func TestCachedEmbedBatchPartialHits(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{HashedEmbedder: NewHashedEmbedder(0)}
	cached, err := NewCachedEmbedder(inner, 10)
	require.NoError(t, err)

	_, err = cached.Embed(ctx, "karma")
	require.NoError(t, err)
	inner.calls.Store(0)

	batch, err := cached.EmbedBatch(ctx, []string{"dharma", "karma", "moksa"})
	require.NoError(t, err)
	require.Len(t, batch, 3)

	// Only the two misses reached the inner encoder.
	assert.Equal(t, int64(2), inner.calls.Load())
	want, err := NewHashedEmbedder(0).Embed(ctx, "karma")
	require.NoError(t, err)
	assert.Equal(t, want, batch[1])
}

func TestCachedEmbedEviction(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{HashedEmbedder: NewHashedEmbedder(0)}
	cached, err := NewCachedEmbedder(inner, 2)
	require.NoError(t, err)

	for _, text := range []string{"a", "b", "c"} {
		_, err := cached.Embed(ctx, text)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cached.Len())
}

// ============================================================================
// RemoteEmbedder
// ============================================================================

func TestRemoteEmbedBatch(t *testing.T) {
	// Given an endpoint that returns fixed 4-dim vectors
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		w.Write([]byte(`{"embeddings": [[1, 0, 0, 0], [0, 2, 0, 0]]}`))
	}))
	defer srv.Close()
	e := NewRemoteEmbedder(srv.URL, "test-model", 4)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})

	// Then vectors come back normalized in order
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.InDelta(t, 1.0, vectorNorm(vecs[0]), 1e-5)
	assert.InDelta(t, 1.0, vectorNorm(vecs[1]), 1e-5)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(1), vecs[1][1])
}

func TestRemoteEmbedDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embeddings": [[1, 0]]}`))
	}))
	defer srv.Close()
	e := NewRemoteEmbedder(srv.URL, "test-model", 4)

	_, err := e.Embed(context.Background(), "text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_402")
}

func TestRemoteEmbedUnreachable(t *testing.T) {
	e := NewRemoteEmbedder("http://127.0.0.1:1", "test-model", 4)

	_, err := e.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.False(t, e.Available(context.Background()))
}
