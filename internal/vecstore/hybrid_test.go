package vecstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHybridSearchBlendsScores(t *testing.T) {
	// Given passages where the dense neighbor and the lexical match
	// are different passages
	s := openTestStore(t)
	h, err := NewHybridSearcher(s, DefaultHybridConfig())
	require.NoError(t, err)
	defer h.Close()

	// When the text matches passage 4 but the vector points at 1
	results, err := h.Search(context.Background(), "abandon attachments", []float32{1, 0, 0, 0}, 4)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Then both passages surface, with scores from both signals
	ids := make(map[int64]float64)
	for _, r := range results {
		ids[r.Passage.ID] = r.Score
	}
	assert.Contains(t, ids, int64(1))
	assert.Contains(t, ids, int64(4))

	// Passage 1 gets alpha times a perfect dense score; passage 4 gets
	// (1-alpha) times the best lexical score.
	assert.InDelta(t, DefaultAlpha, ids[1], 1e-6)
	assert.InDelta(t, 1-DefaultAlpha, ids[4], 1e-6)
}

func TestHybridSearchDenseOnlyQuery(t *testing.T) {
	// A blank text query degrades to pure dense ranking.
	s := openTestStore(t)
	h, err := NewHybridSearcher(s, DefaultHybridConfig())
	require.NoError(t, err)
	defer h.Close()

	results, err := h.Search(context.Background(), "  ", []float32{0, 1, 0, 0}, 2)
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, int64(2), results[0].Passage.ID)
}

func TestHybridSearchRespectsK(t *testing.T) {
	s := openTestStore(t)
	h, err := NewHybridSearcher(s, DefaultHybridConfig())
	require.NoError(t, err)
	defer h.Close()

	results, err := h.Search(context.Background(), "the self", []float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = h.Search(context.Background(), "the self", []float32{1, 0, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHybridConfigDefaultsApplied(t *testing.T) {
	s := openTestStore(t)
	h, err := NewHybridSearcher(s, HybridConfig{Alpha: -1, DenseK: 0, LexicalK: -5})
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, DefaultAlpha, h.cfg.Alpha)
	assert.Equal(t, DefaultDenseK, h.cfg.DenseK)
	assert.Equal(t, DefaultLexicalK, h.cfg.LexicalK)
}
