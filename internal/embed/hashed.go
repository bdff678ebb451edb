package embed

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// DefaultDimensions is the hashed encoder's default vector width,
// matching the shipped semantic pack.
const DefaultDimensions = 384

// Feature weights for each n-gram family. Unigrams carry full weight;
// character n-grams add sub-word signal at reduced weight so shared
// stems pull related tokens together.
const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
	quadWeight    = 0.25

	bigramMinLen = 4
	quadMinLen   = 6
)

// HashedEmbedder is a deterministic bag-of-features encoder: tokens and
// their character n-grams are hashed into a fixed-width vector, which
// is then L2-normalized. The same text always yields bit-identical
// vectors across runs, platforms, and processes. It needs no model
// assets and never fails.
type HashedEmbedder struct {
	dims int
}

// NewHashedEmbedder creates a hashed encoder. Non-positive dims falls
// back to DefaultDimensions.
func NewHashedEmbedder(dims int) *HashedEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashedEmbedder{dims: dims}
}

// Embed encodes text. Text with no tokens yields the zero vector.
func (e *HashedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	for _, tok := range tokenize(text) {
		e.add(vec, tok, unigramWeight)

		runes := []rune(tok)
		if len(runes) >= bigramMinLen {
			for i := 0; i+2 <= len(runes); i++ {
				e.add(vec, "bg:"+string(runes[i:i+2]), bigramWeight)
			}
		}
		if len(runes) >= quadMinLen {
			for i := 0; i+4 <= len(runes); i++ {
				e.add(vec, "cg:"+string(runes[i:i+4]), quadWeight)
			}
		}
	}
	normalizeVector(vec)
	return vec, nil
}

// add hashes a feature into its bucket.
func (e *HashedEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	vec[h.Sum64()%uint64(e.dims)] += weight
}

// EmbedBatch encodes texts in order.
func (e *HashedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, grerrors.New(grerrors.ErrCodeEmbeddingFailed, "embed batch", err)
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the vector width.
func (e *HashedEmbedder) Dimensions() int { return e.dims }

// ModelName identifies the encoder.
func (e *HashedEmbedder) ModelName() string { return "hashed-ngram" }

// Available always reports true; the encoder has no dependencies.
func (e *HashedEmbedder) Available(_ context.Context) bool { return true }

// Close is a no-op.
func (e *HashedEmbedder) Close() error { return nil }

// tokenize splits text into lower-cased runs of letters and digits.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

var _ Embedder = (*HashedEmbedder)(nil)
