// Package embed provides embedding encoders for semantic search.
// The hashed encoder is the deterministic built-in default; the remote
// encoder delegates to an HTTP feature-extraction endpoint. Both are
// wrapped by an LRU cache in normal operation.
package embed

import (
	"context"
	"math"
)

// Embedder converts text into dense vectors for semantic search.
type Embedder interface {
	// Embed converts a single text into a vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector width this embedder produces.
	Dimensions() int

	// ModelName identifies the encoder for logging and pack metadata.
	ModelName() string

	// Available reports whether the embedder can serve requests now.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector scales v to unit length in place. A zero vector is
// left untouched.
func normalizeVector(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
