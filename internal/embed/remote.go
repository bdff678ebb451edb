package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// RemoteEmbedder delegates encoding to an HTTP feature-extraction
// endpoint. When the endpoint is unreachable, semantic search degrades
// rather than failing the session; callers gate on Available.
type RemoteEmbedder struct {
	endpoint string
	model    string
	dims     int
	client   *http.Client
}

// RemoteOption configures a RemoteEmbedder.
type RemoteOption func(*RemoteEmbedder)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(e *RemoteEmbedder) { e.client = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) RemoteOption {
	return func(e *RemoteEmbedder) { e.client.Timeout = d }
}

// NewRemoteEmbedder creates a remote encoder for endpoint. dims must
// match what the endpoint produces; it is verified per response.
func NewRemoteEmbedder(endpoint, model string, dims int, opts ...RemoteOption) *RemoteEmbedder {
	e := &RemoteEmbedder{
		endpoint: endpoint,
		model:    model,
		dims:     dims,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed encodes a single text.
func (e *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch encodes texts in one request, preserving order.
func (e *RemoteEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeInternal, "marshal embed request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeInternal, "build embed request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeNetworkUnavailable, "embedding endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, grerrors.New(grerrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding endpoint returned %d: %s", resp.StatusCode, msg), nil)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, grerrors.New(grerrors.ErrCodeEmbeddingFailed, "decode embed response", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, grerrors.New(grerrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(parsed.Embeddings)), nil)
	}
	for _, v := range parsed.Embeddings {
		if len(v) != e.dims {
			return nil, grerrors.New(grerrors.ErrCodeDimensionMismatch,
				fmt.Sprintf("endpoint produced %d dimensions, want %d", len(v), e.dims), nil)
		}
		normalizeVector(v)
	}
	return parsed.Embeddings, nil
}

// Dimensions returns the configured vector width.
func (e *RemoteEmbedder) Dimensions() int { return e.dims }

// ModelName identifies the remote model.
func (e *RemoteEmbedder) ModelName() string { return e.model }

// Available probes the endpoint with a short deadline.
func (e *RemoteEmbedder) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// Close is a no-op; the HTTP client owns no persistent resources.
func (e *RemoteEmbedder) Close() error { return nil }

var _ Embedder = (*RemoteEmbedder)(nil)
