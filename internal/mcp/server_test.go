package mcp

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samhita-labs/grantha/internal/corpus"
	grerrors "github.com/samhita-labs/grantha/internal/errors"
	"github.com/samhita-labs/grantha/internal/search"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	works := []corpus.Work{{ID: 1, Slug: "gita", Title: "Bhagavad Gita"}}
	rows := []*corpus.VerseRow{
		corpus.NewVerseRow(
			corpus.Verse{ID: 1, WorkID: 1, DivisionID: 1, Ordinal: 1, Citation: "BG 2.20"},
			corpus.VerseText{
				Translit:    "na jāyate mriyate vā kadācit",
				Translation: "The self is never born, nor does it ever die.",
			},
			"Bhagavad Gita", "", 2, nil,
		),
	}
	repo := corpus.NewRepository(works, rows)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := NewServer(search.New(repo), repo, nil, nil, nil, logger)
	require.NoError(t, err)
	return s
}

func TestNewServerRequiresEngine(t *testing.T) {
	_, err := NewServer(nil, nil, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestSearchVersesHandler(t *testing.T) {
	s := testServer(t)

	_, out, err := s.searchVersesHandler(context.Background(), nil, SearchVersesInput{
		Query: "never born",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "BG 2.20", out.Results[0].Citation)
	assert.Equal(t, "translation", out.Results[0].Scope)
	assert.Equal(t, "1:2.1", out.Results[0].Locator)
}

func TestSearchVersesRequiresQuery(t *testing.T) {
	s := testServer(t)

	_, _, err := s.searchVersesHandler(context.Background(), nil, SearchVersesInput{})

	var me *MCPError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeInvalidParams, me.Code)
}

func TestSearchVersesRejectsUnknownScope(t *testing.T) {
	s := testServer(t)

	_, _, err := s.searchVersesHandler(context.Background(), nil, SearchVersesInput{
		Query:  "born",
		Scopes: []string{"commentary"},
	})

	var me *MCPError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeInvalidParams, me.Code)
}

func TestSemanticSearchWithoutPack(t *testing.T) {
	s := testServer(t)

	_, _, err := s.semanticSearchHandler(context.Background(), nil, SemanticSearchInput{
		Query: "what survives death",
	})

	var me *MCPError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodePackNotInstalled, me.Code)
}

func TestPackStatusWithoutInstaller(t *testing.T) {
	s := testServer(t)

	_, out, err := s.packStatusHandler(context.Background(), nil, PackStatusInput{})

	require.NoError(t, err)
	assert.Equal(t, "not_installed", out.State)
	assert.False(t, out.Enabled)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"pack corrupt", grerrors.New(grerrors.ErrCodePackCorrupt, "bad pack", nil), ErrCodePackNotInstalled},
		{"dimension mismatch", grerrors.New(grerrors.ErrCodeDimensionMismatch, "dims", nil), ErrCodeEmbeddingFailed},
		{"invalid input", grerrors.New(grerrors.ErrCodeInvalidInput, "bad", nil), ErrCodeInvalidParams},
		{"search failed", grerrors.New(grerrors.ErrCodeSearchFailed, "boom", nil), ErrCodeSearchFailed},
		{"plain error", assert.AnError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			me := MapError(tt.err)
			require.NotNil(t, me)
			assert.Equal(t, tt.code, me.Code)
		})
	}
}
