package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/samhita-labs/grantha/internal/corpus"
	"github.com/samhita-labs/grantha/internal/embed"
	"github.com/samhita-labs/grantha/internal/pack"
	"github.com/samhita-labs/grantha/internal/search"
	"github.com/samhita-labs/grantha/internal/vecstore"
	"github.com/samhita-labs/grantha/pkg/version"
)

// Server wires the search engines into MCP tools over stdio. The
// hybrid searcher and embedder are optional; without them the
// semantic_search tool reports the pack as not installed instead of
// failing the session.
type Server struct {
	engine    *search.Engine
	repo      *corpus.Repository
	embedder  embed.Embedder
	hybrid    *vecstore.HybridSearcher
	installer *pack.Installer
	logger    *slog.Logger
	mcp       *mcp.Server
}

// NewServer creates the MCP server. engine and repo are required;
// embedder, hybrid, and installer may be nil.
func NewServer(engine *search.Engine, repo *corpus.Repository, embedder embed.Embedder,
	hybrid *vecstore.HybridSearcher, installer *pack.Installer, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if repo == nil {
		return nil, errors.New("corpus repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		repo:      repo,
		embedder:  embedder,
		hybrid:    hybrid,
		installer: installer,
		logger:    logger,
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "Grantha",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_verses",
		Description: "Lexical verse search across source text, transliteration, translation, and word-for-word gloss. Diacritic-insensitive; supports /pattern/flags regex and * ? wildcards. Results are paginated in canonical text order.",
	}, s.searchVersesHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "semantic_search",
		Description: "Meaning-based passage search over the installed semantic pack. Blends embedding similarity with lexical relevance. Requires the pack to be installed.",
	}, s.semanticSearchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "pack_status",
		Description: "Report the semantic pack install state, version, and encoder configuration.",
	}, s.packStatusHandler)

	s.logger.Debug("mcp tools registered", slog.Int("count", 3))
}

func (s *Server) searchVersesHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchVersesInput) (
	*mcp.CallToolResult,
	SearchVersesOutput,
	error,
) {
	if input.Query == "" {
		return nil, SearchVersesOutput{}, NewInvalidParamsError("query parameter is required")
	}

	filters := search.Filters{}
	if len(input.Works) > 0 {
		filters.WorkIDs = make(map[int64]bool, len(input.Works))
		for _, id := range input.Works {
			filters.WorkIDs[id] = true
		}
	}
	for _, name := range input.Scopes {
		scope := search.Scope(name)
		if !scope.Valid() {
			return nil, SearchVersesOutput{}, NewInvalidParamsError(
				fmt.Sprintf("unknown scope %q; valid scopes: source, translit, translation, gloss", name))
		}
		filters.Scopes = append(filters.Scopes, scope)
	}

	results := s.engine.Search(input.Query, filters)

	p := search.NewPaginator(len(results))
	if input.PerPage > 0 {
		p.SetPageSize(input.PerPage)
	}
	if input.Page > 0 {
		p.SetPage(input.Page)
	}

	out := SearchVersesOutput{
		Total:     len(results),
		Page:      p.Page(),
		PageCount: p.PageCount(),
	}
	for _, r := range p.Slice(results) {
		matched := make([]string, len(r.MatchedScopes))
		for i, sc := range r.MatchedScopes {
			matched[i] = string(sc)
		}
		out.Results = append(out.Results, VerseOutput{
			WorkTitle:   r.Row.WorkTitle,
			Citation:    r.Row.Verse.Citation,
			Locator:     r.Locator.String(),
			Snippet:     r.Snippet,
			Scope:       string(r.SnippetScope),
			Matched:     matched,
			Source:      r.Row.Text.Source,
			Translit:    r.Row.Text.Translit,
			Translation: r.Row.Text.Translation,
		})
	}
	return nil, out, nil
}

func (s *Server) semanticSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SemanticSearchInput) (
	*mcp.CallToolResult,
	SemanticSearchOutput,
	error,
) {
	if input.Query == "" {
		return nil, SemanticSearchOutput{}, NewInvalidParamsError("query parameter is required")
	}
	if s.hybrid == nil || s.embedder == nil {
		return nil, SemanticSearchOutput{}, &MCPError{
			Code:    ErrCodePackNotInstalled,
			Message: "semantic pack is not installed; run 'grantha pack install'",
		}
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	vec, err := s.embedder.Embed(ctx, input.Query)
	if err != nil {
		return nil, SemanticSearchOutput{}, MapError(err)
	}
	results, err := s.hybrid.Search(ctx, input.Query, vec, limit)
	if err != nil {
		return nil, SemanticSearchOutput{}, MapError(err)
	}

	out := SemanticSearchOutput{}
	for _, r := range results {
		out.Results = append(out.Results, PassageOutput{
			PassageID: r.Passage.ID,
			WorkID:    r.Passage.WorkID,
			Chapter:   r.Passage.Chapter,
			Verses:    verseRange(r.Passage),
			Text:      r.Passage.Text,
			Score:     r.Score,
		})
	}
	return nil, out, nil
}

func (s *Server) packStatusHandler(_ context.Context, _ *mcp.CallToolRequest, _ PackStatusInput) (
	*mcp.CallToolResult,
	PackStatusOutput,
	error,
) {
	out := PackStatusOutput{State: string(pack.StateNotInstalled)}
	if s.installer != nil {
		st := s.installer.Status()
		out.State = string(st.State)
		out.Version = st.Version
		out.Files = st.Files
		out.TotalBytes = st.TotalBytes
		out.Enabled = s.installer.Enabled()
		out.DiskTotal = st.DiskTotalBytes
		out.DiskFree = st.DiskFreeBytes
	}
	if s.embedder != nil {
		out.Encoder = s.embedder.ModelName()
		out.Dimensions = s.embedder.Dimensions()
	}
	return nil, out, nil
}

func verseRange(p *vecstore.Passage) string {
	if p.VerseStart == p.VerseEnd {
		return fmt.Sprintf("%d", p.VerseStart)
	}
	return fmt.Sprintf("%d-%d", p.VerseStart, p.VerseEnd)
}

// Serve runs the server over stdio until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped")
	return nil
}
