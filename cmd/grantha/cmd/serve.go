package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samhita-labs/grantha/internal/embed"
	grmcp "github.com/samhita-labs/grantha/internal/mcp"
	"github.com/samhita-labs/grantha/internal/pack"
	"github.com/samhita-labs/grantha/internal/search"
	"github.com/samhita-labs/grantha/internal/vecstore"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the search engines over MCP stdio",
		Long: `Run the MCP server on stdin/stdout. Lexical search is always
available; semantic search is offered when the pack is installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := slog.Default()

			repo, err := loadRepo(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			engine := search.New(repo)

			// An unconfigured or unusable pack store only disables the
			// semantic tools; lexical search always serves.
			inst, err := buildInstaller(cfg, logger)
			if err != nil {
				logger.Warn("pack storage unavailable, serving lexical only", slog.Any("error", err))
				inst = nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var (
				embedder embed.Embedder
				hybrid   *vecstore.HybridSearcher
			)
			if inst != nil && inst.Enabled() {
				store, err := vecstore.Open(ctx, filepath.Join(cfg.Paths.PackDir, packDBName))
				if err != nil {
					logger.Warn("semantic pack unusable, serving lexical only", slog.Any("error", err))
				} else {
					defer store.Close()
					embedder, err = buildEmbedder(cfg)
					if err != nil {
						return err
					}
					defer embedder.Close()
					if embedder.Dimensions() != store.Dimensions() {
						return fmt.Errorf("encoder produces %d-dim vectors but the pack stores %d-dim",
							embedder.Dimensions(), store.Dimensions())
					}
					hybrid, err = vecstore.NewHybridSearcher(store, vecstore.HybridConfig{
						Alpha:    cfg.Search.Alpha,
						DenseK:   cfg.Search.DenseK,
						LexicalK: cfg.Search.LexicalK,
					})
					if err != nil {
						return err
					}
					defer hybrid.Close()
				}

				// Disable semantic search if pack files disappear mid-session.
				watcher, err := pack.NewWatcher(cfg.Paths.PackDir, logger, func() {
					if !inst.IsInstalled(ctx) {
						logger.Warn("pack files changed on disk, semantic search disabled")
					}
				})
				if err != nil {
					logger.Warn("pack watcher unavailable", slog.Any("error", err))
				} else {
					defer watcher.Close()
					go watcher.Run(ctx)
				}
			}

			server, err := grmcp.NewServer(engine, repo, embedder, hybrid, inst, logger)
			if err != nil {
				return err
			}

			logger.Info("mcp server starting",
				slog.Int("verses", repo.Len()),
				slog.Bool("semantic", hybrid != nil))
			return server.Serve(ctx)
		},
	}
}
