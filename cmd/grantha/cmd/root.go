// Package cmd provides the CLI commands for Grantha.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/samhita-labs/grantha/internal/config"
	"github.com/samhita-labs/grantha/internal/corpus"
	"github.com/samhita-labs/grantha/internal/embed"
	"github.com/samhita-labs/grantha/internal/logging"
	"github.com/samhita-labs/grantha/internal/pack"
	"github.com/samhita-labs/grantha/internal/storage"
	"github.com/samhita-labs/grantha/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the grantha CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grantha",
		Short: "Lexical and semantic search over a scripture corpus",
		Long: `Grantha searches a multi-script scripture corpus: diacritic-insensitive
lexical search with regex and wildcard queries, and semantic passage
search over an installable embedding pack.

Run 'grantha search <query>' to get started, or 'grantha serve' to
expose the engines to an MCP client.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("grantha version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.grantha/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.grantha/logs/")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRunE = teardownLogging

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newSemanticCmd())
	cmd.AddCommand(newPackCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	if debugMode {
		slog.Info("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig builds the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// loadRepo loads the corpus for the lexical commands.
func loadRepo(ctx context.Context, cfg *config.Config) (*corpus.Repository, error) {
	return corpus.LoadFile(ctx, cfg.Paths.CorpusDB)
}

// buildEmbedder constructs the configured encoder wrapped in its cache.
func buildEmbedder(cfg *config.Config) (embed.Embedder, error) {
	var inner embed.Embedder
	switch cfg.Semantic.Provider {
	case "remote":
		inner = embed.NewRemoteEmbedder(cfg.Semantic.Endpoint, cfg.Semantic.Model, cfg.Semantic.Dimension)
	default:
		inner = embed.NewHashedEmbedder(cfg.Semantic.Dimension)
	}
	return embed.NewCachedEmbedder(inner, cfg.Semantic.CacheSize)
}

// buildInstaller wires the pack installer from configuration.
func buildInstaller(cfg *config.Config, logger *slog.Logger, opts ...pack.Option) (*pack.Installer, error) {
	store, err := storage.NewFileStore(cfg.Paths.PackDir)
	if err != nil {
		return nil, err
	}
	loc, err := storage.NewLocator(cfg.Semantic.BaseURL, cfg.Semantic.Mirrors...)
	if err != nil {
		return nil, err
	}
	if cfg.Semantic.PermissiveChecksums {
		opts = append(opts, pack.WithPermissiveChecksums(true))
	}
	return pack.NewInstaller(store, loc, logger, opts...), nil
}
