package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samhita-labs/grantha/internal/ui"
	"github.com/samhita-labs/grantha/internal/vecstore"
)

// packDBName is the embedding database inside the pack directory.
const packDBName = "pack.db"

func newSemanticCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "semantic <query>",
		Short: "Semantic passage search",
		Long: `Search passages by meaning rather than exact wording. Requires the
semantic pack; run 'grantha pack install' first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// No pack storage configured means no pack to search.
			inst, err := buildInstaller(cfg, slog.Default())
			if err != nil || !inst.Enabled() {
				fmt.Println("semantic pack is not installed; run 'grantha pack install'")
				return nil
			}

			store, err := vecstore.Open(cmd.Context(), filepath.Join(cfg.Paths.PackDir, packDBName))
			if err != nil {
				return err
			}
			defer store.Close()

			embedder, err := buildEmbedder(cfg)
			if err != nil {
				return err
			}
			defer embedder.Close()
			if embedder.Dimensions() != store.Dimensions() {
				return fmt.Errorf("encoder produces %d-dim vectors but the pack stores %d-dim; reinstall the pack or change semantic.dimension",
					embedder.Dimensions(), store.Dimensions())
			}

			hybrid, err := vecstore.NewHybridSearcher(store, vecstore.HybridConfig{
				Alpha:    cfg.Search.Alpha,
				DenseK:   cfg.Search.DenseK,
				LexicalK: cfg.Search.LexicalK,
			})
			if err != nil {
				return err
			}
			defer hybrid.Close()

			query := strings.Join(args, " ")
			vec, err := embedder.Embed(cmd.Context(), query)
			if err != nil {
				return err
			}
			results, err := hybrid.Search(cmd.Context(), query, vec, limit)
			if err != nil {
				return err
			}

			if asJSON {
				return printSemanticJSON(query, results)
			}
			printSemanticText(query, results)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum passages to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")

	return cmd
}

type semanticJSONResult struct {
	ID      int64   `json:"id"`
	WorkID  int64   `json:"work_id"`
	Chapter int     `json:"chapter"`
	Verses  string  `json:"verses"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

func printSemanticJSON(query string, results []vecstore.Result) error {
	out := struct {
		Query   string               `json:"query"`
		Results []semanticJSONResult `json:"results"`
	}{Query: query}
	for _, r := range results {
		out.Results = append(out.Results, semanticJSONResult{
			ID:      r.Passage.ID,
			WorkID:  r.Passage.WorkID,
			Chapter: r.Passage.Chapter,
			Verses:  verseSpan(r.Passage),
			Score:   r.Score,
			Text:    r.Passage.Text,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printSemanticText(query string, results []vecstore.Result) {
	styles := ui.DefaultStyles()
	if len(results) == 0 {
		fmt.Printf("no passages for %q\n", query)
		return
	}
	fmt.Printf("%d passages for %q\n\n", len(results), query)
	for _, r := range results {
		header := fmt.Sprintf("work %d, %d.%s", r.Passage.WorkID, r.Passage.Chapter, verseSpan(r.Passage))
		fmt.Printf("%s  %s\n", styles.Header.Render(header), styles.Dim.Render(fmt.Sprintf("%.3f", r.Score)))
		fmt.Printf("  %s\n\n", r.Passage.Text)
	}
}

func verseSpan(p *vecstore.Passage) string {
	if p.VerseEnd > p.VerseStart {
		return fmt.Sprintf("%d-%d", p.VerseStart, p.VerseEnd)
	}
	return fmt.Sprintf("%d", p.VerseStart)
}
