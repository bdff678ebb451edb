package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samhita-labs/grantha/internal/search"
	"github.com/samhita-labs/grantha/internal/ui"
)

func newSearchCmd() *cobra.Command {
	var (
		works   []int64
		scopes  []string
		page    int
		perPage int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Lexical verse search",
		Long: `Search verses across source text, transliteration, translation, and
word-for-word gloss. Matching is case- and diacritic-insensitive.

Query forms:
  dharma            literal substring
  dharm*            wildcard (* any run, ? one character)
  /yoga(s|h)?/i     regular expression with optional i m s flags`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repo, err := loadRepo(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			filters := search.Filters{}
			if len(works) > 0 {
				filters.WorkIDs = make(map[int64]bool, len(works))
				for _, id := range works {
					filters.WorkIDs[id] = true
				}
			}
			for _, name := range scopes {
				scope := search.Scope(name)
				if !scope.Valid() {
					return fmt.Errorf("unknown scope %q (valid: source, translit, translation, gloss)", name)
				}
				filters.Scopes = append(filters.Scopes, scope)
			}

			query := strings.Join(args, " ")
			results := search.New(repo).Search(query, filters)

			p := search.NewPaginator(len(results))
			if perPage > 0 {
				p.SetPageSize(perPage)
			} else if cfg.Search.PerPage > 0 {
				p.SetPageSize(cfg.Search.PerPage)
			}
			if page > 0 {
				p.SetPage(page)
			}
			pageResults := p.Slice(results)

			if asJSON {
				return printSearchJSON(results, pageResults, p)
			}
			printSearchText(query, results, pageResults, p)
			return nil
		},
	}

	cmd.Flags().Int64SliceVar(&works, "work", nil, "Restrict to work ids (repeatable)")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Restrict to fields: source, translit, translation, gloss")
	cmd.Flags().IntVar(&page, "page", 1, "Result page (1-based)")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Results per page: 25, 50, or 100")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")

	return cmd
}

type searchJSONResult struct {
	Citation string   `json:"citation"`
	Locator  string   `json:"locator"`
	Work     string   `json:"work"`
	Scope    string   `json:"scope"`
	Snippet  string   `json:"snippet"`
	Matched  []string `json:"matched_scopes"`
}

func printSearchJSON(all []search.Result, pageResults []search.Result, p *search.Paginator) error {
	out := struct {
		Total     int                `json:"total"`
		Page      int                `json:"page"`
		PageCount int                `json:"page_count"`
		Results   []searchJSONResult `json:"results"`
	}{Total: len(all), Page: p.Page(), PageCount: p.PageCount()}
	for _, r := range pageResults {
		matched := make([]string, len(r.MatchedScopes))
		for i, sc := range r.MatchedScopes {
			matched[i] = string(sc)
		}
		out.Results = append(out.Results, searchJSONResult{
			Citation: r.Row.Verse.Citation,
			Locator:  r.Locator.String(),
			Work:     r.Row.WorkTitle,
			Scope:    string(r.SnippetScope),
			Snippet:  r.Snippet,
			Matched:  matched,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printSearchText(query string, all []search.Result, pageResults []search.Result, p *search.Paginator) {
	styles := ui.DefaultStyles()
	if len(all) == 0 {
		fmt.Printf("no matches for %q\n", query)
		return
	}
	fmt.Printf("%d matches for %q (page %d/%d)\n\n", len(all), query, p.Page(), p.PageCount())
	for _, r := range pageResults {
		spans := make([][2]int, len(r.Highlights))
		for i, h := range r.Highlights {
			spans[i] = [2]int{h.Start, h.End}
		}
		fmt.Printf("%s  %s\n", styles.Header.Render(r.Row.Verse.Citation), styles.Dim.Render(string(r.SnippetScope)))
		fmt.Printf("  %s\n\n", ui.HighlightSnippet(r.Snippet, spans, styles.Success))
	}
}
