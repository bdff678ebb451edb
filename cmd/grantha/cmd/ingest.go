package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samhita-labs/grantha/internal/corpus"
)

func newIngestCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "ingest <book.json>...",
		Short: "Load book files into the corpus database",
		Long: `Read one or more book JSON files and write them into the corpus
database. Re-ingesting a book replaces its previous contents by slug.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Paths.CorpusDB
			}

			db, err := corpus.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, path := range args {
				book, err := corpus.ReadBook(path)
				if err != nil {
					return err
				}
				if err := corpus.InsertBook(cmd.Context(), db, book); err != nil {
					return err
				}
				verses := 0
				for _, ch := range book.Chapters {
					verses += len(ch.Verses)
				}
				fmt.Printf("ingested %q: %d chapters, %d verses\n", book.Title, len(book.Chapters), verses)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Corpus database path (default from config)")
	return cmd
}
