//go:build ignore

// Generates synthetic book JSON files for ingest benchmarking.
// Usage: go run scripts/generate-test-corpus.go -books 10 -output testdata/bench
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

var (
	numBooks    = flag.Int("books", 10, "Number of books to generate")
	numChapters = flag.Int("chapters", 12, "Chapters per book")
	numVerses   = flag.Int("verses", 40, "Verses per chapter")
	outputDir   = flag.String("output", "testdata/bench", "Output directory")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var sourceWords = []string{
	"धर्मः", "कर्म", "योगः", "आत्मा", "ब्रह्म", "मोक्षः", "ज्ञानम्", "भक्तिः",
	"सत्यम्", "शान्तिः", "विद्या", "गुरुः", "मनः", "बुद्धिः", "प्रकृतिः",
}

var translitWords = []string{
	"dharmaḥ", "karma", "yogaḥ", "ātmā", "brahma", "mokṣaḥ", "jñānam", "bhaktiḥ",
	"satyam", "śāntiḥ", "vidyā", "guruḥ", "manaḥ", "buddhiḥ", "prakṛtiḥ",
}

var glossWords = []string{
	"duty", "action", "union", "self", "the absolute", "liberation", "knowledge",
	"devotion", "truth", "peace", "learning", "teacher", "mind", "intellect", "nature",
}

func pick(r *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = r.Intn(len(sourceWords))
	}
	return idx
}

func main() {
	flag.Parse()
	r := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}

	for b := 1; b <= *numBooks; b++ {
		book := map[string]any{
			"id":     fmt.Sprintf("bench-book-%d", b),
			"title":  fmt.Sprintf("Bench Book %d", b),
			"type":   "shastra",
			"author": "generated",
		}
		var chapters []map[string]any
		for c := 1; c <= *numChapters; c++ {
			var verses []map[string]any
			for v := 1; v <= *numVerses; v++ {
				idx := pick(r, 4+r.Intn(4))
				var src, tr, gl string
				var wbw [][2]string
				for i, j := range idx {
					if i > 0 {
						src += " "
						tr += " "
						gl += " "
					}
					src += sourceWords[j]
					tr += translitWords[j]
					gl += glossWords[j]
					wbw = append(wbw, [2]string{translitWords[j], glossWords[j]})
				}
				verses = append(verses, map[string]any{
					"number":       v,
					"devanagari":   src,
					"iast":         tr,
					"translation":  gl,
					"word_by_word": wbw,
				})
			}
			chapters = append(chapters, map[string]any{"number": c, "verses": verses})
		}
		book["chapters"] = chapters

		data, err := json.MarshalIndent(book, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
			os.Exit(1)
		}
		path := filepath.Join(*outputDir, fmt.Sprintf("book-%03d.json", b))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("generated %d books under %s\n", *numBooks, *outputDir)
}
