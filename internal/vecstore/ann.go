package vecstore

import (
	"github.com/coder/hnsw"
)

// annThreshold is the passage count above which an HNSW graph is built
// for candidate generation. Below it, exhaustive scoring is already
// fast and exact.
const annThreshold = 5000

// annIndex wraps an HNSW graph keyed by passage id. Candidates it
// returns are re-scored exactly against the matrix, so graph recall
// only affects which passages get considered, never their scores.
type annIndex struct {
	graph *hnsw.Graph[int64]
}

func buildANN(dim int, rows []Passage, matrix []float32) *annIndex {
	graph := hnsw.NewGraph[int64]()
	graph.Distance = hnsw.CosineDistance
	for i := range rows {
		vec := make([]float32, dim)
		copy(vec, matrix[i*dim:(i+1)*dim])
		graph.Add(hnsw.MakeNode(rows[i].ID, vec))
	}
	return &annIndex{graph: graph}
}

// search returns up to k candidate passage ids near query.
func (a *annIndex) search(query []float32, k int) []int64 {
	if a.graph.Len() == 0 || k <= 0 {
		return nil
	}
	nodes := a.graph.Search(query, k)
	ids := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.Key)
	}
	return ids
}
