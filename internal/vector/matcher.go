package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKnowledgeBase is returned when there are no vectors to match against.
	ErrEmptyKnowledgeBase = errors.New("knowledge base is empty")
	// ErrDimensionMismatch is returned when a query and a candidate differ in length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// FindBest returns the index of the candidate with the highest cosine similarity to query,
// along with that similarity. Ties go to the lowest index. Runs in O(N*D) and keeps no state.
func FindBest(query []float32, candidates [][]float32) (int, float64, error) {
	if len(candidates) == 0 {
		return -1, 0, ErrEmptyKnowledgeBase
	}
	best, bestScore := -1, 0.0
	for i, c := range candidates {
		if len(c) != len(query) {
			return -1, 0, fmt.Errorf("%w: query has %d, candidate %d has %d", ErrDimensionMismatch, len(query), i, len(c))
		}
		score := CosineSimilarity(query, c)
		// Strict comparison keeps the first occurrence on ties.
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore, nil
}
