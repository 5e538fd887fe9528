// Package vector provides similarity helpers and top-1 matching over dense vectors.
package vector

import "math"

// CosineSimilarity returns dot(a,b) / (|a|*|b|) in [-1, 1].
// Mismatched lengths, empty vectors, and zero-norm vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push parallel vectors slightly past the bounds.
	return math.Max(-1, math.Min(1, sim))
}
