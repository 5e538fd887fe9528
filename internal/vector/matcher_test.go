package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-2, 0}, -1},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFindBest(t *testing.T) {
	candidates := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	idx, score, err := FindBest([]float32{0, 2, 0}, candidates)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 2 {
		t.Errorf("index = %d, want 2", idx)
	}
	if math.Abs(score-1) > 1e-9 {
		t.Errorf("score = %f, want 1", score)
	}
}

func TestFindBest_ArgMax(t *testing.T) {
	candidates := [][]float32{
		{0.2, 0.8, 0.1, -0.3},
		{-0.5, 0.1, 0.9, 0.0},
		{0.7, 0.7, 0.0, 0.1},
		{0.0, -1.0, 0.2, 0.4},
		{0.3, 0.3, 0.3, 0.3},
	}
	queries := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{-1, -1, 0, 1},
		{0.1, 0.2, 0.3, 0.4},
	}
	for _, q := range queries {
		idx, score, err := FindBest(q, candidates)
		if err != nil {
			t.Fatal(err)
		}
		if want := CosineSimilarity(q, candidates[idx]); want != score {
			t.Errorf("query %v: returned score %f, want %f", q, score, want)
		}
		for j, c := range candidates {
			if s := CosineSimilarity(q, c); s > score {
				t.Errorf("query %v: candidate %d scores %f > winner %d (%f)", q, j, s, idx, score)
			}
		}
	}
}

func TestFindBest_TieBreaksToLowestIndex(t *testing.T) {
	candidates := [][]float32{
		{0, 1},
		{1, 0},
		{1, 0},
		{2, 0},
	}
	idx, _, err := FindBest([]float32{1, 0}, candidates)
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Errorf("index = %d, want 1 (first of the tied entries)", idx)
	}
}

func TestFindBest_Deterministic(t *testing.T) {
	candidates := [][]float32{{0.3, 0.1}, {0.1, 0.3}, {0.2, 0.2}}
	q := []float32{0.25, 0.2}
	first, _, _ := FindBest(q, candidates)
	for i := 0; i < 10; i++ {
		got, _, _ := FindBest(q, candidates)
		if got != first {
			t.Fatalf("run %d: index %d, want %d", i, got, first)
		}
	}
}

func TestFindBest_Errors(t *testing.T) {
	if _, _, err := FindBest([]float32{1}, nil); !errors.Is(err, ErrEmptyKnowledgeBase) {
		t.Errorf("empty candidates: err = %v, want ErrEmptyKnowledgeBase", err)
	}
	if _, _, err := FindBest([]float32{1, 0}, [][]float32{{1, 0}, {1, 0, 0}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("mismatch: err = %v, want ErrDimensionMismatch", err)
	}
}
