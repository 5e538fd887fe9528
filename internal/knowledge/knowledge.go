// Package knowledge holds the immutable FAQ knowledge base and its precomputed question vectors.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/tanya/internal/embedding"
	"github.com/hyperjump/tanya/internal/vector"
)

// Pair is one question/answer entry as loaded from a source.
type Pair struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// FAQEntry is a Pair with its question embedding. Identity is its index in the KnowledgeBase.
type FAQEntry struct {
	Question  string
	Answer    string
	Embedding []float32
}

// KnowledgeBase is an ordered, read-only set of FAQ entries sharing one embedding dimension.
// It is safe for concurrent use because it is never mutated after Build.
type KnowledgeBase struct {
	entries    []FAQEntry
	embeddings [][]float32
	dimensions int
}

// DefaultPairs returns the built-in FAQ.
func DefaultPairs() []Pair {
	return []Pair{
		{Question: "What is your return policy?", Answer: "Our return policy lasts 30 days."},
		{Question: "How can I track my order?", Answer: "You can track your order using the tracking link sent to your email."},
		{Question: "Do you offer customer support?", Answer: "Yes, we offer 24/7 customer support."},
		{Question: "What payment methods do you accept?", Answer: "We accept credit cards, debit cards, and PayPal."},
	}
}

// Build encodes every question with emb and returns the knowledge base.
// Returns vector.ErrEmptyKnowledgeBase if pairs is empty.
func Build(ctx context.Context, pairs []Pair, emb embedding.Embedder) (*KnowledgeBase, error) {
	if err := validatePairs(pairs); err != nil {
		return nil, err
	}
	vecs, err := emb.EmbedBatch(ctx, Questions(pairs))
	if err != nil {
		return nil, fmt.Errorf("encode knowledge base: %w", err)
	}
	return New(pairs, vecs)
}

// New assembles a knowledge base from pairs and already computed question vectors.
func New(pairs []Pair, vecs [][]float32) (*KnowledgeBase, error) {
	if err := validatePairs(pairs); err != nil {
		return nil, err
	}
	if len(vecs) != len(pairs) {
		return nil, fmt.Errorf("knowledge base has %d questions but %d embeddings", len(pairs), len(vecs))
	}
	dims := len(vecs[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: empty embedding", vector.ErrDimensionMismatch)
	}
	kb := &KnowledgeBase{
		entries:    make([]FAQEntry, len(pairs)),
		embeddings: make([][]float32, len(pairs)),
		dimensions: dims,
	}
	for i, p := range pairs {
		if len(vecs[i]) != dims {
			return nil, fmt.Errorf("%w: entry %d has %d, expected %d", vector.ErrDimensionMismatch, i, len(vecs[i]), dims)
		}
		v := append([]float32(nil), vecs[i]...)
		kb.entries[i] = FAQEntry{Question: p.Question, Answer: p.Answer, Embedding: v}
		kb.embeddings[i] = v
	}
	return kb, nil
}

func validatePairs(pairs []Pair) error {
	if len(pairs) == 0 {
		return vector.ErrEmptyKnowledgeBase
	}
	for i, p := range pairs {
		if strings.TrimSpace(p.Question) == "" {
			return fmt.Errorf("entry %d: question is empty", i)
		}
		if strings.TrimSpace(p.Answer) == "" {
			return fmt.Errorf("entry %d: answer is empty", i)
		}
	}
	return nil
}

// Questions returns the question text of each pair, in order.
func Questions(pairs []Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Question
	}
	return out
}

// Len returns the number of entries.
func (kb *KnowledgeBase) Len() int { return len(kb.entries) }

// Dimensions returns the embedding dimension shared by all entries.
func (kb *KnowledgeBase) Dimensions() int { return kb.dimensions }

// Entry returns the entry at index i. It panics if i is out of range.
func (kb *KnowledgeBase) Entry(i int) FAQEntry { return kb.entries[i] }

// Embeddings returns the question vectors in entry order. Callers must not modify them.
func (kb *KnowledgeBase) Embeddings() [][]float32 { return kb.embeddings }
