// Package e2e provides end-to-end tests with a large knowledge base served over HTTP.
package e2e

import (
	"fmt"

	"github.com/hyperjump/tanya/internal/knowledge"
)

// QueryTestCase is a message and the knowledge base index it must be answered from.
type QueryTestCase struct {
	Message       string
	ExpectedIndex int
	Description   string
}

// Corpus holds FAQ pairs and query test cases for E2E tests.
type Corpus struct {
	Pairs     []knowledge.Pair
	TestCases []QueryTestCase
}

var (
	topics = []string{
		"shipping", "returns", "payments", "accounts", "warranty",
		"gift cards", "subscriptions", "privacy", "invoices", "store hours",
	}
	templates = []string{
		"How do I change my %s settings?",
		"What is the policy on %s?",
		"Who do I contact about %s?",
		"Is there a fee for %s?",
		"Where can I read more about %s?",
	}
)

// BuildCorpus returns the built-in FAQ followed by one generated entry per topic and template.
// Questions are unique; so are answers.
func BuildCorpus() *Corpus {
	pairs := knowledge.DefaultPairs()
	for _, topic := range topics {
		for i, tmpl := range templates {
			pairs = append(pairs, knowledge.Pair{
				Question: fmt.Sprintf(tmpl, topic),
				Answer:   fmt.Sprintf("Answer %d for %s.", i+1, topic),
			})
		}
	}
	return &Corpus{Pairs: pairs, TestCases: buildQueryTestCases(pairs)}
}

// buildQueryTestCases asks every question verbatim and with altered spacing. With a
// deterministic encoder both forms must map back to the question's own index.
func buildQueryTestCases(pairs []knowledge.Pair) []QueryTestCase {
	cases := make([]QueryTestCase, 0, len(pairs)*2)
	for i, p := range pairs {
		cases = append(cases,
			QueryTestCase{Message: p.Question, ExpectedIndex: i, Description: "verbatim"},
			QueryTestCase{Message: "  " + p.Question + "\n", ExpectedIndex: i, Description: "padded"},
		)
	}
	return cases
}
