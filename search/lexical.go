package search

import (
	"context"
	"strings"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/corpus"
)

// Field weights for lexical token matches.
const (
	titleWeight    = 4.0
	productWeight  = 3.0
	categoryWeight = 2.0
	contentWeight  = 1.0

	// lexicalScale normalizes accumulated weights into [0,1]. A token
	// matching every field contributes 10, so scale = 10 * token count.
	lexicalScale = 10.0
)

// LexicalScorer scores by weighted token containment, no model required.
// It is the fallback backend when no embedding service is configured, and
// the whole of the one-shot search CLI.
type LexicalScorer struct{}

var _ Scorer = (*LexicalScorer)(nil)

// NewLexicalScorer creates the lexical scoring backend.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

// ScoreAll tokenizes the query and scores each document by weighted field
// containment. The precomputed query vector is ignored.
func (s *LexicalScorer) ScoreAll(_ context.Context, c *corpus.Corpus, query string, _ []float32) ([]float64, error) {
	tokens := tokenizeAndFilter(query)

	scores := make([]float64, c.Len())
	if len(tokens) == 0 {
		return scores, nil
	}

	for i := range c.Documents {
		scores[i] = scoreLexical(&c.Documents[i], tokens)
	}
	return scores, nil
}

func scoreLexical(doc *core.Document, tokens []string) float64 {
	title := strings.ToLower(doc.Title)
	product := strings.ToLower(doc.Product)
	category := strings.ToLower(doc.Category)
	content := strings.ToLower(doc.Content)

	var total float64
	for _, token := range tokens {
		if strings.Contains(title, token) {
			total += titleWeight
		}
		if strings.Contains(product, token) {
			total += productWeight
		}
		if strings.Contains(category, token) {
			total += categoryWeight
		}
		if strings.Contains(content, token) {
			total += contentWeight
		}
	}

	return clamp01(total / (lexicalScale * float64(len(tokens))))
}
