package search

import (
	"context"

	"github.com/poiesic/docrag/corpus"
)

// Scorer assigns every corpus document a raw relevance score in [0,1] for a
// query. Implementations must be thread-safe for concurrent use.
//
// The neural and lexical backends both satisfy this interface; downstream
// boosting and combination depend only on the score contract, so backends
// are interchangeable at startup.
type Scorer interface {
	// ScoreAll scores the query against each document of the corpus and
	// returns one score per document, positionally aligned.
	//
	// queryVec, when non-nil, is a precomputed query encoding supplied by
	// the caller; backends without an encoding step ignore it.
	ScoreAll(ctx context.Context, c *corpus.Corpus, query string, queryVec []float32) ([]float64, error)
}
