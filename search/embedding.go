// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/corpus"
)

const (
	// queryPrefixLimit bounds the encoded query length to cap encode cost.
	queryPrefixLimit = 2000

	// scoreShardSize is the number of documents scored per pool task.
	scoreShardSize = 512
)

// EmbeddingScorer scores queries by cosine similarity between the encoded
// query vector and each document's precomputed embedding. Scoring is sharded
// across a worker pool.
type EmbeddingScorer struct {
	embedder ai.Embedder
	pool     *ants.Pool
	logger   *slog.Logger
}

var _ Scorer = (*EmbeddingScorer)(nil)

// EmbeddingScorerOption configures an EmbeddingScorer.
type EmbeddingScorerOption func(*EmbeddingScorer) error

// WithScorerPoolSize sets the worker pool size for sharded scoring.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithScorerPoolSize(size int) EmbeddingScorerOption {
	return func(s *EmbeddingScorer) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithScorerLogger sets a custom logger.
// Default is slog.Default().
func WithScorerLogger(logger *slog.Logger) EmbeddingScorerOption {
	return func(s *EmbeddingScorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewEmbeddingScorer creates the neural scoring backend.
func NewEmbeddingScorer(embedder ai.Embedder, opts ...EmbeddingScorerOption) (*EmbeddingScorer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &EmbeddingScorer{
		embedder: embedder,
		pool:     pool,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}
	return s, nil
}

// Release releases the worker pool.
// The scorer should not be used after calling Release.
func (s *EmbeddingScorer) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// ScoreAll encodes the query (unless a precomputed vector is supplied) and
// computes cosine similarity against every stored embedding. Scores are
// clamped to [0,1].
func (s *EmbeddingScorer) ScoreAll(ctx context.Context, c *corpus.Corpus, query string, queryVec []float32) ([]float64, error) {
	if queryVec == nil {
		if len(query) > queryPrefixLimit {
			query = query[:queryPrefixLimit]
		}
		encoded, err := s.embedder.EmbedText(ctx, query)
		if err != nil {
			s.logger.Error("failed to encode query", "err", err)
			return nil, err
		}
		queryVec = encoded
	}
	queryVec = NormalizeVector(queryVec)

	scores := make([]float64, c.Len())
	var wg sync.WaitGroup

	for start := 0; start < c.Len(); start += scoreShardSize {
		end := start + scoreShardSize
		if end > c.Len() {
			end = c.Len()
		}

		wg.Add(1)
		shard := func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				scores[i] = clamp01(cosineSimilarity(queryVec, c.Embeddings[i]))
			}
		}
		if err := s.pool.Submit(shard); err != nil {
			// Pool exhausted or released: score the shard inline.
			shard()
		}
	}
	wg.Wait()

	return scores, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors
// using float64 accumulation. Mismatched or empty vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
