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
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/index"
)

const (
	// scoreThreshold is the minimum boosted score for a document to be a
	// result candidate.
	scoreThreshold = 0.2

	// DefaultTopK is the result count used when a request omits top_k.
	DefaultTopK = 3

	minTopK = 1
	maxTopK = 10
)

// Request is one search query.
//
// TopK is a pointer so an absent field (default applies) is distinguishable
// from an explicit out-of-range value (clamped). Embedding, when present,
// is a precomputed query vector and skips the encoding step.
type Request struct {
	Query     string    `json:"query"`
	Product   string    `json:"product,omitempty"`
	TopK      *int      `json:"top_k,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// ResultDoc is one search result as serialized to clients.
type ResultDoc struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Source        string  `json:"source"`
	Product       string  `json:"product"`
	Category      string  `json:"category"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	OriginalScore float64 `json:"originalScore"`
}

// Response is the payload of a successful search.
type Response struct {
	Results     []ResultDoc `json:"results"`
	TotalDocs   int         `json:"totalDocs"`
	QueryTimeMs float64     `json:"queryTime"`
	Threshold   float64     `json:"threshold"`
	Boosted     bool        `json:"boosted"`
}

// StatusInfo describes index readiness for the health endpoint.
type StatusInfo struct {
	Ready     bool            `json:"ready"`
	Status    string          `json:"status"`
	Documents int             `json:"documents"`
	Progress  *index.Snapshot `json:"progress,omitempty"`
	Persisted bool            `json:"persisted"`
}

// Service runs search queries against the lazily loaded corpus.
type Service struct {
	loader *index.Loader
	scorer Scorer
	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets a custom logger.
// Default is slog.Default().
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewService creates a search service over the given loader and scorer.
func NewService(loader *index.Loader, scorer Scorer, opts ...ServiceOption) (*Service, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}
	if scorer == nil {
		return nil, ErrScorerRequired
	}
	s := &Service{
		loader: loader,
		scorer: scorer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search validates the request, lazily initializes the index, and runs the
// score, boost, threshold, and combine pipeline.
//
// Validation failures wrap core.ErrInvalidQuery. Initialization failures
// wrap core.ErrNotReady together with the underlying cause, so callers can
// match either with errors.Is.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must be a non-empty string", core.ErrInvalidQuery)
	}

	topK := DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
		if topK < minTopK {
			topK = minTopK
		}
		if topK > maxTopK {
			topK = maxTopK
		}
	}

	c, err := s.loader.EnsureReady(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: index initialization failed: %w", core.ErrNotReady, err)
	}

	start := time.Now()

	scores, err := s.scorer.ScoreAll(ctx, c, query, req.Embedding)
	if err != nil {
		s.logger.Error("scoring failed", "err", err)
		return nil, err
	}

	services := ExtractServices(query)
	productFilter := strings.ToUpper(strings.TrimSpace(req.Product))

	ranked := make([]core.ScoredDocument, 0, len(scores))
	for i := range c.Documents {
		doc := &c.Documents[i]
		if productFilter != "" && strings.ToUpper(doc.Product) != productFilter {
			continue
		}
		boosted := Boost(scores[i], doc, services, query)
		if boosted < scoreThreshold {
			continue
		}
		ranked = append(ranked, core.ScoredDocument{
			Document:      *doc,
			Score:         boosted,
			OriginalScore: scores[i],
		})
	}

	// Stable descending sort: equal scores keep corpus insertion order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	var selected []core.ScoredDocument
	if productFilter != "" {
		// An explicit product filter already pins the service; the
		// representation pass would be a no-op at best.
		if len(ranked) > topK {
			ranked = ranked[:topK]
		}
		selected = ranked
	} else {
		selected = combineResults(ranked, services, topK)
	}

	results := make([]ResultDoc, 0, len(selected))
	for _, sd := range selected {
		results = append(results, ResultDoc{
			ID:            sd.ID,
			Title:         sd.Title,
			Source:        sd.Source,
			Product:       sd.Product,
			Category:      sd.Category,
			Content:       sd.Content,
			Score:         sd.Score,
			OriginalScore: sd.OriginalScore,
		})
	}

	elapsed := time.Since(start)
	s.logger.Info("search completed",
		"query_len", len(query),
		"results", len(results),
		"services", services,
		"elapsed", elapsed,
	)

	return &Response{
		Results:     results,
		TotalDocs:   c.Len(),
		QueryTimeMs: float64(elapsed.Microseconds()) / 1000.0,
		Threshold:   scoreThreshold,
		// The boost pipeline runs on every query; the flag is constant.
		Boosted: true,
	}, nil
}

// Status reports index readiness without triggering a load.
func (s *Service) Status() StatusInfo {
	state := s.loader.State()
	info := StatusInfo{
		Ready:  state == index.StateReady,
		Status: state.String(),
	}
	if c := s.loader.Corpus(); c != nil {
		info.Documents = c.Len()
	}
	if snapshot, observed, persisted := s.loader.Progress(); observed {
		info.Progress = &snapshot
		info.Persisted = persisted
	}
	return info
}

// Schema returns the machine-readable description of the search operation,
// suitable for registration as an assistant tool.
func (s *Service) Schema() map[string]any {
	return map[string]any{
		"name":        "rag_search",
		"description": "Search the documentation corpus for passages relevant to a question.",
		"parameters": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The question or phrase to search for.",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": "Number of results to return.",
					"default":     DefaultTopK,
					"minimum":     minTopK,
					"maximum":     maxTopK,
				},
				"product": map[string]any{
					"type":        "string",
					"description": "Restrict results to a single product short name.",
				},
				"embedding": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "number"},
					"description": "Precomputed query embedding; skips the encoding step.",
				},
			},
			"required": []string{"query"},
		},
	}
}
