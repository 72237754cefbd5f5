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


package docrag

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/ai/openai"
	"github.com/poiesic/docrag/corpus"
	"github.com/poiesic/docrag/index"
	"github.com/poiesic/docrag/search"
)

// ProgressFile is the name of the load-progress snapshot written next to
// the corpus artifacts.
const ProgressFile = "progress.json"

// Engine wires the corpus store, the lazy index loader, a scoring backend,
// and the search service into one handle. It is the single entry point for
// the server binaries and for embedding the retrieval engine in-process.
type Engine struct {
	store  *corpus.Store
	loader *index.Loader
	scorer search.Scorer
	svc    *search.Service
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	lexical  bool
	embedder ai.Embedder
	logger   *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithLexicalScoring selects the keyword scoring backend instead of the
// embedding backend. No embedding service is contacted.
func WithLexicalScoring() EngineOption {
	return func(o *engineOptions) {
		o.lexical = true
	}
}

// WithEmbedder injects a custom embedder, overriding the AI configuration.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEngine creates an engine reading corpus artifacts from cacheDir.
// The corpus is not loaded until the first search or an explicit Warmup.
func NewEngine(cacheDir string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	store := corpus.NewStore(cacheDir, corpus.WithLogger(options.logger))
	reporter := index.NewReporter(filepath.Join(cacheDir, ProgressFile), options.logger)
	loader := index.NewLoader(store, reporter, index.WithLogger(options.logger))

	var (
		scorer search.Scorer
		err    error
	)
	switch {
	case options.lexical:
		scorer = search.NewLexicalScorer()
	case options.embedder != nil:
		scorer, err = search.NewEmbeddingScorer(options.embedder,
			search.WithScorerLogger(options.logger))
	default:
		var embedder ai.Embedder
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
		scorer, err = search.NewEmbeddingScorer(embedder,
			search.WithScorerLogger(options.logger))
	}
	if err != nil {
		return nil, err
	}

	svc, err := search.NewService(loader, scorer,
		search.WithServiceLogger(options.logger))
	if err != nil {
		return nil, err
	}

	return &Engine{
		store:  store,
		loader: loader,
		scorer: scorer,
		svc:    svc,
		logger: options.logger,
	}, nil
}

// Search runs one query through the full retrieval pipeline.
func (e *Engine) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	return e.svc.Search(ctx, req)
}

// Warmup loads the corpus eagerly so the first request does not pay the
// initialization cost. Optional; the loader initializes on demand otherwise.
func (e *Engine) Warmup(ctx context.Context) error {
	_, err := e.loader.EnsureReady(ctx)
	return err
}

// Status reports index readiness.
func (e *Engine) Status() search.StatusInfo {
	return e.svc.Status()
}

// Service returns the underlying search service for transport wiring.
func (e *Engine) Service() *search.Service {
	return e.svc
}

// Store returns the corpus store, used by the seeding tools.
func (e *Engine) Store() *corpus.Store {
	return e.store
}

// Close releases scorer resources. The engine must not be used after Close.
func (e *Engine) Close() error {
	if releaser, ok := e.scorer.(interface{ Release() }); ok {
		releaser.Release()
	}
	return nil
}
