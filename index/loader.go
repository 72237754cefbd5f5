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


package index

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/corpus"
)

// State is the lifecycle state of the index.
type State int

const (
	// StateIdle means no load has been attempted yet.
	StateIdle State = iota
	// StateLoading means a load is in flight; concurrent callers await it.
	StateLoading
	// StateReady means the corpus is loaded; terminal for the process.
	StateReady
	// StateFailed means the last load failed; the next caller retries.
	StateFailed
)

// String returns the lowercase state name used in status payloads.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loader lazily loads the corpus with a single-flight guarantee.
// It owns the index state; handlers share one Loader instance rather than
// any package-level singleton.
type Loader struct {
	store    CorpusSource
	reporter *Reporter
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	inflight chan struct{} // closed when the current attempt settles
	corpus   *corpus.Corpus
	err      error
}

// CorpusSource is the slice of the corpus store the loader depends on.
// *corpus.Store satisfies it; the loader drives the stage sequencing itself
// so it can report progress between artifacts.
type CorpusSource interface {
	LoadDocuments() ([]core.Document, error)
	LoadEmbeddings(report corpus.ProgressFunc) ([][]float32, error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// NewLoader creates a loader reading from the given corpus source and
// reporting progress through the given reporter.
func NewLoader(store CorpusSource, reporter *Reporter, opts ...Option) *Loader {
	l := &Loader{
		store:    store,
		reporter: reporter,
		logger:   slog.Default(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current lifecycle state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Progress returns the latest load progress snapshot, whether any snapshot
// has been observed this process, and whether it reached disk.
func (l *Loader) Progress() (Snapshot, bool, bool) {
	return l.reporter.Last()
}

// Corpus returns the loaded corpus, or nil if the index is not ready.
func (l *Loader) Corpus() *corpus.Corpus {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateReady {
		return nil
	}
	return l.corpus
}

// EnsureReady returns the loaded corpus, performing the load on first use.
//
// Safe for concurrent use: when a load is already in flight the caller
// awaits that attempt instead of starting another, so N concurrent first
// callers trigger exactly one disk read. A failed attempt is surfaced to
// every waiter and leaves the loader retryable for subsequent calls.
func (l *Loader) EnsureReady(ctx context.Context) (*corpus.Corpus, error) {
	l.mu.Lock()

	switch l.state {
	case StateReady:
		c := l.corpus
		l.mu.Unlock()
		return c, nil

	case StateLoading:
		done := l.inflight
		l.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.state == StateReady {
			return l.corpus, nil
		}
		return nil, l.err

	default: // StateIdle, StateFailed: this caller becomes the initializer
		l.state = StateLoading
		l.inflight = make(chan struct{})
		done := l.inflight
		l.mu.Unlock()

		c, err := l.load()

		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.state = StateFailed
			l.err = err
		} else {
			l.state = StateReady
			l.corpus = c
			l.err = nil
		}
		close(done)
		return c, err
	}
}

// load performs one load attempt, reporting each stage transition.
func (l *Loader) load() (*corpus.Corpus, error) {
	l.reporter.Report(StageLocating, 0, 0)

	documents, err := l.store.LoadDocuments()
	if err != nil {
		l.logger.Error("failed to load documents", "err", err)
		l.reporter.Report(StageFailed, 0, 0)
		return nil, err
	}
	l.reporter.Report(StageDocuments, len(documents), len(documents))

	embeddings, err := l.store.LoadEmbeddings(func(current, total int) {
		l.reporter.Report(StageEmbeddings, current, total)
	})
	if err != nil {
		l.logger.Error("failed to load embeddings", "err", err)
		l.reporter.Report(StageFailed, 0, 0)
		return nil, err
	}

	c, err := corpus.NewCorpus(documents, embeddings)
	if err != nil {
		l.logger.Error("corpus alignment check failed", "err", err)
		l.reporter.Report(StageFailed, 0, 0)
		return nil, err
	}

	l.reporter.Report(StageReady, c.Len(), c.Len())
	l.logger.Info("corpus loaded", "documents", c.Len())
	return c, nil
}
