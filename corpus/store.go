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


package corpus

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/docrag/core"
)

const (
	documentsFile  = "documents.json"
	embeddingsFile = "embeddings.bin"
	gzipSuffix     = ".gz"
)

// ProgressFunc receives progress updates while a corpus artifact is decoded.
type ProgressFunc func(current, total int)

// Corpus holds the fully loaded document list and its positionally aligned
// embedding vectors. Once constructed it is read-only; concurrent readers
// need no locking.
type Corpus struct {
	Documents  []core.Document
	Embeddings [][]float32
}

// NewCorpus pairs documents with embeddings, enforcing positional alignment.
func NewCorpus(documents []core.Document, embeddings [][]float32) (*Corpus, error) {
	if len(documents) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d documents but %d embeddings",
			core.ErrMalformedCorpus, len(documents), len(embeddings))
	}
	return &Corpus{Documents: documents, Embeddings: embeddings}, nil
}

// Len returns the number of documents in the corpus.
func (c *Corpus) Len() int {
	return len(c.Documents)
}

// Store reads and writes corpus artifacts under a cache directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore creates a store rooted at the given cache directory.
func NewStore(dir string, opts ...StoreOption) *Store {
	s := &Store{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the cache directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// resolve locates a corpus artifact, preferring the gzip variant when both
// the plain and compressed files exist.
func (s *Store) resolve(name string) (string, bool, error) {
	plain := filepath.Join(s.dir, name)
	compressed := plain + gzipSuffix

	if fileExists(compressed) {
		return compressed, true, nil
	}
	if fileExists(plain) {
		return plain, false, nil
	}
	return "", false, fmt.Errorf("%w: no %s(%s) in %s; run the corpus seeder (cmd/seeder) or the documentation ingestion pipeline first",
		core.ErrCorpusMissing, name, gzipSuffix, s.dir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// readArtifact reads a corpus artifact, decompressing the gzip variant.
func (s *Store) readArtifact(name string) ([]byte, error) {
	path, gzipped, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !gzipped {
		return payload, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrMalformedCorpus, path, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrMalformedCorpus, path, err)
	}
	return out, nil
}

// LoadDocuments reads and parses the document artifact.
func (s *Store) LoadDocuments() ([]core.Document, error) {
	payload, err := s.readArtifact(documentsFile)
	if err != nil {
		return nil, err
	}

	var documents []core.Document
	if err := json.Unmarshal(payload, &documents); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrMalformedCorpus, documentsFile, err)
	}
	return documents, nil
}

// LoadEmbeddings reads and decodes the embedding artifact. The report
// callback, if non-nil, receives decode progress.
func (s *Store) LoadEmbeddings(report ProgressFunc) ([][]float32, error) {
	payload, err := s.readArtifact(embeddingsFile)
	if err != nil {
		return nil, err
	}
	return UnmarshalEmbeddings(payload, report)
}

// WriteDocuments writes the document artifact, optionally gzip-compressed.
func (s *Store) WriteDocuments(documents []core.Document, compress bool) error {
	payload, err := json.Marshal(documents)
	if err != nil {
		return err
	}
	return s.writeArtifact(documentsFile, payload, compress)
}

// WriteEmbeddings writes the embedding artifact, optionally gzip-compressed.
func (s *Store) WriteEmbeddings(vectors [][]float32, compress bool) error {
	return s.writeArtifact(embeddingsFile, MarshalEmbeddings(vectors), compress)
}

func (s *Store) writeArtifact(name string, payload []byte, compress bool) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(s.dir, name)
	if !compress {
		return os.WriteFile(path, payload, 0644)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	s.logger.Debug("writing corpus artifact",
		"path", path+gzipSuffix, "raw", len(payload), "compressed", buf.Len())
	return os.WriteFile(path+gzipSuffix, buf.Bytes(), 0644)
}
