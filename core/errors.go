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


package core

import "errors"

// Domain errors
var (
	// ErrCorpusMissing indicates the corpus cache files are absent.
	// Wrapping messages name the ingestion step that produces them.
	ErrCorpusMissing = errors.New("corpus cache not found")

	// ErrMalformedCorpus indicates a corrupt corpus payload: invalid JSON,
	// a truncated embedding stream, or a documents/embeddings count mismatch.
	ErrMalformedCorpus = errors.New("malformed corpus payload")

	// ErrNotReady indicates a query arrived before the index reached the
	// ready state, or after initialization failed.
	ErrNotReady = errors.New("search index is not ready")

	// ErrInvalidQuery indicates a missing or whitespace-only query string.
	ErrInvalidQuery = errors.New("query is required")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyDocumentID indicates the document ID field is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
