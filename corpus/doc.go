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


// Package corpus provides the on-disk corpus store for the retrieval engine.
//
// A corpus is a pair of artifacts written by the upstream ingestion pipeline
// into a cache directory:
//
//   - documents.json[.gz]  — a JSON array of document records
//   - embeddings.bin[.gz]  — a little-endian binary stream of float32 vectors,
//     positionally aligned with the document array
//
// The gzip variant of each artifact is preferred when both exist. The store
// never mutates corpus contents; refreshing a corpus means replacing the
// files and reloading the process.
package corpus
