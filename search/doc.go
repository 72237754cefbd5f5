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


// Package search implements relevance scoring and query serving over the
// loaded documentation corpus.
//
// A query flows through three stages:
//   - a Scorer backend (neural embedding or lexical) assigns every corpus
//     document a raw score in [0,1]
//   - the booster applies multiplicative service-name and keyword-overlap
//     boosts on top of the raw score
//   - the combiner enforces a minimum representation of service-matching
//     documents for service-targeted queries
//
// The two Scorer backends are selected at startup and are interchangeable:
// everything downstream depends only on the [0,1] score contract.
package search
