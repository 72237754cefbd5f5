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

// Command searcher runs a one-shot query against a seeded cache directory
// using the lexical backend, so no embedding service is needed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/docrag"
	"github.com/poiesic/docrag/search"
)

func init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	dir := os.Getenv("RAG_CACHE_DIR")
	if dir == "" {
		dir = "./data"
	}

	engine, err := docrag.NewEngine(dir, docrag.WithLexicalScoring())
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	query := "resize ecs instance"
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	resp, err := engine.Search(context.Background(), search.Request{Query: query})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits in %.1fms (corpus: %d documents)\n",
		len(resp.Results), resp.QueryTimeMs, resp.TotalDocs)
	for i, hit := range resp.Results {
		fmt.Printf("%d: '%s' [%s] (%s)[%0.3f]\n", i, hit.Title, hit.Product, hit.ID, hit.Score)
	}
}
