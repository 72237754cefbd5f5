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

// Command seeder writes a corpus into a cache directory so the server has
// something to load. Without -src it seeds a small built-in documentation
// sample; with -embedding-model it embeds through a real service, otherwise
// it generates deterministic vectors good enough for local development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/docrag/ai"
	"github.com/poiesic/docrag/ai/mock"
	"github.com/poiesic/docrag/ai/openai"
	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/corpus"
)

var sampleDocuments = []core.Document{
	{
		Title:    "Resizing an ECS instance",
		Product:  "ECS",
		Category: "compute",
		Source:   "docs/ecs/resize.html",
		Content:  "Stop the instance before changing its flavor. Resizing to a larger flavor requires the target flavor to be available in the same availability zone. Billing switches to the new flavor once the instance restarts.",
	},
	{
		Title:    "Creating an OBS bucket",
		Product:  "OBS",
		Category: "storage",
		Source:   "docs/obs/create-bucket.html",
		Content:  "Bucket names must be globally unique, 3 to 63 characters, lowercase letters, digits, and hyphens. Choose the region closest to your users to reduce latency. Versioning can be enabled after creation.",
	},
	{
		Title:    "VPC peering connections",
		Product:  "VPC",
		Category: "network",
		Source:   "docs/vpc/peering.html",
		Content:  "A peering connection routes traffic between two VPCs using private addresses. The CIDR blocks of peered VPCs must not overlap. Routes must be added on both sides before traffic flows.",
	},
	{
		Title:    "RDS automated backups",
		Product:  "RDS",
		Category: "database",
		Source:   "docs/rds/backups.html",
		Content:  "Automated backups run daily during the configured window and are retained for up to 732 days. Point-in-time recovery restores to any second within the retention period. Manual backups persist until deleted.",
	},
	{
		Title:    "Scaling CCE node pools",
		Product:  "CCE",
		Category: "container",
		Source:   "docs/cce/node-pools.html",
		Content:  "Node pools scale automatically when the autoscaler is enabled and pods are unschedulable. Set min and max node counts per pool. Scaling down respects pod disruption budgets.",
	},
	{
		Title:    "Configuring ELB health checks",
		Product:  "ELB",
		Category: "network",
		Source:   "docs/elb/health-checks.html",
		Content:  "Health checks probe backend servers at the configured interval and remove unhealthy ones from rotation. HTTP checks match the status code; TCP checks only complete the handshake.",
	},
	{
		Title:    "IAM agency permissions",
		Product:  "IAM",
		Category: "security",
		Source:   "docs/iam/agencies.html",
		Content:  "An agency delegates operation permissions to another account or service without sharing credentials. Grant the minimum required policies and set a validity period.",
	},
	{
		Title:    "Attaching EVS disks",
		Product:  "EVS",
		Category: "storage",
		Source:   "docs/evs/attach.html",
		Content:  "A disk and the server it attaches to must be in the same availability zone. Shared disks can attach to up to 16 servers. Initialize the disk before first use.",
	},
	{
		Title:    "Kafka topic partitions in DMS",
		Product:  "DMS",
		Category: "middleware",
		Source:   "docs/dms/kafka-partitions.html",
		Content:  "Partitions spread a topic across brokers for parallel consumption. The partition count can grow but never shrink. Consumers in the same group split partitions between them.",
	},
	{
		Title:    "FunctionGraph cold starts",
		Product:  "FUNCTIONGRAPH",
		Category: "compute",
		Source:   "docs/functiongraph/cold-starts.html",
		Content:  "A cold start initializes a new runtime instance and adds latency to the first invocation. Reserved instances keep runtimes warm. Smaller code packages initialize faster.",
	},
	{
		Title:    "DNS private zones",
		Product:  "DNS",
		Category: "network",
		Source:   "docs/dns/private-zones.html",
		Content:  "A private zone resolves domain names only inside associated VPCs. Overlapping public names are shadowed for those VPCs. Each zone must be associated with at least one VPC.",
	},
	{
		Title:    "CBR backup vaults",
		Product:  "CBR",
		Category: "storage",
		Source:   "docs/cbr/vaults.html",
		Content:  "A vault stores backups for the resources bound to it and enforces a size quota. Policies trigger scheduled backups and expire old ones automatically.",
	},
}

var (
	cacheDir       = flag.String("dir", "./data", "cache directory to write corpus artifacts into")
	srcFile        = flag.String("src", "", "JSON file with an array of documents to seed instead of the built-in sample")
	embeddingHost  = flag.String("embedding-host", "http://localhost:11434/v1", "embedding service host URL")
	embeddingModel = flag.String("embedding-model", "", "embedding model name; empty generates deterministic local vectors")
	dims           = flag.Int("dims", 384, "vector dimension for deterministic local vectors")
	plain          = flag.Bool("plain", false, "write uncompressed artifacts instead of gzip")
)

func main() {
	flag.Parse()

	if err := run(context.Background()); err != nil {
		slog.Error("seeding failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	documents, err := loadDocuments()
	if err != nil {
		return err
	}

	// Fill in IDs and validate before anything touches disk.
	for i := range documents {
		if documents[i].ID == "" {
			documents[i].ID = core.IDFromContent(documents[i].Content)
		}
		if err := core.ValidateDocument(&documents[i]); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}

	vectors, err := embedDocuments(ctx, documents)
	if err != nil {
		return err
	}

	store := corpus.NewStore(*cacheDir)
	if err := store.WriteDocuments(documents, !*plain); err != nil {
		return err
	}
	if err := store.WriteEmbeddings(vectors, !*plain); err != nil {
		return err
	}

	slog.Info("corpus seeded", "documents", len(documents), "dir", *cacheDir, "compressed", !*plain)
	return nil
}

func loadDocuments() ([]core.Document, error) {
	if *srcFile == "" {
		docs := make([]core.Document, len(sampleDocuments))
		copy(docs, sampleDocuments)
		return docs, nil
	}

	payload, err := os.ReadFile(*srcFile)
	if err != nil {
		return nil, err
	}
	var docs []core.Document
	if err := json.Unmarshal(payload, &docs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", *srcFile, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s contains no documents", *srcFile)
	}
	return docs, nil
}

func embedDocuments(ctx context.Context, documents []core.Document) ([][]float32, error) {
	if *embeddingModel == "" {
		vectors := make([][]float32, len(documents))
		for i := range documents {
			vectors[i] = mock.DeterministicVector(documents[i].Content, *dims)
		}
		return vectors, nil
	}

	embedder, err := openai.NewEmbedder(ai.NewConfig(
		ai.WithHost(*embeddingHost),
		ai.WithModel(*embeddingModel),
	))
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(documents))
	for i := range documents {
		texts[i] = documents[i].Content
	}
	return embedder.EmbedTexts(ctx, texts)
}
