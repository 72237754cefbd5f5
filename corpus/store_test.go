package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docrag/core"
)

func testDocuments() []core.Document {
	return []core.Document{
		{
			ID:       "ecs-create",
			Content:  "Log in to the console and create an ECS instance.",
			Source:   "https://docs.example.com/ecs/create",
			Title:    "Create an ECS instance",
			Product:  "ECS",
			Category: "getting-started",
		},
		{
			ID:       "vpc-subnet",
			Content:  "A subnet is a segment of a VPC network.",
			Source:   "https://docs.example.com/vpc/subnet",
			Title:    "Subnet planning",
			Product:  "VPC",
			Category: "concepts",
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {
			store := NewStore(t.TempDir())
			docs := testDocuments()
			vectors := [][]float32{{0.9, 0.1}, {0.1, 0.9}}

			require.NoError(t, store.WriteDocuments(docs, compress))
			require.NoError(t, store.WriteEmbeddings(vectors, compress))

			gotDocs, err := store.LoadDocuments()
			require.NoError(t, err)
			assert.Equal(t, docs, gotDocs)

			gotVectors, err := store.LoadEmbeddings(nil)
			require.NoError(t, err)
			assert.Equal(t, vectors, gotVectors)
		})
	}
}

func TestStore_PrefersGzipVariant(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// Write a stale plain artifact, then a fresh compressed one.
	require.NoError(t, store.WriteDocuments([]core.Document{{ID: "stale", Content: "old"}}, false))
	require.NoError(t, store.WriteDocuments(testDocuments(), true))

	docs, err := store.LoadDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "ecs-create", docs[0].ID)
}

func TestStore_MissingCorpus(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.LoadDocuments()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrCorpusMissing))
	assert.Contains(t, err.Error(), "cmd/seeder")

	_, err = store.LoadEmbeddings(nil)
	assert.True(t, errors.Is(err, core.ErrCorpusMissing))
}

func TestStore_MalformedDocuments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "documents.json"), []byte("{not json"), 0644))

	_, err := NewStore(dir).LoadDocuments()
	assert.True(t, errors.Is(err, core.ErrMalformedCorpus))
}

func TestStore_MalformedGzip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "embeddings.bin.gz"), []byte("not gzip"), 0644))

	_, err := NewStore(dir).LoadEmbeddings(nil)
	assert.True(t, errors.Is(err, core.ErrMalformedCorpus))
}

func TestNewCorpus_CountMismatch(t *testing.T) {
	_, err := NewCorpus(testDocuments(), [][]float32{{0.1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMalformedCorpus))

	c, err := NewCorpus(testDocuments(), [][]float32{{0.1}, {0.2}})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, len(c.Documents), len(c.Embeddings))
}
