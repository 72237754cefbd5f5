package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docrag/core"
	"github.com/poiesic/docrag/corpus"
	"github.com/poiesic/docrag/index"
)

// fakeSource serves a fixed corpus, or fails every load with err.
type fakeSource struct {
	docs       []core.Document
	embeddings [][]float32
	err        error
}

func (f *fakeSource) LoadDocuments() ([]core.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeSource) LoadEmbeddings(report corpus.ProgressFunc) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.embeddings, nil
}

// stubScorer returns fixed positional scores and records the query vector
// it was handed.
type stubScorer struct {
	scores  []float64
	lastVec []float32
}

func (s *stubScorer) ScoreAll(_ context.Context, _ *corpus.Corpus, _ string, queryVec []float32) ([]float64, error) {
	s.lastVec = queryVec
	return s.scores, nil
}

func serviceDocs() []core.Document {
	return []core.Document{
		{ID: "1", Title: "Resizing an ECS instance", Product: "ECS", Category: "compute", Content: "Stop the instance before resizing the flavor."},
		{ID: "2", Title: "Creating OBS buckets", Product: "OBS", Category: "storage", Content: "Buckets hold objects."},
		{ID: "3", Title: "VPC peering", Product: "VPC", Category: "network", Content: "Peering connects two networks."},
		{ID: "4", Title: "RDS backups", Product: "RDS", Category: "database", Content: "Automated backups run daily."},
	}
}

func newTestService(t *testing.T, source *fakeSource, scorer Scorer) *Service {
	t.Helper()

	loader := index.NewLoader(source, index.NewReporter("", nil))
	svc, err := NewService(loader, scorer)
	require.NoError(t, err)
	return svc
}

func newReadySource() *fakeSource {
	docs := serviceDocs()
	embeddings := make([][]float32, len(docs))
	for i := range embeddings {
		embeddings[i] = []float32{1}
	}
	return &fakeSource{docs: docs, embeddings: embeddings}
}

func TestSearchBoostPromotesMentionedService(t *testing.T) {
	// The ECS document has a slightly lower raw score but the query names
	// the service, so the product boost moves it to the top.
	scorer := &stubScorer{scores: []float64{0.5, 0.55, 0.3, 0.3}}
	svc := newTestService(t, newReadySource(), scorer)

	resp, err := svc.Search(context.Background(), Request{Query: "how to resize an ECS"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	assert.Equal(t, "1", resp.Results[0].ID)
	assert.True(t, resp.Boosted)
	assert.Equal(t, 0.5, resp.Results[0].OriginalScore)
	assert.Greater(t, resp.Results[0].Score, resp.Results[0].OriginalScore)
	assert.Equal(t, 4, resp.TotalDocs)
	assert.Equal(t, scoreThreshold, resp.Threshold)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := newTestService(t, newReadySource(), &stubScorer{})

	_, err := svc.Search(context.Background(), Request{Query: "   "})
	assert.ErrorIs(t, err, core.ErrInvalidQuery)
}

func TestSearchMissingCorpus(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("%w: no documents.json in /tmp/none", core.ErrCorpusMissing)}
	svc := newTestService(t, source, &stubScorer{})

	_, err := svc.Search(context.Background(), Request{Query: "anything"})
	assert.ErrorIs(t, err, core.ErrNotReady)
	assert.ErrorIs(t, err, core.ErrCorpusMissing)
}

func TestSearchFailedLoadIsRetryable(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("%w: boom", core.ErrCorpusMissing)}
	svc := newTestService(t, source, &stubScorer{scores: []float64{0.9, 0.9, 0.9, 0.9}})

	_, err := svc.Search(context.Background(), Request{Query: "anything"})
	require.Error(t, err)

	// Artifacts appear; the next request loads successfully.
	ready := newReadySource()
	source.err = nil
	source.docs = ready.docs
	source.embeddings = ready.embeddings

	resp, err := svc.Search(context.Background(), Request{Query: "backups"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
}

func TestSearchProductFilter(t *testing.T) {
	scorer := &stubScorer{scores: []float64{0.9, 0.8, 0.7, 0.6}}
	svc := newTestService(t, newReadySource(), scorer)

	resp, err := svc.Search(context.Background(), Request{Query: "general question", Product: "obs"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "OBS", resp.Results[0].Product)
}

func TestSearchProductFilterOverridesServiceMentions(t *testing.T) {
	// The query names ECS, but the explicit filter pins results to VPC: the
	// representation pass never runs and the ECS document stays out even
	// though it scores highest.
	scorer := &stubScorer{scores: []float64{0.9, 0.8, 0.7, 0.6}}
	svc := newTestService(t, newReadySource(), scorer)

	resp, err := svc.Search(context.Background(), Request{Query: "connect ECS to subnet", Product: "vpc"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "3", resp.Results[0].ID)
	for _, r := range resp.Results {
		assert.Equal(t, "VPC", r.Product)
	}
}

func TestSearchTopKDefaultsAndClamping(t *testing.T) {
	scorer := &stubScorer{scores: []float64{0.9, 0.8, 0.7, 0.6}}
	svc := newTestService(t, newReadySource(), scorer)

	resp, err := svc.Search(context.Background(), Request{Query: "general question"})
	require.NoError(t, err)
	assert.Len(t, resp.Results, DefaultTopK)

	zero := 0
	resp, err = svc.Search(context.Background(), Request{Query: "general question", TopK: &zero})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)

	huge := 50
	resp, err = svc.Search(context.Background(), Request{Query: "general question", TopK: &huge})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 4) // clamped to 10, corpus has 4
}

func TestSearchThresholdFiltersWeakMatches(t *testing.T) {
	scorer := &stubScorer{scores: []float64{0.05, 0.1, 0.15, 0.9}}
	svc := newTestService(t, newReadySource(), scorer)

	resp, err := svc.Search(context.Background(), Request{Query: "general question"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "4", resp.Results[0].ID)
}

func TestSearchPassesPrecomputedEmbedding(t *testing.T) {
	scorer := &stubScorer{scores: []float64{0.9, 0.8, 0.7, 0.6}}
	svc := newTestService(t, newReadySource(), scorer)

	vec := []float32{0.1, 0.2}
	_, err := svc.Search(context.Background(), Request{Query: "general question", Embedding: vec})
	require.NoError(t, err)
	assert.Equal(t, vec, scorer.lastVec)
}

func TestSearchStableTieBreak(t *testing.T) {
	// Equal boosted scores keep corpus insertion order.
	scorer := &stubScorer{scores: []float64{0.5, 0.5, 0.5, 0.5}}
	svc := newTestService(t, newReadySource(), scorer)

	resp, err := svc.Search(context.Background(), Request{Query: "zzzz"})
	require.NoError(t, err)
	require.Len(t, resp.Results, DefaultTopK)
	assert.Equal(t, "1", resp.Results[0].ID)
	assert.Equal(t, "2", resp.Results[1].ID)
	assert.Equal(t, "3", resp.Results[2].ID)

	// The boosted flag is constant, even when the query names no service.
	assert.True(t, resp.Boosted)
}

func TestStatusLifecycle(t *testing.T) {
	scorer := &stubScorer{scores: []float64{0.9, 0.8, 0.7, 0.6}}
	svc := newTestService(t, newReadySource(), scorer)

	info := svc.Status()
	assert.False(t, info.Ready)
	assert.Equal(t, "idle", info.Status)
	assert.Zero(t, info.Documents)

	_, err := svc.Search(context.Background(), Request{Query: "general question"})
	require.NoError(t, err)

	info = svc.Status()
	assert.True(t, info.Ready)
	assert.Equal(t, "ready", info.Status)
	assert.Equal(t, 4, info.Documents)
	require.NotNil(t, info.Progress)
	assert.Equal(t, index.StageReady, info.Progress.Stage)
}

func TestSchemaShape(t *testing.T) {
	svc := newTestService(t, newReadySource(), &stubScorer{})

	schema := svc.Schema()
	assert.Equal(t, "rag_search", schema["name"])

	params, ok := schema["parameters"].(map[string]any)
	require.True(t, ok)
	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"query", "top_k", "product", "embedding"} {
		assert.Contains(t, props, field)
	}
	assert.Equal(t, []string{"query"}, params["required"])
}

func TestNewServiceValidation(t *testing.T) {
	loader := index.NewLoader(newReadySource(), index.NewReporter("", nil))

	_, err := NewService(nil, &stubScorer{})
	assert.ErrorIs(t, err, ErrLoaderRequired)

	_, err = NewService(loader, nil)
	assert.ErrorIs(t, err, ErrScorerRequired)
}
