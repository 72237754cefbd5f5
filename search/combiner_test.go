package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docrag/core"
)

func scored(id, product string, score float64) core.ScoredDocument {
	return core.ScoredDocument{
		Document:      core.Document{ID: id, Product: product},
		Score:         score,
		OriginalScore: score,
	}
}

func resultIDs(docs []core.ScoredDocument) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}

func TestCombineNoServicesTruncates(t *testing.T) {
	ranked := []core.ScoredDocument{
		scored("a", "OBS", 0.9),
		scored("b", "VPC", 0.8),
		scored("c", "RDS", 0.7),
		scored("d", "ELB", 0.6),
	}

	got := combineResults(ranked, nil, 2)
	assert.Equal(t, []string{"a", "b"}, resultIDs(got))
}

func TestCombineGuaranteesServiceRepresentation(t *testing.T) {
	// The only ECS document ranks fifth; without representation it would
	// miss a top-3 cut entirely.
	ranked := []core.ScoredDocument{
		scored("a", "OBS", 0.9),
		scored("b", "VPC", 0.8),
		scored("c", "RDS", 0.7),
		scored("d", "ELB", 0.6),
		scored("e", "ECS", 0.5),
		scored("f", "DNS", 0.4),
	}

	got := combineResults(ranked, []string{"ECS"}, 3)
	require.Len(t, got, 3)

	// Service documents lead the output; remaining slots fill from the
	// other candidates in rank order.
	assert.Equal(t, []string{"e", "a", "b"}, resultIDs(got))
}

func TestCombineCapsByAvailability(t *testing.T) {
	// No document of the mentioned service exists in the candidate pool;
	// the floor degrades to a plain top-K cut.
	ranked := []core.ScoredDocument{
		scored("a", "OBS", 0.9),
		scored("b", "VPC", 0.8),
		scored("c", "RDS", 0.7),
	}

	got := combineResults(ranked, []string{"ECS"}, 2)
	assert.Equal(t, []string{"a", "b"}, resultIDs(got))
}

func TestCombineMultipleServiceDocs(t *testing.T) {
	ranked := []core.ScoredDocument{
		scored("a", "OBS", 0.9),
		scored("b", "ECS", 0.8),
		scored("c", "VPC", 0.7),
		scored("d", "ECS", 0.6),
		scored("e", "RDS", 0.5),
	}

	// ceil(3 * 0.6) = 2 service slots, both ECS documents available; they
	// lead, then the best of the rest fills the last slot.
	got := combineResults(ranked, []string{"ECS"}, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "d", "a"}, resultIDs(got))
}

func TestCombineAllServicePoolStopsAtShare(t *testing.T) {
	// Every candidate matches the service, so nothing remains to fill the
	// slots past the service share: the result is shorter than topK.
	ranked := []core.ScoredDocument{
		scored("a", "ECS", 0.9),
		scored("b", "ECS", 0.8),
		scored("c", "ECS", 0.7),
	}

	got := combineResults(ranked, []string{"ECS"}, 3)
	assert.Equal(t, []string{"a", "b"}, resultIDs(got))
}

func TestCombineFewerCandidatesThanTopK(t *testing.T) {
	ranked := []core.ScoredDocument{
		scored("a", "ECS", 0.9),
	}

	got := combineResults(ranked, []string{"ECS"}, 5)
	assert.Equal(t, []string{"a"}, resultIDs(got))
}

func TestCombineZeroTopK(t *testing.T) {
	ranked := []core.ScoredDocument{scored("a", "ECS", 0.9)}
	assert.Empty(t, combineResults(ranked, []string{"ECS"}, 0))
}
