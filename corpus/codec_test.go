package corpus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingsRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
	}{
		{
			name:    "empty stream",
			vectors: [][]float32{},
		},
		{
			name:    "single vector",
			vectors: [][]float32{{0.1, -0.5, 0.25}},
		},
		{
			name: "mixed dimensions",
			vectors: [][]float32{
				{1, 2, 3, 4},
				{},
				{-0.000123, 42.5},
			},
		},
		{
			name: "special float values survive bit-exactly",
			vectors: [][]float32{
				{0, float32(math.Copysign(0, -1)), math.MaxFloat32, math.SmallestNonzeroFloat32},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := MarshalEmbeddings(tt.vectors)
			decoded, err := UnmarshalEmbeddings(bs, nil)
			require.NoError(t, err)

			require.Len(t, decoded, len(tt.vectors))
			for i := range tt.vectors {
				require.Len(t, decoded[i], len(tt.vectors[i]), "vector %d dims", i)
				for j := range tt.vectors[i] {
					assert.Equal(t,
						math.Float32bits(tt.vectors[i][j]),
						math.Float32bits(decoded[i][j]),
						"vector %d value %d", i, j)
				}
			}
		})
	}
}

func TestUnmarshalEmbeddings_Truncated(t *testing.T) {
	bs := MarshalEmbeddings([][]float32{{0.1, 0.2, 0.3}})

	for cut := 1; cut < len(bs); cut++ {
		_, err := UnmarshalEmbeddings(bs[:cut], nil)
		assert.Error(t, err, "truncated at %d bytes", cut)
	}
}

func TestUnmarshalEmbeddings_Progress(t *testing.T) {
	vectors := make([][]float32, 2500)
	for i := range vectors {
		vectors[i] = []float32{float32(i)}
	}

	var calls []int
	_, err := UnmarshalEmbeddings(MarshalEmbeddings(vectors), func(current, total int) {
		assert.Equal(t, 2500, total)
		calls = append(calls, current)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000, 2500}, calls)
}
