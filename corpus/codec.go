package corpus

import (
	"fmt"

	"github.com/mus-format/mus-go/raw"

	"github.com/poiesic/docrag/core"
)

// Embedding stream layout:
//
//	uint32 record_count
//	repeat record_count times:
//	  uint32 dims
//	  float32[dims] values
//
// All values are little-endian, which is what the mus raw serializers emit.
const progressChunk = 1000

// MarshalEmbeddings serializes embedding vectors to the binary stream format.
func MarshalEmbeddings(vectors [][]float32) []byte {
	size := raw.Uint32.Size(uint32(len(vectors)))
	for _, vec := range vectors {
		size += raw.Uint32.Size(uint32(len(vec)))
		for _, v := range vec {
			size += raw.Float32.Size(v)
		}
	}

	bs := make([]byte, size)
	n := raw.Uint32.Marshal(uint32(len(vectors)), bs)
	for _, vec := range vectors {
		n += raw.Uint32.Marshal(uint32(len(vec)), bs[n:])
		for _, v := range vec {
			n += raw.Float32.Marshal(v, bs[n:])
		}
	}
	return bs
}

// UnmarshalEmbeddings deserializes embedding vectors from the binary stream
// format. The report callback, if non-nil, receives decode progress roughly
// every thousand records and once at the end.
func UnmarshalEmbeddings(bs []byte, report ProgressFunc) ([][]float32, error) {
	count, n, err := raw.Uint32.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding record count: %w", core.ErrMalformedCorpus, err)
	}

	vectors := make([][]float32, 0, count)
	for i := uint32(0); i < count; i++ {
		dims, dn, err := raw.Uint32.Unmarshal(bs[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: embedding %d dims: %w", core.ErrMalformedCorpus, i, err)
		}
		n += dn

		vec := make([]float32, dims)
		for j := uint32(0); j < dims; j++ {
			v, vn, err := raw.Float32.Unmarshal(bs[n:])
			if err != nil {
				return nil, fmt.Errorf("%w: embedding %d value %d: %w", core.ErrMalformedCorpus, i, j, err)
			}
			n += vn
			vec[j] = v
		}
		vectors = append(vectors, vec)

		if report != nil && (i+1)%progressChunk == 0 {
			report(int(i+1), int(count))
		}
	}

	if report != nil {
		report(int(count), int(count))
	}
	return vectors, nil
}
