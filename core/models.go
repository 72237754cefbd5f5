package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// Document is a single record of the documentation corpus.
// Documents are produced by the upstream ingestion pipeline and are
// immutable once loaded into the index.
type Document struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Source   string `json:"source"`
	Title    string `json:"title"`
	Product  string `json:"product"`
	Category string `json:"category"`
}

// IDFromContent generates a deterministic document ID from text content
// using BLAKE2b hashing. Identical content produces identical IDs.
func IDFromContent(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ScoredDocument pairs a corpus document with its boosted relevance score
// and the raw pre-boost score it was derived from. Both values are in [0,1].
type ScoredDocument struct {
	Document
	Score         float64
	OriginalScore float64
}
