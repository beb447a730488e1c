package db

import (
	"encoding/binary"
	"math"
)

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	// TopicTag, when non-empty, pre-filters by the topic_id TAG field before
	// the KNN stage. Empty means unfiltered search over the whole index.
	TopicTag     string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit from a search, closest first.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// VectorBytes encodes a float32 vector as little-endian bytes, the layout
// FT.SEARCH expects both in stored hash fields and in KNN PARAMS blobs.
func VectorBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
