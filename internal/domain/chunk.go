package domain

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "tutor:"

// Chunk is a bounded span of source text stored as one retrievable unit.
// Chunks are immutable once created: ingestion appends, nothing updates them.
type Chunk struct {
	ID       string
	TopicID  string
	Text     string
	Position int
}

// ScoredChunk is a chunk returned from similarity search, closest first.
type ScoredChunk struct {
	Chunk
	Score float64
}
