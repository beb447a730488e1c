// Package chunkindex stores lesson chunks as hashes and retrieves them
// by topic-scoped vector similarity.
package chunkindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lessonlab/tutor/internal/db"
	"github.com/lessonlab/tutor/internal/domain"
)

// IndexName is the FT index over lesson chunk hashes.
const IndexName = domain.KeyPrefix + "chunks:idx"

const keyPrefix = domain.KeyPrefix + "chunks:"

// store is the consumer interface for chunk storage (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Config holds index tuning for the chunk index.
type Config struct {
	Dimensions      int
	HNSWM           int
	HNSWEFConstruct int
}

// Repo implements usecase ingest/query chunk storage.
type Repo struct {
	store store
	cfg   Config
}

// New creates a chunk index repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the chunk index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     IndexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: "topic_id", Type: db.IndexFieldTag},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.cfg.Dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.cfg.HNSWM,
				VectorEFConstruct: r.cfg.HNSWEFConstruct,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// Add persists chunks with their vectors in a single pipelined round trip,
// so a cancelled ingest commits nothing.
func (r *Repo) Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(chunks))
	for i, c := range chunks {
		items = append(items, db.HashSetItem{
			Key: keyPrefix + c.ID,
			Fields: map[string]string{
				"text":     c.Text,
				"topic_id": c.TopicID,
				"position": strconv.Itoa(c.Position),
				"vector":   db.VectorBytes(vectors[i]),
			},
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store %d chunks: %w", len(items), err)
	}
	return nil
}

// Search returns the k chunks closest to the query vector within a topic.
// An unknown topic simply matches nothing.
func (r *Repo) Search(ctx context.Context, topicID string, vector []float32, k int) ([]domain.ScoredChunk, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		TopicTag:     topicID,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"text", "topic_id", "position", "__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks topic=%s: %w", topicID, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	results := make([]domain.ScoredChunk, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		position, _ := strconv.Atoi(entry.Fields["position"])
		results = append(results, domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:       strings.TrimPrefix(entry.Key, keyPrefix),
				TopicID:  entry.Fields["topic_id"],
				Text:     entry.Fields["text"],
				Position: position,
			},
			Score: entry.Score,
		})
	}
	return results, nil
}

// Count returns the number of indexed chunks.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, "*")
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}
