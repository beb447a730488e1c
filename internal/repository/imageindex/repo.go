// Package imageindex stores the illustration catalog as hashes and
// retrieves images by vector similarity over their descriptions.
package imageindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lessonlab/tutor/internal/db"
	"github.com/lessonlab/tutor/internal/domain"
)

// IndexName is the FT index over image hashes.
const IndexName = domain.KeyPrefix + "images:idx"

const keyPrefix = domain.KeyPrefix + "images:"

// reservedFields are hash fields the repository itself writes; catalog
// extras may not collide with them.
var reservedFields = map[string]struct{}{
	"filename": {}, "title": {}, "description": {}, "keywords": {}, "vector": {},
}

// store is the consumer interface for image storage (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Config holds index tuning for the image index.
type Config struct {
	Dimensions      int
	HNSWM           int
	HNSWEFConstruct int
}

// Repo implements image catalog storage and lookup.
type Repo struct {
	store store
	cfg   Config
}

// New creates an image index repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the image index if it does not exist yet. The
// index carries only the vector field; every search is catalog-wide.
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

// Upsert writes catalog records keyed by their catalog id, so reloading
// the same catalog overwrites in place instead of duplicating.
func (r *Repo) Upsert(ctx context.Context, records []domain.ImageRecord, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("record/vector count mismatch: %d vs %d", len(records), len(vectors))
	}
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(records))
	for i, rec := range records {
		fields := map[string]string{
			"filename":    rec.Filename,
			"title":       rec.Title,
			"description": rec.Description,
			"keywords":    rec.Keywords,
			"vector":      db.VectorBytes(vectors[i]),
		}
		for k, v := range rec.Extra {
			if _, reserved := reservedFields[k]; reserved {
				continue
			}
			fields[k] = v
		}
		items = append(items, db.HashSetItem{Key: keyPrefix + rec.ID, Fields: fields})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store %d images: %w", len(items), err)
	}
	return nil
}

// Search returns the k images closest to the query vector.
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredImage, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"filename", "title", "description", "keywords", "__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("search images: %w", err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	results := make([]domain.ScoredImage, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, domain.ScoredImage{
			ImageRecord: domain.ImageRecord{
				ID:          strings.TrimPrefix(entry.Key, keyPrefix),
				Filename:    entry.Fields["filename"],
				Title:       entry.Fields["title"],
				Description: entry.Fields["description"],
				Keywords:    entry.Fields["keywords"],
			},
			Score: entry.Score,
		})
	}
	return results, nil
}

// Count returns the number of indexed images.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, "*")
	if err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return n, nil
}
