package query

import (
	"context"

	"github.com/lessonlab/tutor/internal/domain"
)

// ChunkSearcher retrieves lesson chunks by topic-scoped vector similarity.
type ChunkSearcher interface {
	Search(ctx context.Context, topicID string, vector []float32, k int) ([]domain.ScoredChunk, error)
}

// ImageSearcher retrieves catalog images by vector similarity.
type ImageSearcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredImage, error)
}

// Composer turns retrieved chunks and a question into an answer.
type Composer interface {
	Compose(ctx context.Context, question string, chunks []domain.ScoredChunk) (string, error)
}
