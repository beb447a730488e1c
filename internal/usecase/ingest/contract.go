package ingest

import (
	"context"

	"github.com/lessonlab/tutor/internal/domain"
)

// ChunkStore persists embedded chunks.
type ChunkStore interface {
	Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
}

// TextExtractor pulls plain text out of an uploaded file.
type TextExtractor interface {
	Text(ctx context.Context, path string) (string, error)
}

// Splitter breaks lesson text into chunks.
type Splitter interface {
	Split(text string) []string
}

// RawStore optionally keeps the original upload bytes in the database
// next to the derived chunks.
type RawStore interface {
	Set(ctx context.Context, key string, value []byte) error
}
