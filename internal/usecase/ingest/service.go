// Package ingest turns an uploaded lesson file into indexed chunks.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lessonlab/tutor/internal/domain"
	"github.com/lessonlab/tutor/internal/domain/topic"
	"github.com/lessonlab/tutor/internal/logger"
)

// Result summarizes a completed ingestion.
type Result struct {
	TopicID  string
	Filename string
	Chunks   int
}

// Service handles the upload-to-index pipeline: save, extract, chunk,
// embed, store.
type Service struct {
	chunks    ChunkStore
	extract   TextExtractor
	split     Splitter
	embed     domain.Embedder
	raw       RawStore // optional
	uploadDir string
}

// Option configures the ingest service.
type Option func(*Service)

// WithRawStore also keeps the original upload bytes in the database.
func WithRawStore(rs RawStore) Option {
	return func(s *Service) {
		s.raw = rs
	}
}

// New creates an ingest service.
func New(chunks ChunkStore, extract TextExtractor, split Splitter,
	embed domain.Embedder, uploadDir string, opts ...Option,
) *Service {
	s := &Service{
		chunks:    chunks,
		extract:   extract,
		split:     split,
		embed:     embed,
		uploadDir: uploadDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest saves an uploaded lesson file, derives its topic from the
// filename, and indexes its chunks. Re-uploading the same filename adds
// chunks to the same topic; nothing is deleted.
func (s *Service) Ingest(ctx context.Context, filename string, content io.Reader) (Result, error) {
	log := logger.FromContext(ctx)

	name := filepath.Base(filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return Result{}, fmt.Errorf("%w: missing filename", domain.ErrMalformedRequest)
	}

	topicID := topic.Derive(name)
	if topicID == "" {
		return Result{}, fmt.Errorf("%w: filename %q yields no topic", domain.ErrMalformedRequest, name)
	}

	path, data, err := s.saveUpload(name, content)
	if err != nil {
		return Result{}, fmt.Errorf("%w: save upload: %w", domain.ErrIngestionFailed, err)
	}

	if s.raw != nil {
		key := domain.KeyPrefix + "uploads:" + topicID
		if err := s.raw.Set(ctx, key, data); err != nil {
			// The indexed chunks are the source of truth; losing the raw
			// copy is not fatal.
			log.Warn("keep raw upload", zap.String("key", key), zap.Error(err))
		}
	}

	text, err := s.extract.Text(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: extract %s: %w", domain.ErrIngestionFailed, name, err)
	}

	texts := s.split.Split(text)
	if len(texts) == 0 {
		return Result{}, fmt.Errorf("%w: %s produced no chunks", domain.ErrIngestionFailed, name)
	}

	batch, err := domain.BatchEmbedAll(ctx, s.embed, texts)
	if err != nil {
		return Result{}, fmt.Errorf("embed %d chunks: %w", len(texts), err)
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = domain.Chunk{
			ID:       uuid.New().String(),
			TopicID:  topicID,
			Text:     t,
			Position: i,
		}
	}

	if err := s.chunks.Add(ctx, chunks, batch.Embeddings); err != nil {
		return Result{}, fmt.Errorf("%w: index chunks: %w", domain.ErrIngestionFailed, err)
	}

	log.Info("ingested lesson",
		zap.String("filename", name),
		zap.String("topic_id", topicID),
		zap.Int("chunks", len(chunks)),
		zap.Int("tokens", batch.TotalTokens),
	)

	return Result{TopicID: topicID, Filename: name, Chunks: len(chunks)}, nil
}

// saveUpload writes the upload under the upload dir and returns the
// stored path along with the raw bytes.
func (s *Service) saveUpload(name string, content io.Reader) (string, []byte, error) {
	if err := os.MkdirAll(s.uploadDir, 0o750); err != nil {
		return "", nil, fmt.Errorf("create upload dir: %w", err)
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}

	path := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", nil, fmt.Errorf("write %s: %w", path, err)
	}
	return path, data, nil
}
