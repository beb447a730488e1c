package ingest

import (
	"context"
	"testing"

	"github.com/lessonlab/tutor/internal/domain"
)

// mockChunkStore implements ChunkStore for tests.
type mockChunkStore struct {
	addFn func(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
}

func (m *mockChunkStore) Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if m.addFn != nil {
		return m.addFn(ctx, chunks, vectors)
	}
	return nil
}

// mockExtractor implements TextExtractor for tests.
type mockExtractor struct {
	textFn func(ctx context.Context, path string) (string, error)
}

func (m *mockExtractor) Text(ctx context.Context, path string) (string, error) {
	if m.textFn != nil {
		return m.textFn(ctx, path)
	}
	return "extracted text", nil
}

// mockSplitter implements Splitter for tests.
type mockSplitter struct {
	splitFn func(text string) []string
}

func (m *mockSplitter) Split(text string) []string {
	if m.splitFn != nil {
		return m.splitFn(text)
	}
	return []string{text}
}

// mockEmbedder implements domain.Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 2}, nil
}

// mockRawStore implements RawStore for tests.
type mockRawStore struct {
	setFn func(ctx context.Context, key string, value []byte) error
}

func (m *mockRawStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

type testDeps struct {
	chunks  *mockChunkStore
	extract *mockExtractor
	split   *mockSplitter
	embed   *mockEmbedder
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		chunks:  &mockChunkStore{},
		extract: &mockExtractor{},
		split:   &mockSplitter{},
		embed:   &mockEmbedder{},
	}
	svc := New(deps.chunks, deps.extract, deps.split, deps.embed, t.TempDir())
	return svc, deps
}
