package query

import (
	"context"
	"testing"

	"github.com/lessonlab/tutor/internal/domain"
)

// mockChunkSearcher implements ChunkSearcher for tests.
type mockChunkSearcher struct {
	searchFn func(ctx context.Context, topicID string, vector []float32, k int) ([]domain.ScoredChunk, error)
}

func (m *mockChunkSearcher) Search(ctx context.Context, topicID string, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, topicID, vector, k)
	}
	return nil, nil
}

// mockImageSearcher implements ImageSearcher for tests.
type mockImageSearcher struct {
	searchFn func(ctx context.Context, vector []float32, k int) ([]domain.ScoredImage, error)
}

func (m *mockImageSearcher) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredImage, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, k)
	}
	return nil, nil
}

// mockComposer implements Composer for tests.
type mockComposer struct {
	composeFn func(ctx context.Context, question string, chunks []domain.ScoredChunk) (string, error)
}

func (m *mockComposer) Compose(ctx context.Context, question string, chunks []domain.ScoredChunk) (string, error) {
	if m.composeFn != nil {
		return m.composeFn(ctx, question, chunks)
	}
	return "composed answer", nil
}

// mockEmbedder implements domain.Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}, nil
}

type testDeps struct {
	chunks  *mockChunkSearcher
	images  *mockImageSearcher
	compose *mockComposer
	embed   *mockEmbedder
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		chunks:  &mockChunkSearcher{},
		images:  &mockImageSearcher{},
		compose: &mockComposer{},
		embed:   &mockEmbedder{},
	}
	svc := New(deps.chunks, deps.images, deps.compose, deps.embed)
	return svc, deps
}
