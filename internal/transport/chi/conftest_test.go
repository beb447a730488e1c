package chi

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lessonlab/tutor/internal/domain"
	healthuc "github.com/lessonlab/tutor/internal/usecase/health"
	ingestuc "github.com/lessonlab/tutor/internal/usecase/ingest"
	queryuc "github.com/lessonlab/tutor/internal/usecase/query"
)

type mockChunkStore struct {
	addFunc func(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
}

func (m *mockChunkStore) Add(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if m.addFunc != nil {
		return m.addFunc(ctx, chunks, vectors)
	}
	return nil
}

type mockExtractor struct {
	textFunc func(ctx context.Context, path string) (string, error)
}

func (m *mockExtractor) Text(ctx context.Context, path string) (string, error) {
	if m.textFunc != nil {
		return m.textFunc(ctx, path)
	}
	return "lesson text", nil
}

type mockSplitter struct {
	splitFunc func(text string) []string
}

func (m *mockSplitter) Split(text string) []string {
	if m.splitFunc != nil {
		return m.splitFunc(text)
	}
	return []string{text}
}

type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type mockChunkSearcher struct {
	searchFunc func(ctx context.Context, topicID string, vector []float32, k int) ([]domain.ScoredChunk, error)
}

func (m *mockChunkSearcher) Search(
	ctx context.Context, topicID string, vector []float32, k int,
) ([]domain.ScoredChunk, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, topicID, vector, k)
	}
	return nil, nil
}

type mockImageSearcher struct {
	searchFunc func(ctx context.Context, vector []float32, k int) ([]domain.ScoredImage, error)
}

func (m *mockImageSearcher) Search(
	ctx context.Context, vector []float32, k int,
) ([]domain.ScoredImage, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, vector, k)
	}
	return nil, nil
}

type mockComposer struct {
	composeFunc func(ctx context.Context, question string, chunks []domain.ScoredChunk) (string, error)
}

func (m *mockComposer) Compose(
	ctx context.Context, question string, chunks []domain.ScoredChunk,
) (string, error) {
	if m.composeFunc != nil {
		return m.composeFunc(ctx, question, chunks)
	}
	return "an answer", nil
}

type mockPinger struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

type testDeps struct {
	chunkStore    *mockChunkStore
	extractor     *mockExtractor
	splitter      *mockSplitter
	embedder      *mockEmbedder
	chunkSearcher *mockChunkSearcher
	imageSearcher *mockImageSearcher
	composer      *mockComposer
	pinger        *mockPinger
}

// newTestServer builds a router with real usecase services over mocks.
func newTestServer(t *testing.T) (chi.Router, *testDeps) {
	t.Helper()

	deps := &testDeps{
		chunkStore:    &mockChunkStore{},
		extractor:     &mockExtractor{},
		splitter:      &mockSplitter{},
		embedder:      &mockEmbedder{},
		chunkSearcher: &mockChunkSearcher{},
		imageSearcher: &mockImageSearcher{},
		composer:      &mockComposer{},
		pinger:        &mockPinger{},
	}

	ingest := ingestuc.New(deps.chunkStore, deps.extractor, deps.splitter, deps.embedder, t.TempDir())
	query := queryuc.New(deps.chunkSearcher, deps.imageSearcher, deps.composer, deps.embedder)
	health := healthuc.New(deps.pinger, nil, nil, nil)

	srv := NewServer(ingest, query, health, "http://localhost:8080", 1<<20, zap.NewNop())

	r := chi.NewRouter()
	srv.Register(r)
	return r, deps
}
