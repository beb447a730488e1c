// Package query orchestrates the ask-a-question flow: retrieve lesson
// chunks for the topic, compose an answer, and attach the most relevant
// illustration.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lessonlab/tutor/internal/domain"
	"github.com/lessonlab/tutor/internal/logger"
)

const (
	// chunkTopK is how many lesson chunks feed the answer context.
	chunkTopK = 5
	// imageTopK is how many illustrations a query returns.
	imageTopK = 1
)

// Response is the outcome of an answered question.
type Response struct {
	Answer string
	Image  *domain.ScoredImage // nil when the catalog is empty
}

// Service handles question answering over indexed lessons.
type Service struct {
	chunks  ChunkSearcher
	images  ImageSearcher
	compose Composer
	embed   domain.Embedder
}

// New creates a query service.
func New(chunks ChunkSearcher, images ImageSearcher, compose Composer, embed domain.Embedder) *Service {
	return &Service{chunks: chunks, images: images, compose: compose, embed: embed}
}

// Answer retrieves topic-scoped context for the question, composes an
// answer, and picks the catalog image closest to the question. A topic
// with no chunks still produces an answer, composed over empty context.
func (s *Service) Answer(ctx context.Context, topicID, question string) (Response, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(question) == "" {
		return Response{}, fmt.Errorf("%w: question is required", domain.ErrMalformedRequest)
	}
	if strings.TrimSpace(topicID) == "" {
		return Response{}, fmt.Errorf("%w: topicId is required", domain.ErrMalformedRequest)
	}

	// One question embedding serves both the chunk and the image search.
	emb, err := s.embed.Embed(ctx, question)
	if err != nil {
		return Response{}, fmt.Errorf("embed question: %w", err)
	}

	chunks, err := s.chunks.Search(ctx, topicID, emb.Embedding, chunkTopK)
	if err != nil {
		return Response{}, fmt.Errorf("%w: chunks for topic %s: %w", domain.ErrRetrievalFailed, topicID, err)
	}
	log.Debug("retrieved chunks", zap.String("topic_id", topicID), zap.Int("count", len(chunks)))

	answer, err := s.compose.Compose(ctx, question, chunks)
	if err != nil {
		return Response{}, err
	}

	images, err := s.images.Search(ctx, emb.Embedding, imageTopK)
	if err != nil {
		return Response{}, fmt.Errorf("%w: image lookup: %w", domain.ErrRetrievalFailed, err)
	}

	resp := Response{Answer: answer}
	if len(images) > 0 {
		resp.Image = &images[0]
	}
	return resp, nil
}

// FindImage returns the catalog image closest to the given text, or nil
// when the catalog is empty.
func (s *Service) FindImage(ctx context.Context, text string) (*domain.ScoredImage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query text is required", domain.ErrMalformedRequest)
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed image query: %w", err)
	}

	images, err := s.images.Search(ctx, emb.Embedding, imageTopK)
	if err != nil {
		return nil, fmt.Errorf("%w: image lookup: %w", domain.ErrRetrievalFailed, err)
	}
	if len(images) == 0 {
		return nil, nil
	}
	return &images[0], nil
}
