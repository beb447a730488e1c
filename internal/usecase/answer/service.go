// Package answer composes tutor answers from retrieved lesson content.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/lessonlab/tutor/internal/domain"
)

// promptTemplate frames retrieved lesson content as tutoring context.
// The leading newline and wording are part of the tuned prompt; change
// it only together with answer-quality evaluation.
const promptTemplate = `
You are a helpful tutor. Use the following lesson content to answer the question.
Only use the information provided below. Do not make up answers.
You should always complete the answer with "What more topics you want to cover? Happy to help!"

Start your answer with a sentence, for example:
- "Based on the lesson content, ..."
- "According to the provided material, ..."
- "From the study material, we learn that ..."

Lesson Content:
%s

Question:
%s

Please provide a detailed, structured answer (use bullet points where necessary) based only on the given context.
`

// Service renders the tutor prompt and delegates to the generator.
type Service struct {
	generate domain.Generator
}

// New creates an answer service.
func New(g domain.Generator) *Service {
	return &Service{generate: g}
}

// Compose builds the tutor prompt from retrieved chunks and the question,
// and returns the generated answer. Chunks are joined with blank lines in
// retrieval order.
func (s *Service) Compose(ctx context.Context, question string, chunks []domain.ScoredChunk) (string, error) {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}

	prompt := BuildPrompt(strings.Join(texts, "\n\n"), question)

	answer, err := s.generate.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("compose answer: %w", err)
	}
	return answer, nil
}

// BuildPrompt renders the tutor prompt for the given context and question.
func BuildPrompt(lessonContent, question string) string {
	return fmt.Sprintf(promptTemplate, lessonContent, question)
}
