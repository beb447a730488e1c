package domain

import "context"

// Generator is the text generation contract. Implementations send a single
// prompt to a language model and return its raw text output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
