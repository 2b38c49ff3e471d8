package driven

import "github.com/custodia-labs/clausewise/internal/core/domain"

// AnswerDecoder validates and decodes a structured LLM answer of the form
// {"answer": "...", "confidence": 0.0-1.0}.
type AnswerDecoder interface {
	// Decode returns an error when raw is not a valid answer object.
	Decode(raw string) (*domain.Answer, error)
}
