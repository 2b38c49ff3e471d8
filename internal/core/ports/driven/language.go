package driven

import (
	"context"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// LanguageDetector identifies the language of extracted text.
type LanguageDetector interface {
	// Name identifies the detector in logs and results.
	Name() string

	// Detect returns the ISO 639-1 code and a confidence in [0,1].
	Detect(ctx context.Context, text string) (*domain.LanguageResult, error)
}

// Translator translates text into a target language.
type Translator interface {
	// Name identifies the translator in logs and results.
	Name() string

	// Translate translates text into target (ISO 639-1).
	Translate(ctx context.Context, text, target string) (*domain.Translation, error)
}
