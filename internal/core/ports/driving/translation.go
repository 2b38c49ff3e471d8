package driving

import (
	"context"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// TranslationService translates document text.
type TranslationService interface {
	// Translate returns text in the target language.
	Translate(ctx context.Context, text, target string) (*domain.Translation, error)
}
