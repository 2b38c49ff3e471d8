package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// Ensure TranslationService implements the interface.
var _ driving.TranslationService = (*TranslationService)(nil)

// TranslationService translates text through the configured translator.
type TranslationService struct {
	translator driven.Translator
	policy     retryPolicy
}

// NewTranslationService creates a translation service. translator may be nil.
func NewTranslationService(cfg *domain.Config, translator driven.Translator) *TranslationService {
	return &TranslationService{translator: translator, policy: newRetryPolicy(cfg)}
}

// Translate returns text in the target language.
func (s *TranslationService) Translate(ctx context.Context, text, target string) (*domain.Translation, error) {
	text = strings.TrimSpace(text)
	target = strings.ToLower(strings.TrimSpace(target))
	if text == "" {
		return nil, domain.NewValidationError(domain.ValidationEmptyQuestion, "text to translate is empty")
	}
	if target == "" {
		return nil, domain.NewValidationError(domain.ValidationBadConfig, "target language is required")
	}
	if s.translator == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTranslatorUnavailable, domain.ErrProviderUnavailable)
	}

	logger.Debug("Translating %d characters to %s via %s", len(text), target, s.translator.Name())
	tr, err := call(ctx, s.policy, s.translator.Name(), func(ctx context.Context) (*domain.Translation, error) {
		return s.translator.Translate(ctx, text, target)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Translation failed: %v", err)
		return nil, err
	}
	if tr.Provider == "" {
		tr.Provider = s.translator.Name()
	}
	return tr, nil
}
