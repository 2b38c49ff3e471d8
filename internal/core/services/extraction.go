package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// ExtractionChain orders providers for the configured mode. Cloud mode tries
// the cloud providers before the local ones; local mode skips cloud entirely.
func ExtractionChain(mode domain.ProviderMode, cloud, local []driven.OCRProvider) []driven.OCRProvider {
	chain := make([]driven.OCRProvider, 0, len(cloud)+len(local))
	if mode != domain.ProviderModeLocal {
		chain = append(chain, cloud...)
	}
	return append(chain, local...)
}

// TextExtractor runs the OCR provider chain. It keeps no state between calls.
type TextExtractor struct {
	providers []driven.OCRProvider
	policy    retryPolicy
	minLength int
}

// NewTextExtractor creates an extractor that tries providers in order.
func NewTextExtractor(cfg *domain.Config, providers ...driven.OCRProvider) *TextExtractor {
	return &TextExtractor{
		providers: providers,
		policy:    newRetryPolicy(cfg),
		minLength: max(1, cfg.MinTextLength),
	}
}

// Providers returns the chain in priority order.
func (e *TextExtractor) Providers() []driven.OCRProvider {
	return e.providers
}

// Extract returns the first usable text. A provider that fails or returns
// blank text hands over to the next one. When every provider that ran came
// back blank the document is empty; otherwise the chain failed.
func (e *TextExtractor) Extract(ctx context.Context, data []byte, mimeType string) (*domain.ExtractionResult, error) {
	logger.Section("Text Extraction")
	logger.Debug("Extracting %d bytes (%s) with %d providers", len(data), mimeType, len(e.providers))

	var attempts []error
	blank := false

	for _, p := range e.providers {
		if !p.Supports(mimeType) {
			logger.Debug("%s does not support %s, skipping", p.Name(), mimeType)
			continue
		}

		result, err := call(ctx, e.policy, p.Name(), func(ctx context.Context) (*domain.ExtractionResult, error) {
			return p.Extract(ctx, data, mimeType)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Extraction provider %s failed: %v", p.Name(), err)
			attempts = append(attempts, err)
			continue
		}
		if result == nil || !e.usable(result.Text) {
			logger.Warn("Extraction provider %s returned no readable text", p.Name())
			blank = true
			attempts = append(attempts, fmt.Errorf("%s: %w", p.Name(), domain.ErrEmptyDocument))
			continue
		}

		out := *result
		out.Text = strings.TrimSpace(out.Text)
		out.Confidence = normaliseConfidence(out.Confidence)
		if out.Provider == "" {
			out.Provider = p.Name()
		}
		logger.Info("Extracted %d characters with %s (confidence %.2f)", len(out.Text), out.Provider, out.Confidence)
		return &out, nil
	}

	if blank {
		return nil, &domain.ExtractionError{Reason: domain.ExtractionEmptyDocument, Attempts: attempts}
	}
	if len(attempts) == 0 && len(e.providers) > 0 {
		attempts = append(attempts, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mimeType))
	}
	return nil, &domain.ExtractionError{Reason: domain.ExtractionAllProvidersFailed, Attempts: attempts}
}

func (e *TextExtractor) usable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= e.minLength
}

func normaliseConfidence(c float64) float64 {
	switch {
	case c <= 0:
		return domain.DefaultLocalConfidence
	case c > 1:
		return 1
	default:
		return c
	}
}
