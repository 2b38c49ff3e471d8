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

// Language detection fallback values.
const (
	DefaultLanguage           = "en"
	DefaultLanguageConfidence = 0.3
	defaultLanguageProvider   = "default"

	// detectionSample bounds the text sent to detectors.
	detectionSample = 2000
)

// LanguageService detects the document language using a chain of detectors.
type LanguageService struct {
	detectors []driven.LanguageDetector
	policy    retryPolicy
}

// NewLanguageService creates a language service. Detectors are tried in order.
func NewLanguageService(cfg *domain.Config, detectors ...driven.LanguageDetector) *LanguageService {
	return &LanguageService{detectors: detectors, policy: newRetryPolicy(cfg)}
}

// Detect returns the detected language, or English at low confidence when
// no detector succeeds.
func (s *LanguageService) Detect(ctx context.Context, text string) domain.LanguageResult {
	return s.DetectStage(ctx, text).Value
}

// DetectStage runs the chain and reports whether a fallback was needed.
func (s *LanguageService) DetectStage(ctx context.Context, text string) domain.StageResult[domain.LanguageResult] {
	logger.Section("Language Detection")

	sample := sampleText(text, detectionSample)
	var failures []string

	for _, d := range s.detectors {
		res, err := call(ctx, s.policy, d.Name(), func(ctx context.Context) (*domain.LanguageResult, error) {
			return d.Detect(ctx, sample)
		})
		if err != nil {
			if ctx.Err() != nil {
				return domain.Fatal[domain.LanguageResult](ctx.Err())
			}
			logger.Warn("Language detector %s failed: %v", d.Name(), err)
			failures = append(failures, err.Error())
			continue
		}
		if res == nil || res.Code == "" {
			failures = append(failures, d.Name()+": no language detected")
			continue
		}

		out := *res
		out.Code = strings.ToLower(out.Code)
		out.Confidence = min(1, max(0, out.Confidence))
		if out.Provider == "" {
			out.Provider = d.Name()
		}
		logger.Info("Detected language %s (%.2f) via %s", out.Code, out.Confidence, out.Provider)

		if len(failures) > 0 {
			return domain.Degraded(out, "fell back to "+out.Provider+": "+strings.Join(failures, "; "))
		}
		return domain.Ok(out)
	}

	fallback := domain.LanguageResult{
		Code:       DefaultLanguage,
		Confidence: DefaultLanguageConfidence,
		Provider:   defaultLanguageProvider,
	}
	reason := "no language detector configured"
	if len(failures) > 0 {
		reason = fmt.Sprintf("all detectors failed: %s", strings.Join(failures, "; "))
	}
	logger.Warn("Language detection defaulted to %s: %s", DefaultLanguage, reason)
	return domain.Degraded(fallback, reason)
}

// sampleText returns at most n bytes of text without splitting a rune.
func sampleText(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
