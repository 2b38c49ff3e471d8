// Package heuristic provides an offline language detector based on
// function-word lists for English, Spanish, French and German.
package heuristic

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.LanguageDetector = (*Detector)(nil)

// ErrUndecided is returned when no language clearly leads.
var ErrUndecided = errors.New("heuristic: no language clearly detected")

const (
	providerName = "heuristic"

	// maxConfidence caps word-list confidence below any real detector.
	maxConfidence = 0.7

	// wordsForFull is the number of distinct matched words giving maxConfidence.
	wordsForFull = 10
)

// wordLists are common function words per language. Words shared by several
// languages still count for each of them.
var wordLists = map[string][]string{
	"en": {"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by", "shall", "this", "is"},
	"es": {"el", "la", "de", "que", "y", "en", "un", "es", "se", "no", "los", "las", "por", "con", "del"},
	"fr": {"le", "la", "de", "et", "à", "un", "il", "que", "ne", "se", "ce", "pas", "les", "avec", "du"},
	"de": {"der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich", "des", "auf", "für", "ist", "nicht"},
}

// languages fixes the iteration order so ties resolve deterministically.
var languages = []string{"en", "es", "fr", "de"}

// Detector scores text against each word list.
type Detector struct{}

// New creates a heuristic detector.
func New() *Detector {
	return &Detector{}
}

// Name identifies the detector.
func (d *Detector) Name() string {
	return providerName
}

// Detect picks the language with the most distinct function words.
// A tie for first place is reported as ErrUndecided.
func (d *Detector) Detect(_ context.Context, text string) (*domain.LanguageResult, error) {
	present := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		present[w] = true
	}

	best, bestCount, tied := "", 0, false
	for _, lang := range languages {
		n := 0
		for _, w := range wordLists[lang] {
			if present[w] {
				n++
			}
		}
		switch {
		case n > bestCount:
			best, bestCount, tied = lang, n, false
		case n == bestCount && n > 0:
			tied = true
		}
	}

	if bestCount == 0 || tied {
		return nil, ErrUndecided
	}
	return &domain.LanguageResult{
		Code:       best,
		Confidence: min(maxConfidence, float64(bestCount)/wordsForFull),
		Provider:   providerName,
	}, nil
}
