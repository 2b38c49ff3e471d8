package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// CoOccurrenceBonus is added for every lexicon tier matched beyond the first.
const CoOccurrenceBonus = 0.1

// lexiconTier groups lexicon entries by severity.
type lexiconTier string

const (
	tierHigh   lexiconTier = "high"
	tierMedium lexiconTier = "medium"
	tierLow    lexiconTier = "low"
)

// lexiconEntry is one weighted risk phrase.
type lexiconEntry struct {
	phrase string
	weight float64
	label  string
	tier   lexiconTier
	re     *regexp.Regexp
}

func entry(tier lexiconTier, phrase string, weight float64, label string) lexiconEntry {
	words := strings.Fields(regexp.QuoteMeta(phrase))
	pattern := `(?i)\b` + strings.Join(words, `\s+`) + `\b`
	return lexiconEntry{
		phrase: phrase,
		weight: weight,
		label:  label,
		tier:   tier,
		re:     regexp.MustCompile(pattern),
	}
}

// riskLexicon is read-only after package initialisation and shared by all
// concurrent scorers.
var riskLexicon = []lexiconEntry{
	entry(tierHigh, "unlimited liability", 0.9, "Unlimited Liability"),
	entry(tierHigh, "automatic termination", 0.85, "Automatic Termination"),
	entry(tierHigh, "terminate immediately", 0.8, "Automatic Termination"),
	entry(tierHigh, "indemnify", 0.8, "Indemnification"),
	entry(tierHigh, "indemnification", 0.8, "Indemnification"),
	entry(tierHigh, "hold harmless", 0.8, "Indemnification"),
	entry(tierHigh, "consequential damages", 0.8, "Consequential Damages"),
	entry(tierHigh, "punitive damages", 0.8, "Consequential Damages"),
	entry(tierHigh, "exclusive remedy", 0.8, "Exclusive Remedy"),
	entry(tierHigh, "sole remedy", 0.8, "Exclusive Remedy"),
	entry(tierHigh, "liquidated damages", 0.75, "Penalty Clauses"),
	entry(tierHigh, "penalty", 0.75, "Penalty Clauses"),
	entry(tierHigh, "irrevocable", 0.75, "Irrevocable Terms"),
	entry(tierHigh, "waive", 0.75, "Waiver of Rights"),
	entry(tierHigh, "waiver", 0.75, "Waiver of Rights"),
	entry(tierHigh, "non-compete", 0.75, "Restrictive Covenant"),
	entry(tierHigh, "without limitation", 0.7, "Unlimited Scope"),
	entry(tierHigh, "automatically renew", 0.7, "Automatic Renewal"),
	entry(tierHigh, "liability", 0.7, "Liability Exposure"),

	entry(tierMedium, "breach", 0.55, "Breach Consequences"),
	entry(tierMedium, "damages", 0.55, "Damages"),
	entry(tierMedium, "arbitration", 0.55, "Mandatory Arbitration"),
	entry(tierMedium, "late fee", 0.55, "Payment Default"),
	entry(tierMedium, "payment", 0.5, "Payment Obligation"),
	entry(tierMedium, "terminate", 0.5, "Termination Right"),
	entry(tierMedium, "termination", 0.5, "Termination Right"),
	entry(tierMedium, "confidential", 0.5, "Confidentiality Obligation"),
	entry(tierMedium, "interest", 0.45, "Payment Default"),
	entry(tierMedium, "assign", 0.45, "Assignment"),
	entry(tierMedium, "notice", 0.4, "Notice Requirement"),
	entry(tierMedium, "governing law", 0.4, "Jurisdiction"),
	entry(tierMedium, "subject to", 0.4, "Conditional Terms"),
	entry(tierMedium, "provided that", 0.4, "Conditional Terms"),

	entry(tierLow, "at the discretion of", 0.3, "Discretionary Terms"),
	entry(tierLow, "best efforts", 0.25, "Effort Standard"),
	entry(tierLow, "reasonable efforts", 0.2, "Effort Standard"),
	entry(tierLow, "good faith", 0.2, "Effort Standard"),
	entry(tierLow, "reasonable time", 0.2, "Effort Standard"),
	entry(tierLow, "as available", 0.2, "Availability Terms"),
	entry(tierLow, "approximately", 0.15, "Imprecise Terms"),
	entry(tierLow, "either party", 0.15, "Mutual Terms"),
	entry(tierLow, "generally", 0.1, "Imprecise Terms"),
	entry(tierLow, "mutual", 0.1, "Mutual Terms"),
}

// levelTemplates open every explanation; %s is the clause type description.
var levelTemplates = map[domain.RiskLevel]string{
	domain.RiskLevelHigh:   "This %s contains high-risk elements that could significantly impact your rights or obligations.",
	domain.RiskLevelMedium: "This %s contains moderate-risk elements that should be carefully reviewed.",
	domain.RiskLevelLow:    "This %s appears to carry low risk, but should still be reviewed.",
}

// RiskScorer assigns deterministic, lexicon-based risk scores to clauses.
// It never calls an external service.
type RiskScorer struct {
	thresholds domain.RiskThresholds
}

// NewRiskScorer creates a scorer using the configured level thresholds.
func NewRiskScorer(cfg *domain.Config) *RiskScorer {
	th := cfg.RiskThresholds
	if !th.IsValid() {
		th = domain.DefaultRiskThresholds()
	}
	return &RiskScorer{thresholds: th}
}

type lexiconMatch struct {
	entry *lexiconEntry
	pos   int
}

// Score assesses a single clause. Identical clause text always yields an
// identical assessment.
func (s *RiskScorer) Score(clause domain.Clause) domain.RiskAssessment {
	matches := matchLexicon(clause.Text)

	var raw float64
	tiers := make(map[lexiconTier]bool)
	var top *lexiconMatch
	for i := range matches {
		m := &matches[i]
		tiers[m.entry.tier] = true
		if m.entry.weight > raw {
			raw = m.entry.weight
		}
		if top == nil || m.entry.weight > top.entry.weight {
			top = m
		}
	}

	score := raw
	if len(tiers) > 1 {
		score += CoOccurrenceBonus * float64(len(tiers)-1)
	}
	score = math.Min(1, math.Round(score*1000)/1000)

	level := s.thresholds.LevelFor(score)

	factors := make([]string, 0, len(matches))
	var labels []string
	seenLabel := make(map[string]bool)
	for _, m := range matches {
		factors = append(factors, m.entry.phrase)
		if !seenLabel[m.entry.label] {
			seenLabel[m.entry.label] = true
			labels = append(labels, m.entry.label)
		}
	}

	return domain.RiskAssessment{
		ClauseID:    clause.ID,
		Score:       score,
		Level:       level,
		Color:       level.Color(),
		Factors:     factors,
		Labels:      labels,
		Explanation: explain(level, clause.Type, top),
	}
}

// ScoreAll scores every clause, stopping early if ctx is cancelled.
func (s *RiskScorer) ScoreAll(ctx context.Context, clauses []domain.Clause) (_ []domain.RiskAssessment, err error) {
	defer recoverStage(domain.StageRiskScoring, &err)

	logger.Section("Risk Scoring")
	risks := make([]domain.RiskAssessment, 0, len(clauses))
	for _, c := range clauses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := s.Score(c)
		logger.Debug("%s: %.2f (%s) factors=%v", c.ID, r.Score, r.Level, r.Factors)
		risks = append(risks, r)
	}
	return risks, nil
}

// matchLexicon returns each matched entry once, ordered by first occurrence.
// Entries matching at the same offset keep lexicon order.
func matchLexicon(text string) []lexiconMatch {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var matches []lexiconMatch
	for i := range riskLexicon {
		e := &riskLexicon[i]
		if loc := e.re.FindStringIndex(text); loc != nil {
			matches = append(matches, lexiconMatch{entry: e, pos: loc[0]})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].pos < matches[j].pos
	})
	return matches
}

func explain(level domain.RiskLevel, clauseType domain.ClauseType, top *lexiconMatch) string {
	if !clauseType.IsValid() {
		clauseType = domain.ClauseTypeGeneral
	}
	base := fmt.Sprintf(levelTemplates[level], clauseType.Description())
	if top == nil {
		return base + " No known risk indicators were found."
	}
	return fmt.Sprintf("%s The most significant indicator is %q (%s).", base, top.entry.phrase, top.entry.label)
}
