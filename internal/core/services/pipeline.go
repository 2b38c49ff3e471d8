package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// Pipeline runs extraction, then language detection alongside segmentation,
// then risk scoring alongside summarization, and assembles the analysis.
type Pipeline struct {
	extractor  *TextExtractor
	language   *LanguageService
	segmenter  *Segmenter
	scorer     *RiskScorer
	summarizer *Summarizer

	newID func() string
	now   func() time.Time
}

// NewPipeline creates a pipeline from its stages.
func NewPipeline(
	extractor *TextExtractor,
	language *LanguageService,
	segmenter *Segmenter,
	scorer *RiskScorer,
	summarizer *Summarizer,
) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		language:   language,
		segmenter:  segmenter,
		scorer:     scorer,
		summarizer: summarizer,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Analyze runs the full pipeline over raw bytes.
func (p *Pipeline) Analyze(ctx context.Context, data []byte, mimeType string) (*domain.DocumentAnalysis, error) {
	return p.AnalyzeUpload(ctx, domain.Upload{Data: data, MimeType: mimeType})
}

// AnalyzeUpload runs the full pipeline. Extraction failures are fatal and
// returned as *domain.ExtractionError; any later stage that fails is replaced
// by a placeholder and recorded as degraded. A cancelled context discards
// all partial results and returns ctx.Err().
func (p *Pipeline) AnalyzeUpload(ctx context.Context, upload domain.Upload) (*domain.DocumentAnalysis, error) {
	extracted, err := p.extractor.Extract(ctx, upload.Data, upload.MimeType)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	doc := domain.Document{
		ID:                   p.newID(),
		SourceRef:            upload.SourceRef,
		Filename:             upload.Filename,
		MimeType:             upload.MimeType,
		ExtractedText:        extracted.Text,
		ExtractionConfidence: extracted.Confidence,
		Provider:             extracted.Provider,
		Blocks:               extracted.Blocks,
	}
	stages := map[domain.StageName]domain.StageStatus{
		domain.StageExtraction: domain.Ok(extracted).Status(),
	}

	// Language detection and segmentation.
	var (
		langResult    domain.StageResult[domain.LanguageResult]
		segmentResult domain.StageResult[[]domain.Clause]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		langResult = p.language.DetectStage(gctx, doc.ExtractedText)
		return langResult.Err
	})
	g.Go(func() error {
		segmentResult = p.segment(doc.ExtractedText)
		return nil
	})
	if err := g.Wait(); err != nil || ctx.Err() != nil {
		return nil, cancelled(ctx, err)
	}

	doc.Language = langResult.Value.Code
	doc.LanguageConfidence = langResult.Value.Confidence
	stages[domain.StageLanguage] = langResult.Status()
	stages[domain.StageSegmentation] = segmentResult.Status()

	clauses := segmentResult.Value
	for i := range clauses {
		clauses[i].DocumentID = doc.ID
	}

	// Risk scoring and summarization.
	var (
		riskResult    domain.StageResult[[]domain.RiskAssessment]
		summaryResult domain.StageResult[domain.SummarySet]
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		riskResult = p.scoreRisks(gctx, clauses)
		return riskResult.Err
	})
	g.Go(func() error {
		summaryResult = p.summarize(gctx, doc.ExtractedText)
		return summaryResult.Err
	})
	if err := g.Wait(); err != nil || ctx.Err() != nil {
		return nil, cancelled(ctx, err)
	}

	stages[domain.StageRiskScoring] = riskResult.Status()
	stages[domain.StageSummarization] = summaryResult.Status()

	doc.CreatedAt = p.now().UTC()
	analysis := &domain.DocumentAnalysis{
		Document:  doc,
		Clauses:   clauses,
		Risks:     riskResult.Value,
		Summaries: summaryResult.Value,
		Stages:    stages,
	}

	logger.Info("Analysis %s complete: %d clauses, overall risk %s, degraded=%t",
		analysis.ID, len(analysis.Clauses), analysis.OverallRisk(), analysis.IsDegraded())
	return analysis, nil
}

func (p *Pipeline) segment(text string) (res domain.StageResult[[]domain.Clause]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Segmentation failed, using whole document: %v", r)
			res = domain.Degraded(wholeDocumentClause(text), fmt.Sprintf("segmentation failed: %v", r))
		}
	}()
	clauses := p.segmenter.Segment(text)
	if len(clauses) == 0 {
		return domain.Degraded(wholeDocumentClause(text), "no clauses detected")
	}
	return domain.Ok(clauses)
}

func (p *Pipeline) scoreRisks(ctx context.Context, clauses []domain.Clause) domain.StageResult[[]domain.RiskAssessment] {
	risks, err := p.scorer.ScoreAll(ctx, clauses)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Fatal[[]domain.RiskAssessment](ctx.Err())
		}
		logger.Warn("Risk scoring failed: %v", err)
		return domain.Degraded([]domain.RiskAssessment{}, "risk scoring failed: "+err.Error())
	}
	return domain.Ok(risks)
}

func (p *Pipeline) summarize(ctx context.Context, text string) (res domain.StageResult[domain.SummarySet]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Summarization failed, using extractive summaries: %v", r)
			res = domain.Degraded(extractiveSet(text, p.summarizer.cfg), fmt.Sprintf("summarization failed: %v", r))
		}
	}()
	res = p.summarizer.SummarizeAll(ctx, text)
	if ctx.Err() != nil {
		return domain.Fatal[domain.SummarySet](ctx.Err())
	}
	return res
}

// extractiveSet builds every tier with the extractive fallback.
func extractiveSet(text string, cfg *domain.Config) domain.SummarySet {
	var set domain.SummarySet
	for _, tier := range domain.AllSummaryTiers() {
		set.Set(tier, truncateAtSentence(extractiveSummary(text, tier), cfg.MaxSummaryLength(tier)))
		set.DegradedTiers = append(set.DegradedTiers, tier)
	}
	return set
}

func wholeDocumentClause(text string) []domain.Clause {
	whole, ok := trimSpan(text, span{0, len(text)})
	if !ok {
		return []domain.Clause{}
	}
	return []domain.Clause{{
		ID:          clauseID(1),
		StartOffset: whole.start,
		EndOffset:   whole.end,
		Type:        domain.ClauseTypeGeneral,
		Confidence:  domain.SegmentationConfidenceFallback,
		Text:        text[whole.start:whole.end],
	}}
}

// cancelled prefers the parent context's error so callers see
// context.Canceled or context.DeadlineExceeded rather than a stage error.
func cancelled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		return errors.New("pipeline aborted")
	}
	return err
}
