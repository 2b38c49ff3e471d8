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

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// DefaultHistoryLimit is used when a caller asks for history without a limit.
const DefaultHistoryLimit = 20

// AnalysisService validates uploads, runs the pipeline and keeps history.
type AnalysisService struct {
	cfg      *domain.Config
	pipeline *Pipeline
	store    driven.AnalysisStore
}

// NewAnalysisService creates a new analysis service.
// The store parameter is optional (can be nil) and disables history.
func NewAnalysisService(cfg *domain.Config, pipeline *Pipeline, store driven.AnalysisStore) *AnalysisService {
	return &AnalysisService{cfg: cfg, pipeline: pipeline, store: store}
}

// Analyze validates the upload, runs the pipeline and records the result.
// A failure to record history is logged and does not fail the request.
func (s *AnalysisService) Analyze(ctx context.Context, upload domain.Upload) (*domain.DocumentAnalysis, error) {
	upload.MimeType = normaliseMime(upload.MimeType)
	if err := s.cfg.ValidateUpload(int64(len(upload.Data)), upload.MimeType); err != nil {
		return nil, err
	}

	logger.Debug("Analysing %q (%s, %d bytes)", upload.Filename, upload.MimeType, len(upload.Data))
	analysis, err := s.pipeline.AnalyzeUpload(ctx, upload)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Save(ctx, analysis); err != nil {
			logger.Warn("Failed to record analysis %s in history: %v", analysis.ID, err)
		}
	}
	return analysis, nil
}

// Get returns a stored analysis.
func (s *AnalysisService) Get(ctx context.Context, id string) (*domain.DocumentAnalysis, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: analysis id is required", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// History lists recent analyses, newest first.
func (s *AnalysisService) History(ctx context.Context, limit int) ([]domain.AnalysisSummary, error) {
	if s.store == nil {
		return []domain.AnalysisSummary{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.List(ctx, limit)
}

// Delete removes an analysis from history.
func (s *AnalysisService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotFound
	}
	return s.store.Delete(ctx, id)
}

// normaliseMime strips parameters such as "; charset=utf-8".
func normaliseMime(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
