package driving

import (
	"context"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// AnalysisService runs the document pipeline and serves analysis history.
type AnalysisService interface {
	// Analyze validates the upload, runs the pipeline and records the result.
	// Returns a *domain.ValidationError or *domain.ExtractionError on failure.
	Analyze(ctx context.Context, upload domain.Upload) (*domain.DocumentAnalysis, error)

	// Get returns a stored analysis. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.DocumentAnalysis, error)

	// History lists recent analyses, newest first.
	History(ctx context.Context, limit int) ([]domain.AnalysisSummary, error)

	// Delete removes an analysis from history.
	Delete(ctx context.Context, id string) error
}
