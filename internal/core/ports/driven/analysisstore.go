package driven

import (
	"context"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// AnalysisStore persists completed analyses for the history view.
type AnalysisStore interface {
	// Save stores or replaces an analysis.
	Save(ctx context.Context, analysis *domain.DocumentAnalysis) error

	// Get retrieves an analysis by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.DocumentAnalysis, error)

	// List returns the most recent analyses, newest first.
	List(ctx context.Context, limit int) ([]domain.AnalysisSummary, error)

	// Delete removes an analysis and its chat history.
	Delete(ctx context.Context, id string) error
}
