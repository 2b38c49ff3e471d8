package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

func TestReviewCmd_Use(t *testing.T) {
	assert.Equal(t, "review [analysis-id | file]", reviewCmd.Use)
	assert.NoError(t, reviewCmd.Args(reviewCmd, nil))
	assert.Error(t, reviewCmd.Args(reviewCmd, []string{"a", "b"}))
}

func TestOpenForReview_StoredAnalysis(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	analysis, err := openForReview(reviewCmd, "an-1")

	require.NoError(t, err)
	assert.Equal(t, "msa.pdf", analysis.Filename)
}

func TestOpenForReview_AnalysesFile(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "lease.txt")
	require.NoError(t, os.WriteFile(path, []byte("The tenant pays rent monthly."), 0o600))

	var analysed string
	ts.analysis.AnalyzeFunc = func(_ context.Context, u domain.Upload) (*domain.DocumentAnalysis, error) {
		analysed = u.Filename
		return testAnalysis(), nil
	}

	_, err := openForReview(reviewCmd, path)

	require.NoError(t, err)
	assert.Equal(t, "lease.txt", analysed)
}

func TestOpenForReview_Unknown(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := openForReview(reviewCmd, "does-not-exist")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute("review")

	assert.EqualError(t, err, "analysis service not configured")
}
