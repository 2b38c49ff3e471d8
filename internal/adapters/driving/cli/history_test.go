package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

func TestHistoryCmd_List(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var gotLimit int
	ts.analysis.HistoryFunc = func(_ context.Context, limit int) ([]domain.AnalysisSummary, error) {
		gotLimit = limit
		return []domain.AnalysisSummary{testAnalysis().Summary()}, nil
	}

	out, err := execute("history", "list", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, gotLimit)
	assert.Contains(t, out, "an-1")
	assert.Contains(t, out, "msa.pdf")
	assert.Contains(t, out, "Degraded: yes")
	assert.Contains(t, out, "Total: 1 analyses")
}

func TestHistoryCmd_DefaultsToList(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.analysis.HistoryFunc = func(context.Context, int) ([]domain.AnalysisSummary, error) {
		return nil, nil
	}

	out, err := execute("history")

	require.NoError(t, err)
	assert.Contains(t, out, "No analyses yet")
}

func TestHistoryCmd_ListJSONEmpty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.analysis.HistoryFunc = func(context.Context, int) ([]domain.AnalysisSummary, error) {
		return nil, nil
	}

	out, err := execute("history", "list", "--json")

	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestHistoryCmd_Show(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("history", "show", "an-1", "--tier", "eli5")

	require.NoError(t, err)
	assert.Contains(t, out, "You pay on time and you might owe a lot.")
}

func TestHistoryCmd_ShowText(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("history", "show", "an-1", "--text")

	require.NoError(t, err)
	assert.Equal(t, testAnalysis().ExtractedText+"\n", out)
}

func TestHistoryCmd_ShowJSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("history", "show", "an-1", "--json")

	require.NoError(t, err)
	var decoded domain.DocumentAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "msa.pdf", decoded.Filename)
}

func TestHistoryCmd_ShowNotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("history", "show", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, ExitError, ExitCode(err))
}

func TestHistoryCmd_Delete(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var deleted string
	ts.analysis.DeleteFunc = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}

	out, err := execute("history", "delete", "an-1")

	require.NoError(t, err)
	assert.Equal(t, "an-1", deleted)
	assert.Contains(t, out, "Analysis an-1 deleted.")
}
