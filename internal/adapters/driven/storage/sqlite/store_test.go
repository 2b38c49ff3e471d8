package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func testAnalysis(id string, created time.Time) *domain.DocumentAnalysis {
	return &domain.DocumentAnalysis{
		Document: domain.Document{
			ID:                   id,
			Filename:             id + ".pdf",
			MimeType:             domain.MimePDF,
			ExtractedText:        "1. The Client shall indemnify the Supplier.",
			Language:             "en",
			LanguageConfidence:   0.97,
			ExtractionConfidence: 0.9,
			Provider:             "google-vision",
			CreatedAt:            created,
		},
		Clauses: []domain.Clause{{
			ID: "clause-1", StartOffset: 0, EndOffset: 43,
			Type: domain.ClauseTypeLiability, Confidence: 0.8,
			Text: "1. The Client shall indemnify the Supplier.",
		}},
		Risks: []domain.RiskAssessment{{
			ClauseID: "clause-1", Score: 0.8, Level: domain.RiskLevelHigh,
			Color: "red", Factors: []string{"indemnify"}, Explanation: "Indemnification",
		}},
		Summaries: domain.SummarySet{ELI5: "You pay if things go wrong."},
		Stages: map[domain.StageName]domain.StageStatus{
			domain.StageExtraction:    {State: domain.StageStateOK},
			domain.StageSummarization: {State: domain.StageStateDegraded, Reason: "no llm"},
		},
	}
}

func TestNewStore_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	store, err := NewStore(path)

	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewStore_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStore("")

	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, filepath.Join(home, ".clausewise", "data", DefaultFileName), store.Path())
}

func TestNewStore_ErrorHandling(t *testing.T) {
	// A regular file where the data directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := NewStore(filepath.Join(blocker, "history.db"))

	assert.Error(t, err)
}

func TestNewStore_MigrationsRecordedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(path)
	require.NoError(t, err)
	defer second.Close()

	var count, version int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*), MAX(version) FROM schema_migrations").Scan(&count, &version))
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, version)

	for _, table := range []string{"analyses", "chat_turns"} {
		var name string
		err := second.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestAnalysisStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t).AnalysisStore()
	ctx := context.Background()
	a := testAnalysis("a1", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))

	require.NoError(t, store.Save(ctx, a))
	got, err := store.Get(ctx, "a1")

	require.NoError(t, err)
	assert.Equal(t, a.Document, got.Document)
	assert.Equal(t, a.Clauses, got.Clauses)
	assert.Equal(t, a.Risks, got.Risks)
	assert.Equal(t, a.Summaries, got.Summaries)
	assert.Equal(t, a.Stages, got.Stages)
}

func TestAnalysisStore_SaveReplaces(t *testing.T) {
	store := setupTestStore(t).AnalysisStore()
	ctx := context.Background()
	a := testAnalysis("a1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, a))

	a.Filename = "renamed.pdf"
	require.NoError(t, store.Save(ctx, a))

	rows, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "renamed.pdf", rows[0].Filename)
}

func TestAnalysisStore_Save_Invalid(t *testing.T) {
	store := setupTestStore(t).AnalysisStore()

	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(context.Background(), &domain.DocumentAnalysis{}), domain.ErrInvalidInput)
}

func TestAnalysisStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t).AnalysisStore()

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalysisStore_List(t *testing.T) {
	store := setupTestStore(t).AnalysisStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Save(ctx, testAnalysis(fmt.Sprintf("a%d", i), base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a3", all[0].ID)
	assert.Equal(t, "a1", all[2].ID)
	top := all[0]
	assert.True(t, base.Add(3*time.Hour).Equal(top.CreatedAt))
	top.CreatedAt = time.Time{}
	assert.Equal(t, domain.AnalysisSummary{
		ID:          "a3",
		Filename:    "a3.pdf",
		Language:    "en",
		ClauseCount: 1,
		OverallRisk: domain.RiskLevelHigh,
		Degraded:    true,
	}, top)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestAnalysisStore_Delete(t *testing.T) {
	s := setupTestStore(t)
	store, history := s.AnalysisStore(), s.ChatHistoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testAnalysis("a1", time.Now().UTC())))
	require.NoError(t, history.AppendTurn(ctx, "s1", "a1", domain.ChatTurn{Role: domain.ChatRoleUser, Text: "hi"}))
	require.NoError(t, history.AppendTurn(ctx, "s2", "other", domain.ChatTurn{Role: domain.ChatRoleUser, Text: "hey"}))

	require.NoError(t, store.Delete(ctx, "a1"))

	_, err := store.Get(ctx, "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	turns, err := history.ListTurns(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, turns)
	turns, err = history.ListTurns(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, turns, 1)

	assert.ErrorIs(t, store.Delete(ctx, "a1"), domain.ErrNotFound)
}

func TestChatHistoryStore_AppendAndList(t *testing.T) {
	history := setupTestStore(t).ChatHistoryStore()
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	conf := 0.85

	require.NoError(t, history.AppendTurn(ctx, "s1", "a1",
		domain.ChatTurn{Role: domain.ChatRoleUser, Text: "Can I terminate?", Timestamp: ts}))
	require.NoError(t, history.AppendTurn(ctx, "s1", "a1",
		domain.ChatTurn{Role: domain.ChatRoleAssistant, Text: "Yes, on notice.", Confidence: &conf, Timestamp: ts}))

	turns, err := history.ListTurns(ctx, "s1")

	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.ChatRoleUser, turns[0].Role)
	assert.Nil(t, turns[0].Confidence)
	assert.Equal(t, "Yes, on notice.", turns[1].Text)
	require.NotNil(t, turns[1].Confidence)
	assert.InDelta(t, 0.85, *turns[1].Confidence, 1e-9)
	assert.True(t, ts.Equal(turns[1].Timestamp))
}

func TestChatHistoryStore_AppendTurn_Invalid(t *testing.T) {
	history := setupTestStore(t).ChatHistoryStore()
	ctx := context.Background()

	assert.ErrorIs(t, history.AppendTurn(ctx, "", "a1",
		domain.ChatTurn{Role: domain.ChatRoleUser, Text: "x"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, history.AppendTurn(ctx, "s1", "a1",
		domain.ChatTurn{Role: "system", Text: "x"}), domain.ErrInvalidInput)
}

func TestStore_ContextCancellation(t *testing.T) {
	store := setupTestStore(t).AnalysisStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.Save(ctx, testAnalysis("a1", time.Now())))
}

func TestStore_ConcurrentWrites(t *testing.T) {
	store := setupTestStore(t).AnalysisStore()
	ctx := context.Background()

	const n = 10
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(id int) {
			done <- store.Save(ctx, testAnalysis(fmt.Sprintf("a%d", id), time.Now().UTC()))
		}(i)
	}
	for i := 0; i < n; i++ {
		assert.NoError(t, <-done)
	}

	rows, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, rows, n)
}
