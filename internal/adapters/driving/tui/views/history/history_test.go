package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// MockAnalysisService implements driving.AnalysisService for testing.
type MockAnalysisService struct {
	HistoryFunc func(ctx context.Context, limit int) ([]domain.AnalysisSummary, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockAnalysisService) Analyze(context.Context, domain.Upload) (*domain.DocumentAnalysis, error) {
	return nil, nil
}

func (m *MockAnalysisService) Get(context.Context, string) (*domain.DocumentAnalysis, error) {
	return nil, domain.ErrNotFound
}

func (m *MockAnalysisService) History(ctx context.Context, limit int) ([]domain.AnalysisSummary, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, limit)
	}
	return testRows(), nil
}

func (m *MockAnalysisService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func testRows() []domain.AnalysisSummary {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []domain.AnalysisSummary{
		{ID: "an-2", Filename: "lease.pdf", Language: "en", ClauseCount: 12, OverallRisk: domain.RiskLevelHigh, CreatedAt: at},
		{ID: "an-1", Language: "de", ClauseCount: 3, OverallRisk: domain.RiskLevelLow, Degraded: true, CreatedAt: at},
	}
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedView(t *testing.T, svc *MockAnalysisService) *View {
	t.Helper()
	v := NewView(styles.DefaultStyles(), svc)
	v.SetDimensions(100, 30)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestView_LoadsHistory(t *testing.T) {
	var gotLimit int
	svc := &MockAnalysisService{HistoryFunc: func(_ context.Context, limit int) ([]domain.AnalysisSummary, error) {
		gotLimit = limit
		return testRows(), nil
	}}

	v := loadedView(t, svc)

	assert.Equal(t, DefaultLimit, gotLimit)
	assert.Len(t, v.Rows(), 2)
	view := v.View()
	assert.Contains(t, view, "lease.pdf")
	assert.Contains(t, view, "an-1")
	assert.Contains(t, view, "HIGH")
	assert.Contains(t, view, "degraded")
}

func TestView_LoadError(t *testing.T) {
	svc := &MockAnalysisService{HistoryFunc: func(context.Context, int) ([]domain.AnalysisSummary, error) {
		return nil, errors.New("database locked")
	}}

	v := loadedView(t, svc)

	assert.EqualError(t, v.Err(), "database locked")
	assert.Contains(t, v.View(), "database locked")
}

func TestView_Empty(t *testing.T) {
	svc := &MockAnalysisService{HistoryFunc: func(context.Context, int) ([]domain.AnalysisSummary, error) {
		return nil, nil
	}}

	v := loadedView(t, svc)

	assert.Contains(t, v.View(), "No analyses yet")
	_, cmd := v.Update(key("enter"))
	assert.Nil(t, cmd)
}

func TestView_NilService(t *testing.T) {
	v := NewView(styles.DefaultStyles(), nil)

	msg := v.Load()()

	loaded, ok := msg.(messages.HistoryLoaded)
	require.True(t, ok)
	assert.Error(t, loaded.Err)
}

func TestView_NavigateAndSelect(t *testing.T) {
	v := loadedView(t, &MockAnalysisService{})

	v, _ = v.Update(key("j"))
	assert.Equal(t, 1, v.Selected())
	v, _ = v.Update(key("j"))
	assert.Equal(t, 1, v.Selected())
	v, _ = v.Update(key("k"))
	assert.Equal(t, 0, v.Selected())

	_, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.AnalysisSelected{ID: "an-2"}, cmd())
}

func TestView_DeleteRequiresConfirmation(t *testing.T) {
	var deleted []string
	svc := &MockAnalysisService{DeleteFunc: func(_ context.Context, id string) error {
		deleted = append(deleted, id)
		return nil
	}}
	v := loadedView(t, svc)

	v, _ = v.Update(key("d"))
	assert.True(t, v.ConfirmingDelete())
	assert.Contains(t, v.View(), "Delete lease.pdf?")

	v, cmd := v.Update(key("n"))
	assert.Nil(t, cmd)
	assert.False(t, v.ConfirmingDelete())

	v, _ = v.Update(key("d"))
	v, cmd = v.Update(key("y"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, messages.AnalysisDeleted{ID: "an-2"}, msg)
	assert.Equal(t, []string{"an-2"}, deleted)

	_, cmd = v.Update(msg)
	assert.NotNil(t, cmd, "deletion reloads history")
}

func TestView_DeleteError(t *testing.T) {
	v := loadedView(t, &MockAnalysisService{})

	v, _ = v.Update(messages.AnalysisDeleted{ID: "an-2", Err: domain.ErrNotFound})

	assert.ErrorIs(t, v.Err(), domain.ErrNotFound)
}

func TestView_SelectionClampedAfterReload(t *testing.T) {
	v := loadedView(t, &MockAnalysisService{})
	v, _ = v.Update(key("j"))

	v, _ = v.Update(messages.HistoryLoaded{Rows: testRows()[:1]})

	assert.Equal(t, 0, v.Selected())
}
