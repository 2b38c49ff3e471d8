package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

func newTestApp(t *testing.T) (*App, *MockAnalysisService) {
	t.Helper()
	svc := &MockAnalysisService{}
	app, err := NewApp(&Ports{Analysis: svc, Chat: &MockChatService{}})
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	return app, svc
}

// run executes a command and feeds its message back into the app.
func run(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(app, c)
		}
		return
	}
	_, next := app.Update(msg)
	_ = next
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(&Ports{Analysis: &MockAnalysisService{}})

	require.NoError(t, err)
	assert.Equal(t, messages.ViewHistory, app.CurrentView())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingAnalysisService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := newTestApp(t)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	app.WithContext(ctx)

	assert.Equal(t, "value", app.Context().Value(contextKey("key")))
}

func TestApp_ViewBeforeReady(t *testing.T) {
	app, err := NewApp(&Ports{Analysis: &MockAnalysisService{}})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_OpenStartsOnReview(t *testing.T) {
	app, _ := newTestApp(t)

	app.Open(sampleAnalysis())

	assert.Equal(t, messages.ViewReview, app.CurrentView())
	assert.Contains(t, app.View(), "msa.pdf")
}

func TestApp_HistoryToReview(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(messages.HistoryLoaded{Rows: []domain.AnalysisSummary{sampleAnalysis().Summary()}})
	assert.Nil(t, cmd)
	assert.Contains(t, app.View(), "msa.pdf")

	_, cmd = app.Update(key("enter"))
	require.NotNil(t, cmd)
	selected := cmd()
	assert.Equal(t, messages.AnalysisSelected{ID: "an-1"}, selected)

	_, cmd = app.Update(selected)
	run(app, cmd)

	assert.Equal(t, messages.ViewReview, app.CurrentView())
	assert.NoError(t, app.Err())
}

func TestApp_LoadAnalysisError(t *testing.T) {
	app, svc := newTestApp(t)
	svc.GetFunc = func(context.Context, string) (*domain.DocumentAnalysis, error) {
		return nil, domain.ErrNotFound
	}

	_, cmd := app.Update(messages.AnalysisSelected{ID: "missing"})
	run(app, cmd)

	assert.Equal(t, messages.ViewHistory, app.CurrentView())
	assert.ErrorIs(t, app.Err(), domain.ErrNotFound)
}

func TestApp_ReviewToChatAndBack(t *testing.T) {
	app, _ := newTestApp(t)
	app.Open(sampleAnalysis())

	_, cmd := app.Update(key("c"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, msg)

	_, cmd = app.Update(msg)
	assert.Equal(t, messages.ViewChat, app.CurrentView())
	run(app, cmd)

	// "q" is typed into the question, not treated as quit.
	_, cmd = app.Update(key("q"))
	if cmd != nil {
		_, isQuit := cmd().(tea.QuitMsg)
		assert.False(t, isQuit)
	}

	_, cmd = app.Update(key("esc"))
	require.NotNil(t, cmd)
	_, _ = app.Update(cmd())
	assert.Equal(t, messages.ViewReview, app.CurrentView())
}

func TestApp_ChatRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)
	app.Open(sampleAnalysis())
	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewChat})
	run(app, cmd)

	for _, r := range "How long to pay?" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd = app.Update(key("enter"))
	run(app, cmd)

	assert.Contains(t, app.View(), "Thirty days.")
}

func TestApp_HelpToggle(t *testing.T) {
	app, _ := newTestApp(t)
	app.Open(sampleAnalysis())

	app.Update(key("?"))
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Cycle summary level")

	app.Update(key("esc"))
	assert.Equal(t, messages.ViewReview, app.CurrentView())
}

func TestApp_QuitKeys(t *testing.T) {
	app, _ := newTestApp(t)

	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := app.Update(key(k))
		require.NotNil(t, cmd, k)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, k)
	}

	_, cmd := app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestApp_ErrorOccurred(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
	assert.Contains(t, app.View(), "boom")
}

func TestApp_DeleteFromHistory(t *testing.T) {
	app, svc := newTestApp(t)
	var deleted string
	svc.DeleteFunc = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}
	app.Update(messages.HistoryLoaded{Rows: []domain.AnalysisSummary{sampleAnalysis().Summary()}})

	app.Update(key("d"))
	_, cmd := app.Update(key("y"))
	run(app, cmd)

	assert.Equal(t, "an-1", deleted)
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Analysis: &MockAnalysisService{}})
	require.NoError(t, err)

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	assert.True(t, app.Ready())
}
