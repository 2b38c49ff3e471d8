package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/views/review"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	historyView *history.View
	reviewView  *review.View
	chatView    *chat.View
	statusBar   *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when help is closed.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// It starts on the history view.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		historyView: history.NewView(s, ports.Analysis),
		reviewView:  review.NewView(s),
		chatView:    chat.NewView(s, ports.Chat),
		statusBar:   status.NewBar(s, keymap.DefaultKeyMap()),
		currentView: messages.ViewHistory,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.historyView.SetContext(ctx)
	a.chatView.SetContext(ctx)
	return a
}

// Open starts the app on the review view for an analysis.
func (a *App) Open(analysis *domain.DocumentAnalysis) *App {
	a.reviewView.SetAnalysis(analysis)
	a.setView(messages.ViewReview)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("clausewise")}
	if a.currentView == messages.ViewHistory {
		a.statusBar.SetState(status.StateLoading)
		cmds = append(cmds, a.historyView.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) setView(v messages.ViewType) {
	a.currentView = v
	a.statusBar.SetView(v)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.changeView(msg.View)

	case messages.HistoryLoaded:
		a.statusBar.Clear()
		if msg.Err != nil {
			a.setErr(msg.Err)
		}
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.AnalysisDeleted:
		if msg.Err != nil {
			a.setErr(msg.Err)
		} else {
			a.statusBar.SetMessage("Deleted " + msg.ID)
		}
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.AnalysisSelected:
		a.statusBar.SetState(status.StateLoading)
		return a, a.loadAnalysis(msg.ID)

	case messages.AnalysisLoaded:
		a.statusBar.Clear()
		if msg.Err != nil {
			a.setErr(msg.Err)
			return a, nil
		}
		a.err = nil
		a.reviewView.SetAnalysis(msg.Analysis)
		a.setView(messages.ViewReview)
		return a, nil

	case messages.AnswerReceived:
		a.statusBar.Clear()
		if msg.Err != nil {
			a.setErr(msg.Err)
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.SuggestionsLoaded:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.setErr(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink etc.) to the active view.
	switch a.currentView {
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewReview:
		a.reviewView, cmd = a.reviewView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// The chat view owns every printable key.
	if a.currentView != messages.ViewChat {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "?":
			if a.currentView == messages.ViewHelp {
				a.setView(a.previousView)
			} else {
				a.previousView = a.currentView
				a.setView(messages.ViewHelp)
			}
			return a, nil
		}
	}

	switch a.currentView {
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewReview:
		a.reviewView, cmd = a.reviewView.Update(msg)
	case messages.ViewChat:
		if msg.Type == tea.KeyEnter && a.chatView.InputValue() != "" && !a.chatView.Pending() {
			a.statusBar.SetState(status.StateAsking)
		}
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc {
			a.setView(a.previousView)
		}
	}
	return a, cmd
}

func (a *App) changeView(v messages.ViewType) tea.Cmd {
	a.statusBar.Clear()
	a.err = nil
	a.setView(v)

	switch v {
	case messages.ViewHistory:
		a.statusBar.SetState(status.StateLoading)
		return a.historyView.Load()
	case messages.ViewChat:
		if an := a.reviewView.Analysis(); an != nil {
			return a.chatView.SetAnalysis(an.ID)
		}
	case messages.ViewReview, messages.ViewHelp:
	}
	return nil
}

func (a *App) loadAnalysis(id string) tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Analysis
	return func() tea.Msg {
		analysis, err := svc.Get(ctx, id)
		return messages.AnalysisLoaded{Analysis: analysis, Err: err}
	}
}

func (a *App) setErr(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewReview:
		body = a.reviewView.View()
	case messages.ViewChat:
		body = a.chatView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.historyView.View()
	}

	bodyHeight := a.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, body, a.statusBar.View())
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

History:
  j/k, ↑/↓    Navigate analyses
  enter       Open analysis
  d           Delete (confirm with y)
  r           Reload

Review:
  j/k, ↑/↓    Navigate clauses
  t           Cycle summary level (eli5, plain language, detailed)
  c           Ask a question about the document
  esc         Back to history

Chat:
  (type)      Enter a question
  enter       Send
  tab         Use a suggested question
  esc         Back to review

  ?           Toggle help
  q, ctrl+c   Quit

[esc] back`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Context returns the app context.
func (a *App) Context() context.Context {
	return a.ctx
}

// SetDimensions sets the terminal dimensions and resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.historyView.SetDimensions(width, height-1)
	a.reviewView.SetDimensions(width, height-1)
	a.chatView.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}
