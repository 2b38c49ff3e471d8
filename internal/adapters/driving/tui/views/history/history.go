// Package history provides the analysis history view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
)

// DefaultLimit is the number of analyses loaded.
const DefaultLimit = 50

// View lists previously analysed documents.
type View struct {
	styles   *styles.Styles
	analysis driving.AnalysisService
	ctx      context.Context

	rows          []domain.AnalysisSummary
	selected      int
	scrollOffset  int
	width         int
	height        int
	loading       bool
	confirmDelete bool
	err           error
}

// NewView creates a new history view.
func NewView(s *styles.Styles, analysis driving.AnalysisService) *View {
	return &View{
		styles:   s,
		analysis: analysis,
		ctx:      context.Background(),
		rows:     []domain.AnalysisSummary{},
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the history.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load returns a command that fetches the history.
func (v *View) Load() tea.Cmd {
	v.loading = true
	ctx := v.ctx
	svc := v.analysis
	return func() tea.Msg {
		if svc == nil {
			return messages.HistoryLoaded{Err: errors.New("analysis service not available")}
		}
		rows, err := svc.History(ctx, DefaultLimit)
		return messages.HistoryLoaded{Rows: rows, Err: err}
	}
}

func (v *View) deleteSelected() tea.Cmd {
	id := v.rows[v.selected].ID
	ctx := v.ctx
	svc := v.analysis
	return func() tea.Msg {
		return messages.AnalysisDeleted{ID: id, Err: svc.Delete(ctx, id)}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.HistoryLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.rows = msg.Rows
		v.err = nil
		if v.selected >= len(v.rows) {
			v.selected = max(len(v.rows)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.AnalysisDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.Load()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.confirmDelete {
		v.confirmDelete = false
		if msg.String() == "y" && len(v.rows) > 0 {
			return v, v.deleteSelected()
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.rows)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if len(v.rows) > 0 {
			id := v.rows[v.selected].ID
			return v, func() tea.Msg { return messages.AnalysisSelected{ID: id} }
		}
	case "d":
		if len(v.rows) > 0 {
			v.confirmDelete = true
		}
	case "r":
		return v, v.Load()
	}
	return v, nil
}

func (v *View) visibleRows() int {
	n := (v.height - 6) / 2
	if n < 1 {
		n = 1
	}
	return n
}

func (v *View) adjustScroll() {
	visible := v.visibleRows()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	}
	if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

// View renders the history list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("clausewise - Analysis History"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		b.WriteString("\n")
	case v.loading && len(v.rows) == 0:
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	case len(v.rows) == 0:
		b.WriteString(v.styles.Muted.Render("No analyses yet. Run 'clausewise analyze <file>' first."))
		b.WriteString("\n")
	}

	end := min(v.scrollOffset+v.visibleRows(), len(v.rows))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderRow(i, &v.rows[i]))
		b.WriteString("\n")
	}

	if v.confirmDelete && len(v.rows) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(
			fmt.Sprintf("Delete %s? (y/N)", displayName(&v.rows[v.selected]))))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderRow(i int, r *domain.AnalysisSummary) string {
	indicator := "  "
	name := v.styles.Normal.Render(displayName(r))
	if i == v.selected {
		indicator = "> "
		name = v.styles.Selected.Render(displayName(r))
	}

	meta := fmt.Sprintf("%s  %d clauses  %s", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.ClauseCount, r.Language)
	if r.Degraded {
		meta += "  degraded"
	}
	return indicator + v.styles.RiskBadge(r.OverallRisk) + " " + name + "\n" +
		"         " + v.styles.Muted.Render(meta)
}

func displayName(r *domain.AnalysisSummary) string {
	if r.Filename != "" {
		return r.Filename
	}
	return r.ID
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Rows returns the loaded history.
func (v *View) Rows() []domain.AnalysisSummary {
	return v.rows
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// ConfirmingDelete reports whether a delete confirmation is pending.
func (v *View) ConfirmingDelete() bool {
	return v.confirmDelete
}
