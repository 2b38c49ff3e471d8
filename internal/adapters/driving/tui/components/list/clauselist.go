// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// Item is a clause paired with its risk verdict.
type Item struct {
	Clause domain.Clause
	Risk   domain.RiskAssessment
}

// ItemsFor builds list items for every clause of an analysis, in document order.
func ItemsFor(a *domain.DocumentAnalysis) []Item {
	if a == nil {
		return nil
	}
	items := make([]Item, 0, len(a.Clauses))
	for _, c := range a.Clauses {
		r, ok := a.RiskFor(c.ID)
		if !ok {
			r = domain.RiskAssessment{ClauseID: c.ID, Level: domain.RiskLevelLow}
		}
		items = append(items, Item{Clause: c, Risk: r})
	}
	return items
}

// ClauseList displays clauses in a navigable, risk-coloured list.
type ClauseList struct {
	items    []Item
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewClauseList creates a new clause list component.
func NewClauseList(s *styles.Styles) *ClauseList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ClauseList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *ClauseList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *ClauseList) Update(msg tea.Msg) (*ClauseList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.items) > 0 {
				l.selected = len(l.items) - 1
			}
		}
	}
	return l, nil
}

// View renders the visible window of clauses, one line each.
func (l *ClauseList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No clauses")
	}

	lines := make([]string, 0, len(l.items)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Clauses (%d)", len(l.items))), "")

	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.items) {
		end = len(l.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, &l.items[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *ClauseList) renderItem(index int, item *Item) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	label := fmt.Sprintf("%-22s %.2f", item.Clause.Type.Description(), item.Risk.Score)
	preview := strings.Join(strings.Fields(item.Clause.Text), " ")
	maxPreview := l.width - len(label) - 14
	if maxPreview < 10 {
		maxPreview = 10
	}
	if len(preview) > maxPreview {
		preview = truncate(preview, maxPreview-3) + "..."
	}

	badge := l.styles.RiskBadge(item.Risk.Level)
	if index == l.selected {
		return indicator + badge + " " + l.styles.Selected.Render(label) + " " + l.styles.Normal.Render(preview)
	}
	return indicator + badge + " " + l.styles.Normal.Render(label) + " " + l.styles.Muted.Render(preview)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

// SetItems replaces the list contents and resets the selection.
func (l *ClauseList) SetItems(items []Item) {
	l.items = items
	l.selected = 0
}

// Items returns the current items.
func (l *ClauseList) Items() []Item {
	return l.items
}

// Selected returns the index of the selected item.
func (l *ClauseList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *ClauseList) SetSelected(index int) {
	if index >= 0 && index < len(l.items) {
		l.selected = index
	}
}

// SelectedItem returns the currently selected item, or nil if none.
func (l *ClauseList) SelectedItem() *Item {
	if len(l.items) == 0 || l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected]
}

// MoveUp moves selection up.
func (l *ClauseList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *ClauseList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *ClauseList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of items.
func (l *ClauseList) Count() int {
	return len(l.items)
}

// IsEmpty returns whether the list is empty.
func (l *ClauseList) IsEmpty() bool {
	return len(l.items) == 0
}
