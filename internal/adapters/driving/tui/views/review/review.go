// Package review provides the clause review view for the TUI: a risk-coloured
// clause list, the selected clause's assessment and the document summary at
// a switchable reading level.
package review

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// View shows one analysis.
type View struct {
	styles   *styles.Styles
	clauses  *list.ClauseList
	analysis *domain.DocumentAnalysis
	tier     domain.SummaryTier
	width    int
	height   int
}

// NewView creates a new review view.
func NewView(s *styles.Styles) *View {
	return &View{
		styles:  s,
		clauses: list.NewClauseList(s),
		tier:    domain.SummaryTierPlain,
		width:   80,
		height:  24,
	}
}

// SetAnalysis shows a new analysis, starting at the plain language summary.
func (v *View) SetAnalysis(a *domain.DocumentAnalysis) {
	v.analysis = a
	v.tier = domain.SummaryTierPlain
	v.clauses.SetItems(list.ItemsFor(a))
}

// Analysis returns the analysis on display, or nil.
func (v *View) Analysis() *domain.DocumentAnalysis {
	return v.analysis
}

// Tier returns the summary tier on display.
func (v *View) Tier() domain.SummaryTier {
	return v.tier
}

// CycleTier advances to the next summary tier, wrapping around.
func (v *View) CycleTier() {
	tiers := domain.AllSummaryTiers()
	for i, t := range tiers {
		if t == v.tier {
			v.tier = tiers[(i+1)%len(tiers)]
			return
		}
	}
	v.tier = tiers[0]
}

// SelectedItem returns the highlighted clause.
func (v *View) SelectedItem() *list.Item {
	return v.clauses.SelectedItem()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the review view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "t":
			v.CycleTier()
			return v, nil
		case "c":
			if v.analysis == nil {
				return v, nil
			}
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewChat} }
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHistory} }
		}
		var cmd tea.Cmd
		v.clauses, cmd = v.clauses.Update(msg)
		return v, cmd
	}
	return v, nil
}

// View renders the review screen.
func (v *View) View() string {
	if v.analysis == nil {
		return v.styles.Muted.Render("No analysis selected")
	}
	a := v.analysis

	sections := []string{v.renderHeader(a)}
	if d := v.renderDegraded(a); d != "" {
		sections = append(sections, d)
	}
	sections = append(sections, v.renderSummary(a), v.clauses.View())
	if item := v.clauses.SelectedItem(); item != nil {
		sections = append(sections, v.renderDetail(item))
	}
	return strings.Join(sections, "\n\n")
}

func (v *View) renderHeader(a *domain.DocumentAnalysis) string {
	name := a.Filename
	if name == "" {
		name = a.ID
	}
	counts := a.CountByLevel()
	title := v.styles.Title.Render(name) + "  " + v.styles.RiskBadge(a.OverallRisk())
	meta := v.styles.Muted.Render(fmt.Sprintf("%s  %s (%.2f)  %d high / %d medium / %d low",
		a.ID, a.Language, a.LanguageConfidence,
		counts[domain.RiskLevelHigh], counts[domain.RiskLevelMedium], counts[domain.RiskLevelLow]))
	return title + "\n" + meta
}

func (v *View) renderDegraded(a *domain.DocumentAnalysis) string {
	var parts []string
	for _, name := range domain.AllStages() {
		if st, ok := a.Stages[name]; ok && st.State == domain.StageStateDegraded {
			parts = append(parts, string(name))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return v.styles.Warning.Render("Degraded: " + strings.Join(parts, ", "))
}

func (v *View) renderSummary(a *domain.DocumentAnalysis) string {
	label := "Summary - " + v.tier.Description()
	if a.Summaries.IsDegraded(v.tier) {
		label += " (extractive)"
	}
	text := a.Summaries.Get(v.tier)
	if text == "" {
		text = "(no summary)"
	}
	return v.styles.Subtitle.Render(label) + "\n" +
		v.styles.Panel.Width(v.panelWidth()).Render(text)
}

func (v *View) renderDetail(item *list.Item) string {
	var b strings.Builder
	b.WriteString(v.styles.Risk(item.Risk.Level).Render(
		fmt.Sprintf("%s  %.2f", item.Clause.Type.Description(), item.Risk.Score)))
	if item.Risk.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render(item.Risk.Explanation))
	}
	if len(item.Risk.Factors) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Factors: " + strings.Join(item.Risk.Factors, "; ")))
	}
	b.WriteString("\n\n")
	b.WriteString(item.Clause.Text)
	return v.styles.Panel.Width(v.panelWidth()).Render(b.String())
}

func (v *View) panelWidth() int {
	w := v.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// SetDimensions sets the view dimensions. The clause list gets roughly a
// third of the height.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	listHeight := height / 3
	if listHeight < 5 {
		listHeight = 5
	}
	v.clauses.SetDimensions(width, listHeight)
}
