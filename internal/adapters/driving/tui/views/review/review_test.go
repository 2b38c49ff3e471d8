package review

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

func testAnalysis() *domain.DocumentAnalysis {
	return &domain.DocumentAnalysis{
		Document: domain.Document{ID: "an-1", Filename: "nda.pdf", Language: "en", LanguageConfidence: 0.9},
		Clauses: []domain.Clause{
			{ID: "c1", Type: domain.ClauseTypeConfidentiality, Text: "Information stays secret for five years."},
			{ID: "c2", Type: domain.ClauseTypeLiability, Text: "Liability is unlimited."},
		},
		Risks: []domain.RiskAssessment{
			{ClauseID: "c1", Score: 0.45, Level: domain.RiskLevelMedium, Explanation: "Long confidentiality term",
				Factors: []string{"duration"}},
			{ClauseID: "c2", Score: 0.9, Level: domain.RiskLevelHigh, Explanation: "Uncapped exposure"},
		},
		Summaries: domain.SummarySet{
			ELI5:          "Keep secrets.",
			PlainLanguage: "You must keep information confidential.",
			Detailed:      "The receiving party must protect information.",
			DegradedTiers: []domain.SummaryTier{domain.SummaryTierDetailed},
		},
		Stages: map[domain.StageName]domain.StageStatus{
			domain.StageSummarization: {State: domain.StageStateDegraded, Reason: "llm unavailable"},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newView() *View {
	v := NewView(styles.DefaultStyles())
	v.SetDimensions(120, 40)
	v.SetAnalysis(testAnalysis())
	return v
}

func TestView_NoAnalysis(t *testing.T) {
	v := NewView(styles.DefaultStyles())

	assert.Contains(t, v.View(), "No analysis selected")
	_, cmd := v.Update(runes("c"))
	assert.Nil(t, cmd)
}

func TestView_RendersAnalysis(t *testing.T) {
	v := newView()

	view := v.View()

	assert.Contains(t, view, "nda.pdf")
	assert.Contains(t, view, "HIGH")
	assert.Contains(t, view, "Degraded: summarization")
	assert.Contains(t, view, "You must keep information confidential.")
	assert.Contains(t, view, "Long confidentiality term")
	assert.Contains(t, view, "duration")
}

func TestView_CycleTier(t *testing.T) {
	v := newView()
	assert.Equal(t, domain.SummaryTierPlain, v.Tier())

	v, _ = v.Update(runes("t"))
	assert.Equal(t, domain.SummaryTierDetailed, v.Tier())
	assert.Contains(t, v.View(), "(extractive)")

	v, _ = v.Update(runes("t"))
	assert.Equal(t, domain.SummaryTierELI5, v.Tier())
	assert.Contains(t, v.View(), "Keep secrets.")

	v, _ = v.Update(runes("t"))
	assert.Equal(t, domain.SummaryTierPlain, v.Tier())
}

func TestView_SetAnalysisResetsTier(t *testing.T) {
	v := newView()
	v.CycleTier()

	v.SetAnalysis(testAnalysis())

	assert.Equal(t, domain.SummaryTierPlain, v.Tier())
}

func TestView_NavigatesClauses(t *testing.T) {
	v := newView()

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})

	item := v.SelectedItem()
	require.NotNil(t, item)
	assert.Equal(t, "c2", item.Clause.ID)
	assert.Contains(t, v.View(), "Uncapped exposure")
}

func TestView_NavigationMessages(t *testing.T) {
	v := newView()

	_, cmd := v.Update(runes("c"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHistory}, cmd())
}
