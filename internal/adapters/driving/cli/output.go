package cli

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

const snippetLength = 160

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// riskBadge renders a risk level in its display colour.
func riskBadge(level domain.RiskLevel) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(level.Color())).
		Render(strings.ToUpper(level.String()))
}

func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= n {
		return text
	}
	cut := n
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut] + "..."
}

// printAnalysis writes the human-readable report for an analysis.
func printAnalysis(cmd *cobra.Command, a *domain.DocumentAnalysis, tier domain.SummaryTier, showAll bool) {
	counts := a.CountByLevel()

	cmd.Println(headingStyle.Render("Analysis: " + a.ID))
	if a.Filename != "" {
		cmd.Printf("  File:       %s (%s)\n", a.Filename, a.MimeType)
	}
	cmd.Printf("  Language:   %s (%.2f)\n", a.Language, a.LanguageConfidence)
	cmd.Printf("  Extraction: %s (%.2f)\n", a.Provider, a.ExtractionConfidence)
	cmd.Printf("  Overall:    %s  (%d high, %d medium, %d low)\n",
		riskBadge(a.OverallRisk()),
		counts[domain.RiskLevelHigh], counts[domain.RiskLevelMedium], counts[domain.RiskLevelLow])
	cmd.Println()

	if a.IsDegraded() {
		cmd.Println(headingStyle.Render("Degraded stages:"))
		for _, name := range domain.AllStages() {
			st, ok := a.Stages[name]
			if !ok || st.State != domain.StageStateDegraded {
				continue
			}
			cmd.Printf("  %s: %s\n", name, st.Reason)
		}
		cmd.Println()
	}

	if text := a.Summaries.Get(tier); text != "" {
		label := "Summary (" + tier.Description() + ")"
		if a.Summaries.IsDegraded(tier) {
			label += " " + dimStyle.Render("[extractive]")
		}
		cmd.Println(headingStyle.Render(label + ":"))
		cmd.Println(text)
		cmd.Println()
	}

	clauses := orderedClauses(a)
	cmd.Println(headingStyle.Render("Clauses:"))
	shown := 0
	for _, c := range clauses {
		risk, _ := a.RiskFor(c.ID)
		if !showAll && risk.Level == domain.RiskLevelLow {
			continue
		}
		shown++
		cmd.Printf("  [%s] %-22s %s %.2f\n", c.ID, c.Type.Description(), riskBadge(risk.Level), risk.Score)
		if risk.Explanation != "" {
			cmd.Printf("      %s\n", risk.Explanation)
		}
		cmd.Printf("      %s\n", dimStyle.Render(snippet(c.Text, snippetLength)))
	}
	if shown == 0 {
		cmd.Println("  No medium or high risk clauses. Use --all to list every clause.")
	}
}

// orderedClauses sorts clauses by risk score, highest first, keeping
// document order among equal scores.
func orderedClauses(a *domain.DocumentAnalysis) []domain.Clause {
	out := make([]domain.Clause, len(a.Clauses))
	copy(out, a.Clauses)
	sort.SliceStable(out, func(i, j int) bool {
		ri, _ := a.RiskFor(out[i].ID)
		rj, _ := a.RiskFor(out[j].ID)
		return ri.Score > rj.Score
	})
	return out
}
