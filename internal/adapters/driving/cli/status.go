package cli

import (
	"errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

var statusJSON bool

var (
	availableStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(domain.RiskLevelLow.Color()))
	unavailableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(domain.RiskLevelHigh.Color()))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show provider availability",
	Long:  `Probes every configured OCR, language, LLM, translation and storage provider.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	st := statusService.Status(cmd.Context())
	if wantJSON(cmd, statusJSON) {
		return printJSON(cmd, st)
	}

	cmd.Printf("clausewise %s\n\n", st.Version)
	for _, p := range st.Providers {
		state := availableStyle.Render("available")
		if !p.Available {
			state = unavailableStyle.Render("unavailable")
		}
		cmd.Printf("  %-12s %-22s %s", p.Kind, p.Name, state)
		if p.Detail != "" {
			cmd.Printf(" (%s)", p.Detail)
		}
		cmd.Println()
	}
	return nil
}
