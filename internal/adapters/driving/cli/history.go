package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
	showTier     string
	showAll      bool
	showText     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage analysis history",
	Long:  `List, show or delete previously analysed documents.`,
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [analysis-id]",
	Short: "Show a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [analysis-id]",
	Short: "Delete a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of analyses")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of analyses")
	historyShowCmd.Flags().StringVarP(&showTier, "tier", "t", string(domain.SummaryTierPlain),
		"summary tier to print (eli5, plain_language, detailed)")
	historyShowCmd.Flags().BoolVarP(&showAll, "all", "a", false, "list low risk clauses too")
	historyShowCmd.Flags().BoolVar(&showText, "text", false, "print the extracted text only")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	rows, err := analysisService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list analyses: %w", err)
	}

	if wantJSON(cmd, historyJSON) {
		if rows == nil {
			rows = []domain.AnalysisSummary{}
		}
		return printJSON(cmd, rows)
	}

	if len(rows) == 0 {
		cmd.Println("No analyses yet. Run 'clausewise analyze <file>' to add one.")
		return nil
	}

	for _, r := range rows {
		cmd.Printf("  %s\n", r.ID)
		name := r.Filename
		if name == "" {
			name = "(unnamed)"
		}
		cmd.Printf("    File:     %s\n", name)
		cmd.Printf("    Risk:     %s  (%d clauses, %s)\n", riskBadge(r.OverallRisk), r.ClauseCount, r.Language)
		cmd.Printf("    Analysed: %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if r.Degraded {
			cmd.Println("    Degraded: yes")
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d analyses\n", len(rows))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	tier := domain.SummaryTier(showTier)
	if !tier.IsValid() {
		return fmt.Errorf("%w: unknown summary tier %q", domain.ErrInvalidInput, showTier)
	}

	analysis, err := analysisService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get analysis: %w", err)
	}

	switch {
	case showText:
		cmd.Println(analysis.ExtractedText)
	case wantJSON(cmd, historyJSON):
		return printJSON(cmd, analysis)
	default:
		printAnalysis(cmd, analysis, tier, showAll)
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	if err := analysisService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	cmd.Printf("Analysis %s deleted.\n", args[0])
	return nil
}
