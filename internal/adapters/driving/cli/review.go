package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/tui"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// reviewCmd represents the interactive review command.
var reviewCmd = &cobra.Command{
	Use:   "review [analysis-id | file]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive review screen.

Without an argument the analysis history is shown. An analysis ID opens
that analysis directly; a file path is analysed first.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Open analysis
  t        - Cycle summary level
  c        - Ask a question
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	var analysis *domain.DocumentAnalysis
	if len(args) == 1 {
		var err error
		analysis, err = openForReview(cmd, args[0])
		if err != nil {
			return err
		}
	}

	app, err := tui.NewApp(&tui.Ports{Analysis: analysisService, Chat: chatService})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	if analysis != nil {
		app.Open(analysis)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// openForReview resolves the argument as a stored analysis, falling back to
// analysing it as a file when it names one.
func openForReview(cmd *cobra.Command, arg string) (*domain.DocumentAnalysis, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		upload, err := readUploadArg(cmd, arg)
		if err != nil {
			return nil, err
		}
		analysis, err := analysisService.Analyze(cmd.Context(), upload)
		if err != nil {
			return nil, fmt.Errorf("analysis failed: %w", err)
		}
		return analysis, nil
	}

	analysis, err := analysisService.Get(cmd.Context(), arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return analysis, nil
}
