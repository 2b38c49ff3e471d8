// Package cli provides the clausewise command line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// Exit codes returned by ExitCode.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitValidation = 2
	ExitExtraction = 3
)

var (
	version = "dev"

	analysisService    driving.AnalysisService
	chatService        driving.ChatService
	statusService      driving.StatusService
	translationService driving.TranslationService
	settingsService    driving.SettingsService
	runtimeConfig      *domain.Config
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "clausewise",
	Short: "Analyse contracts for risky clauses",
	Long: `clausewise extracts text from contracts (PDFs, scans, plain text),
splits it into clauses, scores each clause for risk, summarises the
document at three reading levels and answers questions about it.

Cloud providers are used when credentials are configured; every stage
falls back to a local method otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print provider and stage diagnostics")
}

// Services holds the driving ports the commands operate on.
type Services struct {
	Analysis    driving.AnalysisService
	Chat        driving.ChatService
	Status      driving.StatusService
	Translation driving.TranslationService
	Settings    driving.SettingsService
	Config      *domain.Config
}

// SetServices injects the application services.
func SetServices(s Services) {
	analysisService = s.Analysis
	chatService = s.Chat
	statusService = s.Status
	translationService = s.Translation
	settingsService = s.Settings
	runtimeConfig = s.Config
}

// SetVersion sets the version reported by `clausewise version`.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an error returned by Execute onto a process exit code.
func ExitCode(err error) int {
	var extraction *domain.ExtractionError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrInvalidInput):
		return ExitValidation
	case errors.As(err, &extraction):
		return ExitExtraction
	default:
		return ExitError
	}
}

// wantJSON reports whether output should be JSON: either the command's
// --json flag was given or stdout is not a terminal.
func wantJSON(cmd *cobra.Command, flag bool) bool {
	if flag {
		return true
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && !term.IsTerminal(int(f.Fd()))
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
