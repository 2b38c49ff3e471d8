package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausewise/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

var (
	analyzeJSON bool
	analyzeTier string
	analyzeAll  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyse a contract",
	Long: `Extracts text from a PDF, image or text file, detects its language,
splits it into clauses, scores each clause for risk and summarises it.

Use "-" to read plain text from stdin.

Stages that fell back to a local method are listed as degraded.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the analysis as JSON")
	analyzeCmd.Flags().StringVarP(&analyzeTier, "tier", "t", string(domain.SummaryTierPlain),
		"summary tier to print (eli5, plain_language, detailed)")
	analyzeCmd.Flags().BoolVarP(&analyzeAll, "all", "a", false, "list low risk clauses too")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	tier := domain.SummaryTier(analyzeTier)
	if !tier.IsValid() {
		return fmt.Errorf("%w: unknown summary tier %q", domain.ErrInvalidInput, analyzeTier)
	}

	upload, err := readUploadArg(cmd, args[0])
	if err != nil {
		return err
	}

	analysis, err := analysisService.Analyze(cmd.Context(), upload)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if wantJSON(cmd, analyzeJSON) {
		return printJSON(cmd, analysis)
	}
	printAnalysis(cmd, analysis, tier, analyzeAll)
	return nil
}

// readUploadArg loads a file argument, or stdin when the argument is "-".
func readUploadArg(cmd *cobra.Command, arg string) (domain.Upload, error) {
	if arg != "-" {
		return filesystem.ReadUpload(arg)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read stdin: %w", err)
	}
	return domain.Upload{
		Filename:  "stdin.txt",
		MimeType:  domain.MimeText,
		Data:      data,
		SourceRef: "stdin",
	}, nil
}
