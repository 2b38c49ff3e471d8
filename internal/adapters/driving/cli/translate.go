package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	translateTo   string
	translateText bool
	translateJSON bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [analysis-id | text]",
	Short: "Translate a document's extracted text",
	Long: `Translates the extracted text of an analysed document, or literal
text when --text is given, using the cloud translation provider.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&translateTo, "to", "en", "target language (ISO 639-1)")
	translateCmd.Flags().BoolVar(&translateText, "text", false, "treat the argument as literal text")
	translateCmd.Flags().BoolVar(&translateJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	if translationService == nil {
		return errors.New("translation service not configured")
	}

	text := args[0]
	if !translateText {
		if analysisService == nil {
			return errors.New("analysis service not configured")
		}
		analysis, err := analysisService.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get analysis: %w", err)
		}
		text = analysis.ExtractedText
	}

	tr, err := translationService.Translate(cmd.Context(), text, translateTo)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if wantJSON(cmd, translateJSON) {
		return printJSON(cmd, tr)
	}
	cmd.Println(tr.Text)
	cmd.Println(dimStyle.Render(fmt.Sprintf("%s -> %s via %s", tr.SourceLanguage, tr.TargetLanguage, tr.Provider)))
	return nil
}
