package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and edit the clausewise configuration file.

Environment variables OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY
and GOOGLE_ACCESS_TOKEN override stored credentials.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every key and its stored value",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a stored value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a value",
	Long: `Validates and stores a configuration value.
Secret keys prompt for the value without echo when it is omitted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and provider connectivity",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	Long:  `Interactively select the LLM used for summaries and question answering.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigLLM,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configLLMCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.Config()
	if err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'clausewise config set' to fix configuration issues.")
		return nil
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  OCR provider:           %s\n", cfg.OCRProvider.Description())
	cmd.Printf("  Summarization provider: %s\n", cfg.SummarizationProvider.Description())
	cmd.Printf("  Max clause length:      %d\n", cfg.MaxClauseLength)
	cmd.Printf("  Risk thresholds:        medium %.2f, high %.2f\n", cfg.RiskThresholds.Medium, cfg.RiskThresholds.High)
	cmd.Printf("  Context window budget:  %d\n", cfg.ContextWindowBudget)
	cmd.Printf("  Max upload:             %d bytes\n", cfg.MaxUploadBytes)
	cmd.Printf("  Provider timeout:       %s\n", cfg.ProviderTimeout)
	cmd.Println()

	cmd.Println("[LLM]")
	if cfg.LLM.Provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", cfg.LLM.Provider.Description())
		cmd.Printf("  Model:    %s\n", cfg.LLM.Model)
		if cfg.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", cfg.LLM.BaseURL)
		}
		if cfg.LLM.Provider.RequiresAPIKey() {
			cmd.Printf("  API Key:  %s\n", secretDisplay(cfg.LLM.APIKey))
		}
	}
	cmd.Printf("  Status:   %s\n", configuredLabel(cfg.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Google Cloud]")
	cmd.Printf("  API Key:          %s\n", secretDisplay(cfg.Google.APIKey))
	cmd.Printf("  Access Token:     %s\n", secretDisplay(cfg.Google.AccessToken))
	if cfg.Google.CredentialsFile != "" {
		cmd.Printf("  Credentials file: %s\n", cfg.Google.CredentialsFile)
	}
	cmd.Printf("  Rate limit:       %.1f/s (burst %d)\n", cfg.Google.RequestsPerSecond, cfg.Google.Burst)
	cmd.Printf("  Status:           %s\n", configuredLabel(cfg.Google.IsConfigured()))
	cmd.Println()

	cmd.Println("[Local OCR]")
	cmd.Printf("  Tesseract: %s (%s, %d dpi)\n", cfg.LocalOCR.Tesseract, cfg.LocalOCR.Language, cfg.LocalOCR.DPI)
	cmd.Printf("  Pdftoppm:  %s\n", cfg.LocalOCR.Pdftoppm)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Database: %s\n", cfg.DatabasePath)
	cmd.Printf("  Listen:   %s\n", cfg.ListenAddr)
	cmd.Println()

	cmd.Println("Configuration is valid.")
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		value, ok := settingsService.Get(key)
		switch {
		case !ok:
			value = dimStyle.Render("(default)")
		case isSecretKey(key):
			value = maskAPIKey(value)
		}
		cmd.Printf("  %-36s %s\n", key, value)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	value, ok := settingsService.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s is not set", domain.ErrNotFound, args[0])
	}
	if isSecretKey(args[0]) {
		value = maskAPIKey(value)
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Enter value for %s: ", key)
		if isSecretKey(key) {
			value = readPassword()
			cmd.Println()
		} else {
			value = readLine(bufio.NewReader(cmd.InOrStdin()))
		}
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	cmd.Println(settingsService.Path())
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.Config()
	if err != nil {
		return err
	}
	cmd.Println("Configuration file: OK")

	if !cfg.LLM.IsConfigured() {
		cmd.Println("LLM provider:       not configured (extractive summaries only)")
		return nil
	}
	if err := settingsService.ValidateLLMConfig(); err != nil {
		return fmt.Errorf("LLM provider %s: %w", cfg.LLM.Provider, err)
	}
	cmd.Printf("LLM provider:       %s reachable\n", cfg.LLM.Provider.Description())
	return nil
}

func runConfigLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	updates := [][2]string{
		{"llm.provider", selected.String()},
		{"llm.model", model},
	}
	if apiKey != "" {
		updates = append(updates, [2]string{"llm.api_key", apiKey})
	}
	for _, kv := range updates {
		if err := settingsService.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to configure LLM provider: %w", err)
		}
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", selected.Description(), model)
	cmd.Println("Run 'clausewise config check' to test the connection.")
	return nil
}

// Helper functions.

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "access_token")
}

func secretDisplay(v string) string {
	if v == "" {
		return "(not set)"
	}
	return maskAPIKey(v)
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
