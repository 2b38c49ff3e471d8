package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyOCRProvider       = "ocr_provider"
	keySummaryProvider   = "summarization_provider"
	keyMaxClauseLength   = "max_clause_length"
	keyRiskHigh          = "risk_score_thresholds.high"
	keyRiskMedium        = "risk_score_thresholds.medium"
	keyContextBudget     = "context_window_budget"
	keyMinTextLength     = "min_text_length"
	keyMaxUploadBytes    = "max_upload_bytes"
	keyProviderTimeout   = "timeouts.provider_seconds"
	keyRetryBackoff      = "timeouts.retry_backoff_ms"
	keySummaryELI5Max    = "summary_max_length.eli5"
	keySummaryPlainMax   = "summary_max_length.plain_language"
	keySummaryDetailMax  = "summary_max_length.detailed"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyGoogleAPIKey      = "google.api_key"
	keyGoogleToken       = "google.access_token"
	keyGoogleCredentials = "google.credentials_file"
	keyGoogleRPS         = "google.requests_per_second"
	keyGoogleBurst       = "google.burst"
	keyTesseract         = "local_ocr.tesseract"
	keyPdftoppm          = "local_ocr.pdftoppm"
	keyOCRLanguage       = "local_ocr.language"
	keyOCRDPI            = "local_ocr.dpi"
	keyStoragePath       = "storage.path"
	keyServerAddr        = "server.addr"
)

// Environment variables that override stored credentials.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvAnthropicKey      = "ANTHROPIC_API_KEY"
	EnvGoogleAPIKey      = "GOOGLE_API_KEY"
	EnvGoogleAccessToken = "GOOGLE_ACCESS_TOKEN"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
)

var settingKinds = map[string]valueKind{
	keyOCRProvider:       kindString,
	keySummaryProvider:   kindString,
	keyMaxClauseLength:   kindInt,
	keyRiskHigh:          kindFloat,
	keyRiskMedium:        kindFloat,
	keyContextBudget:     kindInt,
	keyMinTextLength:     kindInt,
	keyMaxUploadBytes:    kindInt,
	keyProviderTimeout:   kindInt,
	keyRetryBackoff:      kindInt,
	keySummaryELI5Max:    kindInt,
	keySummaryPlainMax:   kindInt,
	keySummaryDetailMax:  kindInt,
	keyLLMProvider:       kindString,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyGoogleAPIKey:      kindString,
	keyGoogleToken:       kindString,
	keyGoogleCredentials: kindString,
	keyGoogleRPS:         kindFloat,
	keyGoogleBurst:       kindInt,
	keyTesseract:         kindString,
	keyPdftoppm:          kindString,
	keyOCRLanguage:       kindString,
	keyOCRDPI:            kindInt,
	keyStoragePath:       kindString,
	keyServerAddr:        kindString,
}

// SettingsService builds the runtime configuration from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Config returns the validated runtime configuration.
func (s *SettingsService) Config() (*domain.Config, error) {
	cfg := s.build()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *SettingsService) build() *domain.Config {
	cfg := domain.DefaultConfig()
	defaults := domain.DefaultConfig()

	cfg.OCRProvider = domain.ProviderMode(s.getString(keyOCRProvider, string(defaults.OCRProvider)))
	cfg.SummarizationProvider = domain.ProviderMode(
		s.getString(keySummaryProvider, string(defaults.SummarizationProvider)))
	cfg.MaxClauseLength = s.getInt(keyMaxClauseLength, defaults.MaxClauseLength)
	cfg.RiskThresholds = domain.RiskThresholds{
		High:   s.getFloat(keyRiskHigh, defaults.RiskThresholds.High),
		Medium: s.getFloat(keyRiskMedium, defaults.RiskThresholds.Medium),
	}
	cfg.ContextWindowBudget = s.getInt(keyContextBudget, defaults.ContextWindowBudget)
	cfg.MinTextLength = s.getInt(keyMinTextLength, defaults.MinTextLength)
	cfg.MaxUploadBytes = int64(s.getInt(keyMaxUploadBytes, int(defaults.MaxUploadBytes)))
	cfg.ProviderTimeout = time.Duration(s.getInt(keyProviderTimeout, int(defaults.ProviderTimeout/time.Second))) * time.Second
	cfg.RetryBackoff = time.Duration(s.getInt(keyRetryBackoff, int(defaults.RetryBackoff/time.Millisecond))) * time.Millisecond
	cfg.SummaryMaxLength = map[domain.SummaryTier]int{
		domain.SummaryTierELI5:     s.getInt(keySummaryELI5Max, defaults.SummaryMaxLength[domain.SummaryTierELI5]),
		domain.SummaryTierPlain:    s.getInt(keySummaryPlainMax, defaults.SummaryMaxLength[domain.SummaryTierPlain]),
		domain.SummaryTierDetailed: s.getInt(keySummaryDetailMax, defaults.SummaryMaxLength[domain.SummaryTierDetailed]),
	}

	cfg.LLM = domain.LLMSettings{
		Provider: domain.AIProvider(s.configStore.GetString(keyLLMProvider)),
		Model:    s.configStore.GetString(keyLLMModel),
		BaseURL:  s.configStore.GetString(keyLLMBaseURL),
		APIKey:   s.configStore.GetString(keyLLMAPIKey),
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = domain.DefaultLLMModels()[cfg.LLM.Provider]
	}
	if cfg.LLM.Provider == domain.AIProviderOllama && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}

	cfg.Google = domain.GoogleSettings{
		APIKey:            s.configStore.GetString(keyGoogleAPIKey),
		AccessToken:       s.configStore.GetString(keyGoogleToken),
		CredentialsFile:   s.configStore.GetString(keyGoogleCredentials),
		RequestsPerSecond: s.getFloat(keyGoogleRPS, defaults.Google.RequestsPerSecond),
		Burst:             s.getInt(keyGoogleBurst, defaults.Google.Burst),
	}
	cfg.LocalOCR = domain.LocalOCRSettings{
		Tesseract: s.getString(keyTesseract, defaults.LocalOCR.Tesseract),
		Pdftoppm:  s.getString(keyPdftoppm, defaults.LocalOCR.Pdftoppm),
		Language:  s.getString(keyOCRLanguage, defaults.LocalOCR.Language),
		DPI:       s.getInt(keyOCRDPI, defaults.LocalOCR.DPI),
	}
	cfg.DatabasePath = s.configStore.GetString(keyStoragePath)
	cfg.ListenAddr = s.getString(keyServerAddr, defaults.ListenAddr)

	s.applyEnv(&cfg)
	return &cfg
}

// applyEnv lets environment credentials win over stored ones.
func (s *SettingsService) applyEnv(cfg *domain.Config) {
	switch cfg.LLM.Provider {
	case domain.AIProviderOpenAI:
		if v := s.getenv(EnvOpenAIKey); v != "" {
			cfg.LLM.APIKey = v
		}
	case domain.AIProviderAnthropic:
		if v := s.getenv(EnvAnthropicKey); v != "" {
			cfg.LLM.APIKey = v
		}
	case "":
		// Pick a provider from whichever key is present.
		if v := s.getenv(EnvOpenAIKey); v != "" {
			cfg.LLM = domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				Model:    domain.DefaultLLMModels()[domain.AIProviderOpenAI],
				APIKey:   v,
			}
		} else if v := s.getenv(EnvAnthropicKey); v != "" {
			cfg.LLM = domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				Model:    domain.DefaultLLMModels()[domain.AIProviderAnthropic],
				APIKey:   v,
			}
		}
	}
	if v := s.getenv(EnvGoogleAPIKey); v != "" {
		cfg.Google.APIKey = v
	}
	if v := s.getenv(EnvGoogleAccessToken); v != "" {
		cfg.Google.AccessToken = v
	}
}

// Set parses value according to the key's type, checks that the resulting
// configuration is still valid and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return domain.NewValidationError(domain.ValidationBadConfig, "unknown setting %q", key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return domain.NewValidationError(domain.ValidationBadConfig, "%s must be an integer", key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return domain.NewValidationError(domain.ValidationBadConfig, "%s must be a number", key)
		}
		parsed = f
	default:
		parsed = value
	}

	previous, had := s.configStore.Get(key)
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := s.build().Validate(); err != nil {
		if had {
			_ = s.configStore.Set(key, previous)
		} else {
			_ = s.configStore.Set(key, "")
		}
		return err
	}
	return nil
}

// Get returns the stored value of key, formatted as a string.
func (s *SettingsService) Get(key string) (string, bool) {
	v, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(v), true
}

// Keys lists every recognised setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the configuration file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// SetAIValidator sets the validator used by ValidateLLMConfig.
func (s *SettingsService) SetAIValidator(v driven.AIConfigValidator) {
	s.aiValidator = v
}

// ValidateLLMConfig checks that the configured LLM provider is reachable.
// It returns nil when no provider is configured.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	cfg := s.build()
	return s.aiValidator.ValidateLLM(&cfg.LLM)
}

// getString returns the stored value or the default if empty.
func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

// getInt returns the stored value or the default if not set.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, ok := s.configStore.Get(key); !ok || v == "" {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

// getFloat returns the stored value or the default if not set.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v, ok := s.configStore.Get(key); !ok || v == "" {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}
