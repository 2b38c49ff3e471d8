package domain

import (
	"fmt"
	"time"
)

// ProviderMode selects between a cloud provider and its local fallback.
type ProviderMode string

// Provider modes.
const (
	// ProviderModeCloud tries the cloud provider first, then the local one.
	ProviderModeCloud ProviderMode = "cloud"

	// ProviderModeLocal disables the cloud provider entirely.
	ProviderModeLocal ProviderMode = "local"
)

// IsValid returns true if the mode is recognised.
func (m ProviderMode) IsValid() bool {
	return m == ProviderModeCloud || m == ProviderModeLocal
}

// String returns the string representation.
func (m ProviderMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m ProviderMode) Description() string {
	switch m {
	case ProviderModeCloud:
		return "Cloud first, local fallback"
	case ProviderModeLocal:
		return "Local only"
	default:
		return unknownDescription
	}
}

// AIProvider identifies a generative LLM provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// AllAIProviders returns every supported LLM provider.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or proxies).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// GoogleSettings holds credentials for Cloud Vision and Cloud Translation.
type GoogleSettings struct {
	// APIKey authenticates with a restricted API key.
	APIKey string

	// AccessToken authenticates with a bearer token (e.g. from gcloud).
	AccessToken string

	// CredentialsFile points at a service account JSON file.
	CredentialsFile string

	// RequestsPerSecond throttles calls shared across Vision and Translate.
	RequestsPerSecond float64

	// Burst is the rate limiter burst size.
	Burst int
}

// IsConfigured returns true if any credential is present.
func (g GoogleSettings) IsConfigured() bool {
	return g.APIKey != "" || g.AccessToken != "" || g.CredentialsFile != ""
}

// LocalOCRSettings configures the offline extraction engine.
type LocalOCRSettings struct {
	// Tesseract is the tesseract binary name or path.
	Tesseract string

	// Pdftoppm is the poppler rasteriser used for scanned PDFs.
	Pdftoppm string

	// Language is the tesseract language pack, e.g. "eng".
	Language string

	// DPI is the rasterisation resolution for scanned PDFs.
	DPI int
}

// Config is the immutable runtime configuration, built once at startup
// and passed by reference into every component constructor.
type Config struct {
	// OCRProvider selects the extraction chain.
	OCRProvider ProviderMode

	// SummarizationProvider selects generative or extractive summaries.
	SummarizationProvider ProviderMode

	// MaxClauseLength is the longest marker-bounded span kept whole before
	// sentence-level splitting applies.
	MaxClauseLength int

	// RiskThresholds are the medium/high level boundaries.
	RiskThresholds RiskThresholds

	// ContextWindowBudget caps the characters of clause text sent to the QA provider.
	ContextWindowBudget int

	// MinTextLength is the shortest trimmed text accepted from extraction.
	MinTextLength int

	// MaxUploadBytes caps accepted upload size.
	MaxUploadBytes int64

	// ProviderTimeout bounds every external call attempt.
	ProviderTimeout time.Duration

	// RetryBackoff is the pause before the single retry.
	RetryBackoff time.Duration

	// SummaryMaxLength caps each summary tier in characters.
	SummaryMaxLength map[SummaryTier]int

	// LLM configures the generative provider.
	LLM LLMSettings

	// Google configures Cloud Vision and Cloud Translation.
	Google GoogleSettings

	// LocalOCR configures the offline extraction engine.
	LocalOCR LocalOCRSettings

	// DatabasePath is the sqlite file holding analysis history.
	DatabasePath string

	// ListenAddr is the HTTP listen address.
	ListenAddr string
}

// DefaultConfig returns the configuration used when no file is present.
// Cloud providers are preferred but remain inert until credentials exist.
func DefaultConfig() Config {
	return Config{
		OCRProvider:           ProviderModeCloud,
		SummarizationProvider: ProviderModeCloud,
		MaxClauseLength:       1200,
		RiskThresholds:        DefaultRiskThresholds(),
		ContextWindowBudget:   4000,
		MinTextLength:         1,
		MaxUploadBytes:        10 << 20,
		ProviderTimeout:       30 * time.Second,
		RetryBackoff:          500 * time.Millisecond,
		SummaryMaxLength: map[SummaryTier]int{
			SummaryTierELI5:     600,
			SummaryTierPlain:    1200,
			SummaryTierDetailed: 3000,
		},
		Google: GoogleSettings{
			RequestsPerSecond: 5,
			Burst:             5,
		},
		LocalOCR: LocalOCRSettings{
			Tesseract: "tesseract",
			Pdftoppm:  "pdftoppm",
			Language:  "eng",
			DPI:       300,
		},
		ListenAddr: ":8000",
	}
}

// MaxSummaryLength returns the cap for a tier, falling back to defaults.
func (c *Config) MaxSummaryLength(tier SummaryTier) int {
	if n, ok := c.SummaryMaxLength[tier]; ok && n > 0 {
		return n
	}
	return DefaultConfig().SummaryMaxLength[tier]
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if !c.OCRProvider.IsValid() {
		return NewValidationError(ValidationBadConfig, "unknown ocr_provider %q", c.OCRProvider)
	}
	if !c.SummarizationProvider.IsValid() {
		return NewValidationError(ValidationBadConfig,
			"unknown summarization_provider %q", c.SummarizationProvider)
	}
	if c.MaxClauseLength <= 0 {
		return NewValidationError(ValidationBadConfig, "max_clause_length must be positive")
	}
	if c.ContextWindowBudget <= 0 {
		return NewValidationError(ValidationBadConfig, "context_window_budget must be positive")
	}
	if !c.RiskThresholds.IsValid() {
		return NewValidationError(ValidationBadConfig,
			"risk_score_thresholds must satisfy 0 < medium < high <= 1, got medium=%.2f high=%.2f",
			c.RiskThresholds.Medium, c.RiskThresholds.High)
	}
	if c.ProviderTimeout <= 0 {
		return NewValidationError(ValidationBadConfig, "provider timeout must be positive")
	}
	if c.LLM.Provider != "" && !c.LLM.Provider.IsValid() {
		return NewValidationError(ValidationBadConfig, "unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

// ValidateUpload checks an upload before it enters the pipeline.
func (c *Config) ValidateUpload(size int64, mime string) error {
	if size == 0 {
		return NewValidationError(ValidationEmptyFile, "uploaded file is empty")
	}
	if c.MaxUploadBytes > 0 && size > c.MaxUploadBytes {
		return NewValidationError(ValidationFileTooLarge,
			"file is %d bytes, limit is %d", size, c.MaxUploadBytes)
	}
	if !IsSupportedMimeType(mime) {
		return NewValidationError(ValidationUnsupportedType, "unsupported file type %q", mime)
	}
	return nil
}

// String returns a redacted one-line description for logging.
func (c *Config) String() string {
	return fmt.Sprintf("ocr=%s summarization=%s llm=%s max_clause=%d budget=%d thresholds=%.2f/%.2f",
		c.OCRProvider, c.SummarizationProvider, c.LLM.Provider,
		c.MaxClauseLength, c.ContextWindowBudget,
		c.RiskThresholds.Medium, c.RiskThresholds.High)
}
