package driving

import "github.com/custodia-labs/clausewise/internal/core/domain"

// SettingsService reads and edits the persisted configuration.
type SettingsService interface {
	// Config builds the immutable runtime configuration from stored values,
	// defaults and environment overrides.
	Config() (*domain.Config, error)

	// Set validates and stores a single key.
	Set(key, value string) error

	// Get returns the stored raw value of a key.
	Get(key string) (string, bool)

	// Keys lists every recognised key.
	Keys() []string

	// Path returns the configuration file location.
	Path() string

	// ValidateLLMConfig pings the configured LLM provider.
	ValidateLLMConfig() error
}
