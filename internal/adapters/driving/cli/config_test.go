package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsSecretKey(t *testing.T) {
	assert.True(t, isSecretKey("llm.api_key"))
	assert.True(t, isSecretKey("google.api_key"))
	assert.True(t, isSecretKey("google.access_token"))
	assert.False(t, isSecretKey("llm.model"))
	assert.False(t, isSecretKey("server.addr"))
}

func TestSecretDisplay(t *testing.T) {
	assert.Equal(t, "(not set)", secretDisplay(""))
	assert.Equal(t, "****", secretDisplay("short"))
	assert.Equal(t, "AIza...wxyz", secretDisplay("AIzaSy0123456789wxyz"))
}

func TestConfigCmd_ShowIsDefault(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config")

	require.NoError(t, err)
	assert.Contains(t, out, "[Pipeline]")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "[Google Cloud]")
	assert.Contains(t, out, "Listen:   :8000")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestConfigCmd_List(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.values["google.api_key"] = "AIzaSy0123456789wxyz"
	ts.settings.values["llm.model"] = "llama3.2"

	out, err := execute("config", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "AIza...wxyz")
	assert.NotContains(t, out, "AIzaSy0123456789wxyz")
	assert.Contains(t, out, "llama3.2")
	assert.Contains(t, out, "(default)")
}

func TestConfigCmd_Get(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.values["llm.model"] = "gpt-4o-mini"

	out, err := execute("config", "get", "llm.model")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini\n", out)

	_, err = execute("config", "get", "llm.provider")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigCmd_Set(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "set", "server.addr", ":9000")

	require.NoError(t, err)
	assert.Contains(t, out, "Set server.addr")
	assert.Equal(t, ":9000", ts.settings.values["server.addr"])
}

func TestConfigCmd_SetPromptsForValue(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput("llama3.1\n", "config", "set", "llm.model")

	require.NoError(t, err)
	assert.Equal(t, "llama3.1", ts.settings.values["llm.model"])
}

func TestConfigCmd_SetRejected(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.setErr = domain.NewValidationError(domain.ValidationBadConfig, "unknown key")

	_, err := execute("config", "set", "nope", "x")

	require.Error(t, err)
	assert.Equal(t, ExitValidation, ExitCode(err))
}

func TestConfigCmd_Path(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "path")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/clausewise/config.toml\n", out)
}

func TestConfigCmd_LLMWizardOllama(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeWithInput("1\n\n", "config", "llm")

	require.NoError(t, err)
	assert.Equal(t, "ollama", ts.settings.values["llm.provider"])
	assert.Equal(t, "llama3.2", ts.settings.values["llm.model"])
	_, hasKey := ts.settings.values["llm.api_key"]
	assert.False(t, hasKey)
	assert.Contains(t, out, "LLM provider configured")
}

func TestConfigCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute("config", "path")

	assert.EqualError(t, err, "settings service not configured")
}

func TestConfigCmd_CheckWithoutLLM(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("config", "check")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file: OK")
	assert.Contains(t, out, "not configured")
}

func TestConfigCmd_CheckUnreachable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.cfg.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}
	ts.settings.validateErr = domain.ErrLLMUnavailable

	_, err := execute("config", "check")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestConfigCmd_CheckReachable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.cfg.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}

	out, err := execute("config", "check")

	require.NoError(t, err)
	assert.Contains(t, out, "Ollama (local) reachable")
}
