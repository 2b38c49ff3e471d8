package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	result := &InitResult{}
	// Should not panic
	result.Close()
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantNil   bool
		wantModel string
	}{
		{"nil settings returns nil", nil, true, ""},
		{"unconfigured settings returns nil", &domain.LLMSettings{}, true, ""},
		{"openai without key returns nil", &domain.LLMSettings{Provider: domain.AIProviderOpenAI}, true, ""},
		{
			"ollama provider creates service",
			&domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"},
			false, "llama3.2",
		},
		{
			"openai provider creates service",
			&domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"},
			false, "gpt-4o-mini",
		},
		{
			"anthropic provider creates service",
			&domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			false, "claude-3-5-sonnet-latest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateAndValidateLLMService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	svc, err := CreateAndValidateLLMService(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
	})

	assert.Nil(t, svc)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestValidateLLMConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.NoError(t, ValidateLLMConfig(nil))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}))
}

func TestInit(t *testing.T) {
	t.Run("no provider falls back", func(t *testing.T) {
		cfg := domain.DefaultConfig()

		result := Init(&cfg, nil, false)

		assert.Nil(t, result.LLMService)
		assert.True(t, result.FellBack)
		assert.NotEmpty(t, result.Warnings)
	})

	t.Run("configured provider", func(t *testing.T) {
		cfg := domain.DefaultConfig()
		cfg.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"}

		result := Init(&cfg, nil, false)
		defer result.Close()

		require.NotNil(t, result.LLMService)
		assert.False(t, result.FellBack)
	})

	t.Run("local mode without provider", func(t *testing.T) {
		cfg := domain.DefaultConfig()
		cfg.SummarizationProvider = domain.ProviderModeLocal

		result := Init(&cfg, nil, false)

		assert.True(t, result.FellBack)
		assert.Empty(t, result.Warnings)
	})
}
