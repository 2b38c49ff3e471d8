package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
)

func TestLLMService_Chat_FormatJSON(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{}"},"done":true}`))
	}))
	defer srv.Close()
	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}},
		driven.ChatOptions{JSONMode: true, Temperature: 0.2})

	require.NoError(t, err)
	assert.Equal(t, "{}", out)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.InDelta(t, 0.2, got.Options.Temperature, 1e-9)
}

func TestLLMService_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		_, _ = w.Write([]byte(`{"response":"A short summary.","done":true}`))
	}))
	defer srv.Close()
	svc := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: "mistral"})

	out, err := svc.Generate(context.Background(), "summarise", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "A short summary.", out)
	assert.Equal(t, "mistral", svc.ModelName())
}

func TestLLMService_PingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})

	err := svc.Ping(context.Background())

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
