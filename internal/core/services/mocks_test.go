package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
)

// testConfig returns defaults with fast timeouts and no backoff.
func testConfig() *domain.Config {
	cfg := domain.DefaultConfig()
	cfg.ProviderTimeout = time.Second
	cfg.RetryBackoff = 0
	return &cfg
}

// --- Mock implementations ---

// mockOCR implements driven.OCRProvider for testing.
type mockOCR struct {
	name    string
	mimes   []string
	results []ocrResult // consumed in order; the last one repeats

	mu    sync.Mutex
	calls int
}

type ocrResult struct {
	res *domain.ExtractionResult
	err error
}

func newMockOCR(name string, results ...ocrResult) *mockOCR {
	return &mockOCR{name: name, results: results}
}

func (m *mockOCR) Name() string { return m.name }

func (m *mockOCR) Supports(mime string) bool {
	if len(m.mimes) == 0 {
		return true
	}
	for _, s := range m.mimes {
		if s == mime {
			return true
		}
	}
	return false
}

func (m *mockOCR) Extract(_ context.Context, _ []byte, _ string) (*domain.ExtractionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := min(m.calls, len(m.results)-1)
	m.calls++
	r := m.results[i]
	return r.res, r.err
}

func (m *mockOCR) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func textResult(text string, confidence float64) ocrResult {
	return ocrResult{res: &domain.ExtractionResult{Text: text, Confidence: confidence}}
}

func errResult(msg string) ocrResult {
	return ocrResult{err: errors.New(msg)}
}

// mockDetector implements driven.LanguageDetector for testing.
type mockDetector struct {
	name   string
	result *domain.LanguageResult
	err    error
	block  bool
}

func (m *mockDetector) Name() string { return m.name }

func (m *mockDetector) Detect(ctx context.Context, _ string) (*domain.LanguageResult, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	r := *m.result
	return &r, nil
}

// mockTranslator implements driven.Translator for testing.
type mockTranslator struct {
	err error
}

func (m *mockTranslator) Name() string { return "mock-translate" }

func (m *mockTranslator) Translate(_ context.Context, text, target string) (*domain.Translation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Translation{Text: "[" + target + "] " + text, SourceLanguage: "en", TargetLanguage: target}, nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	generate func(prompt string) (string, error)
	chat     func(messages []driven.ChatMessage) (string, error)
	block    bool
	pingErr  error

	mu       sync.Mutex
	prompts  []string
	messages [][]driven.ChatMessage
	options  []driven.ChatOptions
}

func (m *mockLLMService) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.generate == nil {
		return "", errors.New("generate not configured")
	}
	return m.generate(prompt)
}

func (m *mockLLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, messages)
	m.options = append(m.options, opts)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.chat == nil {
		return "", errors.New("chat not configured")
	}
	return m.chat(messages)
}

func (m *mockLLMService) ModelName() string { return "mock-model" }

func (m *mockLLMService) Ping(_ context.Context) error { return m.pingErr }

func (m *mockLLMService) Close() error { return nil }

func (m *mockLLMService) generateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLMService) lastMessages() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptSummaryELI5:     "ELI5 in %d chars: %s",
		driven.PromptSummaryPlain:    "PLAIN in %d chars: %s",
		driven.PromptSummaryDetailed: "DETAILED in %d chars: %s",
		driven.PromptChatSystem:      "SYSTEM",
		driven.PromptChatContext:     "CONTEXT:\n%s",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// jsonDecoder implements driven.AnswerDecoder with plain encoding/json.
type jsonDecoder struct{}

func (jsonDecoder) Decode(raw string) (*domain.Answer, error) {
	var v struct {
		Answer     *string  `json:"answer"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	if v.Answer == nil || v.Confidence == nil {
		return nil, errors.New("missing fields")
	}
	return &domain.Answer{Text: *v.Answer, Confidence: *v.Confidence}, nil
}

// mockHistoryStore implements driven.ChatHistoryStore for testing.
type mockHistoryStore struct {
	mu    sync.Mutex
	turns map[string][]domain.ChatTurn
	err   error
}

func newMockHistoryStore() *mockHistoryStore {
	return &mockHistoryStore{turns: make(map[string][]domain.ChatTurn)}
}

func (m *mockHistoryStore) AppendTurn(_ context.Context, sessionID, _ string, turn domain.ChatTurn) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[sessionID] = append(m.turns[sessionID], turn)
	return nil
}

func (m *mockHistoryStore) ListTurns(_ context.Context, sessionID string) ([]domain.ChatTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turns[sessionID], nil
}

// failingAnalysisStore fails every write.
type failingAnalysisStore struct{}

func (failingAnalysisStore) Save(context.Context, *domain.DocumentAnalysis) error {
	return errors.New("disk full")
}

func (failingAnalysisStore) Get(context.Context, string) (*domain.DocumentAnalysis, error) {
	return nil, domain.ErrNotFound
}

func (failingAnalysisStore) List(context.Context, int) ([]domain.AnalysisSummary, error) {
	return nil, errors.New("disk full")
}

func (failingAnalysisStore) Delete(context.Context, string) error {
	return errors.New("disk full")
}

// mockPinger implements driven.Pinger for testing.
type mockPinger struct {
	err error
}

func (m mockPinger) Ping(context.Context) error { return m.err }
