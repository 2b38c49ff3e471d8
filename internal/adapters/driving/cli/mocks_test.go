package cli

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
)

// MockAnalysisService implements driving.AnalysisService for testing.
type MockAnalysisService struct {
	AnalyzeFunc func(ctx context.Context, upload domain.Upload) (*domain.DocumentAnalysis, error)
	GetFunc     func(ctx context.Context, id string) (*domain.DocumentAnalysis, error)
	HistoryFunc func(ctx context.Context, limit int) ([]domain.AnalysisSummary, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockAnalysisService) Analyze(ctx context.Context, upload domain.Upload) (*domain.DocumentAnalysis, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, upload)
	}
	return testAnalysis(), nil
}

func (m *MockAnalysisService) Get(ctx context.Context, id string) (*domain.DocumentAnalysis, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	if id == "an-1" {
		return testAnalysis(), nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockAnalysisService) History(ctx context.Context, limit int) ([]domain.AnalysisSummary, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, limit)
	}
	return []domain.AnalysisSummary{testAnalysis().Summary()}, nil
}

func (m *MockAnalysisService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockChatService implements driving.ChatService for testing.
type MockChatService struct {
	AskFunc     func(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)
	SuggestFunc func(ctx context.Context, analysisID string) ([]string, error)
}

func (m *MockChatService) Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, req)
	}
	session := req.SessionID
	if session == "" {
		session = "sess-1"
	}
	return &domain.ChatReply{
		Answer:    domain.Answer{Text: "Payment is due in thirty days.", Confidence: 0.75, ClauseIDs: []string{"c1"}},
		SessionID: session,
	}, nil
}

func (m *MockChatService) SuggestedQuestions(ctx context.Context, analysisID string) ([]string, error) {
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, analysisID)
	}
	return []string{"When is payment due?", "What is my liability?"}, nil
}

func (m *MockChatService) Session(context.Context, string) (*domain.ChatSession, error) {
	return nil, domain.ErrNotFound
}

// MockStatusService implements driving.StatusService for testing.
type MockStatusService struct{}

func (m *MockStatusService) Status(context.Context) domain.SystemStatus {
	return domain.SystemStatus{
		Version: "test",
		Providers: []domain.ProviderStatus{
			{Name: "tesseract", Kind: "ocr", Available: true},
			{Name: "google-vision", Kind: "ocr", Available: false, Detail: "no credentials"},
		},
	}
}

// MockTranslationService implements driving.TranslationService for testing.
type MockTranslationService struct {
	lastText string
}

func (m *MockTranslationService) Translate(_ context.Context, text, target string) (*domain.Translation, error) {
	m.lastText = text
	if target == "" {
		return nil, domain.ErrInvalidInput
	}
	return &domain.Translation{
		Text:           "translated: " + text,
		SourceLanguage: "de",
		TargetLanguage: target,
		Provider:       "google-translate",
	}, nil
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	values      map[string]string
	cfg         *domain.Config
	setErr      error
	validateErr error
}

func newMockSettings() *MockSettingsService {
	cfg := domain.DefaultConfig()
	return &MockSettingsService{values: map[string]string{}, cfg: &cfg}
}

func (m *MockSettingsService) Config() (*domain.Config, error) {
	return m.cfg, nil
}

func (m *MockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *MockSettingsService) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *MockSettingsService) Keys() []string {
	return []string{"google.api_key", "llm.model", "llm.provider"}
}

func (m *MockSettingsService) Path() string {
	return "/tmp/clausewise/config.toml"
}

func (m *MockSettingsService) ValidateLLMConfig() error {
	return m.validateErr
}

var (
	_ driving.AnalysisService    = (*MockAnalysisService)(nil)
	_ driving.ChatService        = (*MockChatService)(nil)
	_ driving.StatusService      = (*MockStatusService)(nil)
	_ driving.TranslationService = (*MockTranslationService)(nil)
	_ driving.SettingsService    = (*MockSettingsService)(nil)
)

func testAnalysis() *domain.DocumentAnalysis {
	return &domain.DocumentAnalysis{
		Document: domain.Document{
			ID:                   "an-1",
			Filename:             "msa.pdf",
			MimeType:             domain.MimePDF,
			ExtractedText:        "Payment is due within thirty days. Liability is unlimited.",
			Language:             "en",
			LanguageConfidence:   0.98,
			ExtractionConfidence: 0.9,
			Provider:             "tesseract",
			CreatedAt:            time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		},
		Clauses: []domain.Clause{
			{ID: "c1", DocumentID: "an-1", Type: domain.ClauseTypePayment, Text: "Payment is due within thirty days."},
			{ID: "c2", DocumentID: "an-1", Type: domain.ClauseTypeLiability, Text: "Liability is unlimited."},
		},
		Risks: []domain.RiskAssessment{
			{ClauseID: "c1", Score: 0.1, Level: domain.RiskLevelLow},
			{ClauseID: "c2", Score: 0.85, Level: domain.RiskLevelHigh, Explanation: "Uncapped liability"},
		},
		Summaries: domain.SummarySet{
			ELI5:          "You pay on time and you might owe a lot.",
			PlainLanguage: "Payment is due in 30 days and liability is not capped.",
			Detailed:      "Payment is due within thirty days.",
			DegradedTiers: []domain.SummaryTier{domain.SummaryTierDetailed},
		},
		Stages: map[domain.StageName]domain.StageStatus{
			domain.StageSummarization: {State: domain.StageStateDegraded, Reason: "llm unavailable"},
		},
	}
}

type testServices struct {
	analysis    *MockAnalysisService
	chat        *MockChatService
	translation *MockTranslationService
	settings    *MockSettingsService
}

// setupTestServices installs mock services and resets every flag.
// The returned function restores the previous state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		analysis:    &MockAnalysisService{},
		chat:        &MockChatService{},
		translation: &MockTranslationService{},
		settings:    newMockSettings(),
	}
	SetServices(Services{
		Analysis:    ts.analysis,
		Chat:        ts.chat,
		Status:      &MockStatusService{},
		Translation: ts.translation,
		Settings:    ts.settings,
		Config:      ts.settings.cfg,
	})
	resetFlags()

	return ts, func() {
		SetServices(Services{})
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
	}
}

func resetFlags() {
	analyzeJSON, analyzeAll = false, false
	analyzeTier = string(domain.SummaryTierPlain)
	historyLimit, historyJSON = 20, false
	showTier, showAll, showText = string(domain.SummaryTierPlain), false, false
	chatSession, chatMessage, chatSuggest, chatJSON = "", "", false, false
	translateTo, translateText, translateJSON = "en", false, false
	statusJSON = false
	serveAddr = ""
	watchExisting = false
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (string, error) {
	rootCmd.SetIn(strings.NewReader(input))
	return executeContext(context.Background(), args...)
}

func executeContext(ctx context.Context, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}
