package tui

import (
	"context"
	"time"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// MockAnalysisService implements driving.AnalysisService for testing.
type MockAnalysisService struct {
	GetFunc     func(ctx context.Context, id string) (*domain.DocumentAnalysis, error)
	HistoryFunc func(ctx context.Context, limit int) ([]domain.AnalysisSummary, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockAnalysisService) Analyze(_ context.Context, _ domain.Upload) (*domain.DocumentAnalysis, error) {
	return sampleAnalysis(), nil
}

func (m *MockAnalysisService) Get(ctx context.Context, id string) (*domain.DocumentAnalysis, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return sampleAnalysis(), nil
}

func (m *MockAnalysisService) History(ctx context.Context, limit int) ([]domain.AnalysisSummary, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, limit)
	}
	return []domain.AnalysisSummary{sampleAnalysis().Summary()}, nil
}

func (m *MockAnalysisService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockChatService implements driving.ChatService for testing.
type MockChatService struct {
	AskFunc func(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)
}

func (m *MockChatService) Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, req)
	}
	return &domain.ChatReply{
		Answer:    domain.Answer{Text: "Thirty days.", Confidence: 0.8},
		SessionID: "sess-1",
	}, nil
}

func (m *MockChatService) SuggestedQuestions(_ context.Context, _ string) ([]string, error) {
	return []string{"What is my liability?"}, nil
}

func (m *MockChatService) Session(_ context.Context, id string) (*domain.ChatSession, error) {
	return &domain.ChatSession{ID: id}, nil
}

func sampleAnalysis() *domain.DocumentAnalysis {
	text := "1. Payment. Fees are due in 30 days. 2. Liability. Liability is unlimited."
	return &domain.DocumentAnalysis{
		Document: domain.Document{
			ID:            "an-1",
			Filename:      "msa.pdf",
			MimeType:      domain.MimePDF,
			ExtractedText: text,
			Language:      "en",
			CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		Clauses: []domain.Clause{
			{ID: "c1", StartOffset: 0, EndOffset: 36, Type: domain.ClauseTypePayment, Text: text[:36]},
			{ID: "c2", StartOffset: 37, EndOffset: len(text), Type: domain.ClauseTypeLiability, Text: text[37:]},
		},
		Risks: []domain.RiskAssessment{
			{ClauseID: "c1", Score: 0.2, Level: domain.RiskLevelLow},
			{ClauseID: "c2", Score: 0.9, Level: domain.RiskLevelHigh, Explanation: "Unlimited liability"},
		},
		Summaries: domain.SummarySet{
			ELI5:          "You pay and you are on the hook.",
			PlainLanguage: "Payment within 30 days; liability is unlimited.",
			Detailed:      "Clause 1 sets payment terms. Clause 2 removes liability caps.",
		},
		Stages: map[domain.StageName]domain.StageStatus{
			domain.StageExtraction:    {State: domain.StageStateOK},
			domain.StageSummarization: {State: domain.StageStateOK},
		},
	}
}
