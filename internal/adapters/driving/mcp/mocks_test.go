package mcp

import (
	"context"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	analysis  *domain.DocumentAnalysis
	history   []domain.AnalysisSummary
	err       error
	uploads   []domain.Upload
	lastLimit int
}

func (m *mockAnalysisService) Analyze(_ context.Context, upload domain.Upload) (*domain.DocumentAnalysis, error) {
	m.uploads = append(m.uploads, upload)
	return m.analysis, m.err
}

func (m *mockAnalysisService) Get(_ context.Context, id string) (*domain.DocumentAnalysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.analysis == nil || m.analysis.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.analysis, nil
}

func (m *mockAnalysisService) History(_ context.Context, limit int) ([]domain.AnalysisSummary, error) {
	m.lastLimit = limit
	return m.history, m.err
}

func (m *mockAnalysisService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	reply   *domain.ChatReply
	err     error
	lastReq domain.ChatRequest
}

func (m *mockChatService) Ask(_ context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	m.lastReq = req
	return m.reply, m.err
}

func (m *mockChatService) SuggestedQuestions(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

func (m *mockChatService) Session(_ context.Context, _ string) (*domain.ChatSession, error) {
	return nil, m.err
}

func sampleAnalysis() *domain.DocumentAnalysis {
	return &domain.DocumentAnalysis{
		Document: domain.Document{
			ID:            "an-1",
			Filename:      "lease.pdf",
			ExtractedText: "1. The Tenant shall indemnify the Landlord.",
			Language:      "en",
		},
		Clauses: []domain.Clause{
			{ID: "clause-1", StartOffset: 0, EndOffset: 44, Type: domain.ClauseTypeLiability, Text: "1. The Tenant shall indemnify the Landlord."},
		},
		Risks: []domain.RiskAssessment{
			{ClauseID: "clause-1", Score: 0.8, Level: domain.RiskLevelHigh, Factors: []string{"indemnify"}, Explanation: "High risk"},
		},
		Summaries: domain.SummarySet{PlainLanguage: "You must cover the landlord's losses."},
		Stages: map[domain.StageName]domain.StageStatus{
			domain.StageExtraction:    {State: domain.StageStateOK},
			domain.StageSummarization: {State: domain.StageStateDegraded, Reason: "llm unavailable"},
		},
	}
}
