package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

func TestServer_handleAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("analyses a file from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lease.txt")
		require.NoError(t, os.WriteFile(path, []byte("The Tenant shall indemnify the Landlord."), 0600))
		mock := &mockAnalysisService{analysis: sampleAnalysis()}
		server, err := NewServer(&Ports{Analysis: mock}, "test")
		require.NoError(t, err)

		_, output, err := server.handleAnalyze(ctx, nil, AnalyzeInput{Path: path})

		require.NoError(t, err)
		require.Len(t, mock.uploads, 1)
		assert.Equal(t, "lease.txt", mock.uploads[0].Filename)
		assert.Equal(t, domain.MimeText, mock.uploads[0].MimeType)

		assert.Equal(t, "an-1", output.AnalysisID)
		assert.Equal(t, "high", output.OverallRisk)
		assert.Equal(t, 1, output.ClauseCount)
		require.Len(t, output.Clauses, 1)
		assert.Equal(t, "liability", output.Clauses[0].Type)
		assert.Equal(t, 0.8, output.Clauses[0].RiskScore)
		assert.Equal(t, []string{"indemnify"}, output.Clauses[0].Factors)
		assert.Equal(t, "You must cover the landlord's losses.", output.PlainSummary)
		assert.Equal(t, map[string]string{"summarization": "llm unavailable"}, output.DegradedStage)
	})

	t.Run("analyses inline text", func(t *testing.T) {
		mock := &mockAnalysisService{analysis: sampleAnalysis()}
		server, err := NewServer(&Ports{Analysis: mock}, "test")
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{Text: "Payment is due monthly."})

		require.NoError(t, err)
		require.Len(t, mock.uploads, 1)
		assert.Equal(t, domain.MimeText, mock.uploads[0].MimeType)
		assert.Equal(t, "Payment is due monthly.", string(mock.uploads[0].Data))
	})

	t.Run("requires path or text", func(t *testing.T) {
		server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}}, "test")
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{})

		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}}, "test")
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{Path: filepath.Join(t.TempDir(), "none.pdf")})

		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("propagates pipeline errors", func(t *testing.T) {
		mock := &mockAnalysisService{err: &domain.ExtractionError{Reason: domain.ExtractionEmptyDocument}}
		server, err := NewServer(&Ports{Analysis: mock}, "test")
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{Text: "x"})

		assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the answer", func(t *testing.T) {
		chat := &mockChatService{reply: &domain.ChatReply{
			Answer:    domain.Answer{Text: "Yes, you must indemnify.", Confidence: 0.85, ClauseIDs: []string{"clause-1"}},
			SessionID: "sess-1",
		}}
		server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}, Chat: chat}, "test")
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{AnalysisID: "an-1", Question: "Do I indemnify?"})

		require.NoError(t, err)
		assert.Equal(t, "Yes, you must indemnify.", output.Response)
		assert.Equal(t, 0.85, output.Confidence)
		assert.Equal(t, "sess-1", output.SessionID)
		assert.Equal(t, []string{"clause-1"}, output.ClauseIDs)
		assert.Equal(t, "an-1", chat.lastReq.AnalysisID)
		assert.Equal(t, "Do I indemnify?", chat.lastReq.Message)
	})

	t.Run("chat not configured", func(t *testing.T) {
		server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}}, "test")
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})

		assert.ErrorIs(t, err, ErrChatUnavailable)
	})

	t.Run("propagates validation errors", func(t *testing.T) {
		chat := &mockChatService{err: domain.NewValidationError(domain.ValidationEmptyQuestion, "message is empty")}
		server, err := NewServer(&Ports{Analysis: &mockAnalysisService{}, Chat: chat}, "test")
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleList(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns history rows", func(t *testing.T) {
		mock := &mockAnalysisService{history: []domain.AnalysisSummary{
			{ID: "an-1", Filename: "lease.pdf", Language: "en", ClauseCount: 4, OverallRisk: domain.RiskLevelMedium, CreatedAt: created},
		}}
		server, err := NewServer(&Ports{Analysis: mock}, "test")
		require.NoError(t, err)

		_, output, err := server.handleList(ctx, nil, ListInput{Limit: 3})

		require.NoError(t, err)
		assert.Equal(t, 3, mock.lastLimit)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "medium", output.Analyses[0].OverallRisk)
		assert.Equal(t, "2026-03-01T12:00:00Z", output.Analyses[0].CreatedAt)
	})

	t.Run("default limit", func(t *testing.T) {
		mock := &mockAnalysisService{}
		server, err := NewServer(&Ports{Analysis: mock}, "test")
		require.NoError(t, err)

		_, output, err := server.handleList(ctx, nil, ListInput{})

		require.NoError(t, err)
		assert.Equal(t, defaultListLimit, mock.lastLimit)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Analyses)
	})

	t.Run("store failure", func(t *testing.T) {
		mock := &mockAnalysisService{err: errors.New("database is locked")}
		server, err := NewServer(&Ports{Analysis: mock}, "test")
		require.NoError(t, err)

		_, _, err = server.handleList(ctx, nil, ListInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is locked")
	})
}
