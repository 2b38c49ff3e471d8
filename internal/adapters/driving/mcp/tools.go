package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clausewise/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// defaultListLimit is used by list_analyses when no limit is given.
const defaultListLimit = 10

// AnalyzeInput is the input schema for the analyze_document tool.
type AnalyzeInput struct {
	Path string `json:"path,omitempty" jsonschema:"local path of a PDF, image or text file to analyse"`
	Text string `json:"text,omitempty" jsonschema:"raw contract text, used when no path is given"`
}

// ClauseOutput is one clause with its risk verdict.
type ClauseOutput struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	RiskScore   float64  `json:"risk_score"`
	RiskLevel   string   `json:"risk_level"`
	Factors     []string `json:"risk_factors,omitempty"`
	Explanation string   `json:"explanation"`
	Text        string   `json:"text"`
}

// AnalyzeOutput is the output schema for the analyze_document tool.
type AnalyzeOutput struct {
	AnalysisID    string            `json:"analysis_id"`
	Language      string            `json:"language"`
	OverallRisk   string            `json:"overall_risk"`
	ClauseCount   int               `json:"clause_count"`
	Clauses       []ClauseOutput    `json:"clauses"`
	PlainSummary  string            `json:"plain_language_summary"`
	DegradedStage map[string]string `json:"degraded_stages,omitempty"`
}

// AskInput is the input schema for the ask_document tool.
type AskInput struct {
	AnalysisID   string `json:"analysis_id,omitempty" jsonschema:"id returned by analyze_document"`
	DocumentText string `json:"document_text,omitempty" jsonschema:"raw document text, used when no analysis_id is given"`
	Question     string `json:"question" jsonschema:"the question to answer from the document"`
	SessionID    string `json:"session_id,omitempty" jsonschema:"session to continue, omit to start a new one"`
}

// AskOutput is the output schema for the ask_document tool.
type AskOutput struct {
	Response   string   `json:"response"`
	Confidence float64  `json:"confidence"`
	SessionID  string   `json:"session_id"`
	ClauseIDs  []string `json:"clause_ids,omitempty"`
}

// ListInput is the input schema for the list_analyses tool.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of analyses to return (default 10)"`
}

// HistoryRow is one entry of list_analyses.
type HistoryRow struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Language    string `json:"language"`
	ClauseCount int    `json:"clause_count"`
	OverallRisk string `json:"overall_risk"`
	Degraded    bool   `json:"degraded"`
	CreatedAt   string `json:"created_at"`
}

// ListOutput is the output schema for the list_analyses tool.
type ListOutput struct {
	Analyses []HistoryRow `json:"analyses"`
	Count    int          `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_document",
		Description: "Extract, segment, risk-score and summarise a contract",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_document",
		Description: "Answer a question grounded in an analysed contract",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_analyses",
		Description: "List recently analysed documents, newest first",
	}, s.handleList)
}

// handleAnalyze handles the analyze_document tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	var upload domain.Upload
	switch {
	case input.Path != "":
		u, err := filesystem.ReadUpload(input.Path)
		if err != nil {
			return nil, AnalyzeOutput{}, err
		}
		upload = u
	case input.Text != "":
		upload = domain.Upload{Filename: "inline.txt", MimeType: domain.MimeText, Data: []byte(input.Text)}
	default:
		return nil, AnalyzeOutput{}, errors.New("either path or text is required")
	}

	analysis, err := s.ports.Analysis.Analyze(ctx, upload)
	if err != nil {
		return nil, AnalyzeOutput{}, err
	}
	return nil, toAnalyzeOutput(analysis), nil
}

func toAnalyzeOutput(a *domain.DocumentAnalysis) AnalyzeOutput {
	out := AnalyzeOutput{
		AnalysisID:   a.ID,
		Language:     a.Language,
		OverallRisk:  a.OverallRisk().String(),
		ClauseCount:  len(a.Clauses),
		Clauses:      make([]ClauseOutput, 0, len(a.Clauses)),
		PlainSummary: a.Summaries.PlainLanguage,
	}
	for _, c := range a.Clauses {
		co := ClauseOutput{ID: c.ID, Type: c.Type.String(), Text: c.Text}
		if r, ok := a.RiskFor(c.ID); ok {
			co.RiskScore = r.Score
			co.RiskLevel = r.Level.String()
			co.Factors = r.Factors
			co.Explanation = r.Explanation
		}
		out.Clauses = append(out.Clauses, co)
	}
	for name, st := range a.Stages {
		if st.State != domain.StageStateDegraded {
			continue
		}
		if out.DegradedStage == nil {
			out.DegradedStage = map[string]string{}
		}
		out.DegradedStage[string(name)] = st.Reason
	}
	return out
}

// handleAsk handles the ask_document tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Chat == nil {
		return nil, AskOutput{}, ErrChatUnavailable
	}

	reply, err := s.ports.Chat.Ask(ctx, domain.ChatRequest{
		Message:         input.Question,
		DocumentContext: input.DocumentText,
		AnalysisID:      input.AnalysisID,
		SessionID:       input.SessionID,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Response:   reply.Text,
		Confidence: reply.Confidence,
		SessionID:  reply.SessionID,
		ClauseIDs:  reply.ClauseIDs,
	}, nil
}

// handleList handles the list_analyses tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.ports.Analysis.History(ctx, limit)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("listing analyses: %w", err)
	}

	output := ListOutput{
		Analyses: make([]HistoryRow, len(rows)),
		Count:    len(rows),
	}
	for i, r := range rows {
		output.Analyses[i] = HistoryRow{
			ID:          r.ID,
			Filename:    r.Filename,
			Language:    r.Language,
			ClauseCount: r.ClauseCount,
			OverallRisk: r.OverallRisk.String(),
			Degraded:    r.Degraded,
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, output, nil
}
