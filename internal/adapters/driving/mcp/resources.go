package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for analysis resources.
	uriScheme = "analysis://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for recent history.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recently analysed documents",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	// Template for a full analysis.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "{id}",
		Name:        "analysis",
		Description: "Full analysis of a document: clauses, risk scores and summaries",
		MIMEType:    "application/json",
	}, s.handleAnalysisResource)

	// Template for the extracted text only.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "{id}/text",
		Name:        "analysis-text",
		Description: "Extracted text of an analysed document",
		MIMEType:    "text/plain",
	}, s.handleTextResource)
}

// handleHistoryResource returns the recent analysis history.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	rows, err := s.ports.Analysis.History(ctx, defaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	if rows == nil {
		rows = []domain.AnalysisSummary{}
	}
	return jsonResource(req.Params.URI, rows)
}

// handleAnalysisResource returns the full analysis JSON.
func (s *Server) handleAnalysisResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractAnalysisID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	analysis, err := s.getAnalysis(ctx, id, req.Params.URI)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, analysis)
}

// handleTextResource returns the extracted text of an analysis.
func (s *Server) handleTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractTextID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	analysis, err := s.getAnalysis(ctx, id, req.Params.URI)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     analysis.ExtractedText,
		}},
	}, nil
}

func (s *Server) getAnalysis(ctx context.Context, id, uri string) (*domain.DocumentAnalysis, error) {
	analysis, err := s.ports.Analysis.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("getting analysis: %w", err)
	}
	return analysis, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractAnalysisID extracts the id from a URI like analysis://{id}.
func extractAnalysisID(uri string) string {
	if !strings.HasPrefix(uri, uriScheme) {
		return ""
	}
	id := strings.TrimPrefix(uri, uriScheme)
	if id == "history" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// extractTextID extracts the id from a URI like analysis://{id}/text.
func extractTextID(uri string) string {
	const suffix = "/text"

	if !strings.HasPrefix(uri, uriScheme) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(uri, uriScheme), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
