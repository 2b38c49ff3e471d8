package mcp

import (
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Analysis runs the pipeline and serves history.
	Analysis driving.AnalysisService

	// Chat answers questions about analysed documents.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	// Chat is optional; ask_document reports it as unavailable.
	return nil
}
