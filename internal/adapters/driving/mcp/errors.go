// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants analyse contracts and ask questions about them.
package mcp

import "errors"

var (
	// ErrMissingAnalysisService is returned when the analysis service is not provided.
	ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

	// ErrChatUnavailable is returned by ask_document when no chat service is wired.
	ErrChatUnavailable = errors.New("mcp: chat service is not configured")
)
