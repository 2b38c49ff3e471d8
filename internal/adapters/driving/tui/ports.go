// Package tui provides an interactive terminal user interface for reviewing
// analysed contracts. It is a driving adapter over the core services.
package tui

import (
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Analysis serves stored analyses and history.
	Analysis driving.AnalysisService

	// Chat answers questions about the open document. Optional.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
