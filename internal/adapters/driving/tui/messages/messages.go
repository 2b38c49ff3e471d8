// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewHistory lists previously analysed documents.
	ViewHistory ViewType = iota
	// ViewReview shows clauses, risk and summaries of one analysis.
	ViewReview
	// ViewChat is the question answering view for the open analysis.
	ViewChat
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewHistory:
		return "history"
	case ViewReview:
		return "review"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// HistoryLoaded carries the analysis history.
type HistoryLoaded struct {
	Rows []domain.AnalysisSummary
	Err  error
}

// AnalysisSelected asks the app to open an analysis by ID.
type AnalysisSelected struct {
	ID string
}

// AnalysisLoaded carries a full analysis.
type AnalysisLoaded struct {
	Analysis *domain.DocumentAnalysis
	Err      error
}

// AnalysisDeleted signals an analysis was removed from history.
type AnalysisDeleted struct {
	ID  string
	Err error
}

// AnswerReceived carries the reply to a chat question.
type AnswerReceived struct {
	Question string
	Reply    *domain.ChatReply
	Err      error
}

// SuggestionsLoaded carries suggested questions for the open analysis.
type SuggestionsLoaded struct {
	AnalysisID string
	Questions  []string
	Err        error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
