package domain

import "time"

// QA engine constants.
const (
	// DefaultAnswerConfidence is used when the provider answers without a
	// confidence of its own.
	DefaultAnswerConfidence = 0.7

	// RecentTurnWindow bounds how many prior turns are sent with a question.
	RecentTurnWindow = 6

	// FallbackAnswer is returned whenever the answering provider fails.
	FallbackAnswer = "I apologize, but I'm having trouble processing your request right now. Please try again later."
)

// ChatRole is the author of a chat turn.
type ChatRole string

// Chat roles.
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// IsValid returns true if the role is recognised.
func (r ChatRole) IsValid() bool {
	return r == ChatRoleUser || r == ChatRoleAssistant
}

// ChatTurn is one message in a chat session.
type ChatTurn struct {
	Role       ChatRole  `json:"role"`
	Text       string    `json:"text"`
	Confidence *float64  `json:"confidence,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ChatSession is the ordered conversation about a single document.
// Sessions live in memory for the lifetime of the process.
type ChatSession struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	Turns      []ChatTurn `json:"turns"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Recent returns at most n of the latest turns, oldest first.
func (s *ChatSession) Recent(n int) []ChatTurn {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	if len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// Answer is the QA engine's response to one question.
type Answer struct {
	Text       string  `json:"response"`
	Confidence float64 `json:"confidence"`

	// ClauseIDs lists the clauses supplied as grounding context.
	ClauseIDs []string `json:"clause_ids,omitempty"`

	// Fallback is true when the fixed apology was returned.
	Fallback bool `json:"fallback,omitempty"`
}

// ChatRequest is a question about a document. Either AnalysisID or
// DocumentContext (raw document text) identifies the document.
type ChatRequest struct {
	Message         string `json:"message"`
	DocumentContext string `json:"document_context,omitempty"`
	AnalysisID      string `json:"analysis_id,omitempty"`
	SessionID       string `json:"session_id,omitempty"`
}

// ChatReply is the answer plus the session it was recorded in.
type ChatReply struct {
	Answer
	SessionID string `json:"session_id"`
}
