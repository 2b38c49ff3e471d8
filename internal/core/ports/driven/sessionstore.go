package driven

import (
	"context"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// SessionStore holds live chat sessions.
type SessionStore interface {
	// Create starts a session for a document.
	Create(ctx context.Context, documentID string) (*domain.ChatSession, error)

	// Get returns a copy of the session. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.ChatSession, error)

	// Append adds turns to the end of a session.
	Append(ctx context.Context, id string, turns ...domain.ChatTurn) error

	// Delete ends a session.
	Delete(ctx context.Context, id string) error
}

// ChatHistoryStore records chat turns durably alongside analysis history.
type ChatHistoryStore interface {
	// AppendTurn records one turn.
	AppendTurn(ctx context.Context, sessionID, documentID string, turn domain.ChatTurn) error

	// ListTurns returns the turns of a session in order.
	ListTurns(ctx context.Context, sessionID string) ([]domain.ChatTurn, error)
}
