package driving

import (
	"context"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// ChatService answers questions about analysed documents.
type ChatService interface {
	// Ask answers a question. Provider failures never surface as errors;
	// only a missing document or an empty question does.
	Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)

	// SuggestedQuestions proposes up to five questions for an analysis.
	SuggestedQuestions(ctx context.Context, analysisID string) ([]string, error)

	// Session returns the turns recorded so far.
	Session(ctx context.Context, sessionID string) (*domain.ChatSession, error)
}
