package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// maxSuggestedQuestions caps SuggestedQuestions.
const maxSuggestedQuestions = 5

// topicQuestion is asked when a document shows the topic.
type topicQuestion struct {
	question string
	types    []domain.ClauseType
	labels   []string
}

// suggestedTopics are offered first when the analysis touches their topic.
var suggestedTopics = []topicQuestion{
	{
		question: "Can you explain the liability clauses?",
		types:    []domain.ClauseType{domain.ClauseTypeLiability},
		labels:   []string{"Liability Exposure", "Unlimited Liability", "Indemnification", "Damages"},
	},
	{
		question: "What happens if I breach this agreement?",
		labels:   []string{"Breach Consequences", "Penalty Clauses"},
	},
	{
		question: "Are there any automatic termination clauses?",
		types:    []domain.ClauseType{domain.ClauseTypeTermination},
		labels:   []string{"Automatic Termination", "Automatic Renewal", "Termination Right"},
	},
	{
		question: "What are my payment obligations?",
		types:    []domain.ClauseType{domain.ClauseTypePayment},
		labels:   []string{"Payment Obligation", "Payment Default"},
	},
	{
		question: "What confidential information is protected?",
		types:    []domain.ClauseType{domain.ClauseTypeConfidentiality},
		labels:   []string{"Confidentiality Obligation"},
	},
	{
		question: "How are disputes resolved?",
		types:    []domain.ClauseType{domain.ClauseTypeDisputeResolution, domain.ClauseTypeGoverningLaw},
		labels:   []string{"Mandatory Arbitration", "Jurisdiction"},
	},
}

// generalQuestions fill the remaining slots in order.
var generalQuestions = []string{
	"What are the main risks in this document?",
	"Can you explain the key terms in simple language?",
	"What should I be most concerned about?",
	"Are there any unusual or risky clauses?",
	"What are my rights under this agreement?",
}

// ChatService answers questions about analysed documents and keeps sessions.
type ChatService struct {
	qa        *QAEngine
	analyses  driven.AnalysisStore
	sessions  driven.SessionStore
	history   driven.ChatHistoryStore
	segmenter *Segmenter
	scorer    *RiskScorer
	now       func() time.Time
}

// NewChatService creates a new chat service.
// The analyses and history stores are optional (can be nil).
func NewChatService(
	qa *QAEngine,
	segmenter *Segmenter,
	scorer *RiskScorer,
	sessions driven.SessionStore,
	analyses driven.AnalysisStore,
) *ChatService {
	return &ChatService{
		qa:        qa,
		segmenter: segmenter,
		scorer:    scorer,
		sessions:  sessions,
		analyses:  analyses,
		now:       time.Now,
	}
}

// SetHistoryStore enables durable chat history.
func (s *ChatService) SetHistoryStore(store driven.ChatHistoryStore) {
	s.history = store
}

// Ask answers a question about a stored analysis or about raw document text.
func (s *ChatService) Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return nil, domain.NewValidationError(domain.ValidationEmptyQuestion, "message is empty")
	}

	analysis, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	session, err := s.session(ctx, req.SessionID, analysis.ID)
	if err != nil {
		return nil, err
	}

	answer := s.qa.Answer(ctx, analysis, question, session.Recent(domain.RecentTurnWindow))
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	confidence := answer.Confidence
	now := s.now().UTC()
	turns := []domain.ChatTurn{
		{Role: domain.ChatRoleUser, Text: question, Timestamp: now},
		{Role: domain.ChatRoleAssistant, Text: answer.Text, Confidence: &confidence, Timestamp: now},
	}
	if err := s.sessions.Append(ctx, session.ID, turns...); err != nil {
		logger.Warn("Failed to record chat turns for session %s: %v", session.ID, err)
	}
	if s.history != nil {
		for _, t := range turns {
			if err := s.history.AppendTurn(ctx, session.ID, analysis.ID, t); err != nil {
				logger.Warn("Failed to persist chat turn: %v", err)
				break
			}
		}
	}

	return &domain.ChatReply{Answer: answer, SessionID: session.ID}, nil
}

// SuggestedQuestions proposes up to five questions, preferring topics the
// analysis actually contains.
func (s *ChatService) SuggestedQuestions(ctx context.Context, analysisID string) ([]string, error) {
	var analysis *domain.DocumentAnalysis
	if analysisID != "" {
		if s.analyses == nil {
			return nil, domain.ErrNotFound
		}
		a, err := s.analyses.Get(ctx, analysisID)
		if err != nil {
			return nil, err
		}
		analysis = a
	}
	return suggestQuestions(analysis), nil
}

// Session returns the turns recorded so far.
func (s *ChatService) Session(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	return s.sessions.Get(ctx, sessionID)
}

// resolve finds the analysis a request is about. Raw document context is
// segmented and scored on the fly and never stored.
func (s *ChatService) resolve(ctx context.Context, req domain.ChatRequest) (*domain.DocumentAnalysis, error) {
	if req.AnalysisID != "" {
		if s.analyses == nil {
			return nil, fmt.Errorf("analysis %s: %w", req.AnalysisID, domain.ErrNotFound)
		}
		a, err := s.analyses.Get(ctx, req.AnalysisID)
		if err != nil {
			return nil, fmt.Errorf("analysis %s: %w", req.AnalysisID, err)
		}
		return a, nil
	}

	text := strings.TrimSpace(req.DocumentContext)
	if text == "" {
		return nil, fmt.Errorf("%w: either analysis_id or document_context is required", domain.ErrInvalidInput)
	}

	clauses := s.segmenter.Segment(text)
	risks := make([]domain.RiskAssessment, 0, len(clauses))
	for _, c := range clauses {
		risks = append(risks, s.scorer.Score(c))
	}
	return &domain.DocumentAnalysis{
		Document: domain.Document{ExtractedText: text},
		Clauses:  clauses,
		Risks:    risks,
	}, nil
}

// session returns the requested session or starts a new one. An unknown
// session ID, or one that belongs to another document, also starts a new
// session so turns never cross documents.
func (s *ChatService) session(ctx context.Context, id, documentID string) (*domain.ChatSession, error) {
	if id != "" {
		sess, err := s.sessions.Get(ctx, id)
		switch {
		case err == nil && sess.DocumentID == documentID:
			return sess, nil
		case err == nil:
			logger.Debug("Session %s belongs to %q, starting a new one for %q", id, sess.DocumentID, documentID)
		case errors.Is(err, domain.ErrNotFound):
			logger.Debug("Session %s not found, starting a new one", id)
		default:
			return nil, fmt.Errorf("load session: %w", err)
		}
	}
	sess, err := s.sessions.Create(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func suggestQuestions(analysis *domain.DocumentAnalysis) []string {
	out := make([]string, 0, maxSuggestedQuestions)
	seen := make(map[string]bool)
	add := func(q string) {
		if len(out) < maxSuggestedQuestions && !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}

	if analysis != nil {
		types := make(map[domain.ClauseType]bool)
		for _, c := range analysis.Clauses {
			types[c.Type] = true
		}
		labels := make(map[string]bool)
		for _, r := range analysis.Risks {
			for _, l := range r.Labels {
				labels[l] = true
			}
		}
		if analysis.OverallRisk() == domain.RiskLevelHigh {
			add("What should I be most concerned about?")
		}
		for _, topic := range suggestedTopics {
			if topicPresent(topic, types, labels) {
				add(topic.question)
			}
		}
	}
	for _, q := range generalQuestions {
		add(q)
	}
	return out
}

func topicPresent(t topicQuestion, types map[domain.ClauseType]bool, labels map[string]bool) bool {
	for _, ct := range t.types {
		if types[ct] {
			return true
		}
	}
	for _, l := range t.labels {
		if labels[l] {
			return true
		}
	}
	return false
}
