package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// Built-in prompts used when the prompt store is missing a template.
const (
	defaultChatSystem = "You are a legal document assistant. Answer only from the clauses provided. " +
		"If the clauses do not contain the answer, say so. Reply with a JSON object " +
		`{"answer": string, "confidence": number between 0 and 1}.`
	defaultChatContext = "Relevant clauses from the document:\n\n%s"
)

const (
	answerMaxTokens   = 600
	answerTemperature = 0.2
)

// QAEngine answers questions grounded in a document's clauses.
type QAEngine struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	decoder driven.AnswerDecoder
	policy  retryPolicy
	budget  int
}

// NewQAEngine creates a QA engine. llm, prompts and decoder may be nil.
func NewQAEngine(
	cfg *domain.Config,
	llm driven.LLMService,
	prompts driven.PromptStore,
	decoder driven.AnswerDecoder,
) *QAEngine {
	return &QAEngine{
		llm:     llm,
		prompts: prompts,
		decoder: decoder,
		policy:  newRetryPolicy(cfg),
		budget:  cfg.ContextWindowBudget,
	}
}

// Answer answers question about analysis. It never returns an error: any
// provider failure yields domain.FallbackAnswer with zero confidence.
func (q *QAEngine) Answer(
	ctx context.Context, analysis *domain.DocumentAnalysis, question string, prior []domain.ChatTurn,
) domain.Answer {
	logger.Section("Question Answering")

	selected := q.SelectContext(analysis, question)
	ids := make([]string, len(selected))
	for i, c := range selected {
		ids[i] = c.ID
	}
	logger.Debug("Grounding question in %d clauses: %v", len(selected), ids)

	if q.llm == nil {
		logger.Warn("No LLM configured; returning fallback answer")
		return fallbackAnswer(ids)
	}

	messages := q.buildMessages(analysis, selected, question, prior)
	raw, err := call(ctx, q.policy, q.llm.ModelName(), func(ctx context.Context) (string, error) {
		return q.llm.Chat(ctx, messages, driven.ChatOptions{
			MaxTokens:   answerMaxTokens,
			Temperature: answerTemperature,
			JSONMode:    true,
		})
	})
	if err != nil {
		logger.Warn("Answer provider failed: %v", err)
		return fallbackAnswer(ids)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		logger.Warn("Answer provider returned an empty reply")
		return fallbackAnswer(ids)
	}

	if q.decoder != nil {
		decoded, err := q.decoder.Decode(raw)
		if err == nil {
			decoded.ClauseIDs = ids
			return *decoded
		}
		if obj, ok := jsonObject(raw); ok {
			if text := answerField(obj); text != "" {
				logger.Debug("Answer failed validation, keeping its answer field: %v", err)
				return domain.Answer{Text: text, Confidence: domain.DefaultAnswerConfidence, ClauseIDs: ids}
			}
			logger.Warn("Answer provider returned an unusable object: %v", err)
			return fallbackAnswer(ids)
		}
		logger.Debug("Answer is not structured, using raw text: %v", err)
	}
	return domain.Answer{Text: raw, Confidence: domain.DefaultAnswerConfidence, ClauseIDs: ids}
}

// jsonObject returns the reply as a JSON object when it is one, ignoring
// markdown code fences.
func jsonObject(raw string) (map[string]any, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func answerField(obj map[string]any) string {
	text, _ := obj["answer"].(string)
	return strings.TrimSpace(text)
}

// SelectContext picks the clauses sent with a question.
//
// Clauses are ranked by how many distinct question terms they contain, then
// by risk score, then by position. Clauses with at least one shared term are
// taken until the character budget is spent; the first is always kept. With
// no shared terms at all, the single highest-risk clause is used.
func (q *QAEngine) SelectContext(analysis *domain.DocumentAnalysis, question string) []domain.Clause {
	if analysis == nil || len(analysis.Clauses) == 0 {
		return nil
	}

	terms := tokens(question)
	type ranked struct {
		clause  domain.Clause
		overlap int
		risk    float64
	}
	all := make([]ranked, 0, len(analysis.Clauses))
	for _, c := range analysis.Clauses {
		overlap := 0
		clauseTerms := tokens(c.Text)
		for t := range terms {
			if clauseTerms[t] {
				overlap++
			}
		}
		r, _ := analysis.RiskFor(c.ID)
		all = append(all, ranked{clause: c, overlap: overlap, risk: r.Score})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].overlap != all[j].overlap {
			return all[i].overlap > all[j].overlap
		}
		if all[i].risk != all[j].risk {
			return all[i].risk > all[j].risk
		}
		return all[i].clause.StartOffset < all[j].clause.StartOffset
	})

	if all[0].overlap == 0 {
		// Highest risk wins, earliest first on ties, which the sort already gives.
		return []domain.Clause{all[0].clause}
	}

	var (
		selected []domain.Clause
		used     int
	)
	for _, r := range all {
		if r.overlap == 0 {
			break
		}
		n := r.clause.Len()
		if len(selected) > 0 && used+n > q.budget {
			break
		}
		selected = append(selected, r.clause)
		used += n
	}
	return selected
}

func (q *QAEngine) buildMessages(
	analysis *domain.DocumentAnalysis, selected []domain.Clause, question string, prior []domain.ChatTurn,
) []driven.ChatMessage {
	system := q.loadPrompt(driven.PromptChatSystem, defaultChatSystem)
	contextTmpl := q.loadPrompt(driven.PromptChatContext, defaultChatContext)

	var block strings.Builder
	for i, c := range selected {
		if i > 0 {
			block.WriteString("\n\n")
		}
		r, _ := analysis.RiskFor(c.ID)
		fmt.Fprintf(&block, "[%s] %s, risk %s (%.2f)\n", c.ID, c.Type.Description(), r.Level, r.Score)
		block.WriteString(truncateAtSentence(c.Text, q.budget))
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "system", Content: fmt.Sprintf(contextTmpl, block.String())},
	}

	if len(prior) > domain.RecentTurnWindow {
		prior = prior[len(prior)-domain.RecentTurnWindow:]
	}
	for _, t := range prior {
		messages = append(messages, driven.ChatMessage{Role: string(t.Role), Content: t.Text})
	}

	return append(messages, driven.ChatMessage{Role: "user", Content: question})
}

func (q *QAEngine) loadPrompt(name, fallback string) string {
	if q.prompts == nil {
		return fallback
	}
	p, err := q.prompts.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		return fallback
	}
	return p
}

func fallbackAnswer(ids []string) domain.Answer {
	return domain.Answer{Text: domain.FallbackAnswer, Confidence: 0, ClauseIDs: ids, Fallback: true}
}
