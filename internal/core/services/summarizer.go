package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// maxPromptDocument caps how much document text is sent to the provider.
const maxPromptDocument = 12000

// emptySummary is used only when the document has no text at all.
const emptySummary = "No summary could be produced for this document."

// tierPrompts maps tiers to prompt names.
var tierPrompts = map[domain.SummaryTier]string{
	domain.SummaryTierELI5:     driven.PromptSummaryELI5,
	domain.SummaryTierPlain:    driven.PromptSummaryPlain,
	domain.SummaryTierDetailed: driven.PromptSummaryDetailed,
}

// tierSentences is how many sentences the extractive fallback keeps per tier.
var tierSentences = map[domain.SummaryTier]int{
	domain.SummaryTierELI5:     2,
	domain.SummaryTierPlain:    4,
	domain.SummaryTierDetailed: 8,
}

// tierTemperature mirrors how much freedom each tier is given.
var tierTemperature = map[domain.SummaryTier]float64{
	domain.SummaryTierELI5:     0.7,
	domain.SummaryTierPlain:    0.5,
	domain.SummaryTierDetailed: 0.3,
}

// salienceTerms raise a sentence's keyword density score.
var salienceTerms = tokens("agreement contract party parties shall must obligation liability " +
	"liable indemnify damages breach terminate termination payment fee confidential " +
	"warranty rights duty responsibility penalty notice term governing dispute")

type replacement struct {
	re   *regexp.Regexp
	with string
}

func replacements(pairs ...string) []replacement {
	out := make([]replacement, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, replacement{
			re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(pairs[i]) + `\b`),
			with: pairs[i+1],
		})
	}
	return out
}

// plainReplacements strip legalese for the plain-language tier.
var plainReplacements = replacements(
	"hereinafter", "from now on",
	"whereas", "since",
	"notwithstanding", "despite",
	"pursuant to", "according to",
	"in accordance with", "following",
	"subject to", "depending on",
	"provided that", "as long as",
	"in the event that", "if",
	"shall be deemed", "will be considered",
	"without prejudice to", "without affecting",
	"shall", "must",
)

// eli5Replacements apply after the plain-language ones for the ELI5 tier.
var eli5Replacements = replacements(
	"agreement", "promise",
	"contract", "deal",
	"obligation", "thing you must do",
	"liability", "responsibility",
	"breach", "breaking the promise",
	"terminate", "end",
	"party", "person or company",
	"parties", "people or companies",
	"prohibited", "not allowed",
	"confidential", "secret",
	"indemnify", "protect from harm",
	"damages", "money for problems caused",
)

// Summarizer produces the three summary tiers, falling back to extractive
// selection whenever the generative provider is absent or fails.
type Summarizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	enabled bool
	policy  retryPolicy
	cfg     *domain.Config
}

// NewSummarizer creates a summarizer. llm and prompts may be nil.
func NewSummarizer(cfg *domain.Config, llm driven.LLMService, prompts driven.PromptStore) *Summarizer {
	return &Summarizer{
		llm:     llm,
		prompts: prompts,
		enabled: cfg.SummarizationProvider == domain.ProviderModeCloud,
		policy:  newRetryPolicy(cfg),
		cfg:     cfg,
	}
}

// Summarize produces one tier. It never returns empty text for non-empty input.
func (s *Summarizer) Summarize(ctx context.Context, text string, tier domain.SummaryTier) domain.Summary {
	max := s.cfg.MaxSummaryLength(tier)

	if s.enabled && s.llm != nil {
		generated, err := s.generate(ctx, text, tier, max)
		if err == nil && generated != "" {
			return domain.Summary{Tier: tier, Text: truncateAtSentence(generated, max)}
		}
		logger.Warn("Summary %s falling back to extractive: %v", tier, err)
	}

	return domain.Summary{
		Tier:     tier,
		Text:     truncateAtSentence(extractiveSummary(text, tier), max),
		Degraded: true,
	}
}

// SummarizeAll produces every tier concurrently.
func (s *Summarizer) SummarizeAll(ctx context.Context, text string) domain.StageResult[domain.SummarySet] {
	logger.Section("Summarization")

	var (
		mu  sync.Mutex
		set domain.SummarySet
	)
	var g errgroup.Group
	for _, tier := range domain.AllSummaryTiers() {
		g.Go(func() error {
			sum := s.Summarize(ctx, text, tier)
			mu.Lock()
			defer mu.Unlock()
			set.Set(tier, sum.Text)
			if sum.Degraded {
				set.DegradedTiers = append(set.DegradedTiers, tier)
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(set.DegradedTiers) == 0 {
		return domain.Ok(set)
	}

	sort.Slice(set.DegradedTiers, func(i, j int) bool {
		return tierIndex(set.DegradedTiers[i]) < tierIndex(set.DegradedTiers[j])
	})
	names := make([]string, len(set.DegradedTiers))
	for i, t := range set.DegradedTiers {
		names[i] = t.String()
	}
	reason := "extractive fallback used for " + strings.Join(names, ", ")
	if !s.enabled || s.llm == nil {
		reason = "generative summarization unavailable; " + reason
	}
	return domain.Degraded(set, reason)
}

func (s *Summarizer) generate(ctx context.Context, text string, tier domain.SummaryTier, max int) (string, error) {
	prompt, err := s.prompt(tier, max, truncateAtSentence(text, maxPromptDocument))
	if err != nil {
		return "", err
	}
	out, err := call(ctx, s.policy, s.llm.ModelName(), func(ctx context.Context) (string, error) {
		return s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   max / 3,
			Temperature: tierTemperature[tier],
		})
	})
	if err != nil {
		return "", err
	}
	return normalizeSpace(out), nil
}

func (s *Summarizer) prompt(tier domain.SummaryTier, max int, document string) (string, error) {
	if s.prompts == nil {
		return "", fmt.Errorf("no prompt store configured")
	}
	tmpl, err := s.prompts.Load(tierPrompts[tier])
	if err != nil {
		return "", fmt.Errorf("loading %s prompt: %w", tier, err)
	}
	return fmt.Sprintf(tmpl, max, document), nil
}

// extractiveSummary selects the most salient sentences, keeps them in
// document order and rewords them for the tier. Salience blends position
// (earlier is better) with the density of legal keywords.
func extractiveSummary(text string, tier domain.SummaryTier) string {
	spans := splitLongSpans(text, sentenceSpans(text))
	if len(spans) == 0 {
		if t := normalizeSpace(text); t != "" {
			return t
		}
		return emptySummary
	}

	type scored struct {
		idx   int
		score float64
	}
	n := len(spans)
	ranked := make([]scored, n)
	for i, sp := range spans {
		sentence := text[sp.start:sp.end]
		words := len(strings.Fields(sentence))
		hits := 0
		for tok := range tokens(sentence) {
			if salienceTerms[tok] {
				hits++
			}
		}
		density := 0.0
		if words > 0 {
			density = min(1, float64(hits)*5/float64(words))
		}
		position := 1 - float64(i)/float64(n)
		ranked[i] = scored{idx: i, score: 0.4*position + 0.6*density}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	keep := min(tierSentences[tier], n)
	chosen := make([]int, 0, keep)
	for _, r := range ranked[:keep] {
		chosen = append(chosen, r.idx)
	}
	sort.Ints(chosen)

	parts := make([]string, 0, keep)
	for _, i := range chosen {
		parts = append(parts, normalizeSpace(text[spans[i].start:spans[i].end]))
	}
	return reword(strings.Join(parts, " "), tier)
}

// longSentence is the length beyond which a sentence span is assumed to be
// unpunctuated text, as OCR often produces.
const longSentence = 400

func splitLongSpans(text string, spans []span) []span {
	out := make([]span, 0, len(spans))
	for _, sp := range spans {
		if sp.end-sp.start > longSentence {
			out = append(out, pseudoSentenceSpans(text, sp)...)
			continue
		}
		out = append(out, sp)
	}
	return out
}

func reword(text string, tier domain.SummaryTier) string {
	switch tier {
	case domain.SummaryTierPlain:
		return applyReplacements(text, plainReplacements)
	case domain.SummaryTierELI5:
		return applyReplacements(applyReplacements(text, plainReplacements), eli5Replacements)
	default:
		return text
	}
}

func applyReplacements(text string, reps []replacement) string {
	for _, r := range reps {
		text = r.re.ReplaceAllStringFunc(text, func(match string) string {
			if match != "" && match[0] >= 'A' && match[0] <= 'Z' {
				return strings.ToUpper(r.with[:1]) + r.with[1:]
			}
			return r.with
		})
	}
	return text
}

func tierIndex(t domain.SummaryTier) int {
	for i, tt := range domain.AllSummaryTiers() {
		if tt == t {
			return i
		}
	}
	return len(domain.AllSummaryTiers())
}
