package services

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/logger"
)

// structuralMarker matches headers and enumerators at the start of a line.
var structuralMarker = regexp.MustCompile(`(?m)^[ \t]*(?:` +
	`(?i:article|section|clause|paragraph|schedule)\s+[0-9IVXLivxl]+(?:\.\d+)*\b` +
	`|\d+(?:\.\d+)*[.)][ \t]` +
	`|\d+\.\d+(?:\.\d+)*[ \t]` +
	`|\(?[a-z]\)[ \t]` +
	`|\(?(?:i{1,3}|iv|vi{0,3}|ix|x)\)[ \t]` +
	`|WHEREAS\b` +
	`|NOW,?[ \t]+THEREFORE\b` +
	`|IN[ \t]+WITNESS[ \t]+WHEREOF\b` +
	`)`)

// paragraphBreak matches one or more blank lines.
var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n\s*`)

// clauseKeywords maps each clause type to its keyword stems. Order in
// clauseTypePriority decides ties.
var clauseKeywords = map[domain.ClauseType]*regexp.Regexp{
	domain.ClauseTypePayment: regexp.MustCompile(`(?i)\b(?:pay(?:s|ing|ment|ments|able)?|paid|fees?|invoic\w*|pric(?:e|es|ing)|compensation|remuneration|rent|salary|deposits?|refunds?|charges?)\b`),
	domain.ClauseTypeLiability: regexp.MustCompile(`(?i)\b(?:liab\w*|indemn\w*|hold\s+harmless|damages|losses)\b`),
	domain.ClauseTypeTermination: regexp.MustCompile(`(?i)\b(?:terminat\w*|cancel\w*|expir\w*|renew\w*)\b`),
	domain.ClauseTypeConfidentiality: regexp.MustCompile(`(?i)\b(?:confidential\w*|non-disclosure|disclos\w*|proprietary|trade\s+secrets?)\b`),
	domain.ClauseTypeIntellectualProperty: regexp.MustCompile(`(?i)\b(?:intellectual\s+property|copyrights?|patents?|trademarks?|licen[cs]\w*)\b`),
	domain.ClauseTypeDisputeResolution: regexp.MustCompile(`(?i)\b(?:arbitrat\w*|disputes?|mediat\w*|litigation)\b`),
	domain.ClauseTypeGoverningLaw: regexp.MustCompile(`(?i)\b(?:governing\s+law|governed\s+by|jurisdiction|laws\s+of)\b`),
	domain.ClauseTypeWarranty: regexp.MustCompile(`(?i)\b(?:warrant\w*|guarantee\w*|representations?)\b`),
	domain.ClauseTypeDefinition: regexp.MustCompile(`(?i)\b(?:shall\s+mean|means|defined\s+as|refers\s+to|definitions?)\b`),
}

var clauseTypePriority = domain.AllClauseTypes()

// Segmenter partitions document text into ordered, non-overlapping clauses.
// It holds no mutable state and is safe for concurrent use.
type Segmenter struct {
	maxClauseLength int
}

// NewSegmenter creates a segmenter from the runtime configuration.
func NewSegmenter(cfg *domain.Config) *Segmenter {
	return &Segmenter{maxClauseLength: cfg.MaxClauseLength}
}

// Segment splits text into clauses.
//
// Spans are cut at structural markers and paragraph breaks. A marker-bounded
// span longer than the maximum clause length is split again at sentence
// boundaries. Text with no structural markers at all is split at sentence
// boundaries throughout. Text with no boundaries of any kind becomes a single
// general clause.
func (s *Segmenter) Segment(text string) []domain.Clause {
	logger.Section("Clause Segmentation")

	whole, ok := trimSpan(text, span{0, len(text)})
	if !ok {
		return nil
	}

	type piece struct {
		span       span
		confidence float64
	}
	var pieces []piece

	bounds := structuralBounds(text)
	if len(bounds) == 0 {
		logger.Debug("No structural markers; splitting %d bytes at sentence boundaries", whole.end-whole.start)
		for _, sp := range sentencesIn(text, whole) {
			pieces = append(pieces, piece{sp, domain.SegmentationConfidenceFallback})
		}
	} else {
		logger.Debug("Found %d structural boundaries", len(bounds))
		for _, sp := range spansBetween(text, bounds) {
			if sp.end-sp.start <= s.maxClauseLength {
				pieces = append(pieces, piece{sp, domain.SegmentationConfidenceStructural})
				continue
			}
			for _, sub := range sentencesIn(text, sp) {
				pieces = append(pieces, piece{sub, domain.SegmentationConfidenceFallback})
			}
		}
	}

	if len(pieces) <= 1 && len(bounds) == 0 {
		logger.Debug("No boundaries detected; returning whole text as one general clause")
		return []domain.Clause{{
			ID:          clauseID(1),
			StartOffset: whole.start,
			EndOffset:   whole.end,
			Type:        domain.ClauseTypeGeneral,
			Confidence:  domain.SegmentationConfidenceFallback,
			Text:        text[whole.start:whole.end],
		}}
	}

	clauses := make([]domain.Clause, 0, len(pieces))
	for i, p := range pieces {
		body := text[p.span.start:p.span.end]
		clauses = append(clauses, domain.Clause{
			ID:          clauseID(i + 1),
			StartOffset: p.span.start,
			EndOffset:   p.span.end,
			Type:        ClassifyClause(body),
			Confidence:  p.confidence,
			Text:        body,
		})
	}

	logger.Info("Segmented into %d clauses", len(clauses))
	return clauses
}

// ClassifyClause returns the first clause type, in priority order, whose
// keywords occur in text, or general when none match.
func ClassifyClause(text string) domain.ClauseType {
	for _, t := range clauseTypePriority {
		if re, ok := clauseKeywords[t]; ok && re.MatchString(text) {
			return t
		}
	}
	return domain.ClauseTypeGeneral
}

func clauseID(n int) string {
	return fmt.Sprintf("clause-%d", n)
}

// structuralBounds returns the sorted, distinct offsets where a new
// structural span begins.
func structuralBounds(text string) []int {
	seen := make(map[int]bool)
	var bounds []int
	add := func(pos int) {
		if pos > 0 && pos < len(text) && !seen[pos] {
			seen[pos] = true
			bounds = append(bounds, pos)
		}
	}

	for _, m := range structuralMarker.FindAllStringIndex(text, -1) {
		// Skip the leading indentation so the clause starts at the marker.
		start := m[0]
		for start < m[1] && (text[start] == ' ' || text[start] == '\t') {
			start++
		}
		add(start)
	}
	for _, m := range paragraphBreak.FindAllStringIndex(text, -1) {
		add(m[1])
	}

	sort.Ints(bounds)
	return bounds
}

// spansBetween cuts text at bounds and trims each piece.
func spansBetween(text string, bounds []int) []span {
	spans := make([]span, 0, len(bounds)+1)
	prev := 0
	for _, b := range append(bounds, len(text)) {
		if sp, ok := trimSpan(text, span{prev, b}); ok {
			spans = append(spans, sp)
		}
		prev = b
	}
	return spans
}

// sentencesIn returns sentence spans within outer, as offsets into text.
func sentencesIn(text string, outer span) []span {
	inner := sentenceSpans(text[outer.start:outer.end])
	spans := make([]span, 0, len(inner))
	for _, sp := range inner {
		spans = append(spans, span{outer.start + sp.start, outer.start + sp.end})
	}
	return spans
}
