package domain

// SummaryTier is one of the three simplification levels.
type SummaryTier string

// Summary tiers.
const (
	SummaryTierELI5     SummaryTier = "eli5"
	SummaryTierPlain    SummaryTier = "plain_language"
	SummaryTierDetailed SummaryTier = "detailed"
)

// AllSummaryTiers returns the tiers from simplest to most detailed.
func AllSummaryTiers() []SummaryTier {
	return []SummaryTier{SummaryTierELI5, SummaryTierPlain, SummaryTierDetailed}
}

// IsValid returns true if the tier is recognised.
func (t SummaryTier) IsValid() bool {
	switch t {
	case SummaryTierELI5, SummaryTierPlain, SummaryTierDetailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SummaryTier) String() string {
	return string(t)
}

// Description returns a human-readable tier name.
func (t SummaryTier) Description() string {
	switch t {
	case SummaryTierELI5:
		return "Explain like I'm five"
	case SummaryTierPlain:
		return "Plain language"
	case SummaryTierDetailed:
		return "Detailed"
	default:
		return unknownDescription
	}
}

// SummarySet holds one summary per tier for a document.
// It is regenerated wholesale on re-analysis.
type SummarySet struct {
	ELI5          string `json:"eli5"`
	PlainLanguage string `json:"plain_language"`
	Detailed      string `json:"detailed"`

	// DegradedTiers lists the tiers produced by the extractive fallback.
	DegradedTiers []SummaryTier `json:"degraded_tiers,omitempty"`
}

// Get returns the text for a tier.
func (s SummarySet) Get(tier SummaryTier) string {
	switch tier {
	case SummaryTierELI5:
		return s.ELI5
	case SummaryTierPlain:
		return s.PlainLanguage
	case SummaryTierDetailed:
		return s.Detailed
	default:
		return ""
	}
}

// Set stores the text for a tier.
func (s *SummarySet) Set(tier SummaryTier, text string) {
	switch tier {
	case SummaryTierELI5:
		s.ELI5 = text
	case SummaryTierPlain:
		s.PlainLanguage = text
	case SummaryTierDetailed:
		s.Detailed = text
	}
}

// IsDegraded reports whether the tier was produced by the fallback.
func (s SummarySet) IsDegraded(tier SummaryTier) bool {
	for _, t := range s.DegradedTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Summary is the result of summarising a single tier.
type Summary struct {
	Tier     SummaryTier
	Text     string
	Degraded bool
}
