package domain

// Default risk level thresholds.
const (
	DefaultHighRiskThreshold   = 0.7
	DefaultMediumRiskThreshold = 0.4
)

// RiskLevel is the coarse bucket derived from a risk score.
type RiskLevel string

// Risk levels.
const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// IsValid returns true if the risk level is recognised.
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (l RiskLevel) String() string {
	return string(l)
}

// Color returns the display colour used for the level.
func (l RiskLevel) Color() string {
	switch l {
	case RiskLevelHigh:
		return "#ff4444"
	case RiskLevelMedium:
		return "#ffaa00"
	default:
		return "#44aa44"
	}
}

// Rank orders levels for sorting: high > medium > low.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLevelHigh:
		return 2
	case RiskLevelMedium:
		return 1
	default:
		return 0
	}
}

// RiskThresholds are the inclusive lower bounds of the medium and high levels.
type RiskThresholds struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
}

// DefaultRiskThresholds returns the standard 0.7 / 0.4 thresholds.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		High:   DefaultHighRiskThreshold,
		Medium: DefaultMediumRiskThreshold,
	}
}

// IsValid returns true if 0 < medium < high <= 1.
func (t RiskThresholds) IsValid() bool {
	return t.Medium > 0 && t.Medium < t.High && t.High <= 1
}

// LevelFor maps a score onto a level.
func (t RiskThresholds) LevelFor(score float64) RiskLevel {
	switch {
	case score >= t.High:
		return RiskLevelHigh
	case score >= t.Medium:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RiskAssessment is the risk verdict for a single clause.
// It is never mutated after creation.
type RiskAssessment struct {
	ClauseID    string    `json:"clause_id"`
	Score       float64   `json:"risk_score"`
	Level       RiskLevel `json:"risk_level"`
	Color       string    `json:"color"`
	Factors     []string  `json:"risk_factors"`
	Labels      []string  `json:"risk_labels,omitempty"`
	Explanation string    `json:"explanation"`
}
