package domain

import "time"

// StageName identifies a pipeline stage.
type StageName string

// Pipeline stages.
const (
	StageExtraction    StageName = "extraction"
	StageLanguage      StageName = "language_detection"
	StageSegmentation  StageName = "segmentation"
	StageRiskScoring   StageName = "risk_scoring"
	StageSummarization StageName = "summarization"
)

// AllStages returns every stage in execution order.
func AllStages() []StageName {
	return []StageName{
		StageExtraction,
		StageLanguage,
		StageSegmentation,
		StageRiskScoring,
		StageSummarization,
	}
}

// StageState is the outcome tag of a stage.
type StageState string

// Stage outcomes.
const (
	StageStateOK       StageState = "ok"
	StageStateDegraded StageState = "degraded"
	StageStateFatal    StageState = "fatal"
)

// StageStatus is attached to an analysis for every stage that ran.
type StageStatus struct {
	State  StageState `json:"state"`
	Reason string     `json:"reason,omitempty"`
}

// StageResult is the tagged outcome of one stage: Ok(value),
// Degraded(placeholder, reason) or Fatal(err).
type StageResult[T any] struct {
	Value  T
	State  StageState
	Reason string
	Err    error
}

// Ok wraps a successful stage value.
func Ok[T any](v T) StageResult[T] {
	return StageResult[T]{Value: v, State: StageStateOK}
}

// Degraded wraps a placeholder produced after the primary method failed.
func Degraded[T any](placeholder T, reason string) StageResult[T] {
	return StageResult[T]{Value: placeholder, State: StageStateDegraded, Reason: reason}
}

// Fatal wraps an error that aborts the pipeline.
func Fatal[T any](err error) StageResult[T] {
	return StageResult[T]{State: StageStateFatal, Err: err}
}

// Status converts the result into the status recorded on the analysis.
func (r StageResult[T]) Status() StageStatus {
	s := StageStatus{State: r.State, Reason: r.Reason}
	if r.State == StageStateFatal && r.Err != nil && s.Reason == "" {
		s.Reason = r.Err.Error()
	}
	return s
}

// DocumentAnalysis is the aggregate root returned by the pipeline.
// The embedded Document's ID doubles as the analysis ID. Once returned,
// it is an immutable snapshot shared by all readers.
type DocumentAnalysis struct {
	Document

	Clauses   []Clause                  `json:"clauses"`
	Risks     []RiskAssessment          `json:"risk_scores"`
	Summaries SummarySet                `json:"summaries"`
	Stages    map[StageName]StageStatus `json:"stages"`
}

// IsDegraded reports whether any stage ran in degraded mode.
func (a *DocumentAnalysis) IsDegraded() bool {
	for _, s := range a.Stages {
		if s.State == StageStateDegraded {
			return true
		}
	}
	return false
}

// RiskFor returns the assessment for a clause ID.
func (a *DocumentAnalysis) RiskFor(clauseID string) (RiskAssessment, bool) {
	for _, r := range a.Risks {
		if r.ClauseID == clauseID {
			return r, true
		}
	}
	return RiskAssessment{}, false
}

// OverallRisk returns the highest level across all clauses.
func (a *DocumentAnalysis) OverallRisk() RiskLevel {
	level := RiskLevelLow
	for _, r := range a.Risks {
		if r.Level.Rank() > level.Rank() {
			level = r.Level
		}
	}
	return level
}

// CountByLevel tallies assessments per level.
func (a *DocumentAnalysis) CountByLevel() map[RiskLevel]int {
	counts := map[RiskLevel]int{}
	for _, r := range a.Risks {
		counts[r.Level]++
	}
	return counts
}

// AnalysisSummary is a lightweight history row.
type AnalysisSummary struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Language    string    `json:"language"`
	ClauseCount int       `json:"clause_count"`
	OverallRisk RiskLevel `json:"overall_risk"`
	Degraded    bool      `json:"degraded"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary builds the history row for the analysis.
func (a *DocumentAnalysis) Summary() AnalysisSummary {
	return AnalysisSummary{
		ID:          a.ID,
		Filename:    a.Filename,
		Language:    a.Language,
		ClauseCount: len(a.Clauses),
		OverallRisk: a.OverallRisk(),
		Degraded:    a.IsDegraded(),
		CreatedAt:   a.CreatedAt,
	}
}
