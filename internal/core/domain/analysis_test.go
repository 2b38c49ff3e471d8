package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageResult(t *testing.T) {
	ok := Ok([]int{1, 2})
	assert.Equal(t, StageStateOK, ok.State)
	assert.Equal(t, StageStatus{State: StageStateOK}, ok.Status())

	degraded := Degraded([]int{}, "provider down")
	assert.Equal(t, StageStateDegraded, degraded.State)
	assert.Equal(t, "provider down", degraded.Status().Reason)
	assert.NotNil(t, degraded.Value)

	fatal := Fatal[[]int](errors.New("boom"))
	assert.Equal(t, StageStateFatal, fatal.State)
	assert.Equal(t, "boom", fatal.Status().Reason)
}

func TestDocumentAnalysis_Helpers(t *testing.T) {
	a := &DocumentAnalysis{
		Risks: []RiskAssessment{
			{ClauseID: "clause-1", Level: RiskLevelLow},
			{ClauseID: "clause-2", Level: RiskLevelHigh},
			{ClauseID: "clause-3", Level: RiskLevelMedium},
			{ClauseID: "clause-4", Level: RiskLevelHigh},
		},
		Stages: map[StageName]StageStatus{
			StageExtraction:  {State: StageStateOK},
			StageRiskScoring: {State: StageStateOK},
		},
	}

	assert.Equal(t, RiskLevelHigh, a.OverallRisk())
	assert.Equal(t, 2, a.CountByLevel()[RiskLevelHigh])
	assert.False(t, a.IsDegraded())

	r, ok := a.RiskFor("clause-3")
	assert.True(t, ok)
	assert.Equal(t, RiskLevelMedium, r.Level)
	_, ok = a.RiskFor("clause-9")
	assert.False(t, ok)

	a.Stages[StageSummarization] = StageStatus{State: StageStateDegraded}
	assert.True(t, a.IsDegraded())
}

func TestDocumentAnalysis_OverallRiskEmpty(t *testing.T) {
	assert.Equal(t, RiskLevelLow, (&DocumentAnalysis{}).OverallRisk())
}
