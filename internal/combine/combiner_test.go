package combine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/scoring"
)

func uniform(v float64) map[string]float64 {
	m := make(map[string]float64)
	for _, d := range primaryOrder {
		m[d] = v
	}
	return m
}

func uniformSecondary(v float64) map[string]float64 {
	m := make(map[string]float64)
	for _, f := range secondaryOrder {
		m[f] = v
	}
	return m
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultPrimaryWeights().Validate())
	require.NoError(t, DefaultSecondaryWeights().Validate())

	w := DefaultPrimaryWeights()
	w.Keyword = 0.5
	_, err := New(WithPrimaryWeights(w))
	assert.Error(t, err)

	s := DefaultSecondaryWeights()
	s.Depth = -0.15
	s.Strategic = 0.55
	_, err = New(WithSecondaryWeights(s))
	assert.Error(t, err)

	assert.Panics(t, func() { MustNew(WithPrimaryWeights(PrimaryWeights{})) })
}

func TestPriority(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		threat    intel.Level
		rels      int
		want      intel.Level
		overrides []string
	}{
		{"critical score", 85, intel.LevelLow, 0, intel.LevelCritical, nil},
		{"high score", 70, intel.LevelLow, 0, intel.LevelHigh, nil},
		{"medium score", 50, intel.LevelLow, 0, intel.LevelMedium, nil},
		{"low score", 49.99, intel.LevelLow, 0, intel.LevelLow, nil},
		{"critical threat forces critical", 10, intel.LevelCritical, 0, intel.LevelCritical, []string{OverrideThreatCritical}},
		{"critical threat on critical score", 90, intel.LevelCritical, 0, intel.LevelCritical, nil},
		{"high threat lifts low", 40, intel.LevelHigh, 0, intel.LevelMedium, []string{OverrideThreatHigh}},
		{"high threat leaves medium", 60, intel.LevelHigh, 0, intel.LevelMedium, nil},
		{"relationships lift low", 40, intel.LevelLow, 2, intel.LevelMedium, []string{OverrideRelationships}},
		{"one relationship is not enough", 40, intel.LevelLow, 1, intel.LevelLow, nil},
		{"high threat wins before relationships", 40, intel.LevelHigh, 3, intel.LevelMedium, []string{OverrideThreatHigh}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, overrides := Priority(tt.score, tt.threat, tt.rels)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.overrides, overrides)
		})
	}
}

func TestPriorityConfidence(t *testing.T) {
	assert.Equal(t, 90.0, PriorityConfidence(85))
	assert.Equal(t, 95.0, PriorityConfidence(93))
	assert.Equal(t, 80.0, PriorityConfidence(80))
	assert.Equal(t, 70.0, PriorityConfidence(70))
	assert.Equal(t, 45.0, PriorityConfidence(55))
	assert.Equal(t, 30.0, PriorityConfidence(35))
}

func TestCombinePrimaryOnly(t *testing.T) {
	c := MustNew()
	r := c.Combine(Inputs{Dimensions: uniform(80), TemporalConfidence: 90})

	assert.InDelta(t, 80, r.OverallScore, 0.001)
	assert.Equal(t, intel.LevelHigh, r.Priority)
	assert.False(t, r.Breakdown.SecondaryApplied)
	assert.Equal(t, 1.0, r.Breakdown.ContextMultiplier)
	assert.InDelta(t, 24, r.Breakdown.Primary[intel.DimKeyword].Contribution, 0.001)
	assert.Len(t, r.Breakdown.Primary, 6)

	// consistency 100, credibility 80, entities 40, temporal 90
	assert.Equal(t, 100.0, r.Breakdown.Confidence.Consistency)
	assert.InDelta(t, 80, r.Confidence, 0.001)
	assert.InDelta(t, 80, r.PriorityConfidence, 0.001)
}

func TestCombineSecondaryBlend(t *testing.T) {
	r := MustNew().Combine(Inputs{Dimensions: uniform(80), Secondary: uniformSecondary(50)})
	assert.True(t, r.Breakdown.SecondaryApplied)
	assert.InDelta(t, 50, r.Breakdown.SecondaryComposite, 0.001)
	assert.InDelta(t, 71, r.OverallScore, 0.001)
}

func TestCombineContextMultiplier(t *testing.T) {
	c := MustNew()
	r := c.Combine(Inputs{Dimensions: uniform(80), ContextMultiplier: 2})
	assert.Equal(t, MaxContext, r.Breakdown.ContextMultiplier)
	assert.Equal(t, 100.0, r.OverallScore)

	r = c.Combine(Inputs{Dimensions: uniform(80), ContextMultiplier: 0.01})
	assert.Equal(t, MinContext, r.Breakdown.ContextMultiplier)
	assert.InDelta(t, 8, r.OverallScore, 0.001)
}

func TestCombinePromotional(t *testing.T) {
	r := MustNew().Combine(Inputs{
		Dimensions:  uniform(95),
		Threat:      intel.ThreatAssessment{Level: intel.LevelCritical},
		Entities:    intel.EntityAnalysis{Relationships: make([]intel.Relationship, 3)},
		Promotional: true,
	})
	assert.LessOrEqual(t, r.OverallScore, PromotionalCap)
	assert.Equal(t, intel.LevelLow, r.Priority)
	assert.Empty(t, r.Breakdown.Overrides)
	assert.Equal(t, PromotionalMultiplier, r.Breakdown.ContextMultiplier)
}

func TestCombineInputPenalties(t *testing.T) {
	problems := []intel.InputProblem{{Field: intel.FieldTitle}, {Field: intel.FieldURL}}
	r := MustNew().Combine(Inputs{Dimensions: uniform(80), TemporalConfidence: 90, Problems: problems})
	assert.Equal(t, 25.0, r.Breakdown.Confidence.Penalty)
	assert.InDelta(t, 55, r.Confidence, 0.001)
	assert.InDelta(t, 45, r.PriorityConfidence, 0.001)

	problems = append(problems, intel.InputProblem{Field: intel.FieldTimestamp})
	r = MustNew().Combine(Inputs{Dimensions: uniform(0), Problems: problems})
	assert.Equal(t, MinConfidence, r.Confidence)
	assert.Equal(t, MinConfidence, r.PriorityConfidence)
}

func TestCombineInconsistentDimensionsLowerConfidence(t *testing.T) {
	c := MustNew()
	even := c.Combine(Inputs{Dimensions: uniform(60), TemporalConfidence: 90})
	dims := uniform(60)
	dims[intel.DimKeyword] = 100
	dims[intel.DimThreat] = 0
	uneven := c.Combine(Inputs{Dimensions: dims, TemporalConfidence: 90})
	assert.Less(t, uneven.Breakdown.Confidence.Consistency, even.Breakdown.Confidence.Consistency)
	assert.Less(t, uneven.Confidence, even.Confidence)
}

func TestCombineDeterministic(t *testing.T) {
	in := Inputs{
		Dimensions:         map[string]float64{intel.DimKeyword: 33.3, intel.DimThreat: 71, intel.DimTemporal: 12},
		Secondary:          uniformSecondary(41),
		ContextMultiplier:  1.1,
		TemporalConfidence: 60,
	}
	c := MustNew()
	assert.Equal(t, c.Combine(in), c.Combine(in))
}

func TestCorroborationMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, CorroborationMultiplier(0))
	assert.InDelta(t, 1.1, CorroborationMultiplier(2), 1e-9)
	assert.Equal(t, CorroborationCap, CorroborationMultiplier(10))
}

func TestSecondaryFactors(t *testing.T) {
	assert.Nil(t, SecondaryFactors(SecondaryInputs{Content: preprocess.Process(intel.Article{Title: "Only a title"})}))

	c := preprocess.Process(intel.Article{Title: "Strike", Body: "Officials confirmed the strike on Monday."})
	f := SecondaryFactors(SecondaryInputs{
		Content:        c,
		Keyword:        scoring.KeywordDetails{Amplifiers: []string{"CONFIRMED"}},
		Corroborations: 2,
		Temporal:       80,
		Threat:         40,
	})
	require.Len(t, f, 5)
	assert.Equal(t, 60.0, f[intel.FactorLinguistic])
	assert.Equal(t, 60.0, f[intel.FactorCrossReference])
	assert.Equal(t, 60.0, f[intel.FactorOperational])
	for name, v := range f {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}
}
