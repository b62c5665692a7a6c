// Package combine merges the dimension scores of one article into its
// overall score, confidence and priority. Every intermediate value is kept
// in the returned breakdown.
package combine

import (
	"math"

	"github.com/abelbrown/watchfloor/internal/intel"
)

// Blend of primary and secondary composites when secondary factors exist.
const (
	PrimaryBlend   = 0.7
	SecondaryBlend = 0.3
)

// Context multiplier bounds.
const (
	MinContext = 0.1
	MaxContext = 1.25

	CorroborationStep = 0.05
	CorroborationCap  = 1.15

	PromotionalMultiplier = 0.2
	PromotionalCap        = 20.0
)

// Confidence constants.
const (
	MinConfidence = 30.0
	MaxConfidence = 95.0

	consistencyWeight = 0.3
	credibilityWeight = 0.3
	entityWeight      = 0.2
	temporalWeight    = 0.2

	// A standard deviation of this much across the core dimensions leaves
	// no consistency credit.
	consistencySpread = 50.0

	entityConfidenceBase = 40.0
	entityConfidenceStep = 10.0

	highConfidence      = 80.0
	highConfidenceBoost = 5.0
	lowConfidence       = 60.0
	lowConfidenceCut    = 10.0
)

// RelationshipOverride is the relationship count that lifts a LOW priority.
const RelationshipOverride = 2

// Override names recorded in the breakdown.
const (
	OverrideThreatCritical = "threat_critical"
	OverrideThreatHigh     = "threat_high"
	OverrideRelationships  = "relationships"
)

// Thresholds map the overall score to the base priority.
var Thresholds = intel.Thresholds{Critical: 85, High: 70, Medium: 50}

// inputPenalty is subtracted from confidence per missing article field.
var inputPenalty = map[string]float64{
	intel.FieldTitle:     15,
	intel.FieldURL:       10,
	intel.FieldTimestamp: 5,
}

var (
	primaryOrder = []string{
		intel.DimKeyword, intel.DimEntity, intel.DimCredibility,
		intel.DimTemporal, intel.DimGeopolitical, intel.DimThreat,
	}
	secondaryOrder = []string{
		intel.FactorDepth, intel.FactorLinguistic, intel.FactorCrossReference,
		intel.FactorOperational, intel.FactorStrategic,
	}
	// consistencyDims are the core scorers whose agreement drives confidence.
	consistencyDims = []string{intel.DimKeyword, intel.DimCredibility, intel.DimTemporal, intel.DimThreat}
)

// Inputs are everything the combiner needs for one article.
type Inputs struct {
	// Dimensions holds the six primary scores keyed by intel.Dim* names.
	Dimensions map[string]float64

	// Secondary holds factor scores keyed by intel.Factor* names; nil when
	// the article has no body to derive them from.
	Secondary map[string]float64

	Threat   intel.ThreatAssessment
	Entities intel.EntityAnalysis

	// ContextMultiplier of 0 means none was supplied.
	ContextMultiplier  float64
	TemporalConfidence float64
	Problems           []intel.InputProblem
	Promotional        bool
}

// Result is the combined outcome.
type Result struct {
	OverallScore       float64
	Confidence         float64
	Priority           intel.Level
	PriorityConfidence float64
	Breakdown          intel.Breakdown
}

// Combiner is stateless apart from its weights.
type Combiner struct {
	primary   PrimaryWeights
	secondary SecondaryWeights
}

type Option func(*Combiner)

func WithPrimaryWeights(w PrimaryWeights) Option {
	return func(c *Combiner) { c.primary = w }
}

func WithSecondaryWeights(w SecondaryWeights) Option {
	return func(c *Combiner) { c.secondary = w }
}

// New returns a combiner, rejecting weight sets that do not sum to 1.
func New(opts ...Option) (*Combiner, error) {
	c := &Combiner{primary: DefaultPrimaryWeights(), secondary: DefaultSecondaryWeights()}
	for _, o := range opts {
		o(c)
	}
	if err := c.primary.Validate(); err != nil {
		return nil, err
	}
	if err := c.secondary.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func MustNew(opts ...Option) *Combiner {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Combine computes the overall score, confidence and priority.
func (c *Combiner) Combine(in Inputs) Result {
	var b intel.Breakdown

	b.Primary, b.PrimaryComposite = weigh(primaryOrder, c.primary.byName(), in.Dimensions)
	b.Blended = b.PrimaryComposite
	if in.Secondary != nil {
		b.Secondary, b.SecondaryComposite = weigh(secondaryOrder, c.secondary.byName(), in.Secondary)
		b.SecondaryApplied = true
		b.Blended = intel.Round(PrimaryBlend*b.PrimaryComposite+SecondaryBlend*b.SecondaryComposite, 2)
	}

	b.ContextMultiplier = contextMultiplier(in.ContextMultiplier, in.Promotional)
	adjusted := intel.ClampScore(b.Blended * b.ContextMultiplier)
	if in.Promotional {
		adjusted = math.Min(adjusted, PromotionalCap)
	}
	b.Adjusted = intel.Round(adjusted, 2)

	b.Confidence = confidence(in)

	r := Result{OverallScore: b.Adjusted, Confidence: b.Confidence.Final}
	b.BasePriority = Thresholds.Level(r.OverallScore)
	r.Priority = b.BasePriority
	if in.Promotional {
		r.Priority = intel.LevelLow
	} else {
		r.Priority, b.Overrides = Priority(r.OverallScore, in.Threat.Level, len(in.Entities.Relationships))
	}
	r.PriorityConfidence = PriorityConfidence(r.Confidence)
	r.Breakdown = b
	return r
}

// Priority applies the base thresholds and then, in order, the threat and
// relationship overrides. It returns the overrides that changed the result.
func Priority(score float64, threat intel.Level, relationships int) (intel.Level, []string) {
	p := Thresholds.Level(score)
	var applied []string
	if threat == intel.LevelCritical && p != intel.LevelCritical {
		p = intel.LevelCritical
		applied = append(applied, OverrideThreatCritical)
	}
	if threat == intel.LevelHigh && p == intel.LevelLow {
		p = intel.LevelMedium
		applied = append(applied, OverrideThreatHigh)
	}
	if relationships >= RelationshipOverride && p == intel.LevelLow {
		p = intel.LevelMedium
		applied = append(applied, OverrideRelationships)
	}
	return p, applied
}

// PriorityConfidence nudges assessment confidence up when it is high and
// down when it is low.
func PriorityConfidence(conf float64) float64 {
	switch {
	case conf > highConfidence:
		conf += highConfidenceBoost
	case conf < lowConfidence:
		conf -= lowConfidenceCut
	}
	return intel.Round(intel.Clamp(conf, MinConfidence, MaxConfidence), 2)
}

// CorroborationMultiplier is the context multiplier earned by n other
// sources reporting the same event.
func CorroborationMultiplier(n int) float64 {
	return math.Min(1+CorroborationStep*float64(n), CorroborationCap)
}

func contextMultiplier(m float64, promotional bool) float64 {
	if promotional {
		return PromotionalMultiplier
	}
	if m == 0 {
		return 1
	}
	return intel.Clamp(m, MinContext, MaxContext)
}

func weigh(order []string, weights, scores map[string]float64) (map[string]intel.Contribution, float64) {
	out := make(map[string]intel.Contribution, len(order))
	var sum float64
	for _, name := range order {
		s := intel.ClampScore(scores[name])
		w := weights[name]
		sum += s * w
		out[name] = intel.Contribution{Score: s, Weight: w, Contribution: intel.Round(s*w, 2)}
	}
	return out, intel.Round(intel.ClampScore(sum), 2)
}

func confidence(in Inputs) intel.ConfidenceBreakdown {
	var cb intel.ConfidenceBreakdown

	var mean float64
	for _, d := range consistencyDims {
		mean += intel.ClampScore(in.Dimensions[d])
	}
	mean /= float64(len(consistencyDims))
	var variance float64
	for _, d := range consistencyDims {
		diff := intel.ClampScore(in.Dimensions[d]) - mean
		variance += diff * diff
	}
	sd := math.Sqrt(variance / float64(len(consistencyDims)))
	cb.Consistency = intel.Round(100*(1-math.Min(sd/consistencySpread, 1)), 2)

	cb.Credibility = intel.ClampScore(in.Dimensions[intel.DimCredibility])
	cb.Entity = math.Min(100, entityConfidenceBase+entityConfidenceStep*float64(in.Entities.Count()))
	cb.Temporal = intel.ClampScore(in.TemporalConfidence)
	for _, p := range in.Problems {
		cb.Penalty += inputPenalty[p.Field]
	}

	raw := consistencyWeight*cb.Consistency + credibilityWeight*cb.Credibility +
		entityWeight*cb.Entity + temporalWeight*cb.Temporal - cb.Penalty
	cb.Final = intel.Round(intel.Clamp(raw, MinConfidence, MaxConfidence), 2)
	return cb
}
