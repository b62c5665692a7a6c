package combine

import (
	"math"
	"strings"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/scoring"
)

// Secondary factor constants.
const (
	depthWordsFull  = 250.0
	depthWordsMax   = 70.0
	depthPerDetail  = 6.0
	depthDetailsMax = 30.0

	linguisticBase      = 50.0
	linguisticAmplifier = 10.0
	linguisticNegation  = 15.0
	linguisticQuality   = 2.0

	crossRefBase = 20.0
	crossRefStep = 20.0

	strategicSignificance = 0.6
	strategicGeopolitical = 0.4
)

// SecondaryInputs are the signals the secondary factors are derived from.
type SecondaryInputs struct {
	Content        preprocess.Content
	Keyword        scoring.KeywordDetails
	Credibility    scoring.CredibilityDetails
	Entities       intel.EntityAnalysis
	Corroborations int
	Temporal       float64
	Threat         float64
	Geopolitical   float64
}

// SecondaryFactors derives the five secondary factors. It returns nil when
// the article has no body, in which case the primary composite stands alone.
func SecondaryFactors(in SecondaryInputs) map[string]float64 {
	if strings.TrimSpace(in.Content.Body) == "" {
		return nil
	}
	t := in.Entities.Technical
	details := len(t.Designations) + len(t.MilitaryUnits) + len(t.Coordinates) + len(t.Monetary) + len(t.Casualties)
	depth := math.Min(depthWordsMax, float64(len(in.Content.BodyWords))*depthWordsMax/depthWordsFull) +
		math.Min(depthDetailsMax, depthPerDetail*float64(details))

	linguistic := linguisticBase +
		linguisticAmplifier*float64(len(in.Keyword.Amplifiers)) -
		linguisticNegation*float64(len(in.Keyword.Negations)) +
		linguisticQuality*in.Credibility.QualityImpact

	crossRef := crossRefBase + crossRefStep*float64(in.Corroborations)

	return map[string]float64{
		intel.FactorDepth:          round(depth),
		intel.FactorLinguistic:     round(linguistic),
		intel.FactorCrossReference: round(crossRef),
		intel.FactorOperational:    round(0.5*in.Temporal + 0.5*in.Threat),
		intel.FactorStrategic:      round(strategicSignificance*in.Entities.Significance.Score + strategicGeopolitical*in.Geopolitical),
	}
}

func round(v float64) float64 { return intel.Round(intel.ClampScore(v), 2) }
