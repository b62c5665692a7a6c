package analyzer

import (
	"time"

	"github.com/abelbrown/watchfloor/internal/combine"
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/logging"
)

// Fallback assessment values.
const (
	FallbackScore      = 25.0
	FallbackConfidence = 40.0
)

// Fallback is the assessment returned when analysis of a fails. Entities
// come from the article's external hint when one is attached.
func (an *Analyzer) Fallback(a intel.Article, now time.Time, cause error) intel.IntelligenceAssessment {
	out := intel.IntelligenceAssessment{
		ID:                 an.newID(),
		ArticleID:          a.ID,
		AnalyzedAt:         now,
		OverallScore:       FallbackScore,
		Confidence:         FallbackConfidence,
		Priority:           intel.LevelLow,
		PriorityConfidence: combine.PriorityConfidence(FallbackConfidence),
		Categories:         []string{},
		Tags:               []string{intel.TagUnprocessed},
		Entities:           intel.EmptyEntityAnalysis(),
		Threat: intel.ThreatAssessment{
			Level:         intel.LevelLow,
			PrimaryThreat: intel.ThreatNone,
		},
		Dimensions: map[string]intel.DimensionScore{},
	}
	if cause != nil {
		out.Diagnostics = append(out.Diagnostics, intel.Diagnostic{
			Code: intel.DiagAnalysisFailure, Message: cause.Error(),
		})
	}
	if a.Hint != nil {
		if ea, ok := an.hintEntities(a); ok {
			out.Entities = ea
			out.Tags = []string{intel.TagHinted, intel.TagUnprocessed}
			out.Diagnostics = append(out.Diagnostics, intel.Diagnostic{
				Code: intel.DiagHintUsed, Message: "entities from " + a.Hint.Provider,
			})
		}
	}
	return out
}

func (an *Analyzer) hintEntities(a intel.Article) (ea intel.EntityAnalysis, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("hint entities unusable", "article", a.ID, "err", r)
			ok = false
		}
	}()
	return an.extractor.FromHint(a.Hint), true
}
