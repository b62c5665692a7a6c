package analyzer

import (
	"fmt"
	"slices"
	"time"

	"github.com/abelbrown/watchfloor/internal/combine"
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/logging"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/scoring"
)

// Credibility below this earns the LOW_CREDIBILITY tag.
const lowCredibility = 40.0

// Analysis stages, reported in AnalysisError.
const (
	stagePreprocess  = "preprocess"
	stageEntities    = "entities"
	stageKeyword     = "keyword"
	stageTemporal    = "temporal"
	stageCredibility = "credibility"
	stageGeo         = "geopolitical"
	stageThreat      = "threat"
	stageDuplicate   = "duplicate"
	stagePromotional = "promotional"
	stageCombine     = "combine"
)

// Analyze produces the assessment of a against window, a read-only
// snapshot of recent articles. It always returns a well-formed result.
func (an *Analyzer) Analyze(a intel.Article, window []intel.Article) (out intel.IntelligenceAssessment) {
	now := an.now()
	stage := stagePreprocess
	defer func() {
		if r := recover(); r != nil {
			err := &intel.AnalysisError{ArticleID: a.ID, Stage: stage, Cause: fmt.Errorf("panic: %v", r)}
			logging.Warn("analysis failed, using fallback", "article", a.ID, "stage", stage, "err", r)
			out = an.Fallback(a, now, err)
		}
	}()
	return an.analyze(a, window, now, &stage)
}

func (an *Analyzer) analyze(a intel.Article, window []intel.Article, now time.Time, stage *string) intel.IntelligenceAssessment {
	problems := intel.CheckInput(a)

	*stage = stagePreprocess
	c := preprocess.Process(a)

	*stage = stageEntities
	ea := an.extractor.Extract(c)

	*stage = stageKeyword
	kw, kwd := an.keyword.Score(c)

	*stage = stageTemporal
	tmp, tmpd := an.temporal.Score(a, c, now)

	*stage = stageCredibility
	cred, credd := an.credibility.Score(a, c)

	*stage = stageGeo
	geo, geod := an.geopolitical.Score(c, ea)

	*stage = stageThreat
	th := an.threat.Assess(c, ea)

	*stage = stageDuplicate
	dup := an.dedup.Check(a, window)
	corroborations := an.dedup.Corroborations(a, window)

	*stage = stagePromotional
	promo := an.gate.Evaluate(a)

	*stage = stageCombine
	secondary := combine.SecondaryFactors(combine.SecondaryInputs{
		Content:        c,
		Keyword:        kwd,
		Credibility:    credd,
		Entities:       ea,
		Corroborations: corroborations,
		Temporal:       tmp,
		Threat:         th.Score,
		Geopolitical:   geo,
	})
	dims := map[string]float64{
		intel.DimKeyword:      kw,
		intel.DimEntity:       ea.Significance.Score,
		intel.DimCredibility:  cred,
		intel.DimTemporal:     tmp,
		intel.DimGeopolitical: geo,
		intel.DimThreat:       th.Score,
	}
	r := an.combiner.Combine(combine.Inputs{
		Dimensions:         dims,
		Secondary:          secondary,
		Threat:             th,
		Entities:           ea,
		ContextMultiplier:  combine.CorroborationMultiplier(corroborations),
		TemporalConfidence: tmpd.Confidence,
		Problems:           problems,
		Promotional:        promo.Promotional,
	})

	out := intel.IntelligenceAssessment{
		ID:                 an.newID(),
		ArticleID:          a.ID,
		AnalyzedAt:         now,
		OverallScore:       r.OverallScore,
		Confidence:         r.Confidence,
		Priority:           r.Priority,
		PriorityConfidence: r.PriorityConfidence,
		Categories:         categories(th),
		Entities:           ea,
		Threat:             th,
		Duplicate:          dup,
		Dimensions: map[string]intel.DimensionScore{
			intel.DimKeyword:      {Score: kw, Details: kwd},
			intel.DimEntity:       {Score: ea.Significance.Score, Details: ea.Significance},
			intel.DimCredibility:  {Score: cred, Details: credd},
			intel.DimTemporal:     {Score: tmp, Details: tmpd},
			intel.DimGeopolitical: {Score: geo, Details: geod},
			intel.DimThreat:       {Score: th.Score, Details: th.Modifiers},
		},
		Breakdown:   r.Breakdown,
		Promotional: promo.Promotional,
	}
	for _, p := range problems {
		out.Diagnostics = append(out.Diagnostics, intel.Diagnostic{
			Code: intel.DiagInvalidInput, Field: p.Field, Message: p.Err.Error(),
		})
	}
	out.Tags = tags(signals{
		content:        c,
		entities:       ea,
		temporal:       tmpd,
		credibility:    cred,
		tier:           credd.Tier,
		duplicate:      dup,
		promotional:    promo.Promotional,
		incomplete:     len(problems) > 0,
		corroborations: corroborations,
	})
	return out
}

// categories lists threat categories with evidence, strongest first.
func categories(th intel.ThreatAssessment) []string {
	out := make([]string, 0, len(th.Categories))
	for _, cs := range th.Categories {
		out = append(out, string(cs.Category))
	}
	return out
}

type signals struct {
	content        preprocess.Content
	entities       intel.EntityAnalysis
	temporal       scoring.TemporalDetails
	credibility    float64
	tier           string
	duplicate      intel.DuplicateVerdict
	promotional    bool
	incomplete     bool
	corroborations int
}

// tags returns the sorted tag set for an assessment.
func tags(s signals) []string {
	set := make(map[string]bool)
	add := func(cond bool, tag string) {
		if cond {
			set[tag] = true
		}
	}
	add(s.temporal.Bucket == scoring.AgeBuckets[0].Name || slices.Contains(s.content.TitleWords, "BREAKING"), intel.TagBreaking)
	add(s.temporal.TimeSensitive, intel.TagTimeSensitive)
	add(s.duplicate.IsDuplicate, intel.TagDuplicate)
	add(s.duplicate.IsSignificantUpdate, intel.TagSignificantUpdate)
	add(s.promotional, intel.TagPromotional)
	add(len(s.entities.RelationshipsOf(intel.RelAdversarial)) > 0, intel.TagAdversarial)
	add(len(s.entities.RelationshipsOf(intel.RelAllied)) > 0, intel.TagAllied)
	add(len(s.entities.RelationshipsOf(intel.RelMultilateral)) > 0, intel.TagMultilateral)
	add(len(s.entities.CriticalCombinations) > 0, intel.TagCriticalCombination)
	add(len(s.entities.EscalationIndicators) > 0, intel.TagEscalation)
	add(s.tier == "PREMIUM", intel.TagPremiumSource)
	add(s.credibility < lowCredibility, intel.TagLowCredibility)
	add(s.incomplete, intel.TagIncomplete)
	add(s.corroborations > 0, intel.TagCorroborated)

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
