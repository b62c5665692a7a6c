// Package threat classifies an article's threat: which category dominates,
// how severe it is once timeframe, geography, actors and hedging are taken
// into account, and the resulting level.
package threat

import (
	"math"
	"sort"

	"github.com/abelbrown/watchfloor/internal/entity"
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// Scoring constants.
const (
	KeywordPoints = 20.0
	PatternPoints = 25.0

	// A nuclear story with this many keyword occurrences and an imminent
	// timeframe never scores below the critical threshold.
	nuclearFloorOccurrences = 2

	confidenceBase     = 40.0
	confidencePerMatch = 10.0
	confidenceMatchCap = 40.0
	confidenceMargin   = 20.0
	confidenceNoThreat = 50.0
)

// Thresholds map the final threat score onto a level.
var Thresholds = intel.Thresholds{Critical: 80, High: 60, Medium: 40}

type compiledCategory struct {
	Category
	keywords *textmatch.Index
}

type compiledActor struct {
	Actor
	terms *textmatch.Index
}

// Assessor is the threat dimension. It is safe for concurrent use.
type Assessor struct {
	categories []compiledCategory
	timeframes []*textmatch.Index
	actors     []compiledActor
	certainty  *textmatch.Index
	certainKey map[string]string
}

func NewAssessor() *Assessor {
	a := &Assessor{certainKey: make(map[string]string)}
	for _, c := range Categories {
		a.categories = append(a.categories, compiledCategory{c, textmatch.Keys(c.Keywords...)})
	}
	for _, tf := range Timeframes {
		a.timeframes = append(a.timeframes, textmatch.Keys(tf.Terms...))
	}
	for _, act := range Actors {
		a.actors = append(a.actors, compiledActor{act, textmatch.Keys(act.Terms...)})
	}

	// One index for all certainty terms so "NOT CONFIRMED" is never read
	// as a confirmation.
	var terms []textmatch.Term
	add := func(level string, texts []string) {
		for _, t := range texts {
			k := textmatch.Normalize(t)
			a.certainKey[k] = level
			terms = append(terms, textmatch.Term{Key: k, Text: t})
		}
	}
	add(CertaintyDoubtful, doubtfulTerms)
	add(CertaintyHedged, hedgeTerms)
	add(CertaintyConfirmed, confirmTerms)
	a.certainty = textmatch.New(terms)
	return a
}

func (a *Assessor) Name() string { return intel.DimThreat }

// Assess classifies c using the entities already extracted from it.
func (a *Assessor) Assess(c preprocess.Content, ea intel.EntityAnalysis) intel.ThreatAssessment {
	out := intel.ThreatAssessment{
		Level:         intel.LevelLow,
		PrimaryThreat: intel.ThreatNone,
		Confidence:    confidenceNoThreat,
		Modifiers: intel.ThreatModifiers{
			Timeframe:  TimeframeNone.Name,
			Escalation: 1, Geographic: 1, Actor: 1, Confidence: 1,
			Certainty: CertaintyNeutral,
		},
	}
	if c.Empty() {
		return out
	}

	scores, nuclearHits := a.categoryScores(c)
	primary := -1
	for i, s := range scores {
		if s.Raw > 0 && (primary < 0 || s.Weighted > scores[primary].Weighted) {
			primary = i
		}
	}

	m := &out.Modifiers
	tf := a.timeframe(c.Words)
	m.Timeframe, m.Escalation = tf.Name, tf.Multiplier
	m.Region, m.Geographic = entity.MaxTension(entity.MatchRegions(ea, c.Words))
	m.ActorType, m.Actor = a.actor(c.Words, ea)
	m.Certainty = a.certaintyOf(c.Words)
	m.Confidence = certaintyMultiplier[m.Certainty]

	out.Categories = ranked(scores)
	if primary < 0 {
		return out
	}

	p := scores[primary]
	score := p.Weighted * m.Escalation * m.Geographic * m.Actor * m.Confidence
	if nuclearHits >= nuclearFloorOccurrences && tf.Name == "IMMINENT" && score < Thresholds.Critical {
		score = Thresholds.Critical
		m.Floored = true
	}
	out.Score = intel.Round(intel.ClampScore(score), 2)
	out.Level = Thresholds.Level(out.Score)
	out.PrimaryThreat = p.Category
	out.Confidence = confidence(scores, primary, m.Confidence)
	return out
}

// categoryScores scores every category and counts nuclear keyword
// occurrences for the imminent-nuclear floor.
func (a *Assessor) categoryScores(c preprocess.Content) ([]intel.CategoryScore, int) {
	out := make([]intel.CategoryScore, len(a.categories))
	nuclear := 0
	for i, cat := range a.categories {
		s := intel.CategoryScore{Category: cat.Name, Risk: cat.Risk}
		hits := cat.keywords.Find(c.Words, nil)
		if cat.Name == intel.ThreatNuclear {
			nuclear = len(hits)
		}
		seen := make(map[string]bool)
		for _, h := range hits {
			if !seen[h.Key] {
				seen[h.Key] = true
				s.Keywords = append(s.Keywords, h.Key)
			}
		}
		for _, p := range cat.Patterns {
			if m := p.FindString(c.Combined); m != "" {
				s.Patterns = append(s.Patterns, m)
			}
		}
		s.Raw = KeywordPoints*float64(len(s.Keywords)) + PatternPoints*float64(len(s.Patterns))
		s.Weighted = intel.Round(s.Raw*cat.Risk, 2)
		out[i] = s
	}
	return out, nuclear
}

func (a *Assessor) timeframe(words []string) Timeframe {
	for i, ix := range a.timeframes {
		if ix.Contains(words) {
			return Timeframes[i]
		}
	}
	return TimeframeNone
}

func (a *Assessor) actor(words []string, ea intel.EntityAnalysis) (string, float64) {
	name, mult := "", 1.0
	for _, act := range a.actors {
		if act.Multiplier <= mult {
			continue
		}
		if involves(act.Actor, ea) || act.terms.Contains(words) {
			name, mult = act.Name, act.Multiplier
		}
	}
	return name, mult
}

func involves(act Actor, ea intel.EntityAnalysis) bool {
	for _, c := range act.Countries {
		if ea.Has(intel.ClassCountries, c) {
			return true
		}
	}
	for _, o := range act.Organizations {
		if ea.Has(intel.ClassOrganizations, o) {
			return true
		}
	}
	return false
}

// certaintyOf: any confirmation wins, then the strongest hedge.
func (a *Assessor) certaintyOf(words []string) string {
	found := make(map[string]bool)
	for _, h := range a.certainty.Find(words, nil) {
		found[a.certainKey[h.Key]] = true
	}
	switch {
	case found[CertaintyConfirmed]:
		return CertaintyConfirmed
	case found[CertaintyDoubtful]:
		return CertaintyDoubtful
	case found[CertaintyHedged]:
		return CertaintyHedged
	}
	return CertaintyNeutral
}

// confidence grows with the evidence behind the primary category and its
// margin over the runner-up, scaled by the certainty multiplier.
func confidence(scores []intel.CategoryScore, primary int, certainty float64) float64 {
	p := scores[primary]
	evidence := float64(len(p.Keywords) + len(p.Patterns))
	var second float64
	for i, s := range scores {
		if i != primary && s.Weighted > second {
			second = s.Weighted
		}
	}
	margin := 0.0
	if p.Weighted > 0 {
		margin = (p.Weighted - second) / p.Weighted
	}
	c := (confidenceBase + math.Min(evidence*confidencePerMatch, confidenceMatchCap) + margin*confidenceMargin) * certainty
	return intel.Round(intel.ClampScore(c), 2)
}

// ranked returns the categories with any evidence, strongest first.
func ranked(scores []intel.CategoryScore) []intel.CategoryScore {
	var out []intel.CategoryScore
	for _, s := range scores {
		if s.Raw > 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weighted > out[j].Weighted })
	return out
}
