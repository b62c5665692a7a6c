// Package scoring holds the independent 0..100 scoring dimensions: keyword
// relevance, temporal relevance, source credibility and geopolitical
// context. Every scorer is stateless after construction and safe for
// concurrent use.
package scoring

import (
	"math"
	"sort"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// Tier is a bucket of related keywords sharing a weight and context multiplier.
type Tier struct {
	Name              string
	Weight            float64
	ContextMultiplier float64

	// Bonus is added once when any keyword of the tier matches.
	Bonus    float64
	Keywords []string
}

// Tiers is the keyword vocabulary. A keyword belongs to exactly one tier.
var Tiers = []Tier{
	{"CRITICAL", 10, 1.5, 3, []string{
		"NUCLEAR", "NUCLEAR ATTACK", "NUCLEAR STRIKE", "INVASION", "WAR DECLARED", "DECLARATION OF WAR",
		"COUP", "ASSASSINATION", "ASSASSINATED", "TERRORIST ATTACK", "MASS CASUALTY", "CHEMICAL ATTACK",
		"BIOLOGICAL ATTACK", "MISSILE STRIKE", "AIRSTRIKE", "BOMBING", "GENOCIDE", "MARTIAL LAW",
		"STATE OF EMERGENCY", "DIRTY BOMB",
	}},
	{"HIGH", 7, 1.3, 2, []string{
		"MISSILE", "MILITARY", "ATTACK", "STRIKE", "TROOPS", "EXPLOSION", "SANCTIONS", "CYBERATTACK",
		"HACK", "BREACH", "HOSTAGE", "CONFLICT", "CLASH", "OFFENSIVE", "CEASEFIRE", "WARSHIP",
		"DRONE STRIKE", "SHELLING", "ESCALATION", "MOBILIZATION", "WEAPONS TEST", "MISSILE TEST",
	}},
	{"MEDIUM", 4, 1.1, 1, []string{
		"PROTEST", "ELECTION", "TENSIONS", "THREAT", "WARNING", "DEPLOYMENT", "EXERCISE", "DRILL",
		"DIPLOMAT", "NEGOTIATION", "TALKS", "INTELLIGENCE", "SURVEILLANCE", "SECURITY", "DEFENSE",
		"ARREST", "SPY", "ESPIONAGE",
	}},
	{"GEOPOLITICAL", 5, 1.2, 2, []string{
		"NATO", "UNITED NATIONS", "SECURITY COUNCIL", "ALLIANCE", "TREATY", "SOVEREIGNTY", "TERRITORIAL",
		"BORDER", "ANNEXATION", "EMBARGO", "BLOCKADE", "DIPLOMATIC", "GEOPOLITICAL", "PROXY", "REGIME",
		"SUMMIT",
	}},
	{"TECHNOLOGY", 4, 1.1, 1, []string{
		"CYBER", "RANSOMWARE", "MALWARE", "SATELLITE", "ARTIFICIAL INTELLIGENCE", "SEMICONDUCTOR",
		"QUANTUM", "HYPERSONIC", "SPACE", "ENCRYPTION", "ZERO-DAY",
	}},
	{"HEALTH", 3, 1.0, 1, []string{
		"PANDEMIC", "OUTBREAK", "EPIDEMIC", "VIRUS", "VACCINE", "QUARANTINE", "PATHOGEN", "EBOLA",
		"CHOLERA", "H5N1", "BIRD FLU",
	}},
}

// Keyword scoring constants.
const (
	diversityPerKeyword = 2.0
	diversityCap        = 20.0

	// Keyword density (percent of words) band that earns the full multiplier.
	optimalDensityLow  = 2.0
	optimalDensityHigh = 5.0
	optimalMultiplier  = 1.2
	sparseFloor        = 0.8
	densityFalloff     = 10.0

	amplifierStep  = 0.1
	amplifierDecay = 0.7
	amplifierCap   = 0.3

	negationStep = 0.15
	negationCap  = 0.6

	clusterGap         = 5
	clusterFactor      = 0.5
	proximityCap       = 15.0
	closeDistance      = 3.0
	closeDistanceBonus = 5.0
)

var amplifiers = []string{
	"CONFIRMED", "BREAKING", "URGENT", "OFFICIAL", "OFFICIALLY", "VERIFIED", "DEVELOPING",
	"ALERT", "JUST IN", "IMMEDIATE",
}

var negations = []string{
	"DENIES", "DENIED", "DENY", "NOT CONFIRMED", "UNCONFIRMED", "FALSE ALARM", "HOAX", "RULED OUT",
	"NO EVIDENCE", "DEBUNKED", "RETRACTED", "NO SIGN OF", "REJECTS CLAIMS",
}

// KeywordCluster is a run of keyword hits no more than clusterGap words apart.
type KeywordCluster struct {
	Keywords []string `json:"keywords"`
	Start    int      `json:"start"`
	Bonus    float64  `json:"bonus"`
}

// KeywordDetails is the breakdown of a keyword score.
type KeywordDetails struct {
	Matches            map[string]int   `json:"matches,omitempty"`
	TierCounts         map[string]int   `json:"tier_counts,omitempty"`
	Base               float64          `json:"base"`
	Diversity          float64          `json:"diversity"`
	Density            float64          `json:"density"`
	DensityMultiplier  float64          `json:"density_multiplier"`
	ContextMultiplier  float64          `json:"context_multiplier"`
	Amplifiers         []string         `json:"amplifiers,omitempty"`
	AmplificationBonus float64          `json:"amplification_bonus"`
	Negations          []string         `json:"negations,omitempty"`
	NegationPenalty    float64          `json:"negation_penalty"`
	Clusters           []KeywordCluster `json:"clusters,omitempty"`
	ProximityBonus     float64          `json:"proximity_bonus"`
	TierBonus          float64          `json:"tier_bonus"`
}

// KeywordScorer scores how much of an article's vocabulary is relevant.
type KeywordScorer struct {
	keywords *textmatch.Index
	tierOf   map[string]*Tier
	context  *textmatch.Index
	negKeys  map[string]bool
}

func NewKeywordScorer() *KeywordScorer {
	s := &KeywordScorer{tierOf: make(map[string]*Tier)}
	var terms []textmatch.Term
	for i := range Tiers {
		t := &Tiers[i]
		for _, kw := range t.Keywords {
			key := textmatch.Normalize(kw)
			if _, dup := s.tierOf[key]; dup {
				continue
			}
			s.tierOf[key] = t
			terms = append(terms, textmatch.Term{Key: key, Text: kw})
		}
	}
	s.keywords = textmatch.New(terms)

	// Amplifiers and negations share one index so "NOT CONFIRMED" consumes
	// its CONFIRMED instead of counting as both.
	s.negKeys = make(map[string]bool)
	var ctx []textmatch.Term
	for _, n := range negations {
		key := textmatch.Normalize(n)
		s.negKeys[key] = true
		ctx = append(ctx, textmatch.Term{Key: key, Text: n})
	}
	for _, a := range amplifiers {
		ctx = append(ctx, textmatch.Term{Key: textmatch.Normalize(a), Text: a})
	}
	s.context = textmatch.New(ctx)
	return s
}

func (s *KeywordScorer) Name() string { return intel.DimKeyword }

// Score computes the keyword dimension.
func (s *KeywordScorer) Score(c preprocess.Content) (float64, KeywordDetails) {
	d := KeywordDetails{DensityMultiplier: 1, ContextMultiplier: 1}
	if c.Empty() {
		return 0, d
	}

	hits := s.keywords.Find(c.Words, nil)
	d.Matches = make(map[string]int)
	d.TierCounts = make(map[string]int)
	var weighted, weightedCtx float64
	for _, h := range hits {
		t := s.tierOf[h.Key]
		d.Matches[h.Key]++
		d.TierCounts[t.Name]++
		d.Base += t.Weight
		weighted += t.Weight
		weightedCtx += t.Weight * t.ContextMultiplier
	}
	if weighted > 0 {
		d.ContextMultiplier = weightedCtx / weighted
	}
	d.Diversity = math.Min(diversityPerKeyword*float64(len(d.Matches)), diversityCap)
	d.Density = float64(len(hits)) / float64(c.WordCount) * 100
	d.DensityMultiplier = DensityMultiplier(d.Density)

	for _, h := range s.context.Find(c.Words, nil) {
		if s.negKeys[h.Key] {
			d.Negations = append(d.Negations, h.Key)
		} else {
			d.Amplifiers = append(d.Amplifiers, h.Key)
		}
	}
	d.AmplificationBonus = AmplificationBonus(len(d.Amplifiers))
	d.NegationPenalty = math.Min(negationStep*float64(len(d.Negations)), negationCap)

	d.Clusters, d.ProximityBonus = s.proximity(hits)
	for _, t := range Tiers {
		if d.TierCounts[t.Name] > 0 {
			d.TierBonus += t.Bonus
		}
	}

	adjusted := (d.Base + d.Diversity) * d.DensityMultiplier
	score := adjusted*d.ContextMultiplier*(1-d.NegationPenalty)*(1+d.AmplificationBonus) +
		d.ProximityBonus + d.TierBonus
	if len(hits) == 0 {
		score = 0
	}
	return intel.Round(intel.ClampScore(score), 2), d
}

// DensityMultiplier is the anti-stuffing curve over keyword density in
// percent. It rises linearly from sparseFloor to the optimal multiplier
// below the optimal band, holds inside it, and falls off smoothly above it.
func DensityMultiplier(density float64) float64 {
	switch {
	case density <= 0:
		return sparseFloor
	case density < optimalDensityLow:
		return sparseFloor + (optimalMultiplier-sparseFloor)*density/optimalDensityLow
	case density <= optimalDensityHigh:
		return optimalMultiplier
	}
	over := (density - optimalDensityHigh) / densityFalloff
	return optimalMultiplier / (1 + over*over)
}

// AmplificationBonus gives each further amplifier 70% of the previous one's
// contribution.
func AmplificationBonus(n int) float64 {
	var bonus, step float64 = 0, amplifierStep
	for i := 0; i < n; i++ {
		bonus += step
		step *= amplifierDecay
	}
	return math.Min(bonus, amplifierCap)
}

// proximity groups hits into clusters and rewards clusters holding at least
// two different keywords. Repeating one keyword never forms a cluster.
func (s *KeywordScorer) proximity(hits []textmatch.Hit) ([]KeywordCluster, float64) {
	if len(hits) < 2 {
		return nil, 0
	}
	var (
		clusters []KeywordCluster
		bonus    float64
		start    int
	)
	closeSum, closeN := 0, 0
	flush := func(end int) {
		group := hits[start:end]
		distinct := make(map[string]bool)
		var weight float64
		for _, h := range group {
			distinct[h.Key] = true
			weight += s.tierOf[h.Key].Weight
		}
		if len(distinct) < 2 {
			return
		}
		keys := make([]string, 0, len(distinct))
		for k := range distinct {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b := float64(len(distinct)) * (weight / float64(len(group))) * clusterFactor
		clusters = append(clusters, KeywordCluster{Keywords: keys, Start: group[0].Pos, Bonus: intel.Round(b, 2)})
		bonus += b
	}
	for i := 1; i < len(hits); i++ {
		prev, h := hits[i-1], hits[i]
		if h.Key != prev.Key {
			closeSum += h.Pos - prev.Pos
			closeN++
		}
		if h.Pos-(prev.Pos+prev.Len-1) > clusterGap {
			flush(i)
			start = i
		}
	}
	flush(len(hits))

	bonus = math.Min(bonus, proximityCap)
	if closeN > 0 && float64(closeSum)/float64(closeN) < closeDistance {
		bonus += closeDistanceBonus
	}
	return clusters, bonus
}
