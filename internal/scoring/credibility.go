package scoring

import (
	"math"
	"strings"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// CredibilityTier is one row of the source credibility matrix.
type CredibilityTier struct {
	Name    string
	Base    float64
	Domains []string // matched as a suffix of the source host
	Labels  []string // matched as a substring of the lowercased feed label
}

// CredibilityTiers is checked top to bottom; the first match wins.
var CredibilityTiers = []CredibilityTier{
	{"PREMIUM", 90,
		[]string{"reuters.com", "apnews.com", "bbc.co.uk", "bbc.com", "ft.com", "economist.com",
			"nytimes.com", "washingtonpost.com", "wsj.com", "bloomberg.com", "afp.com",
			"theguardian.com", "npr.org"},
		[]string{"reuters", "associated press", "bbc", "financial times", "the economist", "bloomberg", "afp"}},
	{"RELIABLE", 75,
		[]string{"cnn.com", "aljazeera.com", "dw.com", "france24.com", "politico.com", "axios.com",
			"cbsnews.com", "nbcnews.com", "abcnews.go.com", "thehill.com", "foreignpolicy.com",
			"defensenews.com", "janes.com", "timesofisrael.com", "kyivindependent.com", "scmp.com",
			"nikkei.com", "lemonde.fr", "spiegel.de", "haaretz.com", "breakingdefense.com"},
		[]string{"al jazeera", "deutsche welle", "france 24", "politico", "foreign policy", "janes"}},
	{"STANDARD", 55,
		[]string{"foxnews.com", "nypost.com", "dailymail.co.uk", "newsweek.com", "businessinsider.com",
			"yahoo.com", "msn.com", "independent.co.uk", "telegraph.co.uk", "usatoday.com"},
		nil},
	{"QUESTIONABLE", 25,
		[]string{"rt.com", "sputniknews.com", "sputnikglobe.com", "globaltimes.cn", "presstv.ir",
			"tass.com", "infowars.com", "zerohedge.com", "naturalnews.com", "kcna.kp"},
		[]string{"sputnik", "russia today", "global times", "press tv", "infowars"}},
}

// TierUnknown applies when no tier matches.
var TierUnknown = CredibilityTier{Name: "UNKNOWN", Base: 50}

// DomainCategory adjusts the tier base by what kind of site published.
type DomainCategory struct {
	Name       string
	Multiplier float64
	Suffixes   []string
}

// DomainCategories are checked in order; COMMERCIAL is the default.
var DomainCategories = []DomainCategory{
	{"ADVERTISING", 0.1, []string{"doubleclick.net", "googleadservices.com", "googlesyndication.com",
		"taboola.com", "outbrain.com", "adnxs.com", "criteo.com"}},
	{"SOCIAL", 0.6, []string{"twitter.com", "x.com", "facebook.com", "reddit.com", "tiktok.com", "t.me",
		"telegram.org", "youtube.com", "instagram.com", "substack.com", "medium.com"}},
	{"GOVERNMENT", 1.15, []string{".gov", ".mil", ".gov.uk", ".gc.ca", ".gouv.fr", "europa.eu", ".int", "un.org"}},
	{"ACADEMIC", 1.1, []string{".edu", ".ac.uk", ".edu.au", "arxiv.org"}},
	{"THINK_TANK", 1.1, []string{"rand.org", "csis.org", "cfr.org", "chathamhouse.org", "iiss.org",
		"carnegieendowment.org", "atlanticcouncil.org", "understandingwar.org", "sipri.org"}},
}

// CategoryCommercial applies when no other category matches.
var CategoryCommercial = DomainCategory{Name: "COMMERCIAL", Multiplier: 1.0}

// Bias severity bands. Every hit subtracts its band's penalty.
var biasBands = []struct {
	penalty float64
	terms   []string
}{
	{15, []string{"PROPAGANDA", "FAKE NEWS", "DEEP STATE", "GLOBALIST", "SHEEPLE", "WAKE UP",
		"THEY DON'T WANT YOU TO KNOW", "MAINSTREAM MEDIA LIES", "FALSE FLAG"}},
	{8, []string{"SHOCKING", "OUTRAGEOUS", "BOMBSHELL", "SLAMS", "DESTROYS", "EXPOSED", "COVER-UP",
		"SCANDALOUS", "DISGRACEFUL", "MUST SEE"}},
	{3, []string{"OPINION", "EDITORIAL", "COMMENTARY", "CLEARLY", "OBVIOUSLY", "SO-CALLED",
		"EVERYONE KNOWS", "UNDENIABLY"}},
}

// Credibility constants.
const (
	biasCap = 40.0

	exclusivityStep = 3.0
	exclusivityCap  = 8.0

	qualityStep      = 2.0
	qualityCap       = 10.0
	anonymousStep    = 3.0
	anonymousCap     = 12.0
	attributionBonus = 3.0
)

const trackRecordUnrated = "UNRATED"

// trackRecords buckets the caller-supplied base credibility.
var trackRecords = []struct {
	name       string
	atLeast    int
	multiplier float64
}{
	{"EXCELLENT", 90, 1.1},
	{"GOOD", 75, 1.05},
	{"FAIR", 60, 1.0},
	{"POOR", 40, 0.9},
	{"VERY_POOR", 1, 0.8},
}

var (
	exclusivityTerms = []string{"EXCLUSIVE", "INVESTIGATION", "INVESTIGATIVE", "OBTAINED BY",
		"DOCUMENTS SEEN BY", "FIRST REPORTED", "LEAKED DOCUMENTS"}
	qualityTerms = []string{"ACCORDING TO", "SAID IN A STATEMENT", "ON THE RECORD", "MULTIPLE SOURCES",
		"SEVERAL SOURCES", "OFFICIALS SAID", "CONFIRMED BY", "SPOKESPERSON", "SPOKESMAN",
		"SPOKESWOMAN", "TOLD REPORTERS", "PRESS CONFERENCE"}
	anonymousTerms = []string{"ANONYMOUS SOURCE", "ANONYMOUS SOURCES", "UNNAMED SOURCE", "UNNAMED SOURCES",
		"CONDITION OF ANONYMITY", "RUMORS", "RUMOURS", "RUMORED", "REPORTEDLY", "ALLEGEDLY",
		"SPECULATION", "UNVERIFIED", "COULD BE", "MIGHT BE", "WITHOUT EVIDENCE"}
)

// CredibilityDetails is the breakdown of a credibility score.
type CredibilityDetails struct {
	Host           string   `json:"host"`
	Tier           string   `json:"tier"`
	TierBase       float64  `json:"tier_base"`
	DomainCategory string   `json:"domain_category"`
	DomainModifier float64  `json:"domain_modifier"`
	BiasIndicators []string `json:"bias_indicators,omitempty"`
	BiasImpact     float64  `json:"bias_impact"`
	TrackRecord    string   `json:"track_record"`
	TrackModifier  float64  `json:"track_modifier"`
	Exclusivity    []string `json:"exclusivity,omitempty"`
	TrackBonus     float64  `json:"track_bonus"`
	QualityImpact  float64  `json:"quality_impact"`
	Attribution    string   `json:"attribution,omitempty"`
}

// CredibilityScorer assesses how far an article's source can be trusted.
type CredibilityScorer struct {
	bias        []*textmatch.Index
	exclusivity *textmatch.Index
	quality     *textmatch.Index
	anonymous   *textmatch.Index
}

func NewCredibilityScorer() *CredibilityScorer {
	s := &CredibilityScorer{
		exclusivity: textmatch.Keys(exclusivityTerms...),
		quality:     textmatch.Keys(qualityTerms...),
		anonymous:   textmatch.Keys(anonymousTerms...),
	}
	for _, b := range biasBands {
		s.bias = append(s.bias, textmatch.Keys(b.terms...))
	}
	return s
}

func (s *CredibilityScorer) Name() string { return intel.DimCredibility }

// Score applies, in order: tier base x domain modifier, + bias impact,
// x track-record modifier, + track-record bonus, + content quality, then
// clamps to 0..100.
func (s *CredibilityScorer) Score(a intel.Article, c preprocess.Content) (float64, CredibilityDetails) {
	host := a.Host()
	label := strings.ToLower(a.Source.FeedLabel)
	tier := MatchTier(host, label)
	cat := MatchCategory(host)
	d := CredibilityDetails{
		Host:           host,
		Tier:           tier.Name,
		TierBase:       tier.Base,
		DomainCategory: cat.Name,
		DomainModifier: cat.Multiplier,
	}

	scan := append(append([]string(nil), c.Words...), textmatch.Tokenize(a.Source.FeedLabel)...)
	for i, ix := range s.bias {
		for _, h := range ix.Find(scan, nil) {
			d.BiasIndicators = append(d.BiasIndicators, h.Key)
			d.BiasImpact -= biasBands[i].penalty
		}
	}
	d.BiasImpact = math.Max(d.BiasImpact, -biasCap)

	d.TrackRecord, d.TrackModifier = TrackRecord(a.Source.BaseCredibility)
	d.Exclusivity = s.exclusivity.Distinct(c.Words, nil)
	d.TrackBonus = math.Min(exclusivityStep*float64(len(d.Exclusivity)), exclusivityCap)

	pos := math.Min(qualityStep*float64(len(s.quality.Distinct(c.Words, nil))), qualityCap)
	neg := math.Min(anonymousStep*float64(len(s.anonymous.Distinct(c.Words, nil))), anonymousCap)
	d.QualityImpact = pos - neg
	if d.Attribution = Attribution(a.Title + "\n" + a.Body); d.Attribution != "" {
		d.QualityImpact += attributionBonus
	}

	score := tier.Base * cat.Multiplier
	score += d.BiasImpact
	score *= d.TrackModifier
	score += d.TrackBonus
	score += d.QualityImpact
	return intel.Round(intel.ClampScore(score), 2), d
}

// MatchTier finds the credibility tier for a host or feed label.
func MatchTier(host, label string) CredibilityTier {
	for _, t := range CredibilityTiers {
		for _, dom := range t.Domains {
			if hostMatches(host, dom) {
				return t
			}
		}
	}
	if label != "" {
		for _, t := range CredibilityTiers {
			for _, l := range t.Labels {
				if strings.Contains(label, l) {
					return t
				}
			}
		}
	}
	return TierUnknown
}

// MatchCategory finds the domain category for a host.
func MatchCategory(host string) DomainCategory {
	if host == "" {
		return CategoryCommercial
	}
	for _, c := range DomainCategories {
		for _, suf := range c.Suffixes {
			if strings.HasPrefix(suf, ".") {
				if strings.HasSuffix(host, suf) {
					return c
				}
			} else if hostMatches(host, suf) {
				return c
			}
		}
	}
	return CategoryCommercial
}

// TrackRecord buckets a 0..100 base credibility. Zero means not supplied.
func TrackRecord(base int) (string, float64) {
	if base <= 0 {
		return trackRecordUnrated, 1.0
	}
	for _, tr := range trackRecords {
		if base >= tr.atLeast {
			return tr.name, tr.multiplier
		}
	}
	return trackRecordUnrated, 1.0
}

// hostMatches reports whether host is domain or one of its subdomains.
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
