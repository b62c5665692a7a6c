package scoring

import (
	"math"

	"github.com/abelbrown/watchfloor/internal/entity"
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// Geopolitical context constants.
const (
	geoCountry       = 10.0
	geoCountryCap    = 40.0
	geoAdversarial   = 15.0
	geoAllied        = 8.0
	geoMultilateral  = 12.0
	geoRelationCap   = 40.0
	geoRegionMax     = 20.0
	geoOrg           = 5.0
	geoOrgCap        = 15.0
	geoVocabulary    = 3.0
	geoVocabularyCap = 15.0
)

// multilateralBodies are organizations that signal international framing.
var multilateralBodies = map[string]bool{
	"NATO": true, "UNITED NATIONS": true, "EUROPEAN UNION": true, "G7": true, "G20": true,
	"ASEAN": true, "BRICS": true, "SHANGHAI COOPERATION ORGANIZATION": true, "AFRICAN UNION": true,
	"ARAB LEAGUE": true, "AUKUS": true, "QUAD": true, "OPEC": true, "IAEA": true,
	"WORLD TRADE ORGANIZATION": true, "INTERNATIONAL MONETARY FUND": true,
}

var geopoliticalVocabulary = []string{
	"SOVEREIGNTY", "SANCTIONS", "TREATY", "ALLIANCE", "ANNEXATION", "BILATERAL", "MULTILATERAL",
	"SUMMIT", "DIPLOMATIC", "EMBASSY", "AMBASSADOR", "SPHERE OF INFLUENCE", "DETERRENCE",
	"BALANCE OF POWER", "TERRITORIAL INTEGRITY", "CEASEFIRE", "PEACE TALKS", "ARMS CONTROL",
}

// GeopoliticalDetails is the breakdown of a geopolitical context score.
type GeopoliticalDetails struct {
	Countries     float64  `json:"countries"`
	Relationships float64  `json:"relationships"`
	Region        string   `json:"region,omitempty"`
	RegionScore   float64  `json:"region_score"`
	Organizations float64  `json:"organizations"`
	Vocabulary    []string `json:"vocabulary,omitempty"`
	VocabScore    float64  `json:"vocab_score"`
}

// GeopoliticalScorer scores how much of an article is international affairs.
type GeopoliticalScorer struct {
	vocabulary *textmatch.Index
}

func NewGeopoliticalScorer() *GeopoliticalScorer {
	return &GeopoliticalScorer{vocabulary: textmatch.Keys(geopoliticalVocabulary...)}
}

func (s *GeopoliticalScorer) Name() string { return intel.DimGeopolitical }

// Score computes the geopolitical context dimension.
func (s *GeopoliticalScorer) Score(c preprocess.Content, ea intel.EntityAnalysis) (float64, GeopoliticalDetails) {
	var d GeopoliticalDetails
	d.Countries = math.Min(geoCountry*float64(len(ea.Get(intel.ClassCountries))), geoCountryCap)

	var rel float64
	for _, r := range ea.Relationships {
		switch r.Type {
		case intel.RelAdversarial:
			rel += geoAdversarial
		case intel.RelAllied:
			rel += geoAllied
		case intel.RelMultilateral:
			rel += geoMultilateral
		}
	}
	d.Relationships = math.Min(rel, geoRelationCap)

	var tension float64
	d.Region, tension = entity.MaxTension(entity.MatchRegions(ea, c.Words))
	// Tension runs 1.0..1.4; map it linearly onto 0..geoRegionMax.
	d.RegionScore = intel.Round(geoRegionMax*(tension-1)/0.4, 2)

	orgs := 0
	for _, o := range ea.Get(intel.ClassOrganizations) {
		if multilateralBodies[o] {
			orgs++
		}
	}
	d.Organizations = math.Min(geoOrg*float64(orgs), geoOrgCap)

	d.Vocabulary = s.vocabulary.Distinct(c.Words, nil)
	d.VocabScore = math.Min(geoVocabulary*float64(len(d.Vocabulary)), geoVocabularyCap)

	score := d.Countries + d.Relationships + d.RegionScore + d.Organizations + d.VocabScore
	return intel.Round(intel.ClampScore(score), 2), d
}
