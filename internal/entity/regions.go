package entity

import (
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// Region is a high-tension area. An article is in a region when it names
// one of its countries or locations, or uses one of its terms.
type Region struct {
	Name      string
	Tension   float64 // 1.0 is neutral
	Countries []string
	Locations []string
	Terms     []string
}

// Regions in descending tension.
var Regions = []Region{
	{"MIDDLE EAST", 1.4,
		[]string{"IRAN", "ISRAEL", "PALESTINE", "SYRIA", "LEBANON", "IRAQ", "YEMEN"},
		[]string{"GAZA", "WEST BANK", "GOLAN HEIGHTS", "STRAIT OF HORMUZ", "PERSIAN GULF", "RED SEA", "BAB EL-MANDEB", "NATANZ", "FORDOW"},
		[]string{"MIDDLE EAST", "LEVANT", "GULF REGION"}},
	{"KOREAN PENINSULA", 1.4,
		[]string{"NORTH KOREA"},
		[]string{"KOREAN PENINSULA", "DMZ", "YONGBYON"},
		[]string{"38TH PARALLEL", "INTER-KOREAN"}},
	{"EASTERN EUROPE", 1.35,
		[]string{"UKRAINE", "BELARUS", "MOLDOVA", "ESTONIA", "LATVIA", "LITHUANIA"},
		[]string{"CRIMEA", "DONBAS", "ZAPORIZHZHIA", "BLACK SEA", "KALININGRAD", "BALTIC SEA"},
		[]string{"EASTERN EUROPE", "EASTERN FLANK", "BALTICS", "FRONT LINE"}},
	{"TAIWAN STRAIT", 1.35,
		[]string{"TAIWAN"},
		[]string{"TAIWAN STRAIT"},
		[]string{"CROSS-STRAIT"}},
	{"SOUTH CHINA SEA", 1.3,
		[]string{"PHILIPPINES", "VIETNAM"},
		[]string{"SOUTH CHINA SEA", "EAST CHINA SEA", "SPRATLY ISLANDS", "PARACEL ISLANDS", "SENKAKU ISLANDS"},
		[]string{"INDO-PACIFIC", "FIRST ISLAND CHAIN"}},
	{"SOUTH ASIA", 1.25,
		[]string{"INDIA", "PAKISTAN", "AFGHANISTAN"},
		[]string{"KASHMIR"},
		nil},
	{"CAUCASUS", 1.2,
		[]string{"ARMENIA", "AZERBAIJAN"},
		[]string{"NAGORNO-KARABAKH"},
		[]string{"CAUCASUS"}},
	{"AFRICA CONFLICT ZONES", 1.15,
		[]string{"MALI", "NIGER", "SUDAN", "SOMALIA", "ETHIOPIA", "LIBYA"},
		[]string{"SAHEL", "HORN OF AFRICA", "GULF OF ADEN"},
		nil},
	{"BALKANS", 1.1,
		[]string{"SERBIA", "KOSOVO"},
		nil,
		[]string{"BALKANS"}},
}

var regionTerms = func() []*textmatch.Index {
	out := make([]*textmatch.Index, len(Regions))
	for i, r := range Regions {
		out[i] = textmatch.Keys(r.Terms...)
	}
	return out
}()

// MatchRegions returns the regions an article touches, in table order,
// using detected entities first and lexical terms second.
func MatchRegions(ea intel.EntityAnalysis, words []string) []Region {
	var out []Region
	for i, r := range Regions {
		if touches(ea, r) || regionTerms[i].Contains(words) {
			out = append(out, r)
		}
	}
	return out
}

// MaxTension is the highest tension among regions, or 1 when none match.
func MaxTension(regions []Region) (string, float64) {
	name, t := "", 1.0
	for _, r := range regions {
		if r.Tension > t {
			name, t = r.Name, r.Tension
		}
	}
	return name, t
}

func touches(ea intel.EntityAnalysis, r Region) bool {
	for _, c := range r.Countries {
		if ea.Has(intel.ClassCountries, c) {
			return true
		}
	}
	for _, l := range r.Locations {
		if ea.Has(intel.ClassLocations, l) {
			return true
		}
	}
	return false
}
