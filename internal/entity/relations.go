package entity

import (
	"fmt"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

type pair [2]string

func key(a, b string) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

func pairSet(pairs ...pair) map[pair]bool {
	m := make(map[pair]bool, len(pairs))
	for _, p := range pairs {
		m[key(p[0], p[1])] = true
	}
	return m
}

var adversarialPairs = pairSet(
	pair{"UNITED STATES", "RUSSIA"},
	pair{"UNITED STATES", "CHINA"},
	pair{"UNITED STATES", "IRAN"},
	pair{"UNITED STATES", "NORTH KOREA"},
	pair{"UNITED STATES", "VENEZUELA"},
	pair{"UNITED STATES", "CUBA"},
	pair{"RUSSIA", "UKRAINE"},
	pair{"RUSSIA", "UNITED KINGDOM"},
	pair{"RUSSIA", "POLAND"},
	pair{"RUSSIA", "ESTONIA"},
	pair{"RUSSIA", "LATVIA"},
	pair{"RUSSIA", "LITHUANIA"},
	pair{"RUSSIA", "FINLAND"},
	pair{"CHINA", "TAIWAN"},
	pair{"CHINA", "INDIA"},
	pair{"CHINA", "JAPAN"},
	pair{"CHINA", "PHILIPPINES"},
	pair{"ISRAEL", "IRAN"},
	pair{"ISRAEL", "PALESTINE"},
	pair{"ISRAEL", "LEBANON"},
	pair{"ISRAEL", "SYRIA"},
	pair{"IRAN", "SAUDI ARABIA"},
	pair{"INDIA", "PAKISTAN"},
	pair{"NORTH KOREA", "SOUTH KOREA"},
	pair{"NORTH KOREA", "JAPAN"},
	pair{"ARMENIA", "AZERBAIJAN"},
	pair{"SERBIA", "KOSOVO"},
	pair{"SUDAN", "ETHIOPIA"},
)

var alliedPairs = pairSet(
	pair{"UNITED STATES", "UNITED KINGDOM"},
	pair{"UNITED STATES", "JAPAN"},
	pair{"UNITED STATES", "SOUTH KOREA"},
	pair{"UNITED STATES", "ISRAEL"},
	pair{"UNITED STATES", "AUSTRALIA"},
	pair{"UNITED STATES", "CANADA"},
	pair{"UNITED STATES", "PHILIPPINES"},
	pair{"UNITED STATES", "TAIWAN"},
	pair{"UNITED STATES", "POLAND"},
	pair{"UNITED STATES", "GERMANY"},
	pair{"UNITED STATES", "FRANCE"},
	pair{"UNITED KINGDOM", "FRANCE"},
	pair{"UNITED KINGDOM", "AUSTRALIA"},
	pair{"FRANCE", "GERMANY"},
	pair{"JAPAN", "AUSTRALIA"},
	pair{"JAPAN", "SOUTH KOREA"},
	pair{"UKRAINE", "POLAND"},
	pair{"RUSSIA", "CHINA"},
	pair{"RUSSIA", "IRAN"},
	pair{"RUSSIA", "NORTH KOREA"},
	pair{"RUSSIA", "BELARUS"},
	pair{"CHINA", "NORTH KOREA"},
	pair{"CHINA", "PAKISTAN"},
	pair{"IRAN", "SYRIA"},
	pair{"SAUDI ARABIA", "UNITED ARAB EMIRATES"},
)

// multilateralMin is the number of countries that makes a story multilateral.
const multilateralMin = 3

// relationships pairs detected countries against the known tables, in
// detection order, then adds one MULTILATERAL entry when enough countries
// appear.
func relationships(countries []string) []intel.Relationship {
	rels := []intel.Relationship{}
	for i := 0; i < len(countries); i++ {
		for j := i + 1; j < len(countries); j++ {
			k := key(countries[i], countries[j])
			switch {
			case adversarialPairs[k]:
				rels = append(rels, intel.Relationship{Type: intel.RelAdversarial, Members: []string{countries[i], countries[j]}})
			case alliedPairs[k]:
				rels = append(rels, intel.Relationship{Type: intel.RelAllied, Members: []string{countries[i], countries[j]}})
			}
		}
	}
	if len(countries) >= multilateralMin {
		members := append([]string(nil), countries...)
		rels = append(rels, intel.Relationship{Type: intel.RelMultilateral, Members: members})
	}
	return rels
}

// IsAdversarial reports whether two countries are a known adversarial pair.
func IsAdversarial(a, b string) bool { return adversarialPairs[key(a, b)] }

// IsAllied reports whether two countries are a known allied pair.
func IsAllied(a, b string) bool { return alliedPairs[key(a, b)] }

var escalationTerms = termsOf(
	"ESCALATION", "ESCALATE", "ESCALATING", "ESCALATED",
	"MOBILIZATION", "MOBILIZE", "MOBILIZING",
	"ULTIMATUM", "RETALIATION", "RETALIATE", "RETALIATORY",
	"TROOP BUILDUP", "MASSING TROOPS", "TROOPS MASSING",
	"STATE OF EMERGENCY", "MARTIAL LAW", "DECLARATION OF WAR", "DECLARES WAR",
	"RED LINE", "HIGH ALERT", "NUCLEAR ALERT", "COMBAT READINESS",
	"COUNTEROFFENSIVE", "INVASION", "BLOCKADE",
	"EXPELS DIPLOMATS", "EXPELLED DIPLOMATS", "SEVERS TIES", "RECALLS AMBASSADOR",
)

func termsOf(texts ...string) []textmatch.Term {
	out := make([]textmatch.Term, len(texts))
	for i, t := range texts {
		out[i] = textmatch.Term{Key: textmatch.Normalize(t), Text: t}
	}
	return out
}

var (
	wmd = set("NUCLEAR WEAPON", "BALLISTIC MISSILE", "HYPERSONIC MISSILE", "WARHEAD",
		"CHEMICAL WEAPON", "BIOLOGICAL WEAPON", "DIRTY BOMB")
	strategicSystems = set("SARMAT", "HWASONG-17", "DF-41", "MINUTEMAN III", "SENTINEL", "KINZHAL", "B-21")
	chokepoints      = set("STRAIT OF HORMUZ", "TAIWAN STRAIT", "SOUTH CHINA SEA", "BAB EL-MANDEB",
		"SUEZ CANAL", "STRAIT OF MALACCA", "BLACK SEA", "KOREAN PENINSULA", "DMZ")
	greatPowers = set("UNITED STATES", "CHINA", "RUSSIA")
	nonState    = set("HAMAS", "HEZBOLLAH", "ISLAMIC STATE", "AL-QAEDA", "TALIBAN", "HOUTHIS",
		"WAGNER GROUP", "AL-SHABAAB", "BOKO HARAM")
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func pick(names []string, in map[string]bool) []string {
	var out []string
	for _, n := range names {
		if in[n] {
			out = append(out, n)
		}
	}
	return out
}

// Critical combination names.
const (
	ComboNuclearStandoff    = "NUCLEAR_STANDOFF"
	ComboChokepointMilitary = "CHOKEPOINT_MILITARY"
	ComboGreatPower         = "GREAT_POWER_CONFRONTATION"
	ComboNonStateWMD        = "NON_STATE_WMD"
	ComboNATORussia         = "NATO_RUSSIA"
)

func criticalCombinations(ea intel.EntityAnalysis) []intel.CriticalCombination {
	var combos []intel.CriticalCombination
	adversarial := ea.RelationshipsOf(intel.RelAdversarial)
	strategic := append(pick(ea.Get(intel.ClassWeapons), wmd), pick(ea.Get(intel.ClassWeaponSystems), strategicSystems)...)

	if len(strategic) > 0 && len(adversarial) > 0 {
		combos = append(combos, intel.CriticalCombination{
			Name:     ComboNuclearStandoff,
			Entities: append(append([]string(nil), strategic...), adversarial[0].Members...),
		})
	}

	points := pick(ea.Get(intel.ClassLocations), chokepoints)
	arms := append(append([]string(nil), ea.Get(intel.ClassWeapons)...), ea.Get(intel.ClassWeaponSystems)...)
	if len(points) > 0 && len(arms) > 0 {
		combos = append(combos, intel.CriticalCombination{
			Name:     ComboChokepointMilitary,
			Entities: []string{points[0], arms[0]},
		})
	}

	for _, r := range adversarial {
		if greatPowers[r.Members[0]] && greatPowers[r.Members[1]] {
			combos = append(combos, intel.CriticalCombination{Name: ComboGreatPower, Entities: r.Members})
			break
		}
	}

	groups := pick(ea.Get(intel.ClassOrganizations), nonState)
	if wmds := pick(ea.Get(intel.ClassWeapons), wmd); len(groups) > 0 && len(wmds) > 0 {
		combos = append(combos, intel.CriticalCombination{
			Name:     ComboNonStateWMD,
			Entities: []string{groups[0], wmds[0]},
		})
	}

	if ea.Has(intel.ClassOrganizations, "NATO") && ea.Has(intel.ClassCountries, "RUSSIA") {
		combos = append(combos, intel.CriticalCombination{Name: ComboNATORussia, Entities: []string{"NATO", "RUSSIA"}})
	}
	return combos
}

// Significance weights.
const (
	sigCountry       = 8.0
	sigCountryCap    = 32.0
	sigOrg           = 6.0
	sigOrgCap        = 24.0
	sigWeapon        = 7.0
	sigWeaponCap     = 21.0
	sigSystem        = 8.0
	sigSystemCap     = 24.0
	sigTech          = 4.0
	sigTechCap       = 12.0
	sigLocation      = 6.0
	sigLocationCap   = 18.0
	sigAdversarial   = 10.0
	sigAllied        = 5.0
	sigMultilateral  = 8.0
	sigRelationCap   = 30.0
	sigCombo         = 15.0
	sigComboCap      = 30.0
	sigEscalation    = 5.0
	sigEscalationCap = 15.0
)

// SignificanceThresholds classify the entity significance score.
var SignificanceThresholds = intel.Thresholds{Critical: 75, High: 50, Medium: 25}

var densityMultiplier = map[intel.DensityBand]float64{
	intel.DensityVeryLow:  0.8,
	intel.DensityLow:      0.9,
	intel.DensityMedium:   1.0,
	intel.DensityHigh:     1.1,
	intel.DensityVeryHigh: 1.0,
}

func significance(ea intel.EntityAnalysis) intel.Significance {
	var (
		score   float64
		factors []string
	)
	add := func(n int, per, limit float64, label string) {
		if n == 0 {
			return
		}
		score += min(float64(n)*per, limit)
		factors = append(factors, fmt.Sprintf("%d %s", n, label))
	}
	add(len(ea.Get(intel.ClassCountries)), sigCountry, sigCountryCap, "countries")
	add(len(ea.Get(intel.ClassOrganizations)), sigOrg, sigOrgCap, "organizations")
	add(len(ea.Get(intel.ClassWeapons)), sigWeapon, sigWeaponCap, "weapons")
	add(len(ea.Get(intel.ClassWeaponSystems)), sigSystem, sigSystemCap, "weapon systems")
	add(len(ea.Get(intel.ClassTechnologies)), sigTech, sigTechCap, "technologies")
	add(len(ea.Get(intel.ClassLocations)), sigLocation, sigLocationCap, "locations")

	var rel float64
	for _, r := range ea.Relationships {
		switch r.Type {
		case intel.RelAdversarial:
			rel += sigAdversarial
			factors = append(factors, "adversarial: "+r.Members[0]+"/"+r.Members[1])
		case intel.RelAllied:
			rel += sigAllied
			factors = append(factors, "allied: "+r.Members[0]+"/"+r.Members[1])
		case intel.RelMultilateral:
			rel += sigMultilateral
			factors = append(factors, fmt.Sprintf("multilateral: %d countries", len(r.Members)))
		}
	}
	score += min(rel, sigRelationCap)

	for _, c := range ea.CriticalCombinations {
		factors = append(factors, "combination: "+c.Name)
	}
	score += min(float64(len(ea.CriticalCombinations))*sigCombo, sigComboCap)

	if n := len(ea.EscalationIndicators); n > 0 {
		score += min(float64(n)*sigEscalation, sigEscalationCap)
		factors = append(factors, fmt.Sprintf("%d escalation indicators", n))
	}

	score = intel.Round(intel.ClampScore(score*densityMultiplier[ea.DensityBand]), 2)
	return intel.Significance{
		Overall: SignificanceThresholds.Level(score),
		Score:   score,
		Factors: factors,
	}
}
