package entity

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/abelbrown/watchfloor/internal/intel"
)

// technicalCap bounds each kind of extracted designator.
const technicalCap = 15

var (
	// F-35, S-400, MQ-9B, SU-57, DF-41
	designationRegex = regexp.MustCompile(`\b([A-Z]{1,4}-\d{1,4}[A-Z]?)\b`)

	numberedUnitRegex = regexp.MustCompile(`\b(\d{1,3}(?:ST|ND|RD|TH)\s+(?:ARMORED|AIRBORNE|INFANTRY|MARINE|MOUNTAIN|MECHANIZED|MOTORIZED|TANK|ARTILLERY|GUARDS|ASSAULT|SPECIAL FORCES)?\s*(?:DIVISION|BRIGADE|REGIMENT|BATTALION|FLEET|ARMY|CORPS|SQUADRON|WING))\b`)
	unitNounRegex     = regexp.MustCompile(`\b(CARRIER STRIKE GROUP|SPECIAL FORCES|BATTALION|BRIGADE|REGIMENT|DIVISION|SQUADRON|PLATOON|FLOTILLA|BATTLEGROUP)S?\b`)

	// 26.5N 56.2E, 26°34'N 56°15'E, 48.3794, 31.1656
	dmsCoordRegex     = regexp.MustCompile(`\b\d{1,2}(?:\.\d+)?°?(?:\d{1,2}')?\s*[NS][,\s]+\d{1,3}(?:\.\d+)?°?(?:\d{1,2}')?\s*[EW]\b`)
	decimalCoordRegex = regexp.MustCompile(`-?\b\d{1,2}\.\d{3,},\s*-?\d{1,3}\.\d{3,}\b`)

	monetaryRegex = regexp.MustCompile(`(?:\$|€|£|USD\s?|EUR\s?)\d[\d,]*(?:\.\d+)?(?:\s*(?:TRILLION|BILLION|MILLION|BN|M)\b)?|\b\d[\d,]*(?:\.\d+)?\s*(?:TRILLION|BILLION|MILLION)\s+(?:DOLLARS|EUROS|POUNDS|RUBLES|YUAN)\b`)

	casualtyRegex = regexp.MustCompile(`\b(\d[\d,]*)\s+(?:(?:PEOPLE|CIVILIANS|SOLDIERS|TROOPS|PERSONNEL|CHILDREN)\s+)?(?:(?:WERE|HAVE BEEN|HAD BEEN)\s+)?(KILLED|DEAD|DIED|WOUNDED|INJURED|MISSING|DEATHS|CASUALTIES)\b`)
)

// ExtractTechnical pulls designators, units, coordinates, money and
// casualty figures out of upper-cased raw text. The results are auxiliary
// and never merged into the canonical entity classes.
func ExtractTechnical(raw string) intel.TechnicalData {
	var td intel.TechnicalData
	if raw == "" {
		return td
	}
	td.Designations = unique(designationRegex.FindAllString(raw, -1))
	numbered := numberedUnitRegex.FindAllString(raw, -1)
	td.MilitaryUnits = unique(append(numbered, unitNouns(raw, numbered)...))
	td.Coordinates = unique(append(dmsCoordRegex.FindAllString(raw, -1), decimalCoordRegex.FindAllString(raw, -1)...))
	td.Monetary = unique(monetaryRegex.FindAllString(raw, -1))
	td.Casualties = casualties(raw)
	return td
}

// unitNouns returns bare unit nouns not already part of a numbered unit.
func unitNouns(raw string, numbered []string) []string {
	var out []string
next:
	for _, m := range unitNounRegex.FindAllStringSubmatch(raw, -1) {
		for _, n := range numbered {
			if strings.Contains(n, m[1]) {
				continue next
			}
		}
		out = append(out, m[1])
	}
	return out
}

func casualties(raw string) []intel.CasualtyFigure {
	var out []intel.CasualtyFigure
	for _, m := range casualtyRegex.FindAllStringSubmatch(raw, -1) {
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		out = append(out, intel.CasualtyFigure{Count: n, Kind: casualtyKind(m[2]), Text: strings.TrimSpace(m[0])})
		if len(out) == technicalCap {
			break
		}
	}
	return out
}

func casualtyKind(word string) string {
	switch word {
	case "KILLED", "DEAD", "DIED", "DEATHS":
		return "killed"
	case "WOUNDED", "INJURED":
		return "wounded"
	case "MISSING":
		return "missing"
	}
	return "casualties"
}

func unique(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range in {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == technicalCap {
			break
		}
	}
	return out
}
