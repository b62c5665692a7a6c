package threat

import (
	"regexp"

	"github.com/abelbrown/watchfloor/internal/intel"
)

// Category is one threat class with its vocabulary and inherent
// escalation risk (0..1).
type Category struct {
	Name     intel.ThreatCategory
	Risk     float64
	Keywords []string
	Patterns []*regexp.Regexp
}

// Patterns run against the normalized combined text: upper case, no
// punctuation, intra-word hyphens kept.
func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`\b` + e + `\b`)
	}
	return out
}

// Categories in tie-break order: on equal weighted scores the earlier
// category becomes the primary threat.
var Categories = []Category{
	{intel.ThreatNuclear, 1.0,
		[]string{"NUCLEAR", "NUCLEAR WEAPON", "NUCLEAR WARHEAD", "NUCLEAR TEST", "ATOMIC", "WARHEAD",
			"URANIUM", "ENRICHMENT", "PLUTONIUM", "RADIOACTIVE", "RADIATION", "ICBM", "FISSILE",
			"THERMONUCLEAR", "DIRTY BOMB", "NUKE"},
		patterns(
			`NUCLEAR (?:TEST|STRIKE|ATTACK|LAUNCH|DETONATION|EXPLOSION)S?`,
			`ENRICH(?:ED|ING|MENT)? (?:OF )?URANIUM`,
			`(?:ICBM|INTERCONTINENTAL BALLISTIC MISSILE) (?:LAUNCH|TEST)`,
			`NUCLEAR (?:THREAT|BLACKMAIL|ESCALATION|ALERT)`,
		)},
	{intel.ThreatMilitary, 0.85,
		[]string{"MISSILE", "MISSILE TEST", "BALLISTIC MISSILE", "CRUISE MISSILE", "MILITARY", "TROOPS",
			"INVASION", "AIRSTRIKE", "ARTILLERY", "WARSHIP", "DRONE STRIKE", "OFFENSIVE", "MOBILIZATION",
			"TEST-FIRED", "COMBAT", "ARMED FORCES", "NAVY", "AIR FORCE", "BOMBARDMENT", "FIGHTER JET",
			"SHELLING", "FRONTLINE"},
		patterns(
			`(?:TEST-FIRED|TEST-FIRES|TEST-FIRE|LAUNCHED|FIRED)(?: \w+){0,3} (?:MISSILE|ROCKET)S?`,
			`(?:MISSILE|WEAPONS) TESTS?`,
			`TROOPS? (?:MASSING|BUILDUP|BUILD-UP)`,
			`MILITARY (?:EXERCISES?|DRILLS?) NEAR`,
			`(?:AIR|DRONE|MISSILE) STRIKES? ON`,
		)},
	{intel.ThreatTerrorist, 0.8,
		[]string{"TERRORIST", "TERRORISM", "TERROR ATTACK", "SUICIDE BOMBER", "HOSTAGE", "KIDNAPPING",
			"EXTREMIST", "JIHADIST", "CAR BOMB", "IED", "MASS SHOOTING", "BEHEADING", "RADICALIZED"},
		patterns(
			`(?:CLAIMED|CLAIMS|CLAIMING) RESPONSIBILITY`,
			`SUICIDE (?:BOMBING|ATTACK)S?`,
			`TERROR(?:IST)? (?:PLOT|CELL)S?`,
		)},
	{intel.ThreatCyber, 0.7,
		[]string{"CYBERATTACK", "CYBER ATTACK", "HACK", "HACKED", "HACKERS", "RANSOMWARE", "MALWARE",
			"DATA BREACH", "BREACH", "PHISHING", "DDOS", "ZERO-DAY", "BOTNET", "SPYWARE", "CYBER ESPIONAGE"},
		patterns(
			`(?:STATE-SPONSORED|STATE-BACKED) (?:HACKERS?|HACKING|CYBER)`,
			`CRITICAL INFRASTRUCTURE`,
			`(?:POWER GRID|PIPELINE) (?:HACK|ATTACK|SHUTDOWN)S?`,
		)},
	{intel.ThreatHealth, 0.6,
		[]string{"PANDEMIC", "OUTBREAK", "EPIDEMIC", "VIRUS", "PATHOGEN", "QUARANTINE", "EBOLA", "CHOLERA",
			"H5N1", "BIRD FLU", "BIOLOGICAL WEAPON", "ANTHRAX", "INFECTIONS"},
		patterns(
			`(?:NEW|NOVEL) (?:STRAIN|VARIANT|VIRUS)`,
			`HUMAN-TO-HUMAN TRANSMISSION`,
			`PUBLIC HEALTH EMERGENCY`,
		)},
	{intel.ThreatEconomic, 0.5,
		[]string{"SANCTIONS", "EMBARGO", "TARIFF", "RECESSION", "DEFAULT", "CURRENCY CRISIS", "INFLATION",
			"SUPPLY CHAIN", "TRADE WAR", "EXPORT CONTROLS", "OIL PRICES", "MARKET CRASH"},
		patterns(
			`(?:OIL|GAS) (?:PRICES?|SUPPLY) (?:SURGE|SPIKE|SOAR)S?`,
			`ASSET (?:FREEZE|SEIZURE)S?`,
			`(?:NEW|SWEEPING|TOUGH) SANCTIONS`,
		)},
	{intel.ThreatDiplomatic, 0.4,
		[]string{"AMBASSADOR", "EMBASSY", "DIPLOMAT", "EXPELLED", "SUMMIT", "TALKS", "NEGOTIATIONS",
			"TREATY", "CONDEMNED", "RECALLED"},
		patterns(
			`(?:EXPELS|EXPEL|EXPELLED)(?: \w+)? DIPLOMATS?`,
			`(?:SEVERS|SEVER|CUT|CUTS) (?:DIPLOMATIC )?TIES`,
			`RECALLS? (?:ITS )?AMBASSADOR`,
		)},
}

// Timeframe is an escalation horizon and its multiplier.
type Timeframe struct {
	Name       string
	Multiplier float64
	Terms      []string
}

// Timeframes from most to least urgent; the most urgent match wins.
var Timeframes = []Timeframe{
	{"IMMINENT", 1.5, []string{"IMMINENT", "IMMINENTLY", "IMMEDIATELY", "WITHIN HOURS", "ANY MOMENT",
		"UNDERWAY", "HAS BEGUN", "HAVE BEGUN", "ALREADY LAUNCHED", "RIGHT NOW"}},
	{"DAYS", 1.3, []string{"WITHIN DAYS", "THIS WEEK", "COMING DAYS", "NEXT FEW DAYS", "DAYS AWAY"}},
	{"MONTHS", 1.1, []string{"COMING MONTHS", "WITHIN MONTHS", "NEXT YEAR", "BY YEAR-END", "THIS YEAR"}},
	{"LONG-TERM", 0.8, []string{"LONG-TERM", "LONG TERM", "DECADES", "YEARS AWAY", "EVENTUALLY",
		"LONG-RANGE PLANNING", "STRATEGIC PLANNING"}},
}

// TimeframeNone applies when no horizon is stated.
var TimeframeNone = Timeframe{Name: "UNSPECIFIED", Multiplier: 1.0}

// Actor is a class of threat actor.
type Actor struct {
	Name          string
	Multiplier    float64
	Countries     []string
	Organizations []string
	Terms         []string
}

// Actors in ascending multiplier; the largest match wins.
var Actors = []Actor{
	{"STATE", 1.15,
		[]string{"RUSSIA", "CHINA", "IRAN", "NORTH KOREA"},
		[]string{"IRGC", "PEOPLE'S LIBERATION ARMY", "FSB", "GRU"},
		[]string{"STATE-SPONSORED", "STATE-BACKED", "NATION-STATE", "GOVERNMENT FORCES"}},
	{"PROXY", 1.25,
		nil,
		[]string{"HEZBOLLAH", "HOUTHIS", "WAGNER GROUP"},
		[]string{"PROXY", "PROXIES", "MILITIA", "MILITIAS", "PARAMILITARY", "MERCENARIES", "MERCENARY"}},
	{"TERRORIST", 1.3,
		nil,
		[]string{"ISLAMIC STATE", "AL-QAEDA", "AL-SHABAAB", "BOKO HARAM", "HAMAS", "TALIBAN"},
		[]string{"TERRORIST GROUP", "JIHADIST", "JIHADISTS", "EXTREMIST GROUP", "INSURGENTS"}},
}

// Certainty levels for the confidence multiplier.
const (
	CertaintyConfirmed = "CONFIRMED"
	CertaintyHedged    = "HEDGED"
	CertaintyDoubtful  = "DOUBTFUL"
	CertaintyNeutral   = "UNQUALIFIED"
)

var (
	confirmTerms  = []string{"CONFIRMED", "CONFIRMS", "VERIFIED", "OFFICIALLY", "ANNOUNCED"}
	hedgeTerms    = []string{"ALLEGED", "ALLEGEDLY", "REPORTEDLY", "POSSIBLE", "SUSPECTED", "MAY HAVE", "COULD"}
	doubtfulTerms = []string{"RUMORED", "RUMOURED", "UNVERIFIED", "UNCONFIRMED", "NOT CONFIRMED",
		"SPECULATION", "WITHOUT EVIDENCE"}
)

var certaintyMultiplier = map[string]float64{
	CertaintyConfirmed: 1.0,
	CertaintyNeutral:   1.0,
	CertaintyHedged:    0.85,
	CertaintyDoubtful:  0.7,
}
