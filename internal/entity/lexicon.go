package entity

import (
	"fmt"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// Entry is one canonical entity and the other names it goes by.
type Entry struct {
	Canonical string
	Aliases   []string
}

// Lexicon is the fixed vocabulary of one entity class.
type Lexicon struct {
	Class   intel.EntityClass
	Entries []Entry
}

// caseStrict aliases collide with ordinary words ("us", "is", "who") and
// only count when the article writes them in capitals.
var caseStrict = map[string]bool{
	"US": true, "UN": true, "EU": true, "UK": true, "IS": true, "AI": true, "WHO": true,
}

// Countries and country-like actors. Capitals and seats of government
// resolve to their country.
var countries = Lexicon{Class: intel.ClassCountries, Entries: []Entry{
	// Major powers
	{"UNITED STATES", []string{"USA", "US", "U.S.A.", "AMERICA", "AMERICAN", "AMERICANS", "WHITE HOUSE"}},
	{"CHINA", []string{"CHINESE", "PRC", "PEOPLE'S REPUBLIC OF CHINA", "BEIJING"}},
	{"RUSSIA", []string{"RUSSIAN", "RUSSIANS", "RUSSIAN FEDERATION", "MOSCOW", "KREMLIN"}},
	{"UNITED KINGDOM", []string{"UK", "BRITAIN", "GREAT BRITAIN", "BRITISH", "ENGLAND", "DOWNING STREET"}},
	{"GERMANY", []string{"GERMAN", "BERLIN"}},
	{"FRANCE", []string{"FRENCH", "PARIS", "ELYSEE"}},
	{"JAPAN", []string{"JAPANESE", "TOKYO"}},
	{"INDIA", []string{"INDIAN", "NEW DELHI"}},

	// Conflict zones / high news frequency
	{"UKRAINE", []string{"UKRAINIAN", "UKRAINIANS", "KYIV", "KIEV"}},
	{"ISRAEL", []string{"ISRAELI", "ISRAELIS", "TEL AVIV", "JERUSALEM"}},
	{"PALESTINE", []string{"PALESTINIAN", "PALESTINIANS", "RAMALLAH"}},
	{"IRAN", []string{"IRANIAN", "IRANIANS", "TEHRAN", "ISLAMIC REPUBLIC"}},
	{"NORTH KOREA", []string{"DPRK", "PYONGYANG", "NORTH KOREAN"}},
	{"SOUTH KOREA", []string{"KOREA", "SEOUL", "SOUTH KOREAN", "REPUBLIC OF KOREA"}},
	{"TAIWAN", []string{"TAIWANESE", "TAIPEI"}},
	{"SYRIA", []string{"SYRIAN", "DAMASCUS"}},
	{"AFGHANISTAN", []string{"AFGHAN", "KABUL"}},
	{"IRAQ", []string{"IRAQI", "BAGHDAD"}},
	{"PAKISTAN", []string{"PAKISTANI", "ISLAMABAD"}},
	{"LEBANON", []string{"LEBANESE", "BEIRUT"}},
	{"YEMEN", []string{"YEMENI", "SANAA"}},
	{"LIBYA", []string{"LIBYAN", "TRIPOLI"}},
	{"SUDAN", []string{"SUDANESE", "KHARTOUM"}},
	{"SOMALIA", []string{"SOMALI", "MOGADISHU"}},
	{"ETHIOPIA", []string{"ETHIOPIAN", "ADDIS ABABA"}},
	{"MYANMAR", []string{"BURMA", "BURMESE", "NAYPYIDAW"}},
	{"BELARUS", []string{"BELARUSIAN", "MINSK"}},
	{"ARMENIA", []string{"ARMENIAN", "YEREVAN"}},
	{"AZERBAIJAN", []string{"AZERBAIJANI", "BAKU"}},
	{"SERBIA", []string{"SERBIAN", "BELGRADE"}},
	{"KOSOVO", []string{"PRISTINA"}},
	{"MALI", []string{"MALIAN", "BAMAKO"}},
	{"NIGER", []string{"NIAMEY"}},
	{"VENEZUELA", []string{"VENEZUELAN", "CARACAS"}},
	{"CUBA", []string{"CUBAN", "HAVANA"}},

	// Major economies
	{"CANADA", []string{"CANADIAN", "OTTAWA"}},
	{"AUSTRALIA", []string{"AUSTRALIAN", "CANBERRA"}},
	{"BRAZIL", []string{"BRAZILIAN", "BRASILIA"}},
	{"MEXICO", []string{"MEXICAN", "MEXICO CITY"}},
	{"ITALY", []string{"ITALIAN", "ROME"}},
	{"SPAIN", []string{"SPANISH", "MADRID"}},
	{"NETHERLANDS", []string{"DUTCH", "THE HAGUE", "AMSTERDAM"}},
	{"POLAND", []string{"POLISH", "WARSAW"}},
	{"TURKEY", []string{"TURKISH", "ANKARA", "TURKIYE"}},
	{"SAUDI ARABIA", []string{"SAUDI", "SAUDIS", "RIYADH"}},
	{"UNITED ARAB EMIRATES", []string{"UAE", "EMIRATES", "EMIRATI", "ABU DHABI", "DUBAI"}},
	{"QATAR", []string{"QATARI", "DOHA"}},
	{"EGYPT", []string{"EGYPTIAN", "CAIRO"}},
	{"JORDAN", []string{"JORDANIAN", "AMMAN"}},
	{"SOUTH AFRICA", []string{"PRETORIA"}},
	{"NIGERIA", []string{"NIGERIAN", "ABUJA"}},
	{"INDONESIA", []string{"INDONESIAN", "JAKARTA"}},
	{"PHILIPPINES", []string{"FILIPINO", "PHILIPPINE", "MANILA"}},
	{"VIETNAM", []string{"VIETNAMESE", "HANOI"}},
	{"FINLAND", []string{"FINNISH", "HELSINKI"}},
	{"SWEDEN", []string{"SWEDISH", "STOCKHOLM"}},
	{"NORWAY", []string{"NORWEGIAN", "OSLO"}},
	{"ESTONIA", []string{"ESTONIAN", "TALLINN"}},
	{"LATVIA", []string{"LATVIAN", "RIGA"}},
	{"LITHUANIA", []string{"LITHUANIAN", "VILNIUS"}},
	{"MOLDOVA", []string{"MOLDOVAN", "CHISINAU"}},
	{"KAZAKHSTAN", []string{"KAZAKH", "ASTANA"}},
}}

var organizations = Lexicon{Class: intel.ClassOrganizations, Entries: []Entry{
	// Alliances and international bodies
	{"NATO", []string{"NORTH ATLANTIC TREATY ORGANIZATION", "ATLANTIC ALLIANCE"}},
	{"UNITED NATIONS", []string{"UN", "U.N.", "UN SECURITY COUNCIL", "SECURITY COUNCIL"}},
	{"EUROPEAN UNION", []string{"EU", "E.U.", "BRUSSELS", "EUROPEAN COMMISSION"}},
	{"IAEA", []string{"INTERNATIONAL ATOMIC ENERGY AGENCY", "ATOMIC ENERGY AGENCY"}},
	{"WORLD HEALTH ORGANIZATION", []string{"WHO"}},
	{"G7", []string{"GROUP OF SEVEN"}},
	{"G20", []string{"GROUP OF TWENTY"}},
	{"ASEAN", []string{"ASSOCIATION OF SOUTHEAST ASIAN NATIONS"}},
	{"OPEC", []string{"OPEC+"}},
	{"BRICS", nil},
	{"SHANGHAI COOPERATION ORGANIZATION", []string{"SCO"}},
	{"AFRICAN UNION", nil},
	{"ARAB LEAGUE", nil},
	{"AUKUS", nil},
	{"QUAD", []string{"QUADRILATERAL SECURITY DIALOGUE"}},
	{"INTERNATIONAL MONETARY FUND", []string{"IMF"}},
	{"WORLD BANK", nil},
	{"WORLD TRADE ORGANIZATION", []string{"WTO"}},
	{"INTERNATIONAL CRIMINAL COURT", []string{"ICC"}},
	{"INTERPOL", nil},

	// Security services and militaries
	{"PENTAGON", []string{"DEPARTMENT OF DEFENSE", "DOD"}},
	{"CIA", []string{"CENTRAL INTELLIGENCE AGENCY"}},
	{"NSA", []string{"NATIONAL SECURITY AGENCY"}},
	{"FBI", []string{"FEDERAL BUREAU OF INVESTIGATION"}},
	{"MOSSAD", nil},
	{"FSB", nil},
	{"GRU", nil},
	{"IRGC", []string{"ISLAMIC REVOLUTIONARY GUARD CORPS", "REVOLUTIONARY GUARD", "REVOLUTIONARY GUARDS"}},
	{"PEOPLE'S LIBERATION ARMY", []string{"PLA"}},

	// Non-state armed groups
	{"HAMAS", nil},
	{"HEZBOLLAH", []string{"HIZBOLLAH"}},
	{"ISLAMIC STATE", []string{"ISIS", "ISIL", "IS", "DAESH"}},
	{"AL-QAEDA", []string{"AL QAEDA", "AL-QAIDA"}},
	{"TALIBAN", nil},
	{"HOUTHIS", []string{"HOUTHI", "ANSAR ALLAH"}},
	{"WAGNER GROUP", []string{"WAGNER", "AFRICA CORPS"}},
	{"AL-SHABAAB", []string{"AL SHABAAB", "SHABAAB"}},
	{"BOKO HARAM", nil},
}}

var technologies = Lexicon{Class: intel.ClassTechnologies, Entries: []Entry{
	{"ARTIFICIAL INTELLIGENCE", []string{"AI", "MACHINE LEARNING"}},
	{"QUANTUM COMPUTING", []string{"QUANTUM COMPUTER"}},
	{"SEMICONDUCTOR", []string{"CHIP", "MICROCHIP", "CHIPMAKING"}},
	{"5G", []string{"5G NETWORK"}},
	{"SATELLITE", []string{"SATELLITE CONSTELLATION", "STARLINK"}},
	{"URANIUM ENRICHMENT", []string{"ENRICHED URANIUM", "CENTRIFUGE", "WEAPONS-GRADE URANIUM"}},
	{"RANSOMWARE", nil},
	{"MALWARE", []string{"SPYWARE", "WIPER MALWARE"}},
	{"ZERO-DAY", []string{"ZERO DAY", "ZERO-DAY EXPLOIT"}},
	{"DIRECTED ENERGY", []string{"LASER WEAPON", "DIRECTED-ENERGY"}},
	{"BIOTECHNOLOGY", []string{"GENE EDITING", "CRISPR"}},
	{"CRYPTOCURRENCY", []string{"BITCOIN", "CRYPTO"}},
	{"UNDERSEA CABLE", []string{"SUBSEA CABLE", "SUBMARINE CABLE"}},
	{"RADAR", []string{"EARLY-WARNING RADAR"}},
	{"GPS JAMMING", []string{"GPS SPOOFING", "JAMMING"}},
	{"SPACE LAUNCH", []string{"ROCKET LAUNCH", "ORBITAL LAUNCH"}},
}}

var weapons = Lexicon{Class: intel.ClassWeapons, Entries: []Entry{
	{"NUCLEAR WEAPON", []string{"NUCLEAR BOMB", "ATOMIC BOMB", "NUCLEAR WARHEAD", "NUKE"}},
	{"BALLISTIC MISSILE", []string{"INTERCONTINENTAL BALLISTIC MISSILE", "ICBM", "SLBM"}},
	{"CRUISE MISSILE", nil},
	{"HYPERSONIC MISSILE", []string{"HYPERSONIC WEAPON", "HYPERSONIC GLIDE VEHICLE"}},
	{"MISSILE", []string{"ROCKET"}},
	{"WARHEAD", nil},
	{"CHEMICAL WEAPON", []string{"NERVE AGENT", "SARIN", "CHLORINE GAS", "NOVICHOK"}},
	{"BIOLOGICAL WEAPON", []string{"BIOWEAPON", "BIOLOGICAL AGENT"}},
	{"DIRTY BOMB", []string{"RADIOLOGICAL WEAPON"}},
	{"DRONE", []string{"UAV", "UNMANNED AERIAL VEHICLE", "KAMIKAZE DRONE", "LOITERING MUNITION"}},
	{"ARTILLERY", []string{"HOWITZER", "SHELLING"}},
	{"TANK", []string{"MAIN BATTLE TANK"}},
	{"FIGHTER JET", []string{"FIGHTER AIRCRAFT", "WARPLANE", "FIGHTER JETS"}},
	{"BOMBER", []string{"STRATEGIC BOMBER"}},
	{"WARSHIP", []string{"DESTROYER", "FRIGATE", "CORVETTE"}},
	{"AIRCRAFT CARRIER", []string{"CARRIER STRIKE GROUP"}},
	{"SUBMARINE", []string{"NUCLEAR SUBMARINE"}},
	{"TORPEDO", nil},
	{"LANDMINE", []string{"LAND MINE", "NAVAL MINE"}},
	{"IED", []string{"IMPROVISED EXPLOSIVE DEVICE", "CAR BOMB", "ROADSIDE BOMB"}},
	{"CLUSTER MUNITION", []string{"CLUSTER BOMB"}},
}}

var weaponSystems = Lexicon{Class: intel.ClassWeaponSystems, Entries: []Entry{
	{"F-35", []string{"F-35A", "F-35B", "F-35C", "LIGHTNING II"}},
	{"F-16", []string{"FIGHTING FALCON"}},
	{"SU-57", []string{"SU-57 FELON"}},
	{"J-20", []string{"MIGHTY DRAGON"}},
	{"B-21", []string{"B-21 RAIDER"}},
	{"S-400", []string{"S-400 TRIUMF"}},
	{"S-500", nil},
	{"PATRIOT", []string{"PATRIOT MISSILE", "PATRIOT SYSTEM", "MIM-104"}},
	{"IRON DOME", nil},
	{"THAAD", []string{"TERMINAL HIGH ALTITUDE AREA DEFENSE"}},
	{"AEGIS", []string{"AEGIS COMBAT SYSTEM"}},
	{"HIMARS", []string{"M142"}},
	{"ATACMS", nil},
	{"JAVELIN", []string{"FGM-148"}},
	{"STINGER", []string{"FIM-92"}},
	{"TOMAHAWK", []string{"TOMAHAWK MISSILE"}},
	{"STORM SHADOW", []string{"SCALP"}},
	{"BAYRAKTAR TB2", []string{"BAYRAKTAR"}},
	{"SHAHED-136", []string{"SHAHED", "GERAN-2"}},
	{"KINZHAL", nil},
	{"ISKANDER", []string{"ISKANDER-M"}},
	{"SARMAT", []string{"RS-28"}},
	{"HWASONG-17", []string{"HWASONG"}},
	{"DF-41", []string{"DONGFENG-41", "DONGFENG"}},
	{"ABRAMS", []string{"M1 ABRAMS", "M1A2"}},
	{"LEOPARD 2", []string{"LEOPARD"}},
	{"SENTINEL", []string{"LGM-35"}},
	{"MINUTEMAN III", []string{"MINUTEMAN"}},
}}

var locations = Lexicon{Class: intel.ClassLocations, Entries: []Entry{
	// Maritime chokepoints and contested waters
	{"STRAIT OF HORMUZ", []string{"HORMUZ", "HORMUZ STRAIT"}},
	{"TAIWAN STRAIT", []string{"FORMOSA STRAIT"}},
	{"SOUTH CHINA SEA", nil},
	{"EAST CHINA SEA", nil},
	{"BLACK SEA", nil},
	{"RED SEA", nil},
	{"BALTIC SEA", nil},
	{"PERSIAN GULF", []string{"ARABIAN GULF"}},
	{"GULF OF ADEN", nil},
	{"BAB EL-MANDEB", []string{"BAB-EL-MANDEB", "BAB AL-MANDAB"}},
	{"SUEZ CANAL", nil},
	{"STRAIT OF MALACCA", []string{"MALACCA STRAIT"}},
	{"MEDITERRANEAN", []string{"MEDITERRANEAN SEA"}},
	{"ARCTIC", []string{"ARCTIC CIRCLE", "HIGH NORTH"}},

	// Contested territory
	{"KOREAN PENINSULA", nil},
	{"DMZ", []string{"DEMILITARIZED ZONE"}},
	{"GAZA", []string{"GAZA STRIP"}},
	{"WEST BANK", nil},
	{"GOLAN HEIGHTS", []string{"GOLAN"}},
	{"CRIMEA", []string{"CRIMEAN PENINSULA"}},
	{"DONBAS", []string{"DONBASS", "DONETSK", "LUHANSK"}},
	{"ZAPORIZHZHIA", []string{"ZAPORIZHZHIA NUCLEAR PLANT"}},
	{"KASHMIR", []string{"LINE OF CONTROL"}},
	{"NAGORNO-KARABAKH", []string{"KARABAKH"}},
	{"SPRATLY ISLANDS", []string{"SPRATLYS"}},
	{"PARACEL ISLANDS", []string{"PARACELS"}},
	{"SENKAKU ISLANDS", []string{"SENKAKUS", "DIAOYU"}},
	{"SAHEL", nil},
	{"HORN OF AFRICA", nil},
	{"SINAI", []string{"SINAI PENINSULA"}},
	{"KALININGRAD", nil},

	// Strategic sites
	{"NATANZ", nil},
	{"FORDOW", nil},
	{"YONGBYON", nil},
	{"GUAM", nil},
	{"DIEGO GARCIA", nil},
}}

// Lexicons lists every class lexicon in reporting order.
var Lexicons = []Lexicon{countries, organizations, technologies, weapons, weaponSystems, locations}

// terms flattens a lexicon into matcher terms. The canonical name is
// always a term of its own entry.
func (l Lexicon) terms() []textmatch.Term {
	var out []textmatch.Term
	for _, e := range l.Entries {
		out = append(out, textmatch.Term{Key: e.Canonical, Text: e.Canonical, CaseStrict: caseStrict[e.Canonical]})
		for _, a := range e.Aliases {
			out = append(out, textmatch.Term{Key: e.Canonical, Text: a, CaseStrict: caseStrict[textmatch.Normalize(a)]})
		}
	}
	return out
}

// ValidateLexicon checks that no normalized name is claimed by two entries,
// in the same class or across classes.
func ValidateLexicon(lexicons []Lexicon) error {
	type owner struct {
		class     intel.EntityClass
		canonical string
	}
	seen := make(map[string]owner)
	for _, l := range lexicons {
		for _, t := range l.terms() {
			norm := textmatch.Normalize(t.Text)
			if norm == "" {
				return fmt.Errorf("%w: %s/%s has an empty name", intel.ErrLexiconLookup, l.Class, t.Key)
			}
			if prev, ok := seen[norm]; ok && (prev.class != l.Class || prev.canonical != t.Key) {
				return fmt.Errorf("%w: %q claimed by %s/%s and %s/%s",
					intel.ErrLexiconLookup, norm, prev.class, prev.canonical, l.Class, t.Key)
			}
			seen[norm] = owner{l.Class, t.Key}
		}
	}
	return nil
}
