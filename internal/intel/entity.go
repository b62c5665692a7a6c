package intel

// EntityClass names one of the fixed entity lexicons.
type EntityClass string

const (
	ClassCountries     EntityClass = "countries"
	ClassOrganizations EntityClass = "organizations"
	ClassTechnologies  EntityClass = "technologies"
	ClassWeapons       EntityClass = "weapons"
	ClassWeaponSystems EntityClass = "weaponSystems"
	ClassLocations     EntityClass = "locations"
)

// EntityClasses lists every class in reporting order.
var EntityClasses = []EntityClass{
	ClassCountries,
	ClassOrganizations,
	ClassTechnologies,
	ClassWeapons,
	ClassWeaponSystems,
	ClassLocations,
}

// RelationshipType classifies a relationship between detected countries.
type RelationshipType string

const (
	RelAdversarial  RelationshipType = "ADVERSARIAL"
	RelAllied       RelationshipType = "ALLIED"
	RelMultilateral RelationshipType = "MULTILATERAL"
)

// Relationship is an inferred link between two or more countries.
type Relationship struct {
	Type    RelationshipType `json:"type"`
	Members []string         `json:"members"`
}

// DensityBand buckets entity density (mentions per 100 words).
type DensityBand string

const (
	DensityVeryLow  DensityBand = "VERY_LOW"
	DensityLow      DensityBand = "LOW"
	DensityMedium   DensityBand = "MEDIUM"
	DensityHigh     DensityBand = "HIGH"
	DensityVeryHigh DensityBand = "VERY_HIGH"
)

// Mention records how one canonical entity appeared in an article.
type Mention struct {
	Name      string `json:"name"`
	Frequency int    `json:"frequency"`
	InTitle   bool   `json:"in_title"`

	// FirstIndex is the word position of the first match in the combined text.
	FirstIndex int `json:"first_index"`
}

// CriticalCombination is a named pairing of entities that raises significance.
type CriticalCombination struct {
	Name     string   `json:"name"`
	Entities []string `json:"entities"`
}

// Significance summarizes how much the detected entities matter.
type Significance struct {
	Overall Level    `json:"overall"`
	Score   float64  `json:"score"`
	Factors []string `json:"factors,omitempty"`
}

// CasualtyFigure is a count of people extracted from text.
type CasualtyFigure struct {
	Count int    `json:"count"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

// TechnicalData holds pattern-extracted designators and figures.
type TechnicalData struct {
	Designations  []string         `json:"designations,omitempty"`
	MilitaryUnits []string         `json:"military_units,omitempty"`
	Coordinates   []string         `json:"coordinates,omitempty"`
	Monetary      []string         `json:"monetary,omitempty"`
	Casualties    []CasualtyFigure `json:"casualties,omitempty"`
}

// EntityAnalysis is the entity extractor's output.
type EntityAnalysis struct {
	Entities             map[EntityClass][]string  `json:"entities"`
	Mentions             map[EntityClass][]Mention `json:"mentions,omitempty"`
	Relationships        []Relationship            `json:"relationships"`
	Density              float64                   `json:"density"`
	DensityBand          DensityBand               `json:"density_band"`
	CriticalCombinations []CriticalCombination     `json:"critical_combinations,omitempty"`
	EscalationIndicators []string                  `json:"escalation_indicators,omitempty"`
	Significance         Significance              `json:"significance"`
	Technical            TechnicalData             `json:"technical"`
}

// EmptyEntityAnalysis returns an analysis with every class present and empty.
func EmptyEntityAnalysis() EntityAnalysis {
	ea := EntityAnalysis{
		Entities:      make(map[EntityClass][]string, len(EntityClasses)),
		Mentions:      make(map[EntityClass][]Mention, len(EntityClasses)),
		Relationships: []Relationship{},
		DensityBand:   DensityVeryLow,
		Significance:  Significance{Overall: LevelLow},
	}
	for _, c := range EntityClasses {
		ea.Entities[c] = []string{}
	}
	return ea
}

// Get returns the detected names of one class.
func (e EntityAnalysis) Get(c EntityClass) []string {
	return e.Entities[c]
}

// Has reports whether name was detected in class c.
func (e EntityAnalysis) Has(c EntityClass, name string) bool {
	for _, n := range e.Entities[c] {
		if n == name {
			return true
		}
	}
	return false
}

// Count returns the number of distinct entities across all classes.
func (e EntityAnalysis) Count() int {
	n := 0
	for _, names := range e.Entities {
		n += len(names)
	}
	return n
}

// RelationshipsOf returns relationships of the given type.
func (e EntityAnalysis) RelationshipsOf(t RelationshipType) []Relationship {
	var out []Relationship
	for _, r := range e.Relationships {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}
