// Package entity extracts domain entities from preprocessed articles:
// countries, organizations, technologies, weapons, weapon systems and
// locations, plus the relationships, designators and significance derived
// from them.
package entity

import (
	"sort"
	"strings"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// DefaultClassCap bounds the names reported per class.
const DefaultClassCap = 15

// Extractor holds the compiled lexicons. It has no mutable state and is
// safe for concurrent use.
type Extractor struct {
	classCap   int
	indexes    map[intel.EntityClass]*textmatch.Index
	escalation *textmatch.Index
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClassCap overrides the per-class cap.
func WithClassCap(n int) Option {
	return func(x *Extractor) {
		if n > 0 {
			x.classCap = n
		}
	}
}

// New compiles the lexicons. It fails only if the lexicons are broken.
func New(opts ...Option) (*Extractor, error) {
	if err := ValidateLexicon(Lexicons); err != nil {
		return nil, err
	}
	x := &Extractor{
		classCap:   DefaultClassCap,
		indexes:    make(map[intel.EntityClass]*textmatch.Index, len(Lexicons)),
		escalation: textmatch.New(escalationTerms),
	}
	for _, l := range Lexicons {
		x.indexes[l.Class] = textmatch.New(l.terms())
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// MustNew is New for callers that treat a broken lexicon as a programming error.
func MustNew(opts ...Option) *Extractor {
	x, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return x
}

// Extract runs every lexicon over c and derives the rest of the analysis.
func (x *Extractor) Extract(c preprocess.Content) intel.EntityAnalysis {
	ea := intel.EmptyEntityAnalysis()
	if c.Empty() {
		return ea
	}

	mentions := 0
	for _, class := range intel.EntityClasses {
		ranked, total := x.scanClass(class, c)
		mentions += total
		names := make([]string, len(ranked))
		for i, m := range ranked {
			names[i] = m.Name
		}
		ea.Entities[class] = names
		ea.Mentions[class] = ranked
	}

	ea.Density = intel.Round(float64(mentions)/float64(c.WordCount)*100, 2)
	ea.DensityBand = densityBand(ea.Density)
	ea.Relationships = relationships(ea.Entities[intel.ClassCountries])
	ea.EscalationIndicators = x.escalation.Distinct(c.Words, nil)
	if ea.EscalationIndicators == nil {
		ea.EscalationIndicators = []string{}
	}
	ea.CriticalCombinations = criticalCombinations(ea)
	ea.Technical = ExtractTechnical(c.Raw)
	ea.Significance = significance(ea)
	return ea
}

// scanClass returns the ranked, capped mentions of one class and the total
// number of hits before capping.
func (x *Extractor) scanClass(class intel.EntityClass, c preprocess.Content) ([]intel.Mention, int) {
	hits := x.indexes[class].Find(c.Words, c.Original)
	if len(hits) == 0 {
		return []intel.Mention{}, 0
	}
	byName := make(map[string]*intel.Mention)
	var order []*intel.Mention
	for _, h := range hits {
		m, ok := byName[h.Key]
		if !ok {
			m = &intel.Mention{Name: h.Key, FirstIndex: h.Pos}
			byName[h.Key] = m
			order = append(order, m)
		}
		m.Frequency++
		if c.InTitle(h.Pos) {
			m.InTitle = true
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if a.InTitle != b.InTitle {
			return a.InTitle
		}
		if a.FirstIndex != b.FirstIndex {
			return a.FirstIndex < b.FirstIndex
		}
		return a.Name < b.Name
	})
	if len(order) > x.classCap {
		order = order[:x.classCap]
	}
	out := make([]intel.Mention, len(order))
	for i, m := range order {
		out[i] = *m
	}
	return out, len(hits)
}

// Resolve maps a free-form name to its canonical entry in class. Names the
// lexicon does not know are returned normalized with ok false.
func (x *Extractor) Resolve(class intel.EntityClass, name string) (canonical string, ok bool) {
	ix, found := x.indexes[class]
	norm := textmatch.Normalize(name)
	if !found || norm == "" {
		return norm, false
	}
	words := strings.Fields(norm)
	for _, h := range ix.Find(words, textmatch.TokenizeOriginal(name)) {
		if h.Pos == 0 && h.Len == len(words) {
			return h.Key, true
		}
	}
	return norm, false
}

// FromHint builds an entity analysis from an external hint, resolving each
// name through the lexicons. Relationships are derived; nothing else is.
func (x *Extractor) FromHint(h *intel.Hint) intel.EntityAnalysis {
	ea := intel.EmptyEntityAnalysis()
	if h == nil {
		return ea
	}
	for _, class := range intel.EntityClasses {
		seen := make(map[string]bool)
		for _, raw := range h.Entities[class] {
			name, _ := x.Resolve(class, raw)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			ea.Entities[class] = append(ea.Entities[class], name)
			if len(ea.Entities[class]) == x.classCap {
				break
			}
		}
	}
	ea.Relationships = relationships(ea.Entities[intel.ClassCountries])
	return ea
}

func densityBand(d float64) intel.DensityBand {
	switch {
	case d < 1:
		return intel.DensityVeryLow
	case d < 2.5:
		return intel.DensityLow
	case d < 5:
		return intel.DensityMedium
	case d < 10:
		return intel.DensityHigh
	}
	return intel.DensityVeryHigh
}
