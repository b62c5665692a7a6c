// Package analyzer runs the full intelligence analysis of an article:
// preprocessing, entity extraction, the six scoring dimensions, duplicate
// detection and the final combination.
//
// Analyze never fails. Missing fields lower confidence, and any internal
// failure yields a fallback assessment tagged UNPROCESSED.
package analyzer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/watchfloor/internal/combine"
	"github.com/abelbrown/watchfloor/internal/curation"
	"github.com/abelbrown/watchfloor/internal/dedup"
	"github.com/abelbrown/watchfloor/internal/entity"
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/scoring"
	"github.com/abelbrown/watchfloor/internal/threat"
)

// Batch defaults.
const (
	DefaultConcurrency = 8
	DefaultTimeout     = 5 * time.Second
)

// Component interfaces, satisfied by the concrete engine types.
type (
	EntityExtractor interface {
		Extract(preprocess.Content) intel.EntityAnalysis
		FromHint(*intel.Hint) intel.EntityAnalysis
	}
	KeywordScorer interface {
		Score(preprocess.Content) (float64, scoring.KeywordDetails)
	}
	TemporalScorer interface {
		Score(intel.Article, preprocess.Content, time.Time) (float64, scoring.TemporalDetails)
	}
	CredibilityScorer interface {
		Score(intel.Article, preprocess.Content) (float64, scoring.CredibilityDetails)
	}
	GeopoliticalScorer interface {
		Score(preprocess.Content, intel.EntityAnalysis) (float64, scoring.GeopoliticalDetails)
	}
	ThreatAssessor interface {
		Assess(preprocess.Content, intel.EntityAnalysis) intel.ThreatAssessment
	}
	DuplicateDetector interface {
		Check(intel.Article, []intel.Article) intel.DuplicateVerdict
		Corroborations(intel.Article, []intel.Article) int
	}
	PromotionalGate interface {
		Evaluate(intel.Article) curation.Result
	}
)

// Analyzer is safe for concurrent use; it keeps no state between calls.
type Analyzer struct {
	extractor    EntityExtractor
	keyword      KeywordScorer
	temporal     TemporalScorer
	credibility  CredibilityScorer
	geopolitical GeopoliticalScorer
	threat       ThreatAssessor
	dedup        DuplicateDetector
	gate         PromotionalGate
	combiner     *combine.Combiner

	now         func() time.Time
	newID       func() string
	concurrency int
	timeout     time.Duration
}

type Option func(*Analyzer)

// WithClock fixes the reference time used for article age.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithIDs replaces the assessment id generator. Calls are serialized, so
// newID need not be safe for concurrent use, even when a timed-out
// analysis finishes alongside its fallback.
func WithIDs(newID func() string) Option {
	var mu sync.Mutex
	return func(a *Analyzer) {
		a.newID = func() string {
			mu.Lock()
			defer mu.Unlock()
			return newID()
		}
	}
}

// WithConcurrency caps parallel analyses in AnalyzeBatch.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithTimeout sets the best-effort per-article timeout in AnalyzeBatch.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithCombiner(c *combine.Combiner) Option {
	return func(a *Analyzer) { a.combiner = c }
}

func WithDetector(d DuplicateDetector) Option {
	return func(a *Analyzer) { a.dedup = d }
}

func WithExtractor(x EntityExtractor) Option {
	return func(a *Analyzer) { a.extractor = x }
}

func WithKeywordScorer(s KeywordScorer) Option {
	return func(a *Analyzer) { a.keyword = s }
}

func WithTemporalScorer(s TemporalScorer) Option {
	return func(a *Analyzer) { a.temporal = s }
}

func WithCredibilityScorer(s CredibilityScorer) Option {
	return func(a *Analyzer) { a.credibility = s }
}

func WithGeopoliticalScorer(s GeopoliticalScorer) Option {
	return func(a *Analyzer) { a.geopolitical = s }
}

func WithThreatAssessor(t ThreatAssessor) Option {
	return func(a *Analyzer) { a.threat = t }
}

func WithPromotionalGate(g PromotionalGate) Option {
	return func(a *Analyzer) { a.gate = g }
}

// New wires the default engine. It panics if a static lexicon is broken.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		now:         time.Now,
		newID:       uuid.NewString,
		concurrency: DefaultConcurrency,
		timeout:     DefaultTimeout,
	}
	for _, o := range opts {
		o(a)
	}
	if a.extractor == nil {
		a.extractor = entity.MustNew()
	}
	if a.keyword == nil {
		a.keyword = scoring.NewKeywordScorer()
	}
	if a.temporal == nil {
		a.temporal = scoring.NewTemporalScorer()
	}
	if a.credibility == nil {
		a.credibility = scoring.NewCredibilityScorer()
	}
	if a.geopolitical == nil {
		a.geopolitical = scoring.NewGeopoliticalScorer()
	}
	if a.threat == nil {
		a.threat = threat.NewAssessor()
	}
	if a.dedup == nil {
		a.dedup = dedup.New()
	}
	if a.gate == nil {
		a.gate = curation.NewGate()
	}
	if a.combiner == nil {
		a.combiner = combine.MustNew()
	}
	return a
}
