// Package pipeline runs the fetch, analyze, persist and publish cycle.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/watchfloor/internal/dedup"
	"github.com/abelbrown/watchfloor/internal/fetch"
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/logging"
	"github.com/abelbrown/watchfloor/internal/metrics"
	"github.com/abelbrown/watchfloor/internal/store"
)

const (
	DefaultFetchTimeout     = 30 * time.Second
	DefaultFetchConcurrency = 5
	DefaultBatchLimit       = 500
	DefaultWindowLimit      = 2000
	hintConcurrency         = 2
)

type fetcher interface {
	Fetch(ctx context.Context, src fetch.Source) ([]intel.Article, error)
}

type analyzer interface {
	AnalyzeBatch(ctx context.Context, articles, window []intel.Article) ([]intel.IntelligenceAssessment, error)
}

type hinter interface {
	Hint(ctx context.Context, a intel.Article) (*intel.Hint, error)
}

type publisher interface {
	PublishAll(ctx context.Context, assessments []intel.IntelligenceAssessment) (int, error)
}

// Pipeline wires the collaborators around the engine. Uses context
// cancellation as the ONLY stop mechanism.
type Pipeline struct {
	store    *store.Store
	fetcher  fetcher
	analyzer analyzer
	sources  []fetch.Source // IMMUTABLE: set at construction, never modified

	hinter    hinter    // optional
	publisher publisher // optional
	metrics   *metrics.Metrics

	window           time.Duration
	windowLimit      int
	batchLimit       int
	fetchTimeout     time.Duration
	fetchConcurrency int
	now              func() time.Time

	mu sync.Mutex // one Run at a time
}

type Option func(*Pipeline)

func WithHinter(h hinter) Option { return func(p *Pipeline) { p.hinter = h } }
func WithPublisher(pub publisher) Option { return func(p *Pipeline) { p.publisher = pub } }
func WithMetrics(m *metrics.Metrics) Option { return func(p *Pipeline) { p.metrics = m } }
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// WithWindow sets how far back the duplicate window reaches.
func WithWindow(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.window = d
		}
	}
}

// WithWindowLimit caps the number of articles in the window snapshot.
func WithWindowLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.windowLimit = n
		}
	}
}

// WithBatchLimit caps the number of articles analyzed per run.
func WithBatchLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchLimit = n
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.fetchTimeout = d
		}
	}
}

func WithFetchConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.fetchConcurrency = n
		}
	}
}

// New creates a Pipeline. The analyzer should use a duplicate detector
// with dedup.WithPriorOnly, since the window holds the batch itself.
func New(s *store.Store, f fetcher, a analyzer, sources []fetch.Source, opts ...Option) *Pipeline {
	sourcesCopy := make([]fetch.Source, len(sources))
	copy(sourcesCopy, sources)

	p := &Pipeline{
		store:            s,
		fetcher:          f,
		analyzer:         a,
		sources:          sourcesCopy,
		window:           dedup.DefaultWindow,
		windowLimit:      DefaultWindowLimit,
		batchLimit:       DefaultBatchLimit,
		fetchTimeout:     DefaultFetchTimeout,
		fetchConcurrency: DefaultFetchConcurrency,
		now:              time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// FeedResult is the outcome of fetching one source.
type FeedResult struct {
	Name    string
	Fetched int
	New     int
	Err     error
}

// Report summarizes one Run.
type Report struct {
	Feeds      []FeedResult // in source order
	Analyzed   int
	Published  int
	ByPriority map[intel.Level]int
	Took       time.Duration
}

// New returns the number of newly stored articles.
func (r Report) New() int {
	n := 0
	for _, f := range r.Feeds {
		n += f.New
	}
	return n
}

// Run performs one full cycle. Feed and publish failures are reported,
// not returned; store failures and cancellation abort the run.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	rep := Report{ByPriority: make(map[intel.Level]int)}

	rep.Feeds = p.fetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	out, err := p.Analyze(ctx)
	if err != nil {
		return rep, err
	}
	rep.Analyzed = len(out)
	for _, a := range out {
		rep.ByPriority[a.Priority]++
	}

	if p.publisher != nil && len(out) > 0 {
		n, err := p.publisher.PublishAll(ctx, out)
		rep.Published = n
		if err != nil {
			logging.Warn("publish failed", "error", err, "published", n)
		}
		if p.metrics != nil {
			p.metrics.ObservePublished(n)
		}
	}

	rep.Took = p.now().Sub(start)
	if p.metrics != nil {
		p.metrics.ObserveRun(p.now())
	}
	logging.Info("pipeline run complete",
		"new", rep.New(), "analyzed", rep.Analyzed, "published", rep.Published, "took", rep.Took)
	return rep, nil
}

// Analyze assesses stored articles that have no assessment yet against the
// recent window and persists the results.
func (p *Pipeline) Analyze(ctx context.Context) ([]intel.IntelligenceAssessment, error) {
	pending, err := p.store.Unassessed(p.batchLimit)
	if err != nil {
		return nil, fmt.Errorf("load pending: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	window, err := p.store.RecentArticles(p.now().Add(-p.window), p.windowLimit)
	if err != nil {
		return nil, fmt.Errorf("load window: %w", err)
	}

	if p.hinter != nil {
		p.attachHints(ctx, pending)
	}

	started := time.Now()
	out, err := p.analyzer.AnalyzeBatch(ctx, pending, window)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if p.metrics != nil {
		p.metrics.ObserveBatch(out, time.Since(started))
	}

	if err := p.store.SaveAssessments(out); err != nil {
		return nil, fmt.Errorf("save assessments: %w", err)
	}
	return out, nil
}

// fetchAll fetches all sources in parallel and stores what they return.
func (p *Pipeline) fetchAll(ctx context.Context) []FeedResult {
	results := make([]FeedResult, len(p.sources))

	var g errgroup.Group
	g.SetLimit(p.fetchConcurrency)
	for i, src := range p.sources {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = FeedResult{Name: src.Name, Err: ctx.Err()}
				return nil
			}
			results[i] = p.fetchSource(ctx, src)
			return nil // never fail the group - errors reported per-source
		})
	}
	_ = g.Wait()
	return results
}

func (p *Pipeline) fetchSource(ctx context.Context, src fetch.Source) FeedResult {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	res := FeedResult{Name: src.Name}
	articles, err := p.fetcher.Fetch(fetchCtx, src)
	if err == nil && len(articles) > 0 {
		res.Fetched = len(articles)
		res.New, err = p.store.SaveArticles(articles)
	}
	if err != nil {
		res.Err = err
		logging.Warn("feed failed", "feed", src.Name, "error", err)
	}
	if p.metrics != nil {
		p.metrics.ObserveFetch(src.Name, res.Fetched, res.Err)
	}
	return res
}

// attachHints asks the hinter about each pending article. Failures leave
// the article without a hint.
func (p *Pipeline) attachHints(ctx context.Context, pending []intel.Article) {
	var g errgroup.Group
	g.SetLimit(hintConcurrency)
	for i := range pending {
		if pending[i].Hint != nil {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			h, err := p.hinter.Hint(ctx, pending[i])
			if err != nil {
				logging.Debug("hint failed", "article", pending[i].ID, "error", err)
				return nil
			}
			pending[i].Hint = h
			return nil
		})
	}
	_ = g.Wait()
}
