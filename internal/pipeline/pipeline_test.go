package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	analyzerpkg "github.com/abelbrown/watchfloor/internal/analyzer"
	"github.com/abelbrown/watchfloor/internal/dedup"
	"github.com/abelbrown/watchfloor/internal/fetch"
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/metrics"
	"github.com/abelbrown/watchfloor/internal/store"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

// mockFetcher serves canned articles per source name.
type mockFetcher struct {
	mu       sync.Mutex
	articles map[string][]intel.Article
	errs     map[string]error
	fetched  []string
	delay    time.Duration
}

func (m *mockFetcher) Fetch(ctx context.Context, src fetch.Source) ([]intel.Article, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, src.Name)
	return m.articles[src.Name], m.errs[src.Name]
}

type mockPublisher struct {
	got []intel.IntelligenceAssessment
	err error
}

func (m *mockPublisher) PublishAll(_ context.Context, as []intel.IntelligenceAssessment) (int, error) {
	m.got = append(m.got, as...)
	return len(as), m.err
}

type mockHinter struct {
	calls atomic.Int32
}

func (m *mockHinter) Hint(_ context.Context, a intel.Article) (*intel.Hint, error) {
	m.calls.Add(1)
	if a.ID == "nohint" {
		return nil, errors.New("model offline")
	}
	return &intel.Hint{Provider: "mock", Summary: a.Title}, nil
}

func article(id, domain, title string, age time.Duration) intel.Article {
	return intel.Article{
		ID:          id,
		Title:       title,
		Body:        "Officials said the situation was being monitored. " + title,
		URL:         "https://" + domain + "/" + id,
		PublishedAt: now.Add(-age),
		FetchedAt:   now,
		Source:      intel.Source{Domain: domain, FeedLabel: domain},
	}
}

func sources(names ...string) []fetch.Source {
	out := make([]fetch.Source, len(names))
	for i, n := range names {
		out[i] = fetch.Source{Name: n, URL: "https://" + n + ".example/rss"}
	}
	return out
}

func setup(t *testing.T, f fetcher, srcs []fetch.Source, opts ...Option) (*Pipeline, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	an := analyzerpkg.New(
		analyzerpkg.WithClock(clock),
		analyzerpkg.WithDetector(dedup.New(dedup.WithPriorOnly())),
	)
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(s, f, an, srcs, opts...), s
}

func TestRunFetchesAndAnalyzes(t *testing.T) {
	f := &mockFetcher{articles: map[string][]intel.Article{
		"wire":  {article("w1", "reuters.com", "Iran confirms missile test near Strait of Hormuz", time.Hour)},
		"paper": {article("p1", "bbc.co.uk", "Central bank holds interest rates", 2*time.Hour), article("p2", "bbc.co.uk", "Flooding closes roads", 3*time.Hour)},
		"empty": nil,
	}}
	m := metrics.New()
	p, s := setup(t, f, sources("wire", "paper", "empty"), WithMetrics(m))

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(rep.Feeds) != 3 || rep.Feeds[0].Name != "wire" || rep.Feeds[1].New != 2 || rep.Feeds[2].Fetched != 0 {
		t.Errorf("unexpected feed results %+v", rep.Feeds)
	}
	if rep.New() != 3 || rep.Analyzed != 3 {
		t.Errorf("expected 3 new and analyzed, got %d/%d", rep.New(), rep.Analyzed)
	}
	total := 0
	for _, n := range rep.ByPriority {
		total += n
	}
	if total != 3 {
		t.Errorf("priority counts do not add up: %v", rep.ByPriority)
	}

	arts, asmts, err := s.Counts()
	if err != nil || arts != 3 || asmts != 3 {
		t.Errorf("expected 3/3 stored, got %d/%d (%v)", arts, asmts, err)
	}
	if n, err := testutil.GatherAndCount(m.Registry(), "watchfloor_fetched_articles_total"); err != nil || n != 3 {
		t.Errorf("expected a fetch series per feed, got %d (%v)", n, err)
	}
}

func TestRunIsIncremental(t *testing.T) {
	f := &mockFetcher{articles: map[string][]intel.Article{
		"wire": {article("w1", "reuters.com", "Talks resume in Geneva", time.Hour)},
	}}
	p, _ := setup(t, f, sources("wire"))

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if rep.New() != 0 || rep.Analyzed != 0 {
		t.Errorf("expected nothing new on second run, got %d/%d", rep.New(), rep.Analyzed)
	}
}

func TestRunFeedErrorDoesNotAbort(t *testing.T) {
	f := &mockFetcher{
		articles: map[string][]intel.Article{"good": {article("g1", "apnews.com", "Ceasefire holds", time.Hour)}},
		errs:     map[string]error{"bad": errors.New("status 503")},
	}
	m := metrics.New()
	p, _ := setup(t, f, sources("bad", "good"), WithMetrics(m))

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Feeds[0].Err == nil || rep.Feeds[1].Err != nil {
		t.Errorf("unexpected feed errors %+v", rep.Feeds)
	}
	if rep.Analyzed != 1 {
		t.Errorf("expected 1 analyzed, got %d", rep.Analyzed)
	}
	if n, _ := testutil.GatherAndCount(m.Registry(), "watchfloor_fetch_errors_total"); n != 1 {
		t.Errorf("expected one fetch error series, got %d", n)
	}
}

func TestRunFlagsDuplicateWithinBatch(t *testing.T) {
	title := "Russia masses troops along the Ukrainian border near Kharkiv region"
	f := &mockFetcher{articles: map[string][]intel.Article{
		"wire":  {article("first", "reuters.com", title, 3*time.Hour)},
		"paper": {article("second", "bbc.co.uk", title, time.Hour)},
	}}
	p, s := setup(t, f, sources("wire", "paper"))

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	first, err := s.AssessmentsFor("first")
	if err != nil || len(first) != 1 {
		t.Fatalf("assessments for first: %v %v", first, err)
	}
	if first[0].Duplicate.IsDuplicate {
		t.Errorf("older article should not be a duplicate: %+v", first[0].Duplicate)
	}

	second, err := s.AssessmentsFor("second")
	if err != nil || len(second) != 1 {
		t.Fatalf("assessments for second: %v %v", second, err)
	}
	if !second[0].Duplicate.IsDuplicate || second[0].Duplicate.DuplicateOfID != "first" {
		t.Errorf("expected duplicate of first, got %+v", second[0].Duplicate)
	}
}

func TestRunPublishesAndHints(t *testing.T) {
	f := &mockFetcher{articles: map[string][]intel.Article{
		"wire": {article("a", "reuters.com", "Talks resume", time.Hour), article("nohint", "reuters.com", "Markets calm", time.Hour)},
	}}
	pub := &mockPublisher{err: errors.New("partial")}
	h := &mockHinter{}
	m := metrics.New()
	p, _ := setup(t, f, sources("wire"), WithPublisher(pub), WithHinter(h), WithMetrics(m))

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if h.calls.Load() != 2 {
		t.Errorf("expected 2 hint calls, got %d", h.calls.Load())
	}
	if len(pub.got) != 2 || rep.Published != 2 {
		t.Errorf("expected 2 published, got %d/%d", len(pub.got), rep.Published)
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	f := &mockFetcher{delay: 200 * time.Millisecond}
	p, _ := setup(t, f, sources("a", "b", "c"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Errorf("Run did not stop promptly: %v", time.Since(start))
	}
}

func TestFetchTimeout(t *testing.T) {
	f := &mockFetcher{delay: 200 * time.Millisecond}
	p, _ := setup(t, f, sources("slow"), WithFetchTimeout(20*time.Millisecond))

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !errors.Is(rep.Feeds[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", rep.Feeds[0].Err)
	}
}
