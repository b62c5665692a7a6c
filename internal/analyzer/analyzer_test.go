package analyzer

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
	"github.com/abelbrown/watchfloor/internal/scoring"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func fixedIDs() func() string {
	var n atomic.Int64
	return func() string { return "as-" + strconv.FormatInt(n.Add(1), 10) }
}

func newAnalyzer(opts ...Option) *Analyzer {
	base := []Option{WithClock(func() time.Time { return now }), WithIDs(fixedIDs())}
	return New(append(base, opts...)...)
}

func reuters(id, title, body string, age time.Duration) intel.Article {
	return intel.Article{
		ID:          id,
		Title:       title,
		Body:        body,
		URL:         "https://www.reuters.com/world/" + id,
		PublishedAt: now.Add(-age),
		Source:      intel.Source{Domain: "reuters.com", FeedLabel: "Reuters World"},
	}
}

// panicKeywords panics on titles containing PANIC, or on every article.
type panicKeywords struct{ always bool }

func (p panicKeywords) Score(c preprocess.Content) (float64, scoring.KeywordDetails) {
	if p.always || strings.Contains(c.Title, "PANIC") {
		panic("keyword table corrupted")
	}
	return 0, scoring.KeywordDetails{}
}

type slowKeywords struct{ delay time.Duration }

func (s slowKeywords) Score(preprocess.Content) (float64, scoring.KeywordDetails) {
	time.Sleep(s.delay)
	return 0, scoring.KeywordDetails{}
}

func assertBounded(t *testing.T, as intel.IntelligenceAssessment) {
	t.Helper()
	in := func(name string, v float64) {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}
	in("overall", as.OverallScore)
	in("confidence", as.Confidence)
	in("priority confidence", as.PriorityConfidence)
	in("threat", as.Threat.Score)
	in("threat confidence", as.Threat.Confidence)
	for name, d := range as.Dimensions {
		in(name, d.Score)
	}
}

func TestScenarioIranMissileTest(t *testing.T) {
	a := reuters("iran-1",
		"Breaking: Iran confirms new missile test near Strait of Hormuz",
		"Iran's Revolutionary Guard test-fired a new ballistic missile near the Strait of Hormuz on Tuesday, "+
			"state media confirmed, raising tensions with the United States.",
		30*time.Minute)

	as := newAnalyzer().Analyze(a, nil)

	assert.Contains(t, []intel.Level{intel.LevelHigh, intel.LevelCritical}, as.Priority)
	assert.Contains(t, []intel.ThreatCategory{intel.ThreatMilitary, intel.ThreatNuclear}, as.Threat.PrimaryThreat)
	assert.Contains(t, as.Entities.Get(intel.ClassCountries), "IRAN")
	assert.Contains(t, as.Entities.Get(intel.ClassLocations), "STRAIT OF HORMUZ")
	assert.True(t, as.HasTag(intel.TagBreaking))
	assert.True(t, as.HasTag(intel.TagPremiumSource))
	assert.Equal(t, "iran-1", as.ArticleID)
	assert.NotEmpty(t, as.ID)
	require.NotEmpty(t, as.Categories)
	assert.Equal(t, string(as.Threat.PrimaryThreat), as.Categories[0])
	assert.Len(t, as.Dimensions, 6)
	assertBounded(t, as)
}

func TestScenarioDuplicateTwoHoursApart(t *testing.T) {
	body := "Satellite images show armor and artillery moving toward the frontier."
	first := reuters("first", "Russia masses troops along the Ukrainian border near Kharkiv region", body, 3*time.Hour)
	second := reuters("second", "Russia masses troops along the Ukrainian border near Kharkiv region overnight", body, time.Hour)

	as := newAnalyzer().Analyze(second, []intel.Article{first})
	assert.True(t, as.Duplicate.IsDuplicate)
	assert.Equal(t, "first", as.Duplicate.DuplicateOfID)
	assert.True(t, as.HasTag(intel.TagDuplicate))
}

func TestScenarioAdvertisement(t *testing.T) {
	a := intel.Article{
		ID:          "ad-1",
		Title:       "Missile defense stocks: buy now before the war",
		Body:        "Limited time offer! Buy now and get free shipping on tactical gear. Military-grade drones at a discount.",
		URL:         "https://ad.doubleclick.net/ddm/clk/123;abc?https://shop.example.com",
		PublishedAt: now.Add(-10 * time.Minute),
	}
	as := newAnalyzer().Analyze(a, nil)
	assert.True(t, as.Promotional)
	assert.True(t, as.HasTag(intel.TagPromotional))
	assert.LessOrEqual(t, as.OverallScore, 20.0)
	assert.Equal(t, intel.LevelLow, as.Priority)
	assertBounded(t, as)
}

func TestScenarioHistoricalArticle(t *testing.T) {
	title := "Navy holds exercise in the Baltic Sea"
	body := "Warships from several allies joined the annual drills, officials said."
	an := newAnalyzer()

	fresh := an.Analyze(reuters("fresh", title, body, 20*time.Minute), nil)
	old := an.Analyze(reuters("old", title, body, 40*24*time.Hour), nil)

	details, ok := old.Dimensions[intel.DimTemporal].Details.(scoring.TemporalDetails)
	require.True(t, ok)
	assert.Equal(t, "HISTORICAL", details.Bucket)
	assert.Less(t, old.Dimensions[intel.DimTemporal].Score, fresh.Dimensions[intel.DimTemporal].Score)
	assert.Less(t, old.OverallScore, fresh.OverallScore-5)
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := reuters("det", "Breaking: Iran confirms new missile test near Strait of Hormuz",
		"Iran and Israel traded warnings as NATO allies met in Brussels.", time.Hour)
	window := []intel.Article{reuters("w1", "Iran missile test", "Earlier report.", 2*time.Hour)}

	first := New(WithClock(func() time.Time { return now }), WithIDs(func() string { return "fixed" })).Analyze(a, window)
	second := New(WithClock(func() time.Time { return now }), WithIDs(func() string { return "fixed" })).Analyze(a, window)
	assert.Equal(t, first, second)
}

func TestAnalyzeIncompleteInput(t *testing.T) {
	an := newAnalyzer()
	body := "Hackers hit the power grid with ransomware, officials confirmed."
	full := an.Analyze(reuters("full", "Grid hacked", body, time.Hour), nil)
	partial := an.Analyze(intel.Article{ID: "partial", Body: body, PublishedAt: now.Add(-time.Hour)}, nil)

	assert.True(t, partial.HasTag(intel.TagIncomplete))
	assert.False(t, partial.HasTag(intel.TagUnprocessed))
	require.Len(t, partial.Diagnostics, 2)
	for _, d := range partial.Diagnostics {
		assert.Equal(t, intel.DiagInvalidInput, d.Code)
	}
	assert.Less(t, partial.Confidence, full.Confidence)
	assertBounded(t, partial)
}

func TestAnalyzeEmptyArticle(t *testing.T) {
	as := newAnalyzer().Analyze(intel.Article{}, nil)
	assert.False(t, as.HasTag(intel.TagUnprocessed))
	assert.Equal(t, intel.LevelLow, as.Priority)
	assert.Equal(t, intel.ThreatNone, as.Threat.PrimaryThreat)
	assertBounded(t, as)
}

func TestFallbackOnPanic(t *testing.T) {
	an := newAnalyzer(WithKeywordScorer(panicKeywords{always: true}))
	as := an.Analyze(reuters("p1", "Nuclear test imminent", "Body.", time.Hour), nil)

	assert.Equal(t, FallbackScore, as.OverallScore)
	assert.Equal(t, FallbackConfidence, as.Confidence)
	assert.Equal(t, intel.LevelLow, as.Priority)
	assert.Equal(t, []string{intel.TagUnprocessed}, as.Tags)
	assert.Zero(t, as.Entities.Count())
	assert.Equal(t, "p1", as.ArticleID)
	require.Len(t, as.Diagnostics, 1)
	assert.Equal(t, intel.DiagAnalysisFailure, as.Diagnostics[0].Code)
	assert.Contains(t, as.Diagnostics[0].Message, "keyword")
	assertBounded(t, as)
}

func TestFallbackUsesHint(t *testing.T) {
	a := reuters("p2", "Talks collapse", "Body.", time.Hour)
	a.Hint = &intel.Hint{
		Provider: "ollama",
		Entities: map[intel.EntityClass][]string{
			intel.ClassCountries:     {"DPRK", "United States"},
			intel.ClassOrganizations: {"UN"},
		},
	}
	as := newAnalyzer(WithKeywordScorer(panicKeywords{always: true})).Analyze(a, nil)

	assert.Equal(t, []string{intel.TagHinted, intel.TagUnprocessed}, as.Tags)
	assert.Equal(t, []string{"NORTH KOREA", "UNITED STATES"}, as.Entities.Get(intel.ClassCountries))
	assert.NotEmpty(t, as.Entities.Relationships)
	assert.Equal(t, FallbackScore, as.OverallScore)
}

func TestHintIgnoredOnSuccess(t *testing.T) {
	a := reuters("h1", "Local elections held", "Turnout was high.", time.Hour)
	a.Hint = &intel.Hint{Provider: "ollama", Entities: map[intel.EntityClass][]string{intel.ClassCountries: {"CHINA"}}}
	as := newAnalyzer().Analyze(a, nil)
	assert.False(t, as.HasTag(intel.TagHinted))
	assert.NotContains(t, as.Entities.Get(intel.ClassCountries), "CHINA")
}

func TestAnalyzeBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	articles := []intel.Article{
		reuters("b1", "Troops mass at border", "Artillery moved overnight.", time.Hour),
		reuters("b2", "PANIC at the desk", "Body.", time.Hour),
		reuters("b3", "Cyberattack on grid", "Ransomware hit utilities.", time.Hour),
	}
	an := newAnalyzer(WithKeywordScorer(panicKeywords{}), WithConcurrency(2))

	out, err := an.AnalyzeBatch(context.Background(), articles, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, as := range out {
		assert.Equal(t, articles[i].ID, as.ArticleID)
	}
	assert.False(t, out[0].HasTag(intel.TagUnprocessed))
	assert.True(t, out[1].HasTag(intel.TagUnprocessed))
	assert.False(t, out[2].HasTag(intel.TagUnprocessed))
}

func TestAnalyzeBatchMatchesAnalyze(t *testing.T) {
	window := []intel.Article{reuters("w", "Russia masses troops near Kharkiv", "Armor moving.", 2*time.Hour)}
	articles := []intel.Article{
		reuters("m1", "Russia masses troops near Kharkiv overnight", "Armor moving.", time.Hour),
		reuters("m2", "Iran confirms missile test", "State media confirmed.", time.Hour),
	}
	an := New(WithClock(func() time.Time { return now }), WithIDs(func() string { return "id" }))
	out, err := an.AnalyzeBatch(context.Background(), articles, window)
	require.NoError(t, err)
	for i, a := range articles {
		assert.Equal(t, an.Analyze(a, window), out[i])
	}
}

func TestAnalyzeBatchTimeout(t *testing.T) {
	an := newAnalyzer(WithKeywordScorer(slowKeywords{delay: 300 * time.Millisecond}), WithTimeout(20*time.Millisecond))
	out, err := an.AnalyzeBatch(context.Background(), []intel.Article{reuters("slow", "Slow", "Body.", time.Hour)}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].HasTag(intel.TagUnprocessed))
	require.NotEmpty(t, out[0].Diagnostics)
	assert.Contains(t, out[0].Diagnostics[0].Message, "deadline")
}

func TestWithIDsSerializesGenerator(t *testing.T) {
	n := 0
	counter := func() string { n++; return "as-" + strconv.Itoa(n) }
	an := New(
		WithClock(func() time.Time { return now }),
		WithIDs(counter),
		WithConcurrency(8),
		WithKeywordScorer(slowKeywords{delay: 15 * time.Millisecond}),
		WithTimeout(10*time.Millisecond),
	)

	var articles []intel.Article
	for i := 0; i < 24; i++ {
		articles = append(articles, reuters("id"+strconv.Itoa(i), "Troops mass at border", "Body.", time.Hour))
	}
	out, err := an.AnalyzeBatch(context.Background(), articles, nil)
	require.NoError(t, err)
	require.Len(t, out, len(articles))

	seen := make(map[string]bool)
	for _, as := range out {
		assert.False(t, seen[as.ID], "id %s issued twice", as.ID)
		seen[as.ID] = true
	}
}

func TestAnalyzeBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := newAnalyzer().AnalyzeBatch(ctx, []intel.Article{reuters("c1", "A", "B", time.Hour)}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, out, 1)
	assert.True(t, out[0].HasTag(intel.TagUnprocessed))
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	out, err := newAnalyzer().AnalyzeBatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestScoresAlwaysBounded(t *testing.T) {
	an := newAnalyzer()
	stuffed := strings.Repeat("nuclear missile attack war invasion ", 60)
	for _, a := range []intel.Article{
		{},
		{Title: stuffed, Body: stuffed},
		reuters("x", "Breaking: nuclear strike imminent as North Korea and United States trade threats",
			"Confirmed: ICBM launch, troops mobilized, cyberattack on grid, pandemic outbreak, sanctions. "+stuffed, 0),
		{Title: "future", PublishedAt: now.Add(48 * time.Hour)},
	} {
		assertBounded(t, an.Analyze(a, nil))
	}
}
