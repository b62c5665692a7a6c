package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/preprocess"
)

func credibility(a intel.Article) (float64, CredibilityDetails) {
	return NewCredibilityScorer().Score(a, preprocess.Process(a))
}

func TestCredibilityTiers(t *testing.T) {
	tests := []struct {
		name   string
		source intel.Source
		url    string
		tier   string
		score  float64
	}{
		{"premium domain", intel.Source{Domain: "reuters.com"}, "", "PREMIUM", 90},
		{"subdomain via url", intel.Source{}, "https://www.bbc.co.uk/news/world", "PREMIUM", 90},
		{"label only", intel.Source{FeedLabel: "Reuters World News"}, "", "PREMIUM", 90},
		{"reliable", intel.Source{Domain: "aljazeera.com"}, "", "RELIABLE", 75},
		{"questionable", intel.Source{Domain: "rt.com"}, "", "QUESTIONABLE", 25},
		{"unknown", intel.Source{Domain: "example.org"}, "", "UNKNOWN", 50},
		{"government", intel.Source{Domain: "state.gov"}, "", "UNKNOWN", 57.5},
		{"advertising", intel.Source{Domain: "ad.doubleclick.net"}, "", "UNKNOWN", 5},
		{"social", intel.Source{Domain: "reddit.com"}, "", "UNKNOWN", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, d := credibility(intel.Article{Source: tt.source, URL: tt.url})
			assert.Equal(t, tt.tier, d.Tier)
			assert.InDelta(t, tt.score, score, 0.001)
		})
	}
}

func TestCredibilityCombinationOrder(t *testing.T) {
	a := intel.Article{
		Source: intel.Source{Domain: "reuters.com", BaseCredibility: 95},
		Body:   "Exclusive: shocking bombshell documents, according to officials",
	}
	score, d := credibility(a)
	assert.Equal(t, -16.0, d.BiasImpact)
	assert.Equal(t, "EXCELLENT", d.TrackRecord)
	assert.Equal(t, 3.0, d.TrackBonus)
	assert.Equal(t, 2.0, d.QualityImpact)
	// (90*1.0 - 16) * 1.1 + 3 + 2
	assert.InDelta(t, 86.4, score, 0.001)
}

func TestCredibilityBiasCapped(t *testing.T) {
	a := intel.Article{Source: intel.Source{Domain: "example.org"}, Body: "propaganda fake news deep state false flag sheeple"}
	_, d := credibility(a)
	assert.Equal(t, -40.0, d.BiasImpact)
}

func TestCredibilityQualitySignals(t *testing.T) {
	_, d := credibility(intel.Article{Body: "Unnamed sources reportedly said the plan might be delayed."})
	assert.Equal(t, -9.0, d.QualityImpact)

	score, d := credibility(intel.Article{Source: intel.Source{Domain: "example.org"}, Body: "KYIV (Reuters) - Ukrainian forces advanced."})
	assert.Equal(t, "Reuters", d.Attribution)
	assert.Equal(t, 53.0, score)
}

func TestTrackRecord(t *testing.T) {
	tests := []struct {
		base int
		name string
		mult float64
	}{
		{0, "UNRATED", 1.0},
		{95, "EXCELLENT", 1.1},
		{80, "GOOD", 1.05},
		{60, "FAIR", 1.0},
		{45, "POOR", 0.9},
		{10, "VERY_POOR", 0.8},
	}
	for _, tt := range tests {
		name, mult := TrackRecord(tt.base)
		if name != tt.name || mult != tt.mult {
			t.Errorf("TrackRecord(%d) = %s %v, want %s %v", tt.base, name, mult, tt.name, tt.mult)
		}
	}
}

func TestCredibilityClamped(t *testing.T) {
	a := intel.Article{
		Source: intel.Source{Domain: "rt.com", BaseCredibility: 5},
		Body:   "propaganda propaganda propaganda rumors speculation unverified",
	}
	score, _ := credibility(a)
	assert.Equal(t, 0.0, score)
}
