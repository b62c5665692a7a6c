package curation

import (
	"testing"

	"github.com/abelbrown/watchfloor/internal/intel"
)

func TestEvaluate(t *testing.T) {
	g := NewGate()
	tests := []struct {
		name    string
		article intel.Article
		want    bool
	}{
		{
			name: "ad network url",
			article: intel.Article{
				Title: "Missile defense stocks surge",
				URL:   "https://ad.doubleclick.net/clk;123;abc?https://shop.example.com",
			},
			want: true,
		},
		{
			name:    "sponsored path",
			article: intel.Article{Title: "The future of defense", URL: "https://news.example.com/sponsored/future-of-defense"},
			want:    true,
		},
		{
			name:    "paid campaign tag",
			article: intel.Article{Title: "Drones", URL: "https://example.com/drones?utm_source=x&utm_medium=cpc"},
			want:    true,
		},
		{
			name: "two promotional phrases",
			article: intel.Article{
				Title: "Tactical drone sale",
				Body:  "Limited time offer on our military-grade drone. Buy now and get free shipping.",
				URL:   "https://store.example.com/drone",
			},
			want: true,
		},
		{
			name: "one phrase is not enough",
			article: intel.Article{
				Title: "Outlet pulls sponsored segment after backlash",
				Body:  "The broadcaster apologised on Monday.",
				URL:   "https://news.example.com/world/segment",
			},
			want: false,
		},
		{
			name: "news",
			article: intel.Article{
				Title: "Iran confirms new missile test",
				Body:  "State media confirmed the launch.",
				URL:   "https://www.reuters.com/world/iran-missile",
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Evaluate(tt.article)
			if got.Promotional != tt.want {
				t.Errorf("Evaluate() promotional = %v, want %v (matched %v, phrases %v)",
					got.Promotional, tt.want, got.MatchedBy, got.Phrases)
			}
			if got.Promotional && got.Reason == "" {
				t.Error("promotional result without a reason")
			}
		})
	}
}

func TestNewGateSkipsBadPatterns(t *testing.T) {
	g := NewGate(Filter{ID: "bad", Name: "Bad", Patterns: []string{`(`, `(?i)/promo/`}})
	if len(g.filters) != 1 || len(g.filters[0].patterns) != 1 {
		t.Fatalf("expected one compiled pattern, got %+v", g.filters)
	}
	if !g.Evaluate(intel.Article{URL: "https://x.example.com/promo/1"}).Promotional {
		t.Error("custom filter did not match")
	}
}
