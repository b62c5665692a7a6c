// Package curation recognises advertisements and promotional content so
// they can be kept out of the intelligence stream whatever keywords they
// happen to contain.
package curation

import (
	"regexp"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// MinPromoPhrases is how many distinct promotional phrases mark body text
// as promotional on their own.
const MinPromoPhrases = 2

// Filter is a named group of URL patterns.
type Filter struct {
	ID       string
	Name     string
	Patterns []string
}

// DefaultFilters returns the ad-network and paid-content URL filters.
func DefaultFilters() []Filter {
	return []Filter{
		{
			ID:   "ad-networks",
			Name: "Ad Networks",
			Patterns: []string{
				`(?i)doubleclick\.net`,
				`(?i)googleadservices\.com`,
				`(?i)googlesyndication\.com`,
				`(?i)adservice\.`,
				`(?i)taboola\.com`,
				`(?i)outbrain\.com`,
				`(?i)adclick`,
				`(?i)[?&]utm_medium=(?:cpc|paid|display|affiliate)`,
			},
		},
		{
			ID:   "ads-sponsored",
			Name: "Ads & Sponsored",
			Patterns: []string{
				`(?i)/sponsored/`,
				`(?i)/branded-content/`,
				`(?i)/partner/`,
				`(?i)/paid-post/`,
				`(?i)/advertisement/`,
				`(?i)/advertorial/`,
			},
		},
		{
			ID:   "shopping-deals",
			Name: "Shopping & Deals",
			Patterns: []string{
				`(?i)/deals/`,
				`(?i)/coupons/`,
				`(?i)/shopping/`,
				`(?i)/reviewed/`,
				`(?i)/underscored/`,
			},
		},
	}
}

// promoPhrases are counted in the title and body.
var promoPhrases = []string{
	"SPONSORED", "SPONSORED CONTENT", "PAID CONTENT", "PARTNER CONTENT", "ADVERTISEMENT",
	"ADVERTORIAL", "BUY NOW", "SHOP NOW", "ORDER NOW", "SUBSCRIBE NOW", "SIGN UP TODAY",
	"LIMITED TIME OFFER", "LIMITED-TIME OFFER", "SPECIAL OFFER", "EXCLUSIVE DEAL", "BEST DEALS",
	"PRICE DROP", "DISCOUNT", "PROMO CODE", "COUPON", "FREE SHIPPING", "FREE TRIAL",
	"CLICK HERE", "ACT NOW", "DON'T MISS OUT", "MONEY-BACK GUARANTEE", "AFFILIATE LINK",
}

// Result is the outcome of evaluating one article.
type Result struct {
	Promotional bool     `json:"promotional"`
	MatchedBy   []string `json:"matched_by,omitempty"`
	Phrases     []string `json:"phrases,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}

type compiledFilter struct {
	Filter
	patterns []*regexp.Regexp
}

// Gate classifies articles as promotional. It is safe for concurrent use.
type Gate struct {
	filters []compiledFilter
	phrases *textmatch.Index
}

// NewGate compiles filters; patterns that fail to compile are skipped.
func NewGate(filters ...Filter) *Gate {
	if len(filters) == 0 {
		filters = DefaultFilters()
	}
	g := &Gate{phrases: textmatch.Keys(promoPhrases...)}
	for _, f := range filters {
		cf := compiledFilter{Filter: f}
		for _, p := range f.Patterns {
			if re, err := regexp.Compile(p); err == nil {
				cf.patterns = append(cf.patterns, re)
			}
		}
		g.filters = append(g.filters, cf)
	}
	return g
}

// Evaluate reports whether a is an advertisement: its URL matches an ad
// filter, or its text carries at least MinPromoPhrases promotional phrases.
func (g *Gate) Evaluate(a intel.Article) Result {
	var r Result
	for _, f := range g.filters {
		for _, re := range f.patterns {
			if re.MatchString(a.URL) {
				r.MatchedBy = append(r.MatchedBy, f.Name)
				r.Reason = "Matched pattern: " + re.String()
				break
			}
		}
	}

	words := append(textmatch.Tokenize(a.Title), textmatch.Tokenize(a.Body)...)
	r.Phrases = g.phrases.Distinct(words, nil)
	if len(r.MatchedBy) == 0 && len(r.Phrases) >= MinPromoPhrases {
		r.Reason = "Promotional phrasing"
	}
	r.Promotional = len(r.MatchedBy) > 0 || len(r.Phrases) >= MinPromoPhrases
	return r
}
