// Package fetch retrieves RSS and Atom feeds and converts their entries to
// articles for analysis.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/abelbrown/watchfloor/internal/intel"
)

const (
	userAgent = "watchfloor/1.0 (+https://github.com/abelbrown/watchfloor)"

	// maxBodyRunes bounds article bodies taken from full feed content.
	maxBodyRunes = 4000
)

// Source is one configured feed.
type Source struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`

	// Domain overrides the publisher domain derived from entry links.
	Domain   string `yaml:"domain,omitempty" json:"domain,omitempty"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`

	// Credibility is the caller-supplied track record, 0..100; 0 is unknown.
	Credibility int `yaml:"credibility,omitempty" json:"credibility,omitempty"`
}

// Fetcher retrieves articles from feed sources. Requests to the same host
// are spaced at least minInterval apart.
type Fetcher struct {
	client      *http.Client
	minInterval time.Duration
	now         func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher creates a Fetcher with the given HTTP client timeout and
// per-host request spacing. A zero minInterval disables spacing.
func NewFetcher(timeout, minInterval time.Duration) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		minInterval: minInterval,
		now:         time.Now,
		limiters:    make(map[string]*rate.Limiter),
	}
}

// Fetch retrieves articles from a source. It does not store them.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]intel.Article, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url %q: %w", src.URL, err)
	}
	if err := f.wait(ctx, u.Host); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	label := src.Name
	if label == "" {
		label = feed.Title
	}
	now := f.now()
	articles := make([]intel.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, convertFeedItem(item, src, label, now))
	}
	return articles, nil
}

func (f *Fetcher) wait(ctx context.Context, host string) error {
	if f.minInterval <= 0 {
		return nil
	}
	f.mu.Lock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(f.minInterval), 1)
		f.limiters[host] = lim
	}
	f.mu.Unlock()
	return lim.Wait(ctx)
}

// convertFeedItem converts a gofeed.Item to an article. PublishedAt stays
// zero when the feed gives no date; the engine then ages by FetchedAt.
func convertFeedItem(item *gofeed.Item, src Source, label string, fetched time.Time) intel.Article {
	var published time.Time
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	body := CleanText(item.Description)
	if body == "" && item.Content != "" {
		body = truncate(CleanText(item.Content), maxBodyRunes)
	}

	domain := src.Domain
	if domain == "" {
		if u, err := url.Parse(item.Link); err == nil {
			domain = u.Hostname()
		}
	}

	return intel.Article{
		ID:          generateID(item),
		Title:       CleanText(item.Title),
		Body:        body,
		URL:         item.Link,
		PublishedAt: published,
		FetchedAt:   fetched,
		Source: intel.Source{
			Domain:          domain,
			FeedLabel:       label,
			BaseCredibility: src.Credibility,
		},
	}
}

// CleanText strips markup from feed HTML and collapses whitespace.
func CleanText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// generateID creates a deterministic ID for a feed item.
// Uses the GUID if available, otherwise hashes the URL.
func generateID(item *gofeed.Item) string {
	if item.GUID != "" {
		return hashString(item.GUID)
	}
	if item.Link != "" {
		return hashString(item.Link)
	}
	key := item.Title
	if item.PublishedParsed != nil {
		key += item.PublishedParsed.String()
	}
	return hashString(key)
}

// ArticleID derives a deterministic id for an article that arrived
// without one, from its URL, title and best timestamp.
func ArticleID(a intel.Article) string {
	key := a.URL + "\x00" + a.Title
	if ts, ok := a.Timestamp(); ok {
		key += "\x00" + ts.UTC().Format(time.RFC3339Nano)
	}
	return hashString(key)
}

// hashString creates a short hash of a string for use as an ID.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:8])
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
