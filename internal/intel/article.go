// Package intel defines the data model shared by the scoring engine:
// the articles going in, the assessments coming out, and the levels
// used to classify them.
package intel

import (
	"strings"
	"time"
)

// Source describes where an article came from.
type Source struct {
	Domain    string `json:"domain"`
	FeedLabel string `json:"feed_label"`

	// BaseCredibility is the caller-supplied track record in 0..100.
	// Zero means the caller did not supply one.
	BaseCredibility int `json:"base_credibility,omitempty"`
}

// Article is the engine input. It is never modified once handed to the engine.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	FetchedAt   time.Time `json:"fetched_at"`
	Source      Source    `json:"source"`

	// Hint is an optional pre-fetched result from an external analysis
	// service. It is only consulted when the engine's own analysis fails.
	Hint *Hint `json:"hint,omitempty"`
}

// Timestamp returns the best known time for the article: the publish time,
// else the fetch time. ok is false when neither is set.
func (a Article) Timestamp() (t time.Time, ok bool) {
	if !a.PublishedAt.IsZero() {
		return a.PublishedAt, true
	}
	if !a.FetchedAt.IsZero() {
		return a.FetchedAt, true
	}
	return time.Time{}, false
}

// Host returns the lowercased source domain, falling back to the URL host.
func (a Article) Host() string {
	if d := strings.ToLower(strings.TrimSpace(a.Source.Domain)); d != "" {
		return strings.TrimPrefix(d, "www.")
	}
	u := strings.ToLower(a.URL)
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.IndexAny(u, "/?#"); i >= 0 {
		u = u[:i]
	}
	if i := strings.LastIndex(u, ":"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimPrefix(u, "www.")
}

// Hint is an alternate summary/entity source supplied by an external
// analysis service (for example an LLM).
type Hint struct {
	Provider string                   `json:"provider,omitempty"`
	Summary  string                   `json:"summary,omitempty"`
	Entities map[EntityClass][]string `json:"entities,omitempty"`
}
