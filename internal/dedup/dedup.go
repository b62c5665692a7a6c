// Package dedup flags articles that repeat a story already in the recent
// window. Similarity is lexical: Jaccard overlap of case-folded token sets,
// weighted towards the title.
package dedup

import (
	"strings"
	"time"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

const (
	TitleWeight = 0.7
	BodyWeight  = 0.3

	DefaultThreshold = 0.8
	DefaultWindow    = 24 * time.Hour

	// CorroborationThreshold is the title similarity at which an article
	// from another source counts as covering the same event.
	CorroborationThreshold = 0.3
)

// updateIndicators in a newer duplicate's title mark it as an update worth
// surfacing.
var updateIndicators = []string{
	"UPDATE", "UPDATED", "UPDATES", "BREAKING", "CONFIRMED", "DEVELOPING",
	"LATEST", "NEW DETAILS", "JUST IN",
}

// Detector compares an article against a window snapshot. It holds no
// state between calls and is safe for concurrent use.
type Detector struct {
	threshold float64
	window    time.Duration
	priorOnly bool
	updates   *textmatch.Index
}

type Option func(*Detector)

// WithThreshold sets the similarity an article must exceed to be a duplicate.
func WithThreshold(t float64) Option {
	return func(d *Detector) {
		if t > 0 && t <= 1 {
			d.threshold = t
		}
	}
}

// WithWindow sets the maximum publication distance to a candidate.
func WithWindow(w time.Duration) Option {
	return func(d *Detector) {
		if w > 0 {
			d.window = w
		}
	}
}

// WithPriorOnly skips candidates published after the article. Use it when
// the window holds the batch being analyzed, so two copies of a story do
// not each report the other.
func WithPriorOnly() Option {
	return func(d *Detector) { d.priorOnly = true }
}

func New(opts ...Option) *Detector {
	d := &Detector{
		threshold: DefaultThreshold,
		window:    DefaultWindow,
		updates:   textmatch.Keys(updateIndicators...),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Detector) Threshold() float64    { return d.threshold }
func (d *Detector) Window() time.Duration { return d.window }

// Check scans window in order and reports the first candidate whose
// similarity strictly exceeds the threshold. Similarity on a miss is the
// highest seen, for diagnostics.
func (d *Detector) Check(a intel.Article, window []intel.Article) intel.DuplicateVerdict {
	var v intel.DuplicateVerdict
	fp := fingerprint(a)
	for _, cand := range window {
		if !d.candidate(a, cand) {
			continue
		}
		sim := fp.similarity(fingerprint(cand))
		if sim > d.threshold {
			return intel.DuplicateVerdict{
				IsDuplicate:         true,
				DuplicateOfID:       cand.ID,
				Similarity:          intel.Round(sim, 4),
				IsSignificantUpdate: d.isUpdate(a, cand),
			}
		}
		if sim > v.Similarity {
			v.Similarity = intel.Round(sim, 4)
		}
	}
	return v
}

// candidate excludes the article itself and anything published further
// away than the window. Articles without a timestamp are always compared.
func (d *Detector) candidate(a, cand intel.Article) bool {
	if sameArticle(a, cand) {
		return false
	}
	at, ok1 := a.Timestamp()
	ct, ok2 := cand.Timestamp()
	if !ok1 || !ok2 {
		return true
	}
	delta := at.Sub(ct)
	if d.priorOnly && delta < 0 {
		return false
	}
	if delta < 0 {
		delta = -delta
	}
	return delta <= d.window
}

// sameArticle matches by id; id-less articles match when every field does.
func sameArticle(a, b intel.Article) bool {
	if a.ID != "" || b.ID != "" {
		return a.ID == b.ID
	}
	return a.Title == b.Title &&
		a.Body == b.Body &&
		a.URL == b.URL &&
		a.Source == b.Source &&
		a.PublishedAt.Equal(b.PublishedAt) &&
		a.FetchedAt.Equal(b.FetchedAt)
}

func (d *Detector) isUpdate(a, cand intel.Article) bool {
	at, ok1 := a.Timestamp()
	ct, ok2 := cand.Timestamp()
	if !ok1 || !ok2 || !at.After(ct) {
		return false
	}
	return d.updates.Contains(textmatch.Tokenize(a.Title))
}

// Corroborations counts window articles from a different source that
// cover the same event without duplicating a.
func (d *Detector) Corroborations(a intel.Article, window []intel.Article) int {
	host := a.Host()
	title := tokenSet(a.Title)
	n := 0
	for _, cand := range window {
		if !d.candidate(a, cand) || cand.Host() == "" || cand.Host() == host {
			continue
		}
		if len(title) == 0 {
			continue
		}
		if Similarity(a, cand) > d.threshold {
			continue
		}
		if Jaccard(title, tokenSet(cand.Title)) >= CorroborationThreshold {
			n++
		}
	}
	return n
}

// Similarity is the title/body weighted Jaccard similarity of two articles.
// It is symmetric and Similarity(a, a) is 1.
func Similarity(a, b intel.Article) float64 {
	return fingerprint(a).similarity(fingerprint(b))
}

type fprint struct {
	title, body map[string]struct{}
}

func fingerprint(a intel.Article) fprint {
	return fprint{title: tokenSet(a.Title), body: tokenSet(a.Body)}
}

func (p fprint) similarity(o fprint) float64 {
	return TitleWeight*Jaccard(p.title, o.title) + BodyWeight*Jaccard(p.body, o.body)
}

// Jaccard returns |a∩b| / |a∪b|. Two empty sets are identical; an empty
// set shares nothing with a non-empty one.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	words := textmatch.Tokenize(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
