// Package metrics exposes prometheus collectors for analysis outcomes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abelbrown/watchfloor/internal/intel"
)

const namespace = "watchfloor"

// Metrics holds the collectors on their own registry so tests and
// multiple pipelines never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	assessments *prometheus.CounterVec
	fallbacks   prometheus.Counter
	duplicates  prometheus.Counter
	promotional prometheus.Counter
	duration    prometheus.Histogram
	fetched     *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	published   prometheus.Counter
	lastRunUnix prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Assessments produced, by priority.",
		}, []string{"priority"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Assessments that fell back to the unprocessed result.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_total",
			Help:      "Articles flagged as duplicates of a window article.",
		}),
		promotional: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotional_total",
			Help:      "Articles classified as promotional.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one analysis batch.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		fetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetched_articles_total",
			Help:      "Articles fetched, by feed.",
		}, []string{"feed"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Feed fetch failures, by feed.",
		}, []string{"feed"}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_total",
			Help:      "Assessments published to the message bus.",
		}),
		lastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Completion time of the last pipeline run.",
		}),
	}
	m.registry.MustRegister(
		m.assessments, m.fallbacks, m.duplicates, m.promotional, m.duration,
		m.fetched, m.fetchErrors, m.published, m.lastRunUnix,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveBatch records one analysis batch.
func (m *Metrics) ObserveBatch(out []intel.IntelligenceAssessment, took time.Duration) {
	for _, a := range out {
		m.assessments.WithLabelValues(string(a.Priority)).Inc()
		if a.HasTag(intel.TagUnprocessed) {
			m.fallbacks.Inc()
		}
		if a.Duplicate.IsDuplicate {
			m.duplicates.Inc()
		}
		if a.Promotional {
			m.promotional.Inc()
		}
	}
	m.duration.Observe(took.Seconds())
}

// ObserveFetch records the outcome of fetching one feed.
func (m *Metrics) ObserveFetch(feed string, n int, err error) {
	if err != nil {
		m.fetchErrors.WithLabelValues(feed).Inc()
		return
	}
	m.fetched.WithLabelValues(feed).Add(float64(n))
}

// ObservePublished counts assessments sent to the bus.
func (m *Metrics) ObservePublished(n int) {
	m.published.Add(float64(n))
}

// ObserveRun stamps the completion of a pipeline run.
func (m *Metrics) ObserveRun(at time.Time) {
	m.lastRunUnix.Set(float64(at.Unix()))
}
