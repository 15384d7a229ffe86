package search

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "termtext"
	metricsSubsystem = "search"
)

// Metrics collects search engine statistics. A nil *Metrics records
// nothing.
type Metrics struct {
	queries           *prometheus.CounterVec
	highlightMatches  prometheus.Histogram
	lineCacheBuilds   prometheus.Counter
	lineCacheDestroys *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg, if not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "queries_total",
			Help:      "Number of find next/previous calls by direction and outcome.",
		}, []string{"direction", "outcome"}),
		highlightMatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "highlight_matches",
			Help:      "Number of matches found by a highlight pass.",
			Buckets:   []float64{0, 1, 10, 100, 500, 1000},
		}),
		lineCacheBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "line_cache_builds_total",
			Help:      "Number of logical lines decoded for searching.",
		}),
		lineCacheDestroys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "line_cache_invalidations_total",
			Help:      "Number of times the line cache was dropped, by reason.",
		}, []string{"reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.queries, m.highlightMatches, m.lineCacheBuilds, m.lineCacheDestroys)
	}
	return m
}

func (m *Metrics) observeQuery(direction string, found bool, err error) {
	if m == nil {
		return
	}
	outcome := "not_found"
	switch {
	case err != nil:
		outcome = "error"
	case found:
		outcome = "found"
	}
	m.queries.WithLabelValues(direction, outcome).Inc()
}

func (m *Metrics) observeHighlight(matches int) {
	if m == nil {
		return
	}
	m.highlightMatches.Observe(float64(matches))
}

func (m *Metrics) cacheBuilt() {
	if m == nil {
		return
	}
	m.lineCacheBuilds.Inc()
}

func (m *Metrics) cacheInvalidated(reason string) {
	if m == nil {
		return
	}
	m.lineCacheDestroys.WithLabelValues(reason).Inc()
}
