// Package metrics exposes Prometheus instruments for search runs and sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
)

var (
	// searchesTotal counts finished runs by outcome
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathviz_searches_total",
		Help: "Total search runs by result",
	}, []string{"result"}) // "found" or "unreachable"

	// searchRejected counts runs refused before the search started
	searchRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathviz_search_rejected_total",
		Help: "Total search runs refused by reason",
	}, []string{"reason"})

	searchExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathviz_search_expanded_cells",
		Help:    "Cells expanded per search run",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~260k
	})

	pathLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathviz_path_length_cells",
		Help:    "Edges on the route of successful runs",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathviz_search_duration_seconds",
		Help:    "Wall-clock duration of search runs including frame pacing",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12), // 0.1ms to ~7min
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pathviz_active_sessions",
		Help: "Sessions currently held in memory",
	})
)

// Outcome labels for ObserveSearch
const (
	ResultFound       = "found"
	ResultUnreachable = "unreachable"
)

// ObserveSearch records one finished run
func ObserveSearch(result engine.Result, elapsed time.Duration) {
	outcome := ResultUnreachable
	if result.Found {
		outcome = ResultFound
		pathLength.Observe(float64(result.Cost))
	}
	searchesTotal.WithLabelValues(outcome).Inc()
	searchExpanded.Observe(float64(result.Expanded))
	searchDuration.Observe(elapsed.Seconds())
}

// ObserveRejected records a run that never started, reason is a short code
func ObserveRejected(reason string) {
	searchRejected.WithLabelValues(reason).Inc()
}

// SetActiveSessions publishes the session count
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
