package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

var (
	// Registry holds the feed engine's collectors.
	Registry = prometheus.NewRegistry()

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedgraph",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by cache name and result (hit, miss, error).",
		},
		[]string{"cache", "result"},
	)

	invalidationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "feedgraph",
			Subsystem: "cache",
			Name:      "invalidation_failures_total",
			Help:      "Graph cache invalidations that could not reach the backend.",
		},
	)

	feedDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "feedgraph",
			Subsystem: "feed",
			Name:      "assemble_duration_seconds",
			Help:      "Time to assemble one feed page.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"feed", "status"},
	)

	hydrationBatch = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "feedgraph",
			Subsystem: "feed",
			Name:      "hydration_batch_size",
			Help:      "Posts decorated per hydration pass.",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 300},
		},
	)
)

func init() {
	Registry.MustRegister(
		cacheLookups,
		invalidationFailures,
		feedDuration,
		hydrationBatch,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordCacheLookup(cache, result string) {
	cacheLookups.WithLabelValues(cache, result).Inc()
}

func RecordInvalidationFailure() {
	invalidationFailures.Inc()
}

func ObserveFeed(feed string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	feedDuration.WithLabelValues(feed, status).Observe(time.Since(start).Seconds())
}

func ObserveHydration(size int) {
	hydrationBatch.Observe(float64(size))
}
