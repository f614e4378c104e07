// Package metrics registers the small set of prometheus collectors this
// service needs to make the testable properties in spec.md §8 observable
// in production, not just in unit tests: breaker state, warmup duration,
// and item-level fetch failures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BreakerState is 0=closed, 1=half_open, 2=open, so dashboards can
	// graph §8 property 7 ("breaker admission") without scraping logs.
	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jritnews",
		Subsystem: "upstream",
		Name:      "breaker_state",
		Help:      "Circuit breaker state: 0=closed, 1=half_open, 2=open.",
	})

	// WarmupDuration observes how long each warmup() call takes end to end.
	WarmupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jritnews",
		Subsystem: "warmup",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of a single warmup cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// WarmupFailures counts warmups that returned an error.
	WarmupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jritnews",
		Subsystem: "warmup",
		Name:      "failures_total",
		Help:      "Count of warmup cycles that failed (id list fetch or store write).",
	})

	// ItemFetchFailures counts per-item fetch failures swallowed by the
	// fan-out fetcher / per-item micro-cache (spec.md §4.2/§4.3: never
	// propagated, but always counted and logged at warn).
	ItemFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jritnews",
		Subsystem: "fanout",
		Name:      "item_fetch_failures_total",
		Help:      "Count of individual item fetches that failed and were swallowed.",
	})

	// SnapshotStories tracks the size of the most recently published
	// snapshot, satisfying §8 property 3 as a live gauge.
	SnapshotStories = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jritnews",
		Subsystem: "warmup",
		Name:      "snapshot_stories",
		Help:      "Number of stories in the most recently published snapshot.",
	})
)

// BreakerStateValue maps gobreaker's State.String() output to the gauge
// values documented on BreakerState.
func BreakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default: // "closed"
		return 0
	}
}
