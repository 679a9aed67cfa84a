// Package metrics exposes the ambient Prometheus surface: lane queue
// depth, order lifecycle counters, trade throughput, and a snapshot publish
// latency histogram. The histogram is registered and exposed, but nothing
// in the engine observes into it, so it stays empty. Carried regardless of spec.md's market-data non-goals, since
// this is observability, not a feature — grounded on
// DimaJoyti-ai-agentic-crypto-browser and VictorVVedtion-perp-dex's use of
// github.com/prometheus/client_golang.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the engine's Prometheus collectors. Register them on a
// *prometheus.Registry at process startup (see cmd/server).
type Metrics struct {
	LaneQueueDepth    *prometheus.GaugeVec
	OrdersPlaced      *prometheus.CounterVec
	OrdersCancelled   *prometheus.CounterVec
	OrdersModified    *prometheus.CounterVec
	OrdersRejected    *prometheus.CounterVec
	TradesMatched     *prometheus.CounterVec
	SnapshotPublishMs prometheus.Histogram
}

// New constructs and registers the metric collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LaneQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "matchbook",
			Subsystem: "lane",
			Name:      "queue_depth",
			Help:      "Number of requests currently buffered for a lane.",
		}, []string{"ticker"}),
		OrdersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchbook",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Number of orders placed, by side.",
		}, []string{"ticker", "side"}),
		OrdersCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchbook",
			Subsystem: "orders",
			Name:      "cancelled_total",
			Help:      "Number of orders cancelled.",
		}, []string{"ticker"}),
		OrdersModified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchbook",
			Subsystem: "orders",
			Name:      "modified_total",
			Help:      "Number of orders modified (re-priced).",
		}, []string{"ticker"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchbook",
			Subsystem: "orders",
			Name:      "rejected_total",
			Help:      "Number of orders rejected at intake or by the kernel.",
		}, []string{"ticker", "reason"}),
		TradesMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchbook",
			Subsystem: "trades",
			Name:      "matched_total",
			Help:      "Number of trades produced by the matching kernel.",
		}, []string{"ticker"}),
		SnapshotPublishMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matchbook",
			Subsystem: "feed",
			Name:      "snapshot_publish_duration_ms",
			Help:      "Time spent producing and fanning out one snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.LaneQueueDepth,
		m.OrdersPlaced,
		m.OrdersCancelled,
		m.OrdersModified,
		m.OrdersRejected,
		m.TradesMatched,
		m.SnapshotPublishMs,
	)
	return m
}
