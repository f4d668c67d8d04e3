// Package metrics exposes the daemon's Prometheus collectors. Collectors
// are registered on the default registry; main serves them via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Loads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadsync_loads_total",
		Help: "Completed load (fetch-and-merge) cycles.",
	})
	LoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadsync_load_failures_total",
		Help: "Load cycles that failed at the remote fetch.",
	})
	Sends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadsync_sends_total",
		Help: "Messages confirmed by the remote service.",
	})
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadsync_send_failures_total",
		Help: "Optimistic sends rejected or timed out; entries kept as failed.",
	})
	Deletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadsync_deletes_total",
		Help: "Messages deleted remotely and locally.",
	})
	DeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadsync_delete_failures_total",
		Help: "Remote deletes that failed; caches left unchanged.",
	})
	StoreWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadsync_store_write_failures_total",
		Help: "Local mirror writes that failed after the in-memory update.",
	})
	RetentionPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "threadsync_retention_pruned_total",
		Help: "Local messages pruned by the retention job.",
	})
	GatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "threadsync_gateway_seconds",
		Help:    "Remote gateway round-trip latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
