// Package metrics exposes nerva's Prometheus instrumentation: DAG
// node execution counts/durations and dispatcher request latency.
// Collection is always on; scraping is opt-in via NERVA_METRICS_ADDR
// and the "serve-metrics" CLI command.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DagNodeExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nerva",
		Subsystem: "dag",
		Name:      "node_executions_total",
		Help:      "Total DAG node executions, by dag, node, and outcome.",
	}, []string{"dag", "node", "outcome"})

	DagNodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nerva",
		Subsystem: "dag",
		Name:      "node_duration_seconds",
		Help:      "DAG node execution latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"dag", "node"})

	DispatchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nerva",
		Subsystem: "dispatcher",
		Name:      "dispatch_duration_seconds",
		Help:      "End-to-end Dispatch() latency in seconds, by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})

	DispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nerva",
		Subsystem: "dispatcher",
		Name:      "dispatch_total",
		Help:      "Total Dispatch() calls, by route and status.",
	}, []string{"route", "status"})
)

// ObserveDagNode records a single DAG node's outcome and duration.
// outcome is "ok" or "error".
func ObserveDagNode(dag, node, outcome string, duration time.Duration) {
	DagNodeExecutions.WithLabelValues(dag, node, outcome).Inc()
	DagNodeDuration.WithLabelValues(dag, node).Observe(duration.Seconds())
}

// ObserveDispatch records a single Dispatch() call's route, status,
// and duration. status is "ok", "refused", or "failed".
func ObserveDispatch(route, status string, duration time.Duration) {
	DispatchTotal.WithLabelValues(route, status).Inc()
	DispatchLatency.WithLabelValues(route, status).Observe(duration.Seconds())
}

// Handler returns the HTTP handler serve-metrics mounts at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
