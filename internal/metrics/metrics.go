// Package metrics exposes the prometheus instruments of the service on a
// dedicated registry, so tests can gather without touching the global one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultRegistry is the registry the transport layer exposes at /metrics.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		StepDuration, InferTotal, BatchRowsTotal,
	)
}

// StepDuration measures runner latency per step.
var StepDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "modelseq_step_duration_seconds",
		Help:    "Duration of one step execution, including boundary verification.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"step"},
)

// InferTotal counts inference requests by operation and status.
var InferTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "modelseq_infer_total",
		Help: "Inference requests by operation and status.",
	},
	[]string{"operation", "status"}, // operation: single | full | batch; status: ok | error
)

// BatchRowsTotal counts batch rows by result.
var BatchRowsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "modelseq_batch_rows_total",
		Help: "Batch rows by result.",
	},
	[]string{"result"}, // ok | failed
)
