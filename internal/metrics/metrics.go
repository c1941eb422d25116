// Package metrics exposes Prometheus instrumentation for the pipeline
// worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics instruments pipeline runs. It uses a private registry so
// the worker's /metrics endpoint only exposes what it registers.
type PipelineMetrics struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runsInFlight prometheus.Gauge
}

func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by outcome.",
		},
		[]string{"status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "expense",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Pipeline run duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	runsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "expense",
			Subsystem: "pipeline",
			Name:      "runs_in_flight",
			Help:      "Number of receipts currently being processed.",
		},
	)

	registry.MustRegister(runsTotal, runDuration, runsInFlight)

	return &PipelineMetrics{
		registry:     registry,
		runsTotal:    runsTotal,
		runDuration:  runDuration,
		runsInFlight: runsInFlight,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartRun() {
	m.runsInFlight.Inc()
}

func (m *PipelineMetrics) FinishRun(duration time.Duration, err error) {
	m.runsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}
