// Package middleware provides cross-cutting concerns for the analytics
// engine: metrics collection, tracing and formula instrumentation.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-scout/internal/ports"
)

// Metric names understood by PrometheusMetrics. Any other name is routed
// to the generic operation counter, gauge or latency histogram.
const (
	MetricFormulaEvaluations = "formula_evaluations_total"
	MetricFormulaValue       = "formula_value"
	MetricFormulaLatency     = "formula_evaluation"
	MetricDatasetReloads     = "dataset_reloads_total"
	MetricRecordsLoaded      = "records_loaded"
	MetricTeamsLoaded        = "teams_loaded"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks formula evaluations, their latency and value
// distribution, and the size of the currently loaded dataset.
type PrometheusMetrics struct {
	formulaEvaluations *prometheus.CounterVec
	formulaValues      *prometheus.HistogramVec
	executionLatency   *prometheus.HistogramVec
	operationCounter   *prometheus.CounterVec
	engineGauges       *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its collectors with reg. A nil reg leaves the collectors unregistered,
// which lets tests build as many instances as they like.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		formulaEvaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scout",
				Name:      MetricFormulaEvaluations,
				Help:      "Total number of formula evaluations by outcome.",
			},
			[]string{"formula", "status"},
		),
		formulaValues: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "scout",
				Name:      MetricFormulaValue,
				Help:      "Distribution of successfully evaluated formula values.",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
			[]string{"formula"},
		),
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "scout",
				Name:      "operation_duration_seconds",
				Help:      "Execution time of engine operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "formula"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scout",
				Name:      "operations_total",
				Help:      "Total number of engine operations by outcome.",
			},
			[]string{"operation", "status"},
		),
		engineGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "scout",
				Name:      "engine_state",
				Help:      "Current state of the loaded dataset and engine.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, label(labels, "formula")).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	status := labels["status"]
	if status == "" {
		status = "ok"
	}

	switch metric {
	case MetricFormulaEvaluations:
		pm.formulaEvaluations.WithLabelValues(label(labels, "formula"), status).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, status).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.engineGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface. Formula values
// get their own histogram; anything else lands in the latency histogram
// under the metric's name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case MetricFormulaValue:
		pm.formulaValues.WithLabelValues(label(labels, "formula")).Observe(value)
	default:
		pm.executionLatency.WithLabelValues(metric, label(labels, "formula")).Observe(value)
	}
}

// label returns labels[key], or "unknown" when it is missing or empty.
func label(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
