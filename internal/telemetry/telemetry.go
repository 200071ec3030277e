// Package telemetry exposes pipeline counters as Prometheus metrics on a
// private registry.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "docaudit"

// Metrics holds the pipeline collectors. All methods are no-ops on a nil
// receiver, so callers may pass a nil *Metrics to disable telemetry.
type Metrics struct {
	registry *prometheus.Registry

	unitsScanned        *prometheus.CounterVec
	methodsExtracted    prometheus.Counter
	declarationsSkipped prometheus.Counter
	batchesAssembled    *prometheus.CounterVec
	sectionsReconciled  prometheus.Counter
	metricFailures      prometheus.Counter
	missingResults      prometheus.Counter
	evaluatorCalls      *prometheus.CounterVec
	evaluatorTokens     *prometheus.CounterVec
	evaluatorLatency    *prometheus.HistogramVec
	methodScore         prometheus.Histogram
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Labels: status (ok, failed)
		unitsScanned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "units_total",
			Help:      "Source units scanned by outcome",
		}, []string{"status"}),
		methodsExtracted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "methods_total",
			Help:      "Methods extracted from source units",
		}),
		declarationsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "skipped_total",
			Help:      "Malformed declarations and unterminated bodies",
		}),
		// Labels: kind (normal, oversize)
		batchesAssembled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "assembled_total",
			Help:      "Batches assembled by kind",
		}, []string{"kind"}),
		sectionsReconciled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "sections_total",
			Help:      "Response sections matched to methods",
		}),
		metricFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "validation_failures_total",
			Help:      "Metric lines that failed catalog validation",
		}),
		missingResults: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "missing_results_total",
			Help:      "Methods sent for evaluation without a matching section",
		}),
		// Labels: provider, status (ok, failed)
		evaluatorCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluator",
			Name:      "calls_total",
			Help:      "Evaluation calls by provider and outcome",
		}, []string{"provider", "status"}),
		// Labels: provider, direction (input, output)
		evaluatorTokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluator",
			Name:      "tokens_total",
			Help:      "Tokens reported by the evaluation service",
		}, []string{"provider", "direction"}),
		evaluatorLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluator",
			Name:      "latency_seconds",
			Help:      "Evaluation call latency",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider"}),
		methodScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "overall_score",
			Help:      "Overall score per evaluated method",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
	}
}

// Registry returns the registry for exposition
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordUnit records one scanned source unit
func (m *Metrics) RecordUnit(failed bool, methods, skipped int) {
	if m == nil {
		return
	}
	status := "ok"
	if failed {
		status = "failed"
	}
	m.unitsScanned.WithLabelValues(status).Inc()
	m.methodsExtracted.Add(float64(methods))
	m.declarationsSkipped.Add(float64(skipped))
}

// RecordBatch records an assembled batch
func (m *Metrics) RecordBatch(oversize bool) {
	if m == nil {
		return
	}
	kind := "normal"
	if oversize {
		kind = "oversize"
	}
	m.batchesAssembled.WithLabelValues(kind).Inc()
}

// RecordEvaluation records one evaluator call
func (m *Metrics) RecordEvaluation(provider string, failed bool, inputTokens, outputTokens int, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if failed {
		status = "failed"
	}
	m.evaluatorCalls.WithLabelValues(provider, status).Inc()
	m.evaluatorLatency.WithLabelValues(provider).Observe(seconds)
	if !failed {
		m.evaluatorTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
		m.evaluatorTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

// RecordReconciliation records the outcome of reconciling one batch
func (m *Metrics) RecordReconciliation(sections, validationFailures, missing int) {
	if m == nil {
		return
	}
	m.sectionsReconciled.Add(float64(sections))
	m.metricFailures.Add(float64(validationFailures))
	m.missingResults.Add(float64(missing))
}

// ObserveScore records a method's overall score
func (m *Metrics) ObserveScore(score float64) {
	if m == nil {
		return
	}
	m.methodScore.Observe(score)
}

// WriteTextfile writes the current values in the node_exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
