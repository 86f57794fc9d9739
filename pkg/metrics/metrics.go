// Package metrics defines and registers the Prometheus collectors for
// kubeqa. Consumers obtain a *Metrics via NewMetrics and hand it to the
// agent, executor and LLM layers, which record through the Observe methods.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rhobs/kubeqa/pkg/llm"
	"github.com/rhobs/kubeqa/pkg/model"
)

const namespace = "kubeqa"

// Metrics holds all Prometheus collectors.
type Metrics struct {
	// QueriesTotal counts answered questions, partitioned by the best routing
	// confidence and the strategy that produced it.
	QueriesTotal *prometheus.CounterVec

	// OperationsTotal counts executed operations, partitioned by operation
	// and result status.
	OperationsTotal *prometheus.CounterVec

	// OperationDuration observes how long each operation took.
	OperationDuration *prometheus.HistogramVec

	// LLMRequestsTotal counts language model calls, partitioned by backend,
	// purpose (route/polish/check) and outcome.
	LLMRequestsTotal *prometheus.CounterVec

	// LLMLatency observes language model response latency.
	LLMLatency *prometheus.HistogramVec

	// LLMCircuitState reports the circuit breaker state:
	// 0 = closed, 1 = open, 2 = half-open.
	LLMCircuitState prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of answered questions.",
			},
			[]string{"confidence", "strategy"},
		),

		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of executed cluster operations.",
			},
			[]string{"operation", "status"},
		),

		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Time spent executing a cluster operation.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),

		LLMRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Total number of language model requests.",
			},
			[]string{"backend", "purpose", "outcome"},
		),

		LLMLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_latency_seconds",
				Help:      "Language model response latency.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30},
			},
			[]string{"backend", "purpose"},
		),

		LLMCircuitState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "llm_circuit_state",
				Help:      "Language model circuit breaker state (0 = closed, 1 = open, 2 = half-open).",
			},
		),
	}

	reg.MustRegister(
		m.QueriesTotal,
		m.OperationsTotal,
		m.OperationDuration,
		m.LLMRequestsTotal,
		m.LLMLatency,
		m.LLMCircuitState,
	)

	return m
}

// ObserveQuery records one answered question.
func (m *Metrics) ObserveQuery(confidence model.Confidence, strategy string) {
	m.QueriesTotal.WithLabelValues(string(confidence), strategy).Inc()
}

// ObserveOperation records one executed operation.
func (m *Metrics) ObserveOperation(operation string, status model.Status, elapsed time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, string(status)).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveLLMRequest records one language model call.
func (m *Metrics) ObserveLLMRequest(backend, purpose, outcome string, elapsed time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(backend, purpose, outcome).Inc()
	m.LLMLatency.WithLabelValues(backend, purpose).Observe(elapsed.Seconds())
}

// SetCircuitState records a circuit breaker transition.
func (m *Metrics) SetCircuitState(state llm.CircuitState) {
	m.LLMCircuitState.Set(float64(state))
}
