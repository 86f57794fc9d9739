package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rhobs/kubeqa/pkg/llm"
	"github.com/rhobs/kubeqa/pkg/model"
)

func TestNewMetrics_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Touch each Vec so it reports at least one series when gathered.
	m.QueriesTotal.WithLabelValues("_init", "_init")
	m.OperationsTotal.WithLabelValues("_init", "_init")
	m.OperationDuration.WithLabelValues("_init")
	m.LLMRequestsTotal.WithLabelValues("_init", "_init", "_init")
	m.LLMLatency.WithLabelValues("_init", "_init")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	registered := make(map[string]bool, len(families))
	for _, f := range families {
		registered[f.GetName()] = true
	}

	for _, name := range []string{
		"kubeqa_queries_total",
		"kubeqa_operations_total",
		"kubeqa_operation_duration_seconds",
		"kubeqa_llm_requests_total",
		"kubeqa_llm_latency_seconds",
		"kubeqa_llm_circuit_state",
	} {
		if !registered[name] {
			t.Errorf("metric %q not registered", name)
		}
	}
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewMetrics(reg)
}

func TestObserve(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveQuery(model.ConfidenceHigh, "keyword")
	m.ObserveQuery(model.ConfidenceHigh, "keyword")
	m.ObserveOperation("list_pods", model.StatusPartial, 40*time.Millisecond)
	m.ObserveLLMRequest("bedrock", "route", "rate_limited", time.Second)
	m.SetCircuitState(llm.CircuitOpen)

	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("high", "keyword")); got != 2 {
		t.Errorf("queries_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("list_pods", "partial")); got != 1 {
		t.Errorf("operations_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("bedrock", "route", "rate_limited")); got != 1 {
		t.Errorf("llm_requests_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LLMCircuitState); got != 1 {
		t.Errorf("llm_circuit_state = %v, want 1", got)
	}
}
