package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/k8s"
	"github.com/rhobs/kubeqa/pkg/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeReader is a scriptable k8s.ClusterReader. Nil funcs return empty data.
type fakeReader struct {
	namespaces func(ctx context.Context) ([]k8s.NamespaceRecord, error)
	pods       func(ctx context.Context, f k8s.PodFilter) ([]k8s.PodRecord, error)
	nodes      func(ctx context.Context, f k8s.NodeFilter) ([]k8s.NodeRecord, error)
	services   func(ctx context.Context, f k8s.ServiceFilter) ([]k8s.ServiceRecord, error)
	summary    func(ctx context.Context) (k8s.ClusterSummary, error)
	calls      atomic.Int32
}

func (f *fakeReader) ListNamespaces(ctx context.Context) ([]k8s.NamespaceRecord, error) {
	f.calls.Add(1)
	if f.namespaces == nil {
		return nil, nil
	}
	return f.namespaces(ctx)
}

func (f *fakeReader) ListPods(ctx context.Context, filter k8s.PodFilter) ([]k8s.PodRecord, error) {
	f.calls.Add(1)
	if f.pods == nil {
		return nil, nil
	}
	return f.pods(ctx, filter)
}

func (f *fakeReader) ListNodes(ctx context.Context, filter k8s.NodeFilter) ([]k8s.NodeRecord, error) {
	f.calls.Add(1)
	if f.nodes == nil {
		return nil, nil
	}
	return f.nodes(ctx, filter)
}

func (f *fakeReader) ListServices(ctx context.Context, filter k8s.ServiceFilter) ([]k8s.ServiceRecord, error) {
	f.calls.Add(1)
	if f.services == nil {
		return nil, nil
	}
	return f.services(ctx, filter)
}

func (f *fakeReader) ClusterSummary(ctx context.Context) (k8s.ClusterSummary, error) {
	f.calls.Add(1)
	if f.summary == nil {
		return k8s.ClusterSummary{}, nil
	}
	return f.summary(ctx)
}

type observation struct {
	operation string
	status    model.Status
}

type fakeRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *fakeRecorder) ObserveOperation(operation string, status model.Status, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{operation, status})
}

func decision(t *testing.T, name string, args catalog.Arguments) model.RoutingDecision {
	t.Helper()
	op, err := catalog.Default().Get(name)
	if err != nil {
		t.Fatalf("Get(%q): %v", name, err)
	}
	return model.RoutingDecision{Operation: op, Arguments: args, Confidence: model.ConfidenceHigh, Strategy: "keyword"}
}

func forbidden() error {
	return apierrors.NewForbidden(schema.GroupResource{Resource: "pods"}, "", errors.New("rbac"))
}

func TestExecuteOrderAndFilters(t *testing.T) {
	var gotFilter k8s.PodFilter
	reader := &fakeReader{
		pods: func(ctx context.Context, f k8s.PodFilter) ([]k8s.PodRecord, error) {
			gotFilter = f
			time.Sleep(20 * time.Millisecond)
			return []k8s.PodRecord{{Name: "a"}, {Name: "b"}}, nil
		},
		nodes: func(ctx context.Context, f k8s.NodeFilter) ([]k8s.NodeRecord, error) {
			return []k8s.NodeRecord{{Name: "n1", Status: k8s.NodeReady}}, nil
		},
	}
	rec := &fakeRecorder{}
	e := New(catalog.Default(), reader, Config{}, rec, testLogger())

	results := e.Execute(context.Background(), []model.RoutingDecision{
		decision(t, catalog.OpListPods, catalog.Arguments{"namespace": "shop", "status": "running"}),
		decision(t, catalog.OpListNodes, nil),
	})

	if len(results) != 2 {
		t.Fatalf("Execute() returned %d results, want 2", len(results))
	}
	if results[0].Operation != catalog.OpListPods || results[1].Operation != catalog.OpListNodes {
		t.Errorf("results out of decision order: %s, %s", results[0].Operation, results[1].Operation)
	}
	for _, r := range results {
		if r.Status != model.StatusOK {
			t.Errorf("%s status = %s (%s)", r.Operation, r.Status, r.Error)
		}
	}
	if len(results[0].Records) != 2 {
		t.Errorf("pods records = %d, want 2", len(results[0].Records))
	}
	if _, ok := results[0].Records[0].(k8s.PodRecord); !ok {
		t.Errorf("record type = %T, want k8s.PodRecord", results[0].Records[0])
	}
	want := k8s.PodFilter{Namespace: "shop", Phase: "Running"}
	if gotFilter != want {
		t.Errorf("pod filter = %+v, want %+v", gotFilter, want)
	}
	if results[0].Arguments.String("status") != "Running" {
		t.Errorf("normalized arguments = %v", results[0].Arguments)
	}
	if len(rec.obs) != 2 {
		t.Errorf("recorder saw %d observations, want 2", len(rec.obs))
	}
}

func TestExecuteSkipsUnmatched(t *testing.T) {
	reader := &fakeReader{}
	e := New(catalog.Default(), reader, Config{}, nil, testLogger())

	results := e.Execute(context.Background(), []model.RoutingDecision{model.NoMatch("keyword")})
	if results != nil {
		t.Errorf("Execute() = %v, want nil", results)
	}
	if reader.calls.Load() != 0 {
		t.Errorf("reader called %d times", reader.calls.Load())
	}
}

func TestExecuteValidationFailsBeforeDataAccess(t *testing.T) {
	reader := &fakeReader{}
	e := New(catalog.Default(), reader, Config{}, nil, testLogger())

	results := e.Execute(context.Background(), []model.RoutingDecision{
		decision(t, catalog.OpListServices, catalog.Arguments{"namespace": "Bad_Name"}),
		decision(t, catalog.OpListNodes, catalog.Arguments{"color": "blue"}),
		decision(t, catalog.OpListPods, catalog.Arguments{"status": "Exploded"}),
	})

	for _, r := range results {
		if r.Status != model.StatusFailed {
			t.Errorf("%s status = %s, want failed", r.Operation, r.Status)
		}
		if !strings.Contains(r.Error, "invalid argument") {
			t.Errorf("%s error = %q", r.Operation, r.Error)
		}
	}
	if reader.calls.Load() != 0 {
		t.Errorf("reader called %d times, want 0", reader.calls.Load())
	}
}

func TestExecuteUnknownOperation(t *testing.T) {
	e := New(catalog.Default(), &fakeReader{}, Config{}, nil, testLogger())
	d := model.RoutingDecision{
		Operation:  &catalog.Operation{Name: "delete_pods"},
		Confidence: model.ConfidenceHigh,
	}
	results := e.Execute(context.Background(), []model.RoutingDecision{d})
	if len(results) != 1 || results[0].Status != model.StatusFailed || !strings.Contains(results[0].Error, "not found") {
		t.Errorf("Execute() = %+v", results)
	}
}

func TestExecuteFailureDoesNotAbortBatch(t *testing.T) {
	reader := &fakeReader{
		pods: func(ctx context.Context, f k8s.PodFilter) ([]k8s.PodRecord, error) {
			return nil, k8s.Classify("list pods", forbidden())
		},
		nodes: func(ctx context.Context, f k8s.NodeFilter) ([]k8s.NodeRecord, error) {
			return []k8s.NodeRecord{{Name: "n1"}}, nil
		},
	}
	e := New(catalog.Default(), reader, Config{}, nil, testLogger())

	results := e.Execute(context.Background(), []model.RoutingDecision{
		decision(t, catalog.OpListPods, nil),
		decision(t, catalog.OpListNodes, nil),
	})
	if results[0].Status != model.StatusFailed || !strings.HasPrefix(results[0].Error, "permission denied") {
		t.Errorf("pods result = %+v", results[0])
	}
	if results[1].Status != model.StatusOK || len(results[1].Records) != 1 {
		t.Errorf("nodes result = %+v", results[1])
	}
	if model.Overall(results) != model.StatusPartial {
		t.Errorf("Overall() = %s, want partial", model.Overall(results))
	}
}

func TestExecutePartialResult(t *testing.T) {
	reader := &fakeReader{
		pods: func(ctx context.Context, f k8s.PodFilter) ([]k8s.PodRecord, error) {
			return []k8s.PodRecord{{Name: "a", Namespace: "default"}}, &k8s.PartialError{
				Op:       "list pods",
				Failures: map[string]error{"kube-system": k8s.Classify("list pods", forbidden())},
			}
		},
		summary: func(ctx context.Context) (k8s.ClusterSummary, error) {
			return k8s.ClusterSummary{TotalPods: 1, Unavailable: []string{"nodes"}}, &k8s.PartialError{
				Op:       "get cluster info",
				Failures: map[string]error{"nodes": errors.New("boom")},
			}
		},
	}
	e := New(catalog.Default(), reader, Config{}, nil, testLogger())

	results := e.Execute(context.Background(), []model.RoutingDecision{
		decision(t, catalog.OpListPods, nil),
		decision(t, catalog.OpGetClusterInfo, nil),
	})
	for _, r := range results {
		if r.Status != model.StatusPartial || len(r.Records) != 1 {
			t.Errorf("%s = %+v, want partial with one record", r.Operation, r)
		}
	}
	if !strings.Contains(results[0].Error, "kube-system") {
		t.Errorf("partial error = %q", results[0].Error)
	}
}

func TestExecuteTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	reader := &fakeReader{
		services: func(ctx context.Context, f k8s.ServiceFilter) ([]k8s.ServiceRecord, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		nodes: func(ctx context.Context, f k8s.NodeFilter) ([]k8s.NodeRecord, error) {
			// Ignores ctx entirely; the executor must still return.
			<-release
			return nil, nil
		},
	}
	e := New(catalog.Default(), reader, Config{Timeout: 30 * time.Millisecond}, nil, testLogger())

	start := time.Now()
	results := e.Execute(context.Background(), []model.RoutingDecision{
		decision(t, catalog.OpListServices, nil),
		decision(t, catalog.OpListNodes, nil),
	})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Execute() took %s", elapsed)
	}
	for _, r := range results {
		if r.Status != model.StatusFailed || !strings.HasPrefix(r.Error, "timed out") {
			t.Errorf("%s = %s %q, want timed out failure", r.Operation, r.Status, r.Error)
		}
	}
}

func TestExecuteConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := func(ctx context.Context) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
	}
	reader := &fakeReader{
		namespaces: func(ctx context.Context) ([]k8s.NamespaceRecord, error) { slow(ctx); return nil, nil },
		pods:       func(ctx context.Context, f k8s.PodFilter) ([]k8s.PodRecord, error) { slow(ctx); return nil, nil },
		nodes:      func(ctx context.Context, f k8s.NodeFilter) ([]k8s.NodeRecord, error) { slow(ctx); return nil, nil },
		services: func(ctx context.Context, f k8s.ServiceFilter) ([]k8s.ServiceRecord, error) {
			slow(ctx)
			return nil, nil
		},
		summary: func(ctx context.Context) (k8s.ClusterSummary, error) { slow(ctx); return k8s.ClusterSummary{}, nil },
	}
	e := New(catalog.Default(), reader, Config{MaxConcurrency: 2}, nil, testLogger())

	var decisions []model.RoutingDecision
	for _, op := range catalog.Operations() {
		decisions = append(decisions, decision(t, op.Name, nil))
	}
	results := e.Execute(context.Background(), decisions)
	if len(results) != len(decisions) {
		t.Fatalf("Execute() returned %d results", len(results))
	}
	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}
