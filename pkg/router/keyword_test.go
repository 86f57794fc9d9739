package router

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func route(t *testing.T, query string) []model.RoutingDecision {
	t.Helper()
	r := NewKeywordRouter(catalog.Default(), testLogger())
	return r.Route(context.Background(), model.NewQueryRequest(query))
}

func names(decisions []model.RoutingDecision) []string {
	out := make([]string, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, d.OperationName())
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"How many PODS are running?", "how many pods are running"},
		{"  pods\tin   kube-system!! ", "pods in kube-system"},
		{"What's the cluster overview?", "what s the cluster overview"},
		{"", ""},
		{"?!.", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeywordRoute(t *testing.T) {
	tests := []struct {
		query      string
		operations []string
		args       []catalog.Arguments
		confidence model.Confidence
	}{
		{
			query:      "How many pods are running?",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "Show me services in namespace billing",
			operations: []string{catalog.OpListServices},
			args:       []catalog.Arguments{{"namespace": "billing"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "Show me pods in the default namespace",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{"namespace": "default"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "List services in kube-system namespace",
			operations: []string{catalog.OpListServices},
			args:       []catalog.Arguments{{"namespace": "kube-system"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "kubectl get pods -n monitoring",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{"namespace": "monitoring"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "pods in ns payments",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{"namespace": "payments"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "list pods ns",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "which pods sit behind a svc",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "list svc",
			operations: []string{catalog.OpListServices},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceLow,
		},
		{
			query:      "pods behind the load balancer",
			operations: []string{catalog.OpListPods, catalog.OpListServices},
			args:       []catalog.Arguments{{}, {"type": "LoadBalancer"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "Are there any failed pods?",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{"status": "Failed"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "List all running pods",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{"status": "Running"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "Which pods are crashlooping in namespace shop?",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{"namespace": "shop", "problems_only": true}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "pods that are not running",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{"problems_only": true}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "List all nodes",
			operations: []string{catalog.OpListNodes},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "How many nodes are ready?",
			operations: []string{catalog.OpListNodes},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "Which nodes are not ready?",
			operations: []string{catalog.OpListNodes},
			args:       []catalog.Arguments{{"status": "NotReady"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "show ready nodes",
			operations: []string{catalog.OpListNodes},
			args:       []catalog.Arguments{{"status": "Ready"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "What namespaces exist?",
			operations: []string{catalog.OpListNamespaces},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "What services are exposed?",
			operations: []string{catalog.OpListServices},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "anything exposed?",
			operations: []string{catalog.OpListServices},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceLow,
		},
		{
			query:      "show me the load balancers",
			operations: []string{catalog.OpListServices},
			args:       []catalog.Arguments{{"type": "LoadBalancer"}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "how many machines do we have",
			operations: []string{catalog.OpListNodes},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceLow,
		},
		{
			query:      "pods on worker machines",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "Show pods and nodes",
			operations: []string{catalog.OpListPods, catalog.OpListNodes},
			args:       []catalog.Arguments{{}, {}},
			confidence: model.ConfidenceHigh,
		},
		{
			query:      "summary of pods",
			operations: []string{catalog.OpListPods},
			args:       []catalog.Arguments{{}},
			confidence: model.ConfidenceHigh,
		},
		{
			query: "What's the cluster overview?",
			operations: []string{
				catalog.OpGetClusterInfo, catalog.OpListPods, catalog.OpListNodes,
				catalog.OpListNamespaces, catalog.OpListServices,
			},
			args:       []catalog.Arguments{{}, {}, {}, {}, {}},
			confidence: model.ConfidenceHigh,
		},
		{
			query: "How is my cluster doing?",
			operations: []string{
				catalog.OpGetClusterInfo, catalog.OpListPods, catalog.OpListNodes,
				catalog.OpListNamespaces, catalog.OpListServices,
			},
			args:       []catalog.Arguments{{}, {}, {}, {}, {}},
			confidence: model.ConfidenceHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := route(t, tt.query)
			if !reflect.DeepEqual(names(got), tt.operations) {
				t.Fatalf("operations = %v, want %v", names(got), tt.operations)
			}
			for i, d := range got {
				if !reflect.DeepEqual(d.Arguments, tt.args[i]) {
					t.Errorf("%s arguments = %v, want %v", d.OperationName(), d.Arguments, tt.args[i])
				}
				if d.Confidence != tt.confidence {
					t.Errorf("%s confidence = %q, want %q", d.OperationName(), d.Confidence, tt.confidence)
				}
				if d.Strategy != StrategyKeyword {
					t.Errorf("Strategy = %q", d.Strategy)
				}
			}
		})
	}
}

func TestKeywordRouteNoMatch(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n", "asdlkj random text", "?!", "what is the weather like"} {
		got := route(t, query)
		if len(got) != 1 {
			t.Fatalf("Route(%q) returned %d decisions, want 1", query, len(got))
		}
		if got[0].Confidence != model.ConfidenceNone || got[0].Operation != nil {
			t.Errorf("Route(%q) = %+v, want no match", query, got[0])
		}
	}
}

func TestKeywordRoutePodOnlyQueries(t *testing.T) {
	fillers := []string{"show", "me", "the", "all", "list", "please", "how", "many", "are", "there", "in", "my", "cluster", "what", "current", "state"}
	for i := range fillers {
		for j := range fillers {
			for _, pod := range []string{"pod", "pods", "Pod?"} {
				query := strings.Join([]string{fillers[i], pod, fillers[j]}, " ")
				got := names(route(t, query))
				if !reflect.DeepEqual(got, []string{catalog.OpListPods}) {
					t.Fatalf("Route(%q) = %v, want [list_pods]", query, got)
				}
			}
		}
	}
}

func TestKeywordRouteDecisionsReferenceCatalog(t *testing.T) {
	cat := catalog.Default()
	for _, query := range []string{"overview", "pods nodes namespaces services", "svc in ns x"} {
		for _, d := range route(t, query) {
			if !d.Matched() {
				continue
			}
			if _, _, err := cat.Validate(d.OperationName(), d.Arguments); err != nil {
				t.Errorf("Route(%q) produced invalid decision %s %v: %v", query, d.OperationName(), d.Arguments, err)
			}
		}
	}
}

func TestExtractNamespaceStopWords(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"pods in namespace billing", "billing"},
		{"namespace status", ""},
		{"what namespace is this", ""},
		{"pods in the namespace called web-1", "web-1"},
		{"pods in namespace -bad", ""},
	}
	for _, tt := range tests {
		p, _ := extract(tt.text)
		if p.namespace != tt.want {
			t.Errorf("extract(%q).namespace = %q, want %q", tt.text, p.namespace, tt.want)
		}
	}
}
