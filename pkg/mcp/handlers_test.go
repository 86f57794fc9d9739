package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/rhobs/kubeqa/pkg/agent"
	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/k8s"
)

func testOptions(t *testing.T) KubeQAOptions {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := fake.NewSimpleClientset(
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default"},
			Status:     corev1.PodStatus{Phase: corev1.PodRunning},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "job", Namespace: "default"},
			Status:     corev1.PodStatus{Phase: corev1.PodPending},
		},
	)
	engine, err := agent.NewEngine(agent.Options{Reader: k8s.NewReader(client, logger), Logger: logger})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return KubeQAOptions{Manager: agent.NewManager(engine, 0)}
}

// newMockRequest creates a CallToolRequest with the given parameters
func newMockRequest(name string, params map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: params,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestNewMCPServerRequiresManager(t *testing.T) {
	if _, err := NewMCPServer(KubeQAOptions{}); err == nil {
		t.Fatal("expected error without a session manager")
	}
}

func TestToolsList(t *testing.T) {
	srv, err := NewMCPServer(testOptions(t))
	if err != nil {
		t.Fatalf("NewMCPServer() error = %v", err)
	}
	msg := srv.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, name := range []string{"ask_cluster", "list_operations", "query_history"} {
		if !strings.Contains(string(data), `"name":"`+name+`"`) {
			t.Errorf("tools/list missing %s: %s", name, data)
		}
	}
}

func TestAskClusterHandler(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		wantErr  bool
		contains string
	}{
		{
			name:     "counting question",
			args:     map[string]any{"query": "How many pods are running?"},
			contains: "Found 2 pods (1 running)",
		},
		{
			name:     "unroutable question",
			args:     map[string]any{"query": "asdlkj random text"},
			contains: "Pods:",
		},
		{
			name:    "missing query",
			args:    map[string]any{},
			wantErr: true,
		},
		{
			name:    "blank query",
			args:    map[string]any{"query": "   "},
			wantErr: true,
		},
		{
			name:    "unknown argument",
			args:    map[string]any{"query": "pods", "cluster": "prod"},
			wantErr: true,
		},
	}

	handler := AskClusterHandler(testOptions(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), newMockRequest("ask_cluster", tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if result.IsError != tt.wantErr {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.wantErr, resultText(t, result))
			}
			if tt.wantErr {
				return
			}
			if text := resultText(t, result); !strings.Contains(text, tt.contains) {
				t.Errorf("text = %q, want it to contain %q", text, tt.contains)
			}
			if result.StructuredContent == nil {
				t.Error("expected structured content")
			}
		})
	}
}

func TestListOperationsHandler(t *testing.T) {
	result, err := ListOperationsHandler(testOptions(t))(context.Background(), newMockRequest("list_operations", nil))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output, ok := result.StructuredContent.(OperationsOutput)
	if !ok {
		t.Fatalf("structured content is %T", result.StructuredContent)
	}
	if len(output.Operations) != 5 {
		t.Errorf("got %d operations, want 5", len(output.Operations))
	}
	if output.Strategy != "keyword" || output.Mode != "mock" {
		t.Errorf("strategy %q mode %q, want keyword/mock", output.Strategy, output.Mode)
	}
}

func TestQueryHistoryHandler(t *testing.T) {
	opts := testOptions(t)
	ask := AskClusterHandler(opts)
	for _, q := range []string{"list pods", "list nodes", "list namespaces"} {
		if _, err := ask(context.Background(), newMockRequest("ask_cluster", map[string]any{"query": q})); err != nil {
			t.Fatal(err)
		}
	}

	result, err := QueryHistoryHandler(opts)(context.Background(), newMockRequest("query_history", map[string]any{"limit": float64(2)}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output, ok := result.StructuredContent.(HistoryOutput)
	if !ok {
		t.Fatalf("structured content is %T", result.StructuredContent)
	}
	if len(output.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(output.Entries))
	}
	if output.Entries[0].Query != "list nodes" || output.Entries[1].Query != "list namespaces" {
		t.Errorf("entries = %+v, want most recent last", output.Entries)
	}

	bad, err := QueryHistoryHandler(opts)(context.Background(), newMockRequest("query_history", map[string]any{"limit": "lots"}))
	if err != nil {
		t.Fatal(err)
	}
	if !bad.IsError {
		t.Error("expected error result for invalid limit")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, err := NewMCPServer(testOptions(t))
	if err != nil {
		t.Fatal(err)
	}
	handler := Handler(srv, &http.Server{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, healthEndpoint, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestAllTools(t *testing.T) {
	tools := AllTools()
	want := catalog.ShellTools().Names()
	if len(tools) != len(want) {
		t.Fatalf("AllTools() returned %d tools, want %d", len(tools), len(want))
	}
	for i, tool := range tools {
		if tool.Name != want[i] {
			t.Errorf("tool %d = %s, want %s", i, tool.Name, want[i])
		}
		if tool.Annotations.ReadOnlyHint == nil || !*tool.Annotations.ReadOnlyHint {
			t.Errorf("tool %s is not marked read-only", tool.Name)
		}
	}
	if len(tools[0].OutputSchema.Properties) != 0 {
		t.Errorf("%s should not declare an output schema", tools[0].Name)
	}
	if _, ok := tools[1].OutputSchema.Properties["operations"]; !ok {
		t.Errorf("%s output schema missing operations", tools[1].Name)
	}
}
