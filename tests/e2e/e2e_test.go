//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"testing"
)

var (
	kubeqa    *harness
	mcpClient *MCPClient
)

func TestMain(m *testing.M) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := deploymentFromEnv()
	if err != nil {
		fmt.Printf("Invalid e2e environment: %v\n", err)
		os.Exit(1)
	}
	kubeqa, err = connect(ctx, d)
	if err != nil {
		fmt.Printf("Failed to reach kubeqa: %v\n", err)
		os.Exit(1)
	}
	mcpClient = kubeqa.client

	code := m.Run()
	kubeqa.Close()
	os.Exit(code)
}

func TestHealthEndpoint(t *testing.T) {
	resp, err := http.Get(kubeqa.baseURL + "/health")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestToolsList(t *testing.T) {
	resp, err := mcpClient.SendRequest(t, MCPRequest{JSONRPC: "2.0", ID: 2, Method: "tools/list"})
	if err != nil {
		t.Fatalf("Failed to list tools: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("MCP error: %s", resp.Error.Message)
	}

	resultJSON, _ := json.Marshal(resp.Result)
	for _, name := range []string{"ask_cluster", "list_operations", "query_history"} {
		if !strings.Contains(string(resultJSON), `"name":"`+name+`"`) {
			t.Errorf("Expected tool %q in tools/list", name)
		}
	}
}

func TestAskClusterNamespaces(t *testing.T) {
	resp, err := mcpClient.CallTool(t, 3, "ask_cluster", map[string]any{
		"query": "list all namespaces",
	})
	if err != nil {
		t.Fatalf("Failed to call ask_cluster: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("MCP error: %s", resp.Error.Message)
	}
	if IsToolError(resp) {
		t.Fatalf("Unexpected tool error: %s", ToolText(resp))
	}

	text := ToolText(resp)
	for _, ns := range []string{"kube-system", kubeqa.namespace} {
		if !strings.Contains(text, ns) {
			t.Errorf("Expected namespace %q in answer:\n%s", ns, text)
		}
	}
}

func TestAskClusterPodsInNamespace(t *testing.T) {
	resp, err := mcpClient.CallTool(t, 4, "ask_cluster", map[string]any{
		"query": "how many pods are running in " + kubeqa.namespace + "?",
	})
	if err != nil {
		t.Fatalf("Failed to call ask_cluster: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("MCP error: %s", resp.Error.Message)
	}

	text := ToolText(resp)
	if !strings.Contains(text, "pod") {
		t.Errorf("Expected a pod listing, got:\n%s", text)
	}
	if !strings.Contains(text, "running") {
		t.Errorf("Expected running count in answer:\n%s", text)
	}
}

func TestAskClusterNodes(t *testing.T) {
	resp, err := mcpClient.CallTool(t, 5, "ask_cluster", map[string]any{
		"query": "what nodes do we have?",
	})
	if err != nil {
		t.Fatalf("Failed to call ask_cluster: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("MCP error: %s", resp.Error.Message)
	}

	text := ToolText(resp)
	if !strings.Contains(text, "ready") {
		t.Errorf("Expected node readiness in answer:\n%s", text)
	}
}

func TestAskClusterOverview(t *testing.T) {
	resp, err := mcpClient.CallTool(t, 6, "ask_cluster", map[string]any{
		"query": "give me a cluster overview",
	})
	if err != nil {
		t.Fatalf("Failed to call ask_cluster: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("MCP error: %s", resp.Error.Message)
	}
	if IsToolError(resp) {
		t.Fatalf("Unexpected tool error: %s", ToolText(resp))
	}
	if !strings.Contains(ToolText(resp), "Nodes") {
		t.Errorf("Expected node section in overview:\n%s", ToolText(resp))
	}
}

func TestAskClusterClarification(t *testing.T) {
	resp, err := mcpClient.CallTool(t, 7, "ask_cluster", map[string]any{
		"query": "what is the meaning of life?",
	})
	if err != nil {
		t.Fatalf("Failed to call ask_cluster: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("MCP error: %s", resp.Error.Message)
	}

	structured, _ := resp.Result["structuredContent"].(map[string]any)
	if clarification, _ := structured["clarification"].(bool); !clarification {
		t.Errorf("Expected clarification response, got: %v", resp.Result)
	}
}

func TestAskClusterMissingQuery(t *testing.T) {
	resp, err := mcpClient.CallTool(t, 8, "ask_cluster", map[string]any{})
	if err != nil {
		t.Fatalf("Failed to call ask_cluster: %v", err)
	}
	if !IsToolError(resp) {
		t.Errorf("Expected error for missing query parameter, got: %v", resp.Result)
	}
}

func TestListOperations(t *testing.T) {
	resp, err := mcpClient.CallTool(t, 9, "list_operations", map[string]any{})
	if err != nil {
		t.Fatalf("Failed to call list_operations: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("MCP error: %s", resp.Error.Message)
	}

	structured, _ := resp.Result["structuredContent"].(map[string]any)
	ops, _ := structured["operations"].([]any)
	if len(ops) != 5 {
		t.Errorf("Expected 5 operations, got %d", len(ops))
	}
}

func TestQueryHistory(t *testing.T) {
	const question = "list services in kube-system"
	if _, err := mcpClient.CallTool(t, 10, "ask_cluster", map[string]any{"query": question}); err != nil {
		t.Fatalf("Failed to call ask_cluster: %v", err)
	}

	resp, err := mcpClient.CallTool(t, 11, "query_history", map[string]any{"limit": 5})
	if err != nil {
		t.Fatalf("Failed to call query_history: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("MCP error: %s", resp.Error.Message)
	}

	structured, _ := resp.Result["structuredContent"].(map[string]any)
	entries, _ := structured["entries"].([]any)
	if len(entries) == 0 {
		t.Fatal("Expected history entries")
	}
	last, _ := entries[len(entries)-1].(map[string]any)
	if last["query"] != question {
		t.Errorf("Last history entry = %v, want %q", last["query"], question)
	}
}
