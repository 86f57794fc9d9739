package llm

import (
	"strings"
	"testing"
)

func TestParseToolCalls(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		names []string
	}{
		{name: "plain", text: `{"tool": "list_pods", "parameters": {"namespace": "default"}}`, names: []string{"list_pods"}},
		{name: "embedded in prose", text: `Sure! {"tool": "list_nodes", "parameters": {}} Let me check.`, names: []string{"list_nodes"}},
		{name: "several", text: `{"tool":"list_pods","parameters":{}} and {"tool":"list_services","parameters":{}}`, names: []string{"list_pods", "list_services"}},
		{name: "nested in wrapper", text: `{"calls": [{"tool": "list_namespaces"}]}`, names: []string{"list_namespaces"}},
		{name: "malformed", text: `{"tool": "list_pods", "parameters": {`, names: nil},
		{name: "no tool key", text: `{"answer": 42}`, names: nil},
		{name: "no json", text: "The cluster looks fine.", names: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := ParseToolCalls(tt.text)
			if len(calls) != len(tt.names) {
				t.Fatalf("ParseToolCalls() = %+v, want %v", calls, tt.names)
			}
			for i, c := range calls {
				if c.Name != tt.names[i] {
					t.Errorf("call %d = %q, want %q", i, c.Name, tt.names[i])
				}
			}
		})
	}
}

func TestParseToolCallsArguments(t *testing.T) {
	calls := ParseToolCalls(`{"tool": "list_pods", "parameters": {"namespace": "default", "problems_only": true}}`)
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	if calls[0].Arguments["namespace"] != "default" || calls[0].Arguments["problems_only"] != true {
		t.Errorf("Arguments = %v", calls[0].Arguments)
	}
}

func TestToolInstructions(t *testing.T) {
	if ToolInstructions(nil) != "" {
		t.Error("expected no instructions without tools")
	}
	got := ToolInstructions(testTools())
	for _, want := range []string{"- list_pods: List pods", `"namespace"`, `{"tool": "tool_name"`} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions missing %q:\n%s", want, got)
		}
	}
}
