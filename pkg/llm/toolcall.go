package llm

import (
	"encoding/json"
	"strings"
)

// textToolCall is the JSON shape models without native tool support are
// prompted to emit: {"tool": "list_pods", "parameters": {"namespace": "x"}}.
type textToolCall struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

// ParseToolCalls extracts every {"tool": ..., "parameters": ...} object
// embedded in free text, in order of appearance. Malformed fragments are
// skipped.
func ParseToolCalls(text string) []ToolCall {
	var calls []ToolCall
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		var tc textToolCall
		if err := json.Unmarshal(raw, &tc); err == nil && tc.Tool != "" {
			calls = append(calls, ToolCall{Name: tc.Tool, Arguments: tc.Parameters})
			i += int(dec.InputOffset()) - 1
		}
	}
	return calls
}

// ToolInstructions renders tools as plain text for models that only accept a
// prompt, asking for the JSON shape ParseToolCalls understands.
func ToolInstructions(tools []Tool) string {
	if len(tools) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Available tools:\n")
	for _, t := range tools {
		b.WriteString("- ")
		b.WriteString(t.Name)
		b.WriteString(": ")
		b.WriteString(t.Description)
		if t.InputSchema != nil && len(t.InputSchema.Properties) > 0 {
			if schema, err := json.Marshal(t.InputSchema); err == nil {
				b.WriteString(" Parameters schema: ")
				b.Write(schema)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\nTo use a tool, respond with JSON in this format:\n")
	b.WriteString(`{"tool": "tool_name", "parameters": {"param": "value"}}`)
	b.WriteString("\nOne JSON object per tool to call.\n")
	return b.String()
}
