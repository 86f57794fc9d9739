// Package llm adapts language model services to the small surface the agent
// needs: one prompt in, free text or tool calls out. Every backend here is
// optional; callers must keep working when Invoke fails.
package llm

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Purpose labels a request for logging and metrics.
type Purpose string

const (
	PurposeRoute  Purpose = "route"
	PurposePolish Purpose = "polish"
	PurposeCheck  Purpose = "check"
)

// Backend is a language model service.
type Backend interface {
	// Name returns the backend identifier (e.g., "bedrock", "openai").
	Name() string

	// Invoke sends one prompt and returns the model's answer.
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// Request is a single-turn prompt, optionally with tools the model may call.
type Request struct {
	Purpose Purpose
	System  string
	Prompt  string
	Tools   []Tool
}

// Tool describes a function the model may ask to invoke.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Response is the model's answer. A response may carry text, tool calls, or
// both.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolCall is one structured invocation request from the model.
type ToolCall struct {
	Name      string
	Arguments map[string]any
}
