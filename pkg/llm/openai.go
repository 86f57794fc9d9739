package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	openAIHTTPTimeout    = 60 * time.Second
)

// OpenAIConfig holds configuration for an OpenAI-compatible chat completions
// endpoint.
type OpenAIConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
	APIKey      string
	// BaseURL overrides the API root, e.g. for a local vLLM or Ollama server.
	BaseURL string
}

// OpenAI talks to the Chat Completions API with function tools.
type OpenAI struct {
	url         string
	model       string
	maxTokens   int
	temperature float64
	apiKey      string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewOpenAI creates an OpenAI-compatible backend.
func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("openai: maxTokens must be > 0, got %d", cfg.MaxTokens)
	}
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	return &OpenAI{
		url:         strings.TrimRight(base, "/") + "/chat/completions",
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: openAIHTTPTimeout},
		logger:      logger,
	}, nil
}

// Name returns the backend identifier.
func (o *OpenAI) Name() string {
	return "openai"
}

type openAIMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []openAIToolCall `json:"tool_calls,omitempty"`
}

type openAIToolCall struct {
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAIFunction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []openAIMessage `json:"messages"`
	Tools       []openAITool    `json:"tools,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Invoke sends the request to the chat completions endpoint.
func (o *OpenAI) Invoke(ctx context.Context, req Request) (*Response, error) {
	body := openAIRequest{
		Model:       o.model,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, openAIMessage{Role: "user", Content: req.Prompt})
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, openAITool{
			Type:     "function",
			Function: openAIFunction{Name: t.Name, Description: t.Description, Parameters: t.InputSchema},
		})
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("openai: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	o.logger.Debug("sending request to OpenAI", "model", o.model, "purpose", req.Purpose, "tools", len(req.Tools))

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, unavailable(o.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1MB limit
	if err != nil {
		return nil, unavailable(o.Name(), fmt.Errorf("reading response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, rateLimited(o.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, respBody))
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, unavailable(o.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, respBody))
	case resp.StatusCode != http.StatusOK:
		return nil, invalidResponse(o.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, respBody))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, invalidResponse(o.Name(), fmt.Errorf("parsing response JSON: %w", err))
	}
	if parsed.Error != nil {
		return nil, invalidResponse(o.Name(), fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return nil, invalidResponse(o.Name(), errors.New("response contained no choices"))
	}

	msg := parsed.Choices[0].Message
	out := &Response{Text: strings.TrimSpace(msg.Content)}
	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, invalidResponse(o.Name(), fmt.Errorf("tool %s arguments: %w", tc.Function.Name, err))
			}
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{Name: tc.Function.Name, Arguments: args})
	}
	if len(out.ToolCalls) == 0 && len(req.Tools) > 0 {
		out.ToolCalls = ParseToolCalls(out.Text)
	}

	o.logger.Debug("received OpenAI response",
		"input_tokens", parsed.Usage.PromptTokens,
		"output_tokens", parsed.Usage.CompletionTokens,
		"tool_calls", len(out.ToolCalls),
	)
	return out, nil
}
