//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"
)

const (
	mcpEndpoint     = "/mcp"
	sessionIDHeader = "Mcp-Session-Id"
	protocolVersion = "2025-06-18"
	requestTimeout  = 30 * time.Second
)

// MCPRequest represents an MCP JSON-RPC request
type MCPRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id,omitempty"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// MCPResponse represents an MCP JSON-RPC response
type MCPResponse struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Result  map[string]any `json:"result,omitempty"`
	Error   *MCPError      `json:"error,omitempty"`
}

// MCPError represents an MCP JSON-RPC error
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MCPClient talks to the streamable HTTP endpoint. The server keeps one
// agent session per MCP session, so the client carries the session id
// returned by initialize on every later request.
type MCPClient struct {
	baseURL string
	client  *http.Client

	mu        sync.Mutex
	sessionID string
}

// NewMCPClient creates a new MCP client with the given base URL
func NewMCPClient(baseURL string) *MCPClient {
	return &MCPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Initialize opens an MCP session.
func (c *MCPClient) Initialize() error {
	resp, err := c.send(MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
		Params: map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]any{"name": "kubeqa-e2e", "version": "0.0.1"},
		},
	})
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("initialize failed: %s", resp.Error.Message)
	}
	return c.notify("notifications/initialized")
}

// SessionID returns the MCP session id assigned by the server.
func (c *MCPClient) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *MCPClient) post(req MCPRequest) (*http.Response, []byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+mcpEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if id := c.SessionID(); id != "" {
		httpReq.Header.Set(sessionIDHeader, id)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	if id := resp.Header.Get(sessionIDHeader); id != "" {
		c.mu.Lock()
		c.sessionID = id
		c.mu.Unlock()
	}
	return resp, respBody, nil
}

func (c *MCPClient) notify(method string) error {
	resp, body, err := c.post(MCPRequest{JSONRPC: "2.0", Method: method})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status %d for %s: %s", resp.StatusCode, method, string(body))
	}
	return nil
}

// SendRequest sends an MCP request and returns the response
func (c *MCPClient) SendRequest(t *testing.T, req MCPRequest) (*MCPResponse, error) {
	t.Helper()
	return c.send(req)
}

func (c *MCPClient) send(req MCPRequest) (*MCPResponse, error) {
	resp, respBody, err := c.post(req)
	if err != nil {
		return nil, err
	}

	// Validate HTTP status code - MCP/JSON-RPC should always return 200 OK
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected HTTP status %d: %s", resp.StatusCode, string(respBody))
	}

	var mcpResp MCPResponse
	if err := json.Unmarshal(respBody, &mcpResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w (status: %d, body: %s)", err, resp.StatusCode, string(respBody))
	}

	return &mcpResp, nil
}

// CallTool is a convenience method for calling an MCP tool
func (c *MCPClient) CallTool(t *testing.T, id int, toolName string, args map[string]any) (*MCPResponse, error) {
	t.Helper()

	req := MCPRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "tools/call",
		Params: map[string]any{
			"name":      toolName,
			"arguments": args,
		},
	}

	return c.SendRequest(t, req)
}

// ToolText returns the text content of a tool result.
func ToolText(resp *MCPResponse) string {
	if resp == nil || resp.Result == nil {
		return ""
	}
	content, _ := resp.Result["content"].([]any)
	var buf bytes.Buffer
	for _, item := range content {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := block["text"].(string); ok {
			buf.WriteString(text)
		}
	}
	return buf.String()
}

// IsToolError reports whether the tool result is flagged as an error.
func IsToolError(resp *MCPResponse) bool {
	if resp == nil || resp.Result == nil {
		return false
	}
	isError, _ := resp.Result["isError"].(bool)
	return isError
}
