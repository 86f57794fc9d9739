package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIInvoke_ToolCalls(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":null,"tool_calls":[
			{"type":"function","function":{"name":"list_services","arguments":"{\"namespace\":\"billing\"}"}}]}}],
			"usage":{"prompt_tokens":5,"completion_tokens":3}}`))
	}))
	defer srv.Close()

	o, err := NewOpenAI(OpenAIConfig{Model: "gpt-4o-mini", MaxTokens: 256, APIKey: "sk-test", BaseURL: srv.URL + "/v1/"}, testLogger())
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	resp, err := o.Invoke(context.Background(), Request{System: "sys", Prompt: "services in billing", Tools: testTools()})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "list_services" || resp.ToolCalls[0].Arguments["namespace"] != "billing" {
		t.Errorf("ToolCalls = %+v", resp.ToolCalls)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || len(got.Tools) != 1 || got.Tools[0].Type != "function" {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestOpenAIInvoke_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, want: ErrRateLimited},
		{name: "server error", status: http.StatusBadGateway, body: `{}`, want: ErrUnavailable},
		{name: "bad request", status: http.StatusBadRequest, body: `{}`, want: ErrInvalidResponse},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: ErrInvalidResponse},
		{name: "api error", status: http.StatusOK, body: `{"error":{"type":"invalid","message":"nope"}}`, want: ErrInvalidResponse},
		{name: "bad arguments", status: http.StatusOK, body: `{"choices":[{"message":{"tool_calls":[{"type":"function","function":{"name":"x","arguments":"{"}}]}}]}`, want: ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			o, err := NewOpenAI(OpenAIConfig{Model: "m", MaxTokens: 16, BaseURL: srv.URL}, testLogger())
			if err != nil {
				t.Fatalf("NewOpenAI() error = %v", err)
			}
			_, err = o.Invoke(context.Background(), Request{Prompt: "hi"})
			if !errors.Is(err, tt.want) {
				t.Errorf("Invoke() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenAIInvoke_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	o, err := NewOpenAI(OpenAIConfig{Model: "m", MaxTokens: 16, BaseURL: url}, testLogger())
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}
	_, err = o.Invoke(context.Background(), Request{Prompt: "hi"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Invoke() error = %v, want unavailable", err)
	}
	if Outcome(err) != "unavailable" {
		t.Errorf("Outcome() = %q", Outcome(err))
	}
}
