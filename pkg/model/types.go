// Package model holds the values that flow between the router, the executor,
// the composer and the session: one query in, one response out.
package model

import (
	"encoding/json"
	"time"

	"github.com/rhobs/kubeqa/pkg/catalog"
)

// Confidence is the qualitative strength of a routing match.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
	// ConfidenceNone means nothing matched and the answer is a clarification.
	ConfidenceNone Confidence = "none"
)

// Status is the outcome of one invoked operation.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// QueryRequest is one incoming question.
type QueryRequest struct {
	RawText   string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// NewQueryRequest stamps raw text with the current time.
func NewQueryRequest(raw string) QueryRequest {
	return QueryRequest{RawText: raw, Timestamp: time.Now()}
}

// RoutingDecision maps a query to a single catalog operation. Operation is nil
// only when Confidence is ConfidenceNone.
type RoutingDecision struct {
	Operation  *catalog.Operation
	Arguments  catalog.Arguments
	Confidence Confidence
	// Strategy names the router that produced the decision ("keyword", "llm").
	Strategy string
}

// NoMatch returns the single decision used when a query cannot be routed.
func NoMatch(strategy string) RoutingDecision {
	return RoutingDecision{Confidence: ConfidenceNone, Strategy: strategy}
}

// OperationName returns the routed operation name, or "" for no match.
func (d RoutingDecision) OperationName() string {
	if d.Operation == nil {
		return ""
	}
	return d.Operation.Name
}

// Matched reports whether the decision references an operation.
func (d RoutingDecision) Matched() bool {
	return d.Confidence != ConfidenceNone && d.Operation != nil
}

func (d RoutingDecision) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Operation  string            `json:"operation,omitempty"`
		Arguments  catalog.Arguments `json:"arguments,omitempty"`
		Confidence Confidence        `json:"confidence"`
		Strategy   string            `json:"strategy,omitempty"`
	}{d.OperationName(), d.Arguments, d.Confidence, d.Strategy})
}

// AllUnmatched reports whether no decision references an operation.
func AllUnmatched(decisions []RoutingDecision) bool {
	for _, d := range decisions {
		if d.Matched() {
			return false
		}
	}
	return true
}

// OperationResult is the outcome of one invoked operation. Records hold the
// structured values returned by the data access layer (see pkg/k8s).
type OperationResult struct {
	Operation string            `json:"operation"`
	Arguments catalog.Arguments `json:"arguments,omitempty"`
	Status    Status            `json:"status"`
	Records   []any             `json:"records"`
	// Error carries the underlying message for failed and partial results.
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// AgentResponse is the terminal artifact handed to a shell.
type AgentResponse struct {
	Text    string            `json:"text"`
	Results []OperationResult `json:"results"`
	Routing []RoutingDecision `json:"routing"`
	// Clarification is set when no operation matched.
	Clarification bool `json:"clarification,omitempty"`
	// Polished is set when the text went through the language model.
	Polished bool `json:"polished,omitempty"`
}

// Status summarizes the per-operation outcomes. A clarification or a response
// whose results all succeeded is ok; all failed is failed; anything else is
// partial.
func (r AgentResponse) Status() Status {
	return Overall(r.Results)
}

// Overall folds a set of results into one status.
func Overall(results []OperationResult) Status {
	if len(results) == 0 {
		return StatusOK
	}
	var ok, failed int
	for _, res := range results {
		switch res.Status {
		case StatusOK:
			ok++
		case StatusFailed:
			failed++
		}
	}
	switch {
	case ok == len(results):
		return StatusOK
	case failed == len(results):
		return StatusFailed
	default:
		return StatusPartial
	}
}

// HistoryEntry is one answered question.
type HistoryEntry struct {
	Request  QueryRequest  `json:"request"`
	Response AgentResponse `json:"response"`
}
