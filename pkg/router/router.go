// Package router maps free-text questions onto catalog operations. Two
// strategies implement the same interface: a deterministic keyword table and
// an LLM tool-selection router that falls back to the keyword table.
package router

import (
	"context"
	"regexp"
	"strings"

	"github.com/rhobs/kubeqa/pkg/model"
)

// Strategy names recorded on routing decisions.
const (
	StrategyKeyword = "keyword"
	StrategyLLM     = "llm"
)

// Strategy maps a query to one or more routing decisions. Implementations
// never fail: a query that cannot be routed yields a single decision with
// model.ConfidenceNone.
type Strategy interface {
	Name() string
	Route(ctx context.Context, req model.QueryRequest) []model.RoutingDecision
}

var (
	punctuation = regexp.MustCompile(`[^a-z0-9\s-]+`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases text, replaces punctuation other than '-' with
// spaces and collapses whitespace.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = punctuation.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
