// Package compose turns operation results into the answer text. The
// deterministic rendering is always produced; a language model may rephrase
// it when polishing is enabled, and any failure there keeps the rendering.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rhobs/kubeqa/pkg/llm"
	"github.com/rhobs/kubeqa/pkg/model"
)

// DefaultPolishTimeout bounds one polish call.
const DefaultPolishTimeout = 15 * time.Second

const looseMatchNote = "ℹ This answer is based on a loose match of your question. Rephrase it if this is not what you meant."

// Config tunes the composer.
type Config struct {
	// Polish sends the rendering through the backend for phrasing.
	Polish        bool
	PolishTimeout time.Duration
}

// Composer assembles AgentResponses.
type Composer struct {
	backend llm.Backend
	cfg     Config
	logger  *slog.Logger
}

// New creates a composer. backend may be nil, which disables polishing.
func New(backend llm.Backend, cfg Config, logger *slog.Logger) *Composer {
	if cfg.PolishTimeout <= 0 {
		cfg.PolishTimeout = DefaultPolishTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{backend: backend, cfg: cfg, logger: logger}
}

// Compose builds the response for one query.
func (c *Composer) Compose(ctx context.Context, req model.QueryRequest, decisions []model.RoutingDecision, results []model.OperationResult) model.AgentResponse {
	resp := model.AgentResponse{
		Results: results,
		Routing: decisions,
	}
	if resp.Results == nil {
		resp.Results = []model.OperationResult{}
	}

	if model.AllUnmatched(decisions) {
		resp.Text = Clarification()
		resp.Clarification = true
		return resp
	}

	text := Render(results)
	if allLoose(decisions) {
		text += "\n\n" + looseMatchNote
	}
	resp.Text = text

	if c.cfg.Polish && c.backend != nil {
		if polished, ok := c.polish(ctx, req.RawText, text); ok {
			resp.Text = polished
			resp.Polished = true
		}
	}
	return resp
}

func allLoose(decisions []model.RoutingDecision) bool {
	for _, d := range decisions {
		if d.Confidence != model.ConfidenceLow {
			return false
		}
	}
	return len(decisions) > 0
}

// Clarification lists example questions by category.
func Clarification() string {
	var b strings.Builder
	b.WriteString("I couldn't tell which part of the cluster your question is about. ")
	b.WriteString("I can answer questions about pods, nodes, namespaces and services, for example:")
	for _, g := range Examples() {
		fmt.Fprintf(&b, "\n\n**%s:**", g.Category)
		for _, q := range g.Queries {
			fmt.Fprintf(&b, "\n• %s", q)
		}
	}
	return b.String()
}

const polishPrompt = `You rewrite answers about a Kubernetes cluster so they read naturally.

Rules:
1. Keep every number, name, status and warning from the draft. Do not add facts.
2. Answer the user's question directly in the first sentence.
3. Keep lists as markdown bullet lists.
4. Reply with the rewritten answer only.`

func (c *Composer) polish(ctx context.Context, question, draft string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.PolishTimeout)
	defer cancel()

	out, err := c.backend.Invoke(ctx, llm.Request{
		Purpose: llm.PurposePolish,
		System:  polishPrompt,
		Prompt:  fmt.Sprintf("Question: %s\n\nDraft answer:\n%s", question, draft),
	})
	if err != nil {
		c.logger.Warn("polishing failed, returning deterministic answer", "backend", c.backend.Name(), "error", err)
		return "", false
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		c.logger.Warn("language model returned an empty polish, returning deterministic answer", "backend", c.backend.Name())
		return "", false
	}
	return text, true
}
