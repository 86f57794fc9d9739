package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/llm"
	"github.com/rhobs/kubeqa/pkg/model"
)

// DefaultLLMTimeout bounds one tool-selection call.
const DefaultLLMTimeout = 15 * time.Second

// LLMRouter asks a language model to pick catalog operations. Selections
// naming unknown operations or carrying invalid arguments are discarded; when
// nothing valid remains the fallback strategy routes instead.
type LLMRouter struct {
	backend  llm.Backend
	catalog  *catalog.Catalog
	fallback Strategy
	timeout  time.Duration
	tools    []llm.Tool
	logger   *slog.Logger
}

var _ Strategy = (*LLMRouter)(nil)

// NewLLMRouter creates an LLM router. A zero timeout uses DefaultLLMTimeout.
func NewLLMRouter(backend llm.Backend, cat *catalog.Catalog, fallback Strategy, timeout time.Duration, logger *slog.Logger) *LLMRouter {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	return &LLMRouter{
		backend:  backend,
		catalog:  cat,
		fallback: fallback,
		timeout:  timeout,
		tools:    Tools(cat),
		logger:   logger,
	}
}

// Tools binds the catalog's operations as LLM tools.
func Tools(cat *catalog.Catalog) []llm.Tool {
	ops := cat.List()
	tools := make([]llm.Tool, 0, len(ops))
	for _, op := range ops {
		tools = append(tools, llm.Tool{
			Name:        op.Name,
			Description: op.Description,
			InputSchema: op.JSONSchema(),
		})
	}
	return tools
}

// Name returns the strategy name.
func (r *LLMRouter) Name() string {
	return StrategyLLM
}

// Route asks the backend first and falls back on any failure.
func (r *LLMRouter) Route(ctx context.Context, req model.QueryRequest) []model.RoutingDecision {
	if Normalize(req.RawText) == "" {
		return r.fallback.Route(ctx, req)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.backend.Invoke(callCtx, llm.Request{
		Purpose: llm.PurposeRoute,
		System:  RoutingPrompt,
		Prompt:  req.RawText,
		Tools:   r.tools,
	})
	if err != nil {
		r.logger.Warn("language model routing failed, using keyword routing", "backend", r.backend.Name(), "error", err)
		return r.fallback.Route(ctx, req)
	}

	var decisions []model.RoutingDecision
	seen := make(map[string]bool)
	for _, call := range resp.ToolCalls {
		op, args, err := r.catalog.Validate(call.Name, call.Arguments)
		if err != nil {
			r.logger.Warn("discarding language model tool selection", "tool", call.Name, "error", err)
			continue
		}
		key := op.Name + "|" + argsKey(args)
		if seen[key] {
			continue
		}
		seen[key] = true
		decisions = append(decisions, model.RoutingDecision{
			Operation:  op,
			Arguments:  args,
			Confidence: model.ConfidenceHigh,
			Strategy:   StrategyLLM,
		})
	}

	if len(decisions) == 0 {
		r.logger.Info("language model selected no valid operation, using keyword routing", "tool_calls", len(resp.ToolCalls))
		return r.fallback.Route(ctx, req)
	}
	return decisions
}
