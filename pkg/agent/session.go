package agent

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rhobs/kubeqa/pkg/model"
)

// Session answers questions and owns one SessionHistory.
type Session struct {
	id      string
	engine  *Engine
	history *SessionHistory
}

// NewSession creates a session with an empty history.
func (e *Engine) NewSession(id string) *Session {
	return &Session{id: id, engine: e, history: &SessionHistory{}}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Answer routes, executes and composes one question, records it in the
// session history and returns the response. It always returns a valid
// response; failures are described in its text.
func (s *Session) Answer(ctx context.Context, raw string) model.AgentResponse {
	e := s.engine
	req := model.NewQueryRequest(raw)

	ctx, span := e.tracer.Start(ctx, "agent.answer", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.String("routing.strategy", e.strategy.Name()),
	))
	defer span.End()

	start := time.Now()
	decisions := s.route(ctx, req)
	results := e.executor.Execute(ctx, decisions)
	resp := e.composer.Compose(ctx, req, decisions, results)
	s.history.Append(model.HistoryEntry{Request: req, Response: resp})

	confidence := topConfidence(decisions)
	strategy := e.strategy.Name()
	if len(decisions) > 0 && decisions[0].Strategy != "" {
		strategy = decisions[0].Strategy
	}
	if e.recorder != nil {
		e.recorder.ObserveQuery(confidence, strategy)
	}
	span.SetAttributes(
		attribute.String("routing.confidence", string(confidence)),
		attribute.Int("operations", len(results)),
		attribute.String("status", string(resp.Status())),
	)

	e.logger.Info("Answered query",
		"session", s.id,
		"operations", operationNames(decisions),
		"confidence", confidence,
		"strategy", strategy,
		"status", resp.Status(),
		"duration", time.Since(start),
	)
	e.logger.Debug("Query details", "session", s.id, "query", raw, "routing", decisions, "results", results)
	return resp
}

func (s *Session) route(ctx context.Context, req model.QueryRequest) []model.RoutingDecision {
	ctx, span := s.engine.tracer.Start(ctx, "router.route")
	defer span.End()
	decisions := s.engine.strategy.Route(ctx, req)
	span.SetAttributes(attribute.StringSlice("operations", operationNames(decisions)))
	return decisions
}

// History returns the answered questions of this session, most recent last.
func (s *Session) History() []model.HistoryEntry {
	return s.history.Entries()
}

// RecentHistory returns up to n of the most recent entries.
func (s *Session) RecentHistory(n int) []model.HistoryEntry {
	return s.history.Last(n)
}

func topConfidence(decisions []model.RoutingDecision) model.Confidence {
	best := model.ConfidenceNone
	for _, d := range decisions {
		if !d.Matched() {
			continue
		}
		if d.Confidence == model.ConfidenceHigh {
			return model.ConfidenceHigh
		}
		best = d.Confidence
	}
	return best
}

func operationNames(decisions []model.RoutingDecision) []string {
	names := make([]string, 0, len(decisions))
	for _, d := range decisions {
		if d.Matched() {
			names = append(names, d.OperationName())
		}
	}
	return names
}
