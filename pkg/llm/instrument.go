package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Recorder receives one observation per Invoke call.
type Recorder interface {
	ObserveLLMRequest(backend, purpose, outcome string, elapsed time.Duration)
}

// Instrumented wraps a Backend with a trace span and a Recorder observation
// per call.
type Instrumented struct {
	Backend
	recorder Recorder
	tracer   trace.Tracer
}

// Instrument wraps b. A nil recorder only traces.
func Instrument(b Backend, recorder Recorder) *Instrumented {
	return &Instrumented{
		Backend:  b,
		recorder: recorder,
		tracer:   otel.Tracer("github.com/rhobs/kubeqa/pkg/llm"),
	}
}

// Invoke forwards to the wrapped backend.
func (i *Instrumented) Invoke(ctx context.Context, req Request) (*Response, error) {
	ctx, span := i.tracer.Start(ctx, "llm.invoke", trace.WithAttributes(
		attribute.String("llm.backend", i.Name()),
		attribute.String("llm.purpose", string(req.Purpose)),
		attribute.Int("llm.tools", len(req.Tools)),
	))
	defer span.End()

	start := time.Now()
	resp, err := i.Backend.Invoke(ctx, req)
	outcome := Outcome(err)
	if i.recorder != nil {
		i.recorder.ObserveLLMRequest(i.Name(), string(req.Purpose), outcome, time.Since(start))
	}
	span.SetAttributes(attribute.String("llm.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	span.SetAttributes(attribute.Int("llm.tool_calls", len(resp.ToolCalls)))
	return resp, nil
}
