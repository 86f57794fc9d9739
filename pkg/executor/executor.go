// Package executor invokes routed operations against the read-only cluster
// reader. Independent operations run concurrently, each under its own
// timeout, and every failure is captured in that operation's result.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/k8s"
	"github.com/rhobs/kubeqa/pkg/model"
)

const (
	DefaultTimeout        = 10 * time.Second
	DefaultMaxConcurrency = 4
)

// Recorder receives one observation per executed operation.
type Recorder interface {
	ObserveOperation(operation string, status model.Status, elapsed time.Duration)
}

// Config tunes the executor. Zero values use the defaults.
type Config struct {
	Timeout        time.Duration
	MaxConcurrency int
}

// Executor validates and dispatches routing decisions.
type Executor struct {
	catalog  *catalog.Catalog
	reader   k8s.ClusterReader
	cfg      Config
	recorder Recorder
	tracer   trace.Tracer
	logger   *slog.Logger
}

// New creates an executor. recorder may be nil.
func New(cat *catalog.Catalog, reader k8s.ClusterReader, cfg Config, recorder Recorder, logger *slog.Logger) *Executor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		catalog:  cat,
		reader:   reader,
		cfg:      cfg,
		recorder: recorder,
		tracer:   otel.Tracer("github.com/rhobs/kubeqa/pkg/executor"),
		logger:   logger,
	}
}

// Execute runs every matched decision and returns one result per matched
// decision, in decision order. Decisions with no operation produce no result.
func (e *Executor) Execute(ctx context.Context, decisions []model.RoutingDecision) []model.OperationResult {
	var matched []model.RoutingDecision
	for _, d := range decisions {
		if d.Matched() {
			matched = append(matched, d)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	results := make([]model.OperationResult, len(matched))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxConcurrency)
	for i, d := range matched {
		g.Go(func() error {
			results[i] = e.run(gctx, d)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Executor) run(ctx context.Context, d model.RoutingDecision) model.OperationResult {
	name := d.OperationName()
	ctx, span := e.tracer.Start(ctx, "operation."+name, trace.WithAttributes(
		attribute.String("operation", name),
	))
	defer span.End()

	start := time.Now()
	res := model.OperationResult{Operation: name, Arguments: d.Arguments}

	_, args, err := e.catalog.Validate(name, d.Arguments)
	if err != nil {
		e.logger.Warn("rejected operation arguments", "operation", name, "arguments", d.Arguments, "error", err)
		res.Status = model.StatusFailed
		res.Error = err.Error()
		res.Records = []any{}
	} else {
		res.Arguments = args
		e.logger.Debug("executing operation", "operation", name, "arguments", args)
		records, err := e.call(ctx, name, args)
		res.Records = records
		switch {
		case err == nil:
			res.Status = model.StatusOK
		case k8s.IsPartial(err):
			res.Status = model.StatusPartial
			res.Error = err.Error()
			e.logger.Warn("operation returned partial data", "operation", name, "error", err)
		default:
			res.Status = model.StatusFailed
			res.Error = err.Error()
			res.Records = []any{}
			e.logger.Error("operation failed", "operation", name, "error", err)
		}
	}
	res.Duration = time.Since(start)

	span.SetAttributes(attribute.String("status", string(res.Status)), attribute.Int("records", len(res.Records)))
	if res.Status != model.StatusOK {
		span.SetStatus(codes.Error, res.Error)
	}
	if e.recorder != nil {
		e.recorder.ObserveOperation(name, res.Status, res.Duration)
	}
	return res
}

type outcome struct {
	records []any
	err     error
}

// call runs one read under the per-operation timeout. The result is
// abandoned when the deadline passes even if the reader ignores ctx.
func (e *Executor) call(ctx context.Context, name string, args catalog.Arguments) ([]any, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		records, err := dispatch(ctx, e.reader, name, args)
		done <- outcome{records, err}
	}()

	select {
	case out := <-done:
		return out.records, k8s.Classify(name, out.err)
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no response within %s: %w", e.cfg.Timeout, err)
		}
		return nil, k8s.Classify(name, err)
	}
}

// dispatch maps an operation onto the reader. Only read calls are reachable.
func dispatch(ctx context.Context, reader k8s.ClusterReader, name string, args catalog.Arguments) ([]any, error) {
	switch name {
	case catalog.OpListNamespaces:
		return records(reader.ListNamespaces(ctx))
	case catalog.OpListPods:
		return records(reader.ListPods(ctx, k8s.PodFilter{
			Namespace:    args.String("namespace"),
			Phase:        args.String("status"),
			ProblemsOnly: args.Flag("problems_only"),
		}))
	case catalog.OpListNodes:
		return records(reader.ListNodes(ctx, k8s.NodeFilter{Status: args.String("status")}))
	case catalog.OpListServices:
		return records(reader.ListServices(ctx, k8s.ServiceFilter{
			Namespace: args.String("namespace"),
			Type:      args.String("type"),
		}))
	case catalog.OpGetClusterInfo:
		summary, err := reader.ClusterSummary(ctx)
		if err != nil && !k8s.IsPartial(err) {
			return nil, err
		}
		return []any{summary}, err
	}
	return nil, &catalog.NotFoundError{Name: name}
}

func records[T any](items []T, err error) ([]any, error) {
	if err != nil && !k8s.IsPartial(err) {
		return nil, err
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out, err
}
