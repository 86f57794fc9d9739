// Package agent sequences routing, execution and composition for one
// question and keeps a per-session history of answered questions.
package agent

import (
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/compose"
	"github.com/rhobs/kubeqa/pkg/executor"
	"github.com/rhobs/kubeqa/pkg/k8s"
	"github.com/rhobs/kubeqa/pkg/llm"
	"github.com/rhobs/kubeqa/pkg/model"
	"github.com/rhobs/kubeqa/pkg/router"
)

// Recorder receives query, operation and language model observations.
// *metrics.Metrics implements it.
type Recorder interface {
	executor.Recorder
	llm.Recorder
	ObserveQuery(confidence model.Confidence, strategy string)
	SetCircuitState(state llm.CircuitState)
}

// Options configure an Engine.
type Options struct {
	// Catalog defaults to catalog.Default().
	Catalog *catalog.Catalog
	Reader  k8s.ClusterReader
	// Backend enables LLM routing and, with Compose.Polish, answer polishing.
	// nil runs keyword routing only.
	Backend        llm.Backend
	RoutingTimeout time.Duration
	Executor       executor.Config
	Compose        compose.Config
	Recorder       Recorder
	Logger         *slog.Logger
}

// Engine holds the components shared by every session. It keeps no
// per-question state.
type Engine struct {
	catalog  *catalog.Catalog
	backend  llm.Backend
	strategy router.Strategy
	executor *executor.Executor
	composer *compose.Composer
	recorder Recorder
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewEngine wires the router, executor and composer. The routing strategy is
// chosen here, once: LLM routing with keyword fallback when a backend is
// configured, keyword routing otherwise.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Reader == nil {
		return nil, errors.New("agent: cluster reader must not be nil")
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var opRecorder executor.Recorder
	if opts.Recorder != nil {
		opRecorder = opts.Recorder
	}

	var strategy router.Strategy = router.NewKeywordRouter(cat, logger)
	if opts.Backend != nil {
		strategy = router.NewLLMRouter(opts.Backend, cat, strategy, opts.RoutingTimeout, logger)
	}

	e := &Engine{
		catalog:  cat,
		backend:  opts.Backend,
		strategy: strategy,
		executor: executor.New(cat, opts.Reader, opts.Executor, opRecorder, logger),
		composer: compose.New(opts.Backend, opts.Compose, logger),
		recorder: opts.Recorder,
		tracer:   otel.Tracer("github.com/rhobs/kubeqa/pkg/agent"),
		logger:   logger,
	}
	logger.Info("Agent engine ready", "strategy", strategy.Name(), "operations", len(cat.List()))
	return e, nil
}

// Catalog returns the operation catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Strategy returns the name of the routing strategy in use.
func (e *Engine) Strategy() string {
	return e.strategy.Name()
}

// Backend returns the language model backend, or nil in keyword mode.
func (e *Engine) Backend() llm.Backend {
	return e.backend
}

// Mode describes the backend for status output: the backend name, or "mock"
// when no language model is configured.
func (e *Engine) Mode() string {
	if e.backend == nil {
		return "mock"
	}
	return e.backend.Name()
}
