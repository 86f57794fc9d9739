package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhobs/kubeqa/pkg/compose"
	"github.com/rhobs/kubeqa/pkg/config"
	"github.com/rhobs/kubeqa/pkg/executor"
	"github.com/rhobs/kubeqa/pkg/k8s"
	"github.com/rhobs/kubeqa/pkg/llm"
)

// NewBackend builds the configured language model backend behind a circuit
// breaker and instrumentation. It returns nil for provider "none".
func NewBackend(ctx context.Context, cfg config.LLMConfig, recorder Recorder, logger *slog.Logger) (llm.Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var base llm.Backend
	switch cfg.Provider {
	case "", config.ProviderNone:
		return nil, nil
	case config.ProviderBedrock:
		b, err := llm.NewBedrock(ctx, llm.BedrockConfig{
			Region:      cfg.Region,
			ModelID:     cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Bedrock backend", "model", b.ModelID(), "region", cfg.Region)
		base = b
	case config.ProviderOpenAI:
		o, err := llm.NewOpenAI(llm.OpenAIConfig{
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using OpenAI-compatible backend", "model", cfg.Model, "base_url", cfg.BaseURL)
		base = o
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	breakerCfg := llm.CircuitBreakerConfig{
		ConsecutiveFailures: cfg.FailureThreshold,
		OpenDuration:        cfg.OpenDuration,
	}
	var llmRecorder llm.Recorder
	if recorder != nil {
		breakerCfg.OnStateChange = recorder.SetCircuitState
		llmRecorder = recorder
	}
	breaker, err := llm.NewCircuitBreaker(base, breakerCfg, logger)
	if err != nil {
		return nil, err
	}
	return llm.Instrument(breaker, llmRecorder), nil
}

// ConfigOptions maps configuration onto engine options. Reader, Backend,
// Recorder and Logger are left to the caller.
func ConfigOptions(cfg *config.Config) Options {
	return Options{
		RoutingTimeout: cfg.LLM.Timeout,
		Executor: executor.Config{
			Timeout:        cfg.Executor.Timeout,
			MaxConcurrency: cfg.Executor.MaxConcurrency,
		},
		Compose: compose.Config{
			Polish:        cfg.LLM.Polish,
			PolishTimeout: cfg.LLM.PolishTimeout,
		},
	}
}

// FromConfig builds an Engine from configuration. A backend that cannot be
// created is logged and the engine runs in keyword mode.
func FromConfig(ctx context.Context, cfg *config.Config, reader k8s.ClusterReader, recorder Recorder, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend, err := NewBackend(ctx, cfg.LLM, recorder, logger)
	if err != nil {
		logger.Warn("Language model backend unavailable, using keyword routing", "provider", cfg.LLM.Provider, "err", err)
		backend = nil
	}
	opts := ConfigOptions(cfg)
	opts.Reader = reader
	opts.Backend = backend
	opts.Recorder = recorder
	opts.Logger = logger
	return NewEngine(opts)
}
