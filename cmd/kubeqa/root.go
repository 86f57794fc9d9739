package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/promslog"
	"github.com/spf13/cobra"

	"github.com/rhobs/kubeqa/pkg/agent"
	"github.com/rhobs/kubeqa/pkg/config"
	"github.com/rhobs/kubeqa/pkg/k8s"
	"github.com/rhobs/kubeqa/pkg/metrics"
	"github.com/rhobs/kubeqa/pkg/telemetry"
)

const shutdownTimeout = 5 * time.Second

type globalOptions struct {
	configPath string
	kubeconfig string
	logLevel   string
	provider   string
	model      string
	region     string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "kubeqa",
		Short: "Answer natural-language questions about a Kubernetes cluster",
		Long: `kubeqa routes plain-English questions about a Kubernetes cluster to
read-only operations (namespaces, pods, nodes, services, cluster overview)
and renders the results as a human-readable answer.

Routing is keyword based by default. With an LLM provider configured the
model picks the operations and keyword routing remains the fallback.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return configureLogging(opts.logLevel)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a TOML configuration file")
	flags.StringVar(&opts.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (defaults to KUBECONFIG, in-cluster config, then ~/.kube/config)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.provider, "llm", "", "LLM provider: none, bedrock or openai")
	flags.StringVar(&opts.model, "model", "", "LLM model id or alias")
	flags.StringVar(&opts.region, "region", "", "AWS region for Bedrock")

	root.AddCommand(
		newAskCommand(opts),
		newInteractiveCommand(opts),
		newServeCommand(opts),
		newMCPCommand(opts),
		newOperationsCommand(opts),
		newCheckCommand(opts),
	)
	return root
}

// loadConfig reads the configuration file and applies flag overrides on top.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.kubeconfig != "" {
		cfg.Kubeconfig = o.kubeconfig
	}
	if o.provider != "" && o.provider != cfg.LLM.Provider {
		cfg.LLM.Provider = o.provider
		// The default model of the previous provider does not apply.
		cfg.LLM.Model = ""
	}
	if o.model != "" {
		cfg.LLM.Model = o.model
	}
	if o.region != "" {
		cfg.LLM.Region = o.region
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app holds the components shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	reader   *k8s.Reader
	engine   *agent.Engine
	shutdown telemetry.ShutdownFunc
}

func (o *globalOptions) newApp(ctx context.Context) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	client, err := k8s.GetKubeClient(cfg.Kubeconfig)
	if err != nil {
		return nil, err
	}
	reader := k8s.NewReader(client, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewMetrics(registry)

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Insecure:     cfg.Telemetry.Insecure,
	}, version, logger)
	if err != nil {
		return nil, err
	}

	engine, err := agent.FromConfig(ctx, cfg, reader, recorder, logger)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	logger.Info("Starting kubeqa", "version", version, "mode", engine.Mode(), "kubeconfig", cfg.Kubeconfig)
	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		reader:   reader,
		engine:   engine,
		shutdown: shutdown,
	}, nil
}

// Close flushes pending spans.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("Failed to shut down tracing", "err", err)
	}
}

// configureLogging sets up the slog logger with the specified log level
func configureLogging(levelStr string) error {
	level := promslog.NewLevel()
	if err := level.Set(levelStr); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	format := promslog.NewFormat()
	if err := format.Set("logfmt"); err != nil {
		return err
	}

	logger := promslog.New(&promslog.Config{
		Level:  level,
		Format: format,
		Style:  promslog.GoKitStyle,
	})
	slog.SetDefault(logger)
	return nil
}
