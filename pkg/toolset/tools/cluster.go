package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/containers/kubernetes-mcp-server/pkg/api"
	"github.com/google/uuid"
	"k8s.io/client-go/kubernetes"

	"github.com/rhobs/kubeqa/pkg/agent"
	kubeqaconfig "github.com/rhobs/kubeqa/pkg/config"
	"github.com/rhobs/kubeqa/pkg/k8s"
	"github.com/rhobs/kubeqa/pkg/llm"
	toolsetconfig "github.com/rhobs/kubeqa/pkg/toolset/config"
)

// getConfig retrieves the kubeqa toolset configuration from params.
func getConfig(params api.ToolHandlerParams) *toolsetconfig.Config {
	if cfg, ok := params.GetToolsetConfig(toolsetconfig.ToolsetName); ok {
		if kqCfg, ok := cfg.(*toolsetconfig.Config); ok {
			return kqCfg
		}
	}
	// Return default config if not found
	return &toolsetconfig.Config{}
}

// backendCache keeps one backend per LLM configuration so circuit breaker
// state survives across tool calls.
type backendCache struct {
	mu       sync.Mutex
	backends map[kubeqaconfig.LLMConfig]llm.Backend
}

var backends = &backendCache{backends: make(map[kubeqaconfig.LLMConfig]llm.Backend)}

func (c *backendCache) get(ctx context.Context, cfg kubeqaconfig.LLMConfig) llm.Backend {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.backends[cfg]; ok {
		return b
	}
	b, err := agent.NewBackend(ctx, cfg, nil, slog.Default())
	if err != nil {
		slog.Warn("Language model backend unavailable, using keyword routing", "provider", cfg.Provider, "err", err)
		b = nil
	}
	c.backends[cfg] = b
	return b
}

// newSession builds a one-shot agent session reading the cluster with the
// caller's REST config.
func newSession(params api.ToolHandlerParams) (*agent.Session, error) {
	cfg, err := getConfig(params).Resolve()
	if err != nil {
		return nil, fmt.Errorf("invalid kubeqa toolset configuration: %w", err)
	}

	restConfig := params.RESTConfig()
	if restConfig == nil {
		return nil, fmt.Errorf("no REST config available")
	}
	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	engine, err := newEngine(params.Context, cfg, k8s.NewReader(client, slog.Default()))
	if err != nil {
		return nil, err
	}
	return engine.NewSession(uuid.NewString()), nil
}

func newEngine(ctx context.Context, cfg *kubeqaconfig.Config, reader k8s.ClusterReader) (*agent.Engine, error) {
	opts := agent.ConfigOptions(cfg)
	opts.Reader = reader
	opts.Backend = backends.get(ctx, cfg.LLM)
	opts.Logger = slog.Default()
	return agent.NewEngine(opts)
}
