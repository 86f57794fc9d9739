package config

import (
	"context"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/containers/kubernetes-mcp-server/pkg/api"
	serverconfig "github.com/containers/kubernetes-mcp-server/pkg/config"

	kubeqaconfig "github.com/rhobs/kubeqa/pkg/config"
)

// ToolsetName is the toolset's name and its configuration section.
const ToolsetName = "kubeqa"

// Config holds kubeqa toolset configuration
type Config struct {
	// LLM selects the language model backend used for routing questions.
	// Provider "none" (default) routes with the keyword table only.
	// Example:
	//   [toolset_configs.kubeqa.llm]
	//   provider = "bedrock"
	//   model = "claude-3-haiku"
	LLM kubeqaconfig.LLMConfig `toml:"llm"`

	// Executor bounds the cluster reads made for one question.
	Executor kubeqaconfig.ExecutorConfig `toml:"executor"`
}

var _ api.ExtendedConfig = (*Config)(nil)

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	_, err := c.Resolve()
	return err
}

// Resolve returns the full kubeqa configuration with environment overrides
// and defaults applied.
func (c *Config) Resolve() (*kubeqaconfig.Config, error) {
	full := &kubeqaconfig.Config{LLM: c.LLM, Executor: c.Executor}
	full.ApplyEnv(os.LookupEnv)
	if err := full.Finalize(); err != nil {
		return nil, err
	}
	return full, nil
}

func kubeqaToolsetParser(_ context.Context, primitive toml.Primitive, md toml.MetaData) (api.ExtendedConfig, error) {
	var cfg Config
	if err := md.PrimitiveDecode(primitive, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func init() {
	serverconfig.RegisterToolsetConfig(ToolsetName, kubeqaToolsetParser)
}
