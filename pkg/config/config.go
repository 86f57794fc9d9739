// Package config loads the kubeqa TOML configuration file and applies
// defaults and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rhobs/kubeqa/pkg/compose"
	"github.com/rhobs/kubeqa/pkg/executor"
	"github.com/rhobs/kubeqa/pkg/router"
)

// Supported language model providers.
const (
	ProviderNone    = "none"
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"
)

const (
	defaultRegion        = "us-west-2"
	defaultBedrockModel  = "claude-3-haiku"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultMaxTokens     = 1000
	defaultTemperature   = 0.1
	defaultFailures      = 3
	defaultOpenDuration  = 30 * time.Second
	defaultServiceName   = "kubeqa"
	defaultListenAddress = ":8080"
)

// Config is the root of the configuration file.
type Config struct {
	// Kubeconfig is the kubeconfig path. Empty means in-cluster config or the
	// default loading rules.
	Kubeconfig string          `toml:"kubeconfig,omitempty"`
	LLM        LLMConfig       `toml:"llm"`
	Executor   ExecutorConfig  `toml:"executor"`
	Server     ServerConfig    `toml:"server"`
	Telemetry  TelemetryConfig `toml:"telemetry"`
}

// LLMConfig selects and tunes the language model backend.
type LLMConfig struct {
	// Provider is one of "none" (keyword routing only), "bedrock" or "openai".
	Provider string `toml:"provider,omitempty"`
	// Model is a Bedrock model id or alias (claude-3-haiku, claude-3-sonnet,
	// titan-text), or an OpenAI model name.
	Model   string `toml:"model,omitempty"`
	Region  string `toml:"region,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
	// APIKey is only read from the environment.
	APIKey string `toml:"-"`
	// Timeout bounds one routing call.
	Timeout time.Duration `toml:"timeout,omitempty"`
	// Polish rephrases the rendered answer. Off by default, since a polished
	// answer is no longer deterministic.
	Polish           bool          `toml:"polish,omitempty"`
	PolishTimeout    time.Duration `toml:"polish_timeout,omitempty"`
	MaxTokens        int           `toml:"max_tokens,omitempty"`
	Temperature      float64       `toml:"temperature,omitempty"`
	FailureThreshold int           `toml:"failure_threshold,omitempty"`
	OpenDuration     time.Duration `toml:"open_duration,omitempty"`
}

// ExecutorConfig bounds operation dispatch.
type ExecutorConfig struct {
	Timeout        time.Duration `toml:"timeout,omitempty"`
	MaxConcurrency int           `toml:"max_concurrency,omitempty"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
	// AllowedOrigins for CORS on the web API.
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// TelemetryConfig configures tracing export.
type TelemetryConfig struct {
	OTLPEndpoint string `toml:"otlp_endpoint,omitempty"`
	ServiceName  string `toml:"service_name,omitempty"`
	Insecure     bool   `toml:"insecure,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path (if not empty), applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
		}
	}
	c.ApplyEnv(os.LookupEnv)
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overrides unset fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" && *dst == "" {
			*dst = v
		}
	}
	set(&c.Kubeconfig, "KUBECONFIG")
	set(&c.LLM.Provider, "KUBEQA_LLM")
	set(&c.LLM.Region, "AWS_REGION")
	set(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	set(&c.LLM.APIKey, "OPENAI_API_KEY")
	switch c.LLM.Provider {
	case ProviderBedrock:
		set(&c.LLM.Model, "BEDROCK_MODEL_NAME")
	case ProviderOpenAI:
		set(&c.LLM.Model, "OPENAI_MODEL")
	}
}

// Finalize applies defaults and validates. Callers that change fields after
// Load (e.g. from command-line flags) call it again.
func (c *Config) Finalize() error {
	c.applyDefaults()
	return c.Validate()
}

func (c *Config) applyDefaults() {
	l := &c.LLM
	if l.Provider == "" {
		l.Provider = ProviderNone
	}
	l.Provider = strings.ToLower(l.Provider)
	if l.Model == "" {
		switch l.Provider {
		case ProviderBedrock:
			l.Model = defaultBedrockModel
		case ProviderOpenAI:
			l.Model = defaultOpenAIModel
		}
	}
	if l.Region == "" {
		l.Region = defaultRegion
	}
	if l.Timeout == 0 {
		l.Timeout = router.DefaultLLMTimeout
	}
	if l.PolishTimeout == 0 {
		l.PolishTimeout = compose.DefaultPolishTimeout
	}
	if l.MaxTokens == 0 {
		l.MaxTokens = defaultMaxTokens
	}
	if l.Temperature == 0 {
		l.Temperature = defaultTemperature
	}
	if l.FailureThreshold == 0 {
		l.FailureThreshold = defaultFailures
	}
	if l.OpenDuration == 0 {
		l.OpenDuration = defaultOpenDuration
	}
	if c.Executor.Timeout == 0 {
		c.Executor.Timeout = executor.DefaultTimeout
	}
	if c.Executor.MaxConcurrency == 0 {
		c.Executor.MaxConcurrency = executor.DefaultMaxConcurrency
	}
	if c.Server.Listen == "" {
		c.Server.Listen = defaultListenAddress
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaultServiceName
	}
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case ProviderNone, ProviderBedrock:
	case ProviderOpenAI:
		if c.LLM.APIKey == "" && c.LLM.BaseURL == "" {
			errs = append(errs, errors.New("llm.provider openai requires OPENAI_API_KEY or llm.base_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid llm.provider %q: must be one of none, bedrock, openai", c.LLM.Provider))
	}
	if c.LLM.Timeout < 0 || c.LLM.PolishTimeout < 0 || c.LLM.OpenDuration < 0 {
		errs = append(errs, errors.New("llm durations must not be negative"))
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be > 0, got %d", c.LLM.MaxTokens))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		errs = append(errs, fmt.Errorf("llm.temperature must be within [0, 1], got %v", c.LLM.Temperature))
	}
	if c.LLM.FailureThreshold < 0 {
		errs = append(errs, fmt.Errorf("llm.failure_threshold must be >= 1, got %d", c.LLM.FailureThreshold))
	}
	if c.Executor.Timeout < 0 {
		errs = append(errs, fmt.Errorf("executor.timeout must be > 0, got %s", c.Executor.Timeout))
	}
	if c.Executor.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("executor.max_concurrency must be >= 1, got %d", c.Executor.MaxConcurrency))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// LLMEnabled reports whether a language model backend is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLM.Provider != "" && c.LLM.Provider != ProviderNone
}
