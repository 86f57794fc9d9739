package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const anthropicVersion = "bedrock-2023-05-31"

// ModelAliases maps the short model names accepted on the command line to
// Bedrock model ids.
var ModelAliases = map[string]string{
	"claude-3-haiku":  "anthropic.claude-3-haiku-20240307-v1:0",
	"claude-3-sonnet": "anthropic.claude-3-sonnet-20240229-v1:0",
	"titan-text":      "amazon.titan-text-express-v1",
}

// ResolveModel returns the Bedrock model id for an alias, or name unchanged.
func ResolveModel(name string) string {
	if id, ok := ModelAliases[name]; ok {
		return id
	}
	return name
}

// BedrockClient is the interface for invoking Bedrock models, allowing test
// injection of a mock.
type BedrockClient interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockConfig holds configuration for the Bedrock backend.
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float64
}

// Bedrock invokes Anthropic or Titan models through AWS Bedrock. Anthropic
// models get native tool definitions; Titan models get the tools as text and
// answer with embedded JSON.
type Bedrock struct {
	client      BedrockClient
	modelID     string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// NewBedrock creates a Bedrock backend using the default AWS credential
// chain.
func NewBedrock(ctx context.Context, cfg BedrockConfig, logger *slog.Logger) (*Bedrock, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("bedrock: region must not be empty")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: loading AWS config: %w", err)
	}
	return NewBedrockWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg, logger)
}

// NewBedrockWithClient creates a Bedrock backend around an existing client.
func NewBedrockWithClient(client BedrockClient, cfg BedrockConfig, logger *slog.Logger) (*Bedrock, error) {
	if client == nil {
		return nil, fmt.Errorf("bedrock: client must not be nil")
	}
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("bedrock: modelID must not be empty")
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("bedrock: maxTokens must be > 0, got %d", cfg.MaxTokens)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bedrock{
		client:      client,
		modelID:     ResolveModel(cfg.ModelID),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Name returns the backend identifier.
func (b *Bedrock) Name() string {
	return "bedrock"
}

// ModelID returns the resolved model id.
func (b *Bedrock) ModelID() string {
	return b.modelID
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"input_schema"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
	Tools            []anthropicTool    `json:"tools,omitempty"`
}

type anthropicContentBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type titanRequest struct {
	InputText            string `json:"inputText"`
	TextGenerationConfig struct {
		MaxTokenCount int     `json:"maxTokenCount"`
		Temperature   float64 `json:"temperature"`
	} `json:"textGenerationConfig"`
}

type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

func (b *Bedrock) isTitan() bool {
	return strings.HasPrefix(b.modelID, "amazon.titan")
}

// Invoke sends the request to the configured model.
func (b *Bedrock) Invoke(ctx context.Context, req Request) (*Response, error) {
	body, err := b.encode(req)
	if err != nil {
		return nil, fmt.Errorf("bedrock: marshaling request: %w", err)
	}

	b.logger.Debug("sending request to Bedrock", "model_id", b.modelID, "purpose", req.Purpose, "tools", len(req.Tools))

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, classifyBedrock(err)
	}

	if b.isTitan() {
		var tr titanResponse
		if err := json.Unmarshal(output.Body, &tr); err != nil {
			return nil, invalidResponse(b.Name(), err)
		}
		if len(tr.Results) == 0 {
			return nil, invalidResponse(b.Name(), errors.New("response contained no results"))
		}
		text := strings.TrimSpace(tr.Results[0].OutputText)
		return &Response{Text: text, ToolCalls: ParseToolCalls(text)}, nil
	}

	var ar anthropicResponse
	if err := json.Unmarshal(output.Body, &ar); err != nil {
		return nil, invalidResponse(b.Name(), err)
	}

	resp := &Response{}
	var text strings.Builder
	for _, block := range ar.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{Name: block.Name, Arguments: block.Input})
		}
	}
	resp.Text = strings.TrimSpace(text.String())
	if len(resp.ToolCalls) == 0 && len(req.Tools) > 0 {
		resp.ToolCalls = ParseToolCalls(resp.Text)
	}

	b.logger.Debug("received Bedrock response",
		"model_id", b.modelID,
		"input_tokens", ar.Usage.InputTokens,
		"output_tokens", ar.Usage.OutputTokens,
		"tool_calls", len(resp.ToolCalls),
	)
	return resp, nil
}

func (b *Bedrock) encode(req Request) ([]byte, error) {
	if b.isTitan() {
		var tr titanRequest
		var prompt strings.Builder
		if req.System != "" {
			prompt.WriteString(req.System)
			prompt.WriteString("\n\n")
		}
		if tools := ToolInstructions(req.Tools); tools != "" {
			prompt.WriteString(tools)
			prompt.WriteString("\n")
		}
		prompt.WriteString("User: ")
		prompt.WriteString(req.Prompt)
		prompt.WriteString("\nBot:")
		tr.InputText = prompt.String()
		tr.TextGenerationConfig.MaxTokenCount = b.maxTokens
		tr.TextGenerationConfig.Temperature = b.temperature
		return json.Marshal(tr)
	}

	ar := anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        b.maxTokens,
		Temperature:      b.temperature,
		System:           req.System,
		Messages:         []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	for _, t := range req.Tools {
		ar.Tools = append(ar.Tools, anthropicTool{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
	}
	return json.Marshal(ar)
}

// classifyBedrock maps SDK errors onto the package's failure classes.
// Anything not recognized, including transport errors, counts as unavailable.
func classifyBedrock(err error) error {
	var (
		throttled *types.ThrottlingException
		quota     *types.ServiceQuotaExceededException
		invalid   *types.ValidationException
		modelErr  *types.ModelErrorException
	)
	switch {
	case errors.As(err, &throttled), errors.As(err, &quota):
		return rateLimited("bedrock", err)
	case errors.As(err, &invalid), errors.As(err, &modelErr):
		return invalidResponse("bedrock", err)
	}
	return unavailable("bedrock", err)
}
