package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dileep-u-k/askbot/internal/tools"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is the client for Anthropic's Claude models.
type AnthropicClient struct {
	client anthropic.Client
}

var _ LLMClient = (*AnthropicClient)(nil)

// NewAnthropicClient creates a client authenticated with apiKey. Extra options
// are applied after the key, so tests can swap the HTTP client or base URL.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic API key cannot be empty")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicClient{client: anthropic.NewClient(opts...)}, nil
}

// Generate performs one blocking Messages API call.
func (c *AnthropicClient) Generate(
	ctx context.Context,
	messages []Message,
	config *GenerationConfig,
	availableTools []tools.Tool,
) (*GenerationResult, error) {
	system, conv := toAnthropicMessages(messages)

	maxTokens := int64(config.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(config.Model),
		MaxTokens: maxTokens,
		Messages:  conv,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if config.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*config.Temperature))
	}
	if len(availableTools) > 0 {
		params.Tools = toAnthropicTools(availableTools)
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}
	return parseAnthropicMessage(msg), nil
}

// toAnthropicMessages moves system messages into the top-level system prompt,
// which is where the Messages API expects them.
func toAnthropicMessages(messages []Message) (string, []anthropic.MessageParam) {
	var system []string
	conv := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, strings.TrimSpace(msg.Content))
		case RoleAssistant:
			conv = append(conv, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			conv = append(conv, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return strings.Join(system, "\n"), conv
}

func toAnthropicTools(toolsToConvert []tools.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(toolsToConvert))
	for _, t := range toolsToConvert {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Function.Name,
			Description: anthropic.String(t.Function.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: t.Function.Parameters.Properties,
				Required:   t.Function.Parameters.Required,
			},
		}})
	}
	return out
}

func parseAnthropicMessage(msg *anthropic.Message) *GenerationResult {
	var contentBuilder strings.Builder
	result := &GenerationResult{
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			contentBuilder.WriteString(v.Text)
		case anthropic.ToolUseBlock:
			result.ToolCalls = append(result.ToolCalls, &tools.ToolCall{
				ID:   v.ID,
				Type: tools.ToolTypeFunction,
				Function: tools.ToolCallFunction{
					Name:      v.Name,
					Arguments: v.JSON.Input.Raw(),
				},
			})
		}
	}
	result.Content = contentBuilder.String()
	return result
}
