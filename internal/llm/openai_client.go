package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dileep-u-k/askbot/internal/tools"
)

const (
	DefaultOpenAIBaseURL  = "https://api.openai.com/v1"
	DefaultMistralBaseURL = "https://api.mistral.ai/v1"

	chatCompletionsPath = "/chat/completions"
)

// ErrNoChoices is returned when a chat completion response carries no choices.
var ErrNoChoices = errors.New("no choices returned from completion service")

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Tools       []openAITool    `json:"tools,omitempty"`
	ToolChoice  string          `json:"tool_choice,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float32        `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []tools.ToolCall `json:"tool_calls,omitempty"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function tools.Function `json:"function"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// OpenAIClient speaks the OpenAI chat completions protocol. Mistral exposes
// the same protocol, so NewOpenAICompatibleClient serves both.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client for api.openai.com.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAICompatibleClient(apiKey, DefaultOpenAIBaseURL, nil)
}

// NewOpenAICompatibleClient creates a client for any endpoint implementing
// POST {baseURL}/chat/completions. A nil httpClient gets defaultTimeout.
func NewOpenAICompatibleClient(apiKey, baseURL string, httpClient *http.Client) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("completion API key cannot be empty")
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// Generate performs one blocking chat completion call.
func (c *OpenAIClient) Generate(
	ctx context.Context,
	messages []Message,
	config *GenerationConfig,
	availableTools []tools.Tool,
) (*GenerationResult, error) {
	payload, err := c.buildRequestPayload(messages, config, availableTools)
	if err != nil {
		return nil, fmt.Errorf("failed to build chat completion payload: %w", err)
	}

	respBody, err := c.doRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	return parseOpenAIResponse(respBody)
}

func (c *OpenAIClient) buildRequestPayload(messages []Message, config *GenerationConfig, availableTools []tools.Tool) ([]byte, error) {
	req := openAIRequest{
		Model:    config.Model,
		Messages: toOpenAIMessages(messages),
		Tools:    toOpenAITools(availableTools),
	}
	if config.MaxTokens > 0 {
		req.MaxTokens = config.MaxTokens
	}
	if config.Temperature != nil {
		req.Temperature = config.Temperature
	}
	if len(req.Tools) > 0 {
		req.ToolChoice = config.ToolChoice
		if req.ToolChoice == "" {
			req.ToolChoice = ToolChoiceAuto
		}
	}

	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}
	return payloadBytes, nil
}

// doRequest makes a single attempt; failures are surfaced to the caller as-is.
func (c *OpenAIClient) doRequest(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chat completion API error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func toOpenAIMessages(messages []Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openAIMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}

func toOpenAITools(availableTools []tools.Tool) []openAITool {
	if len(availableTools) == 0 {
		return nil
	}
	out := make([]openAITool, 0, len(availableTools))
	for _, tool := range availableTools {
		out = append(out, openAITool{
			Type:     tools.ToolTypeFunction,
			Function: tool.Function,
		})
	}
	return out
}

func parseOpenAIResponse(body []byte) (*GenerationResult, error) {
	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat completion response: %w", err)
	}
	if len(openAIResp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := openAIResp.Choices[0]
	result := &GenerationResult{
		Content: choice.Message.Content,
		Usage:   openAIResp.Usage,
	}
	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, &tools.ToolCall{
			ID:   tc.ID,
			Type: tools.ToolTypeFunction,
			Function: tools.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return result, nil
}
