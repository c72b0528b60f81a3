package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dileep-u-k/askbot/internal/tools"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient is the client for Google's Gemini models.
type GeminiClient struct {
	client *genai.Client
}

var _ LLMClient = (*GeminiClient)(nil)

func NewGeminiClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Close releases the underlying gRPC connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Generate performs one blocking request. A GenerativeModel is built per call
// because its settings are plain fields and must not be shared across requests.
func (c *GeminiClient) Generate(
	ctx context.Context,
	messages []Message,
	config *GenerationConfig,
	availableTools []tools.Tool,
) (*GenerationResult, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyConversation
	}

	model := c.client.GenerativeModel(config.Model)
	configureGeminiModel(model, config, availableTools)

	system, history, last := splitGeminiConversation(messages)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	chat := model.StartChat()
	chat.History = history
	resp, err := chat.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return parseGeminiResponse(resp)
}

func configureGeminiModel(model *genai.GenerativeModel, config *GenerationConfig, availableTools []tools.Tool) {
	if config.Temperature != nil {
		model.SetTemperature(*config.Temperature)
	}
	if config.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(config.MaxTokens))
	}
	if len(availableTools) == 0 {
		return
	}
	model.Tools = toGeminiTools(availableTools)
	mode := genai.FunctionCallingAuto
	if config.ToolChoice == "none" {
		mode = genai.FunctionCallingNone
	}
	model.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode},
	}
}

// splitGeminiConversation lifts system messages into a system instruction,
// maps the remaining turns onto Gemini's user/model roles, and separates the
// final turn, which is sent as the new message.
func splitGeminiConversation(messages []Message) (string, []*genai.Content, Message) {
	var system []string
	var turns []Message
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, strings.TrimSpace(msg.Content))
			continue
		}
		turns = append(turns, msg)
	}
	if len(turns) == 0 {
		return strings.Join(system, "\n"), nil, Message{Role: RoleUser}
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, msg := range turns[:len(turns)-1] {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return strings.Join(system, "\n"), history, turns[len(turns)-1]
}

func toGeminiTools(toolsToConvert []tools.Tool) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(toolsToConvert))
	for _, t := range toolsToConvert {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  convertSchema(t.Function.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func convertSchema(s tools.JSONSchema) *genai.Schema {
	genaiSchema := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
	}
	switch s.Type {
	case "object":
		genaiSchema.Type = genai.TypeObject
	case "string":
		genaiSchema.Type = genai.TypeString
	case "number":
		genaiSchema.Type = genai.TypeNumber
	case "integer":
		genaiSchema.Type = genai.TypeInteger
	case "boolean":
		genaiSchema.Type = genai.TypeBoolean
	}
	if len(s.Enum) > 0 {
		genaiSchema.Enum = s.Enum
		genaiSchema.Format = "enum"
	}
	if s.Properties != nil {
		genaiSchema.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			genaiSchema.Properties[k] = convertSchema(*v)
		}
	}
	return genaiSchema
}

func parseGeminiResponse(resp *genai.GenerateContentResponse) (*GenerationResult, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no content returned from Gemini")
	}

	var contentBuilder strings.Builder
	var toolCalls []*tools.ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			contentBuilder.WriteString(string(v))
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal Gemini function call args: %w", err)
			}
			toolCalls = append(toolCalls, &tools.ToolCall{
				ID:   fmt.Sprintf("gemini-toolcall-%s", v.Name),
				Type: tools.ToolTypeFunction,
				Function: tools.ToolCallFunction{
					Name:      v.Name,
					Arguments: string(args),
				},
			})
		}
	}

	result := &GenerationResult{
		Content:   contentBuilder.String(),
		ToolCalls: toolCalls,
	}
	if resp.UsageMetadata != nil {
		result.Usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.Usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		result.Usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return result, nil
}
