package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dileep-u-k/askbot/internal/tools"
)

// ErrEmptyConversation is returned when Complete is called with no messages.
var ErrEmptyConversation = errors.New("conversation is empty")

// Completion is what one completion call resolves to: a *TextReply or a *ToolCallRequest.
type Completion interface {
	isCompletion()
}

// TextReply is a direct answer from the model, as returned by the provider.
type TextReply struct {
	Text string
}

// ToolCallRequest asks the caller to run a tool. It lives for one request only.
type ToolCallRequest struct {
	ToolName  string
	Arguments map[string]any
}

func (*TextReply) isCompletion()       {}
func (*ToolCallRequest) isCompletion() {}

// Orchestrator sends a conversation plus a fixed tool schema to a completion
// service and classifies the answer. It makes exactly one call per Complete
// and never retries; provider errors are returned unchanged in meaning.
type Orchestrator struct {
	client LLMClient
	config GenerationConfig
	tools  []tools.Tool
}

// NewOrchestrator fills in the invariant generation settings: temperature 0
// unless given, DefaultMaxTokens unless positive, and tool choice "auto".
func NewOrchestrator(client LLMClient, config GenerationConfig, availableTools []tools.Tool) *Orchestrator {
	if config.Temperature == nil {
		zero := float32(0)
		config.Temperature = &zero
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.ToolChoice == "" && len(availableTools) > 0 {
		config.ToolChoice = ToolChoiceAuto
	}
	return &Orchestrator{
		client: client,
		config: config,
		tools:  availableTools,
	}
}

// Config returns the effective generation settings.
func (o *Orchestrator) Config() GenerationConfig {
	return o.config
}

// Complete runs one completion over the full conversation. When the model
// requests several tools only the first is honoured.
func (o *Orchestrator) Complete(ctx context.Context, conversation []Message) (Completion, error) {
	if len(conversation) == 0 {
		return nil, ErrEmptyConversation
	}

	cfg := o.config
	result, err := o.client.Generate(ctx, conversation, &cfg, o.tools)
	if err != nil {
		return nil, fmt.Errorf("completion failed for model %s: %w", cfg.Model, err)
	}

	if len(result.ToolCalls) == 0 {
		return &TextReply{Text: result.Content}, nil
	}

	call := result.ToolCalls[0]
	args, err := decodeArguments(call.Function.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to decode arguments for tool %q: %w", call.Function.Name, err)
	}
	return &ToolCallRequest{ToolName: call.Function.Name, Arguments: args}, nil
}

func decodeArguments(raw string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}
