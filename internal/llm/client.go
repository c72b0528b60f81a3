// Package llm talks to completion services. It defines the conversation
// message model shared by the rest of the application, the LLMClient
// interface every provider implements, and the Orchestrator that turns a raw
// provider result into either a text reply or a tool call request.
package llm

import (
	"context"

	"github.com/dileep-u-k/askbot/internal/tools"
)

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversational turn. Values are never mutated once
// appended to a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerationConfig controls a single completion call.
type GenerationConfig struct {
	Model string
	// Temperature is a pointer so that 0 is sent explicitly rather than omitted.
	Temperature *float32
	MaxTokens   int
	// ToolChoice is forwarded to providers that support it; "auto" when tools are declared.
	ToolChoice string
}

// Usage reports token accounting for one call, where the provider supplies it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResult is the provider-neutral outcome of one completion call.
type GenerationResult struct {
	Content   string
	ToolCalls []*tools.ToolCall
	Usage     Usage
}

// LLMClient is implemented by every completion provider.
type LLMClient interface {
	// Generate sends the whole conversation, including the system message,
	// and blocks until the provider answers.
	Generate(
		ctx context.Context,
		messages []Message,
		config *GenerationConfig,
		availableTools []tools.Tool,
	) (*GenerationResult, error)
}
