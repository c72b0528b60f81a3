package llm

import "time"

const (
	// defaultTimeout bounds a single completion call made over plain HTTP.
	defaultTimeout = 120 * time.Second

	// DefaultMaxTokens caps the length of every completion.
	DefaultMaxTokens = 300

	// ToolChoiceAuto lets the model decide whether to call a declared tool.
	ToolChoiceAuto = "auto"

	DefaultOpenAIModel    = "gpt-3.5-turbo-1106"
	DefaultMistralModel   = "mistral-small-latest"
	DefaultGeminiModel    = "gemini-1.5-flash"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)
