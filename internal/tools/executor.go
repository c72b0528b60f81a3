package tools

import "context"

// ToolExecutor is implemented by every tool the chat service can dispatch to.
type ToolExecutor interface {
	// Definition returns the schema advertised to the model.
	Definition() Tool

	// Execute runs the tool with the model-supplied arguments, already decoded
	// from JSON. The returned string becomes the assistant's reply.
	Execute(ctx context.Context, arguments map[string]any) (string, error)
}
