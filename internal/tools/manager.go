package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrToolNotFound is returned by Execute when no tool is registered under the requested name.
	ErrToolNotFound = errors.New("tool not found")
	// ErrInvalidArguments is returned by a tool when the model's arguments do not match its schema.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// ToolManager holds a registry of all available tools.
type ToolManager struct {
	tools map[string]ToolExecutor
}

func NewToolManager() *ToolManager {
	return &ToolManager{
		tools: make(map[string]ToolExecutor),
	}
}

// Register adds a tool under its declared function name, replacing any previous one.
func (tm *ToolManager) Register(tool ToolExecutor) {
	name := tool.Definition().Function.Name
	tm.tools[name] = tool
}

// GetDefinitions returns the registered tool definitions ordered by name, so
// identical conversations produce identical completion requests.
func (tm *ToolManager) GetDefinitions() []Tool {
	names := make([]string, 0, len(tm.tools))
	for name := range tm.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]Tool, 0, len(names))
	for _, name := range names {
		defs = append(defs, tm.tools[name].Definition())
	}
	return defs
}

// Execute runs a tool by name with the given arguments.
func (tm *ToolManager) Execute(ctx context.Context, name string, arguments map[string]any) (string, error) {
	tool, ok := tm.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return tool.Execute(ctx, arguments)
}

// ToolCount returns the number of registered tools.
func (tm *ToolManager) ToolCount() int {
	return len(tm.tools)
}
