// Package tools defines the function-calling surface exposed to the completion
// service: the provider-neutral schema types sent to the model, the
// ToolExecutor contract every tool implements, and the ToolManager that
// dispatches a model's tool call to the matching executor.
package tools

// ToolTypeFunction is the only tool type completion services understand today.
const ToolTypeFunction = "function"

// Tool is the declaration sent *to* the model so it knows a tool exists.
type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function names a callable tool and describes its parameters.
type Function struct {
	Name string `json:"name"`
	// Description is what the model reads when deciding whether to call the tool.
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// JSONSchema is the subset of JSON Schema the tool declarations need.
// Provider clients translate it into their own schema types.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
}

// ToolCall is a request *from* the model to run a tool, in the OpenAI wire shape.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction carries the tool name and its JSON-encoded arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewFunctionTool builds a Tool of type "function".
func NewFunctionTool(name, description string, parameters JSONSchema) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: Function{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}
