package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct{ name string }

func (e echoTool) Definition() Tool {
	return NewFunctionTool(e.name, "echo", JSONSchema{Type: "object"})
}

func (e echoTool) Execute(_ context.Context, arguments map[string]any) (string, error) {
	s, _ := arguments["text"].(string)
	return e.name + ":" + s, nil
}

func TestToolManager_ExecuteDispatchesByName(t *testing.T) {
	tm := NewToolManager()
	tm.Register(echoTool{name: "b"})
	tm.Register(echoTool{name: "a"})

	out, err := tm.Execute(context.Background(), "a", map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "a:hi", out)
	assert.Equal(t, 2, tm.ToolCount())
}

func TestToolManager_UnknownTool(t *testing.T) {
	tm := NewToolManager()
	tm.Register(echoTool{name: "a"})

	_, err := tm.Execute(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestToolManager_DefinitionsSortedByName(t *testing.T) {
	tm := NewToolManager()
	tm.Register(echoTool{name: "zeta"})
	tm.Register(echoTool{name: "alpha"})
	tm.Register(echoTool{name: "mid"})

	var names []string
	for _, d := range tm.GetDefinitions() {
		names = append(names, d.Function.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}
