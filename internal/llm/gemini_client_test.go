package llm

import (
	"testing"

	"github.com/dileep-u-k/askbot/internal/tools"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSchema(t *testing.T) {
	s := convertSchema(tools.JSONSchema{
		Type: "object",
		Properties: map[string]*tools.JSONSchema{
			"location": {Type: "string", Description: "city"},
			"unit":     {Type: "string", Enum: []string{"celsius", "fahrenheit"}},
		},
		Required: []string{"location"},
	})

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"location"}, s.Required)
	require.Contains(t, s.Properties, "unit")
	assert.Equal(t, genai.TypeString, s.Properties["unit"].Type)
	assert.Equal(t, []string{"celsius", "fahrenheit"}, s.Properties["unit"].Enum)
	assert.Equal(t, "city", s.Properties["location"].Description)
}

func TestSplitGeminiConversation(t *testing.T) {
	system, history, last := splitGeminiConversation([]Message{
		{Role: RoleSystem, Content: "  be nice  "},
		{Role: RoleUser, Content: "one"},
		{Role: RoleAssistant, Content: "two"},
		{Role: RoleUser, Content: "three"},
	})

	assert.Equal(t, "be nice", system)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, "three", last.Content)
}

func TestParseGeminiResponse_FunctionCall(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.FunctionCall{Name: tools.WeatherToolName, Args: map[string]any{"location": "Paris"}},
			}},
		}},
	}

	result, err := parseGeminiResponse(resp)
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, tools.WeatherToolName, result.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"location":"Paris"}`, result.ToolCalls[0].Function.Arguments)
}

func TestParseGeminiResponse_Text(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello "), genai.Text("world")}},
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 3, CandidatesTokenCount: 2, TotalTokenCount: 5},
	}

	result, err := parseGeminiResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", result.Content)
	assert.Equal(t, 5, result.Usage.TotalTokens)
}

func TestParseGeminiResponse_Empty(t *testing.T) {
	_, err := parseGeminiResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)
}
