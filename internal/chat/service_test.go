package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dileep-u-k/askbot/internal/conversation"
	"github.com/dileep-u-k/askbot/internal/llm"
	"github.com/dileep-u-k/askbot/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient answers each Generate call with the next scripted result.
type scriptedClient struct {
	results []*llm.GenerationResult
	err     error
	seen    [][]llm.Message
}

func (c *scriptedClient) Generate(_ context.Context, messages []llm.Message, _ *llm.GenerationConfig, _ []tools.Tool) (*llm.GenerationResult, error) {
	c.seen = append(c.seen, append([]llm.Message(nil), messages...))
	if c.err != nil {
		return nil, c.err
	}
	r := c.results[0]
	c.results = c.results[1:]
	return r, nil
}

func text(s string) *llm.GenerationResult {
	return &llm.GenerationResult{Content: s}
}

func toolCall(name, args string) *llm.GenerationResult {
	return &llm.GenerationResult{ToolCalls: []*tools.ToolCall{{
		ID:       "call_1",
		Type:     tools.ToolTypeFunction,
		Function: tools.ToolCallFunction{Name: name, Arguments: args},
	}}}
}

type fixture struct {
	svc          *Service
	store        *conversation.MemoryStore
	client       *scriptedClient
	weatherCalls *int32
}

func newFixture(t *testing.T, weather http.HandlerFunc, results ...*llm.GenerationResult) fixture {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		weather(w, r)
	}))
	t.Cleanup(srv.Close)

	wt, err := tools.NewWeatherTool("weather-key", srv.URL, srv.Client())
	require.NoError(t, err)
	manager := tools.NewToolManager()
	manager.Register(wt)

	client := &scriptedClient{results: results}
	store := conversation.NewMemoryStore("")
	orch := llm.NewOrchestrator(client, llm.GenerationConfig{Model: llm.DefaultOpenAIModel}, manager.GetDefinitions())

	return fixture{
		svc:          NewService(store, orch, manager),
		store:        store,
		client:       client,
		weatherCalls: &calls,
	}
}

func parisWeather(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"location":{"name":"Paris"},"current":{"temp_c":18,"temp_f":64.4}}`))
}

func TestAsk_DirectReplyIsTrimmedAndWeatherNotCalled(t *testing.T) {
	f := newFixture(t, parisWeather, text("\n  Hello! I am AI Bot.  \n"))

	history, err := f.svc.Ask(context.Background(), "s1", "Who are you?")
	require.NoError(t, err)

	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "Who are you?"},
		{Role: llm.RoleAssistant, Content: "Hello! I am AI Bot."},
	}, history)
	assert.Zero(t, atomic.LoadInt32(f.weatherCalls))
}

func TestAsk_WeatherToolReply(t *testing.T) {
	f := newFixture(t, parisWeather, toolCall(tools.WeatherToolName, `{"location":"Paris","unit":"celsius"}`))

	history, err := f.svc.Ask(context.Background(), "s1", "What's the weather in Paris?")
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "The temperature in Paris is 18°C."}, history[1])
	assert.Equal(t, int32(1), atomic.LoadInt32(f.weatherCalls))
}

func TestAsk_WeatherFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}, toolCall(tools.WeatherToolName, `{"location":"Paris"}`))

	history, err := f.svc.Ask(context.Background(), "s1", "Weather in Paris?")
	require.NoError(t, err)
	assert.Equal(t, tools.WeatherFallback, history[len(history)-1].Content)
}

func TestAsk_UnknownTool(t *testing.T) {
	f := newFixture(t, parisWeather, toolCall("get_stock_price", `{"ticker":"ACME"}`))

	history, err := f.svc.Ask(context.Background(), "s1", "ACME price?")
	require.NoError(t, err)
	assert.Equal(t, UnexpectedToolReply, history[len(history)-1].Content)
	assert.Zero(t, atomic.LoadInt32(f.weatherCalls))
}

func TestAsk_CompletionFailurePropagates(t *testing.T) {
	f := newFixture(t, parisWeather)
	boom := errors.New("provider unavailable")
	f.client.err = boom

	_, err := f.svc.Ask(context.Background(), "s1", "hi")
	require.ErrorIs(t, err, boom)

	conv, err := f.store.GetOrCreate(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, conv, 2, "user turn is kept, no assistant turn is added")
	assert.Equal(t, llm.RoleUser, conv[1].Role)
}

func TestAsk_InvalidToolArgumentsPropagate(t *testing.T) {
	f := newFixture(t, parisWeather, toolCall(tools.WeatherToolName, `{"unit":"celsius"}`))

	_, err := f.svc.Ask(context.Background(), "s1", "weather?")
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)
}

func TestAsk_EmptyQuery(t *testing.T) {
	f := newFixture(t, parisWeather)

	_, err := f.svc.Ask(context.Background(), "s1", "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, f.store.Len())
}

func TestAsk_ConversationGrowsAndIsSentInFull(t *testing.T) {
	f := newFixture(t, parisWeather,
		text("Hi."),
		toolCall(tools.WeatherToolName, `{"location":"Paris"}`),
		text("You're welcome."),
	)
	ctx := context.Background()

	for _, q := range []string{"Hello", "Weather in Paris?", "Thanks"} {
		_, err := f.svc.Ask(ctx, "s1", q)
		require.NoError(t, err)
	}

	conv, err := f.store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, conv, 2*3+1)
	assert.Equal(t, llm.RoleSystem, conv[0].Role)
	assert.Equal(t, conversation.DefaultSystemPrompt, conv[0].Content)
	for i, msg := range conv[1:] {
		want := llm.RoleUser
		if i%2 == 1 {
			want = llm.RoleAssistant
		}
		assert.Equal(t, want, msg.Role, "message %d", i+1)
	}

	// The completion service always receives the system message and every prior turn.
	require.Len(t, f.client.seen, 3)
	assert.Len(t, f.client.seen[0], 2)
	assert.Len(t, f.client.seen[2], 6)
	assert.Equal(t, llm.RoleSystem, f.client.seen[2][0].Role)

	history, err := f.svc.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 6)
	assert.Equal(t, "The temperature in Paris is 18°C.", history[3].Content)
}

func TestHistory_UnknownSessionIsNotCreated(t *testing.T) {
	f := newFixture(t, parisWeather)

	history, err := f.svc.History(context.Background(), "never-asked")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Zero(t, f.store.Len())
}
