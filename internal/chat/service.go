// Package chat resolves one user turn: it records the user's text, asks the
// completion service for an answer, runs the requested tool if there is one,
// records the assistant's reply and returns the history to display.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dileep-u-k/askbot/internal/conversation"
	"github.com/dileep-u-k/askbot/internal/llm"
	"github.com/dileep-u-k/askbot/internal/tools"
)

// UnexpectedToolReply is the assistant reply when the model names a tool that is not registered.
const UnexpectedToolReply = "Unexpected tool was called."

// ErrEmptyQuery is returned by Ask for blank input; nothing is stored.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Completer is satisfied by *llm.Orchestrator.
type Completer interface {
	Complete(ctx context.Context, conversation []llm.Message) (llm.Completion, error)
}

// ToolRunner is satisfied by *tools.ToolManager.
type ToolRunner interface {
	Execute(ctx context.Context, name string, arguments map[string]any) (string, error)
}

// Service wires the conversation store, the completion orchestrator and the
// tool registry together. It performs at most two external calls per turn,
// strictly one after the other.
type Service struct {
	store     conversation.Store
	completer Completer
	tools     ToolRunner
}

func NewService(store conversation.Store, completer Completer, toolRunner ToolRunner) *Service {
	return &Service{
		store:     store,
		completer: completer,
		tools:     toolRunner,
	}
}

// Ask resolves one turn for sessionID and returns the visible history.
//
// The user message is stored before the completion call, so when the
// completion service fails the error is returned and the conversation keeps
// the unanswered user turn.
func (s *Service) Ask(ctx context.Context, sessionID, query string) ([]llm.Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	if err := s.store.Append(ctx, sessionID, llm.Message{Role: llm.RoleUser, Content: query}); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}
	conv, err := s.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	completion, err := s.completer.Complete(ctx, conv)
	if err != nil {
		return nil, err
	}

	reply, err := s.resolveReply(ctx, completion)
	if err != nil {
		return nil, err
	}

	if err := s.store.Append(ctx, sessionID, llm.Message{Role: llm.RoleAssistant, Content: reply}); err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}
	return s.store.VisibleHistory(ctx, sessionID)
}

// History returns the visible history without resolving a turn. An unknown
// session reads as empty and is not created.
func (s *Service) History(ctx context.Context, sessionID string) ([]llm.Message, error) {
	return s.store.VisibleHistory(ctx, sessionID)
}

func (s *Service) resolveReply(ctx context.Context, completion llm.Completion) (string, error) {
	switch c := completion.(type) {
	case *llm.ToolCallRequest:
		log.Printf("🛠️ Executing tool: %s", c.ToolName)
		out, err := s.tools.Execute(ctx, c.ToolName, c.Arguments)
		if errors.Is(err, tools.ErrToolNotFound) {
			log.Printf("⚠️ Model requested unknown tool %q", c.ToolName)
			return UnexpectedToolReply, nil
		}
		if err != nil {
			return "", fmt.Errorf("tool %s failed: %w", c.ToolName, err)
		}
		return out, nil
	case *llm.TextReply:
		return strings.TrimSpace(c.Text), nil
	default:
		return "", fmt.Errorf("unsupported completion type %T", completion)
	}
}
