// Package conversation stores the ordered, role-tagged message history of each
// chat session.
//
// Every conversation is created lazily by its first GetOrCreate or Append,
// seeded with exactly one system message, and only ever grows by appending.
// Nothing is trimmed, reordered or deduplicated. Stores guard their own data structures but do
// not serialise turns: two requests in flight for the same session may
// interleave their appends.
package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/dileep-u-k/askbot/internal/llm"
)

// DefaultSystemPrompt is the instruction that seeds every new conversation.
const DefaultSystemPrompt = `Instructions: Your name is AI Bot.
Call get_current_weather function ONLY for weather-related queries.
For other queries, respond directly without using tools.`

// ErrEmptySessionID is returned for a blank session identifier.
var ErrEmptySessionID = errors.New("session id cannot be empty")

// Store is the contract shared by the in-memory and Redis-backed stores.
type Store interface {
	// GetOrCreate returns the full conversation, creating it with the system
	// message if the session has none yet.
	GetOrCreate(ctx context.Context, sessionID string) ([]llm.Message, error)

	// Append adds msg to the end of the session's conversation, creating the
	// conversation first if needed.
	Append(ctx context.Context, sessionID string, msg llm.Message) error

	// VisibleHistory returns every message except the leading system message.
	// It is read-only: an unknown session yields an empty history and is not
	// created.
	VisibleHistory(ctx context.Context, sessionID string) ([]llm.Message, error)
}

func systemMessage(prompt string) llm.Message {
	return llm.Message{Role: llm.RoleSystem, Content: prompt}
}

func validateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrEmptySessionID
	}
	return nil
}

// visible drops the seeded system message.
func visible(conv []llm.Message) []llm.Message {
	if len(conv) == 0 {
		return []llm.Message{}
	}
	out := make([]llm.Message, len(conv)-1)
	copy(out, conv[1:])
	return out
}
