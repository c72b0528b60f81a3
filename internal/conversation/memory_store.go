package conversation

import (
	"context"
	"sync"

	"github.com/dileep-u-k/askbot/internal/llm"
)

// MemoryStore keeps conversations in process memory for the life of the process.
type MemoryStore struct {
	systemPrompt string

	mu            sync.Mutex
	conversations map[string][]llm.Message
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. An empty systemPrompt selects DefaultSystemPrompt.
func NewMemoryStore(systemPrompt string) *MemoryStore {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &MemoryStore{
		systemPrompt:  systemPrompt,
		conversations: make(map[string][]llm.Message),
	}
}

func (s *MemoryStore) GetOrCreate(_ context.Context, sessionID string) ([]llm.Message, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.getOrCreateLocked(sessionID)
	out := make([]llm.Message, len(conv))
	copy(out, conv)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, msg llm.Message) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[sessionID] = append(s.getOrCreateLocked(sessionID), msg)
	return nil
}

// VisibleHistory never creates a conversation; an unknown session reads as empty.
func (s *MemoryStore) VisibleHistory(_ context.Context, sessionID string) ([]llm.Message, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return visible(s.conversations[sessionID]), nil
}

// Len reports how many sessions the store holds.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

func (s *MemoryStore) getOrCreateLocked(sessionID string) []llm.Message {
	conv, ok := s.conversations[sessionID]
	if !ok {
		conv = []llm.Message{systemMessage(s.systemPrompt)}
		s.conversations[sessionID] = conv
	}
	return conv
}
