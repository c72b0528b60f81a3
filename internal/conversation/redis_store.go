package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dileep-u-k/askbot/internal/llm"
	"github.com/dileep-u-k/askbot/internal/version"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "conversation"
	maxTxAttempts = 5
)

// ErrConcurrentUpdate is returned when a session kept changing under every
// transaction attempt.
var ErrConcurrentUpdate = errors.New("conversation changed concurrently, giving up")

// RedisStore keeps each conversation in a Redis list of JSON-encoded
// messages, so several replicas can serve the same session. The key expires
// ttl after the session's last access; a zero ttl keeps it forever.
type RedisStore struct {
	rdb          *redis.Client
	systemPrompt string
	ttl          time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an already-connected client. An empty systemPrompt
// selects DefaultSystemPrompt.
func NewRedisStore(rdb *redis.Client, systemPrompt string, ttl time.Duration) *RedisStore {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &RedisStore{rdb: rdb, systemPrompt: systemPrompt, ttl: ttl}
}

func (s *RedisStore) GetOrCreate(ctx context.Context, sessionID string) ([]llm.Message, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	key := s.sessionKey(sessionID)
	seed, err := s.seed()
	if err != nil {
		return nil, err
	}

	var raw []string
	err = s.transact(ctx, key, func(tx *redis.Tx) error {
		items, err := tx.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(items) == 0 {
				pipe.RPush(ctx, key, seed)
				items = []string{string(seed)}
			}
			s.expire(ctx, pipe, key)
			return nil
		})
		raw = items
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}
	return decodeMessages(raw)
}

// Append pushes msg, seeding the system message first when the list is empty.
// The length check and both pushes share one transaction, so a key that
// expires in between is retried rather than restarted without its seed.
func (s *RedisStore) Append(ctx context.Context, sessionID string, msg llm.Message) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	key := s.sessionKey(sessionID)
	seed, err := s.seed()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	err = s.transact(ctx, key, func(tx *redis.Tx) error {
		n, err := tx.LLen(ctx, key).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if n == 0 {
				pipe.RPush(ctx, key, seed)
			}
			pipe.RPush(ctx, key, encoded)
			s.expire(ctx, pipe, key)
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// VisibleHistory never creates a conversation; an unknown session reads as empty.
func (s *RedisStore) VisibleHistory(ctx context.Context, sessionID string) ([]llm.Message, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	key := s.sessionKey(sessionID)

	raw, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}
	if len(raw) == 0 {
		return []llm.Message{}, nil
	}
	if s.ttl > 0 {
		s.rdb.Expire(ctx, key, s.ttl)
	}
	conv, err := decodeMessages(raw)
	if err != nil {
		return nil, err
	}
	return visible(conv), nil
}

// transact runs fn under WATCH on key, retrying when another client
// modified or expired the key before EXEC.
func (s *RedisStore) transact(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxAttempts; i++ {
		err := s.rdb.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrConcurrentUpdate
}

func (s *RedisStore) seed() ([]byte, error) {
	seed, err := json.Marshal(systemMessage(s.systemPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to encode system message: %w", err)
	}
	return seed, nil
}

func (s *RedisStore) expire(ctx context.Context, pipe redis.Pipeliner, key string) {
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}

func decodeMessages(raw []string) ([]llm.Message, error) {
	conv := make([]llm.Message, 0, len(raw))
	for i, item := range raw {
		var msg llm.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to decode message %d of conversation: %w", i, err)
		}
		conv = append(conv, msg)
	}
	return conv, nil
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return version.GenerateVersionedKey(keyPrefix, sessionID)
}
