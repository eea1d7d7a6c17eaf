// Package flash keeps one-shot, per-user notifications produced by mutating
// requests until the next page read picks them up.
package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Message is a single flash notification
type Message struct {
	Type    Kind   `json:"type"`
	Message string `json:"message"`
}

// Store holds at most one pending message per user; Push overwrites, Pop clears.
type Store interface {
	Push(ctx context.Context, userID uint, msg Message) error
	// Pop returns nil when nothing is pending
	Pop(ctx context.Context, userID uint) (*Message, error)
}

func key(userID uint) string {
	return fmt.Sprintf("flash:%d", userID)
}

// RedisStore keeps messages in Redis with a TTL so abandoned ones expire
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Push(ctx context.Context, userID uint, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal flash failed: %w", err)
	}
	if err := s.client.Set(ctx, key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Pop(ctx context.Context, userID uint) (*Message, error) {
	data, err := s.client.GetDel(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel failed: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal flash failed: %w", err)
	}
	return &msg, nil
}

// MemoryStore is the single-process fallback used when Redis is not configured
type MemoryStore struct {
	mu       sync.Mutex
	messages map[uint]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[uint]Message)}
}

func (s *MemoryStore) Push(_ context.Context, userID uint, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[userID] = msg
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, userID uint) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[userID]
	if !ok {
		return nil, nil
	}
	delete(s.messages, userID)
	return &msg, nil
}
