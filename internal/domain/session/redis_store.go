// internal/domain/session/redis_store.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session slots in Redis with a sliding TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(sessionID, key string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, key)
}

// Get returns the raw slot value
func (s *RedisStore) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, redisKey(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session slot: %w", err)
	}
	return val, nil
}

// Set overwrites the slot and refreshes its expiry
func (s *RedisStore) Set(ctx context.Context, sessionID, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKey(sessionID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session slot: %w", err)
	}
	return nil
}

// Delete erases the slot
func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := s.client.Del(ctx, redisKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete session slot: %w", err)
	}
	return nil
}
