package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/sentinel/core"
)

const deleteIfEqualScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisStore is a KVStore backed by Redis, shared between instances
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value stored under key
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", core.Unexpected(err, "failed to get key")
	}

	return val, nil
}

// Set stores value under key with expiration
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: ttl must be positive", core.ErrUnexpected)
	}

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return core.Unexpected(err, "failed to set key")
	}

	return nil
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return core.Unexpected(err, "failed to delete key")
	}

	return nil
}

// DeleteIfEqual removes key when it holds expected. The comparison runs server side in one script.
func (s *RedisStore) DeleteIfEqual(ctx context.Context, key, expected string) (bool, error) {
	removed, err := s.client.Eval(ctx, deleteIfEqualScript, []string{key}, expected).Int64()
	if err != nil {
		return false, core.Unexpected(err, "failed to delete key")
	}

	return removed > 0, nil
}

// Exists checks if key is present in Redis
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, core.Unexpected(err, "failed to check key")
	}

	return val > 0, nil
}
