package usagecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis client with a bounded per-operation
// timeout so a slow Redis turns into a cache miss instead of a stalled
// request.
type RedisStore struct {
	client    redis.UniversalClient
	opTimeout time.Duration
}

// NewRedisStore creates a Redis-backed store. opTimeout bounds each call;
// zero falls back to 500ms.
func NewRedisStore(client redis.UniversalClient, opTimeout time.Duration) *RedisStore {
	if opTimeout <= 0 {
		opTimeout = 500 * time.Millisecond
	}
	return &RedisStore{client: client, opTimeout: opTimeout}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.client.Set(ctx, key, value, ttl).Err()
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.client.Del(ctx, keys...).Err()
}
