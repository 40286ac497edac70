package usagecache

import (
	"context"
	"time"
)

// TTL tiers for cached snapshots, strictly increasing.
const (
	TTLShort    = 60 * time.Second
	TTLMedium   = 300 * time.Second
	TTLLong     = 900 * time.Second
	TTLVeryLong = 3600 * time.Second
)

// Store is the external KV backend.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
