package usagecache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Key namespaces. Invalidate must cover every namespace a user could be
// reading, not just the most-used one.
const (
	nsUsage       = "cache:usage:"
	nsConversions = "cache:conversions:"
	nsPreferences = "cache:prefs:"
)

// UsageKey is the per-user remaining-quota snapshot key.
func UsageKey(userID string) string { return nsUsage + userID }

// ConversionsKey is the per-user conversion list key.
func ConversionsKey(userID string) string { return nsConversions + userID }

// PreferencesKey is the per-user email preferences key.
func PreferencesKey(userID string) string { return nsPreferences + userID }

// Cache wraps a Store with cache-aside semantics. A Cache with a nil store
// is valid and degrades to pass-through.
type Cache struct {
	store Store
	log   *slog.Logger
}

// New creates a Cache. store may be nil when no KV backend is configured.
func New(store Store, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{store: store, log: log}
}

// Enabled reports whether a backing store is configured.
func (c *Cache) Enabled() bool { return c.store != nil }

// Invalidate removes every cache key the user could be reading. Failures are
// logged and swallowed; the underlying counters remain the source of truth
// and the entries expire via TTL anyway.
func (c *Cache) Invalidate(ctx context.Context, userID string) {
	if c.store == nil || userID == "" {
		return
	}
	keys := []string{UsageKey(userID), ConversionsKey(userID), PreferencesKey(userID)}
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.log.WarnContext(ctx, "cache invalidation failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}

// GetOrSet returns the cached value for key, or invokes compute and returns
// its result. Fresh results are written back asynchronously with the given
// TTL; a write failure never affects the returned value. Cache hits are
// returned verbatim without re-validation against the source of truth.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if c.store == nil {
		return compute(ctx)
	}

	raw, hit, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "cache read failed, computing fresh value",
			slog.String("key", key),
			slog.Any("error", err),
		)
	} else if hit {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// A corrupt entry is treated as a miss and overwritten below.
		c.log.WarnContext(ctx, "cache entry corrupt, recomputing", slog.String("key", key))
	}

	fresh, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(fresh)
	if err != nil {
		c.log.WarnContext(ctx, "cache value not serializable", slog.String("key", key), slog.Any("error", err))
		return fresh, nil
	}

	go func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := c.store.Set(writeCtx, key, encoded, ttl); err != nil {
			c.log.WarnContext(writeCtx, "cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}()

	return fresh, nil
}
