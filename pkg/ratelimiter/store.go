package ratelimiter

import (
	"context"
	"time"
)

// Store is the storage backend for sliding-window counters.
type Store interface {
	// RecordIfAllowed atomically counts the timestamps for key inside the
	// window ending at now and records a new one when the count is below
	// limit. It returns whether the request was recorded and the resulting
	// count (including the new timestamp when recorded).
	RecordIfAllowed(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, count int64, err error)

	// Reset clears the window state for key.
	Reset(ctx context.Context, key string) error
}
