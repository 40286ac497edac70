package conversion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/distribuia/distribuia/pkg/entitlements"
)

// UsageCounter is the authoritative per-user counter row.
type UsageCounter struct {
	ConversionsUsed   int
	BillingCycleStart time.Time
}

// Storage is the persistence boundary. The Postgres implementation lives in
// pg_storage.go; tests use an in-memory fake.
type Storage interface {
	// GetUsage returns the user's counter row. A user with no activity yet
	// gets a zero counter with the current cycle start.
	GetUsage(ctx context.Context, userID uuid.UUID) (UsageCounter, error)

	// CreateConversion persists a conversion with its version-1 output and
	// increments the usage counter in the same transaction. When the stored
	// billing cycle has rolled over, the counter restarts at 1 with
	// cycleStart as the new cycle.
	CreateConversion(ctx context.Context, conv Conversion, original OutputVersion, cycleStart time.Time) error

	// GetConversion returns a conversion owned by userID, or
	// ErrConversionNotFound.
	GetConversion(ctx context.Context, userID, conversionID uuid.UUID) (Conversion, error)

	// ListConversions returns the user's conversions, newest first.
	ListConversions(ctx context.Context, userID uuid.UUID) ([]Conversion, error)

	// CountVersions returns how many versions exist for a conversion/format
	// pair.
	CountVersions(ctx context.Context, conversionID uuid.UUID, format entitlements.Format) (int, error)

	// InsertVersionIfBelow inserts the next version for the pair only while
	// the current count is strictly below maxVersions, as one conditional
	// statement. It returns the inserted version with its assigned number,
	// or ErrRegenerateLimit when the conditional write matched nothing.
	// This closes the concurrent check-then-insert race: two simultaneous
	// regenerations cannot both slip past the limit.
	InsertVersionIfBelow(ctx context.Context, conversionID uuid.UUID, format entitlements.Format, content string, maxVersions int) (OutputVersion, error)

	// DeleteUserData removes the user's conversions, versions, and counters.
	// Part of the GDPR deletion flow.
	DeleteUserData(ctx context.Context, userID uuid.UUID) error
}
