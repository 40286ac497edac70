package emailprefs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage is the persistence boundary for email preferences.
type Storage interface {
	// GetPreferences returns the stored row, or the defaults when the user
	// has never touched their preferences.
	GetPreferences(ctx context.Context, userID uuid.UUID) (Preferences, error)

	// SetPreferences upserts the consent flags. An explicit update clears a
	// previous unsubscribe.
	SetPreferences(ctx context.Context, userID uuid.UUID, in UpdateInput) (Preferences, error)

	// Unsubscribe marks the user as fully opted out at the given time.
	// Idempotent: repeating keeps the original timestamp.
	Unsubscribe(ctx context.Context, userID uuid.UUID, at time.Time) error

	// DeletePreferences removes the user's row. Part of the GDPR deletion
	// flow.
	DeletePreferences(ctx context.Context, userID uuid.UUID) error
}
