package emailprefs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/distribuia/distribuia/pkg/pg"
)

// PgStorage implements Storage on a pgx connection pool.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates the Postgres-backed storage.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

// GetPreferences implements Storage. A missing row reads as the defaults.
func (s *PgStorage) GetPreferences(ctx context.Context, userID uuid.UUID) (Preferences, error) {
	var prefs Preferences
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, marketing_emails, product_updates, unsubscribed_at, updated_at
		 FROM email_preferences WHERE user_id = $1`,
		userID,
	).Scan(&prefs.UserID, &prefs.MarketingEmails, &prefs.ProductUpdates, &prefs.UnsubscribedAt, &prefs.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return defaultPreferences(userID), nil
	}
	if err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// SetPreferences implements Storage. The upsert clears any previous
// unsubscribe: an explicit consent update is a re-opt-in.
func (s *PgStorage) SetPreferences(ctx context.Context, userID uuid.UUID, in UpdateInput) (Preferences, error) {
	var prefs Preferences
	err := s.pool.QueryRow(ctx,
		`INSERT INTO email_preferences (user_id, marketing_emails, product_updates, unsubscribed_at, updated_at)
		 VALUES ($1, $2, $3, NULL, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   marketing_emails = EXCLUDED.marketing_emails,
		   product_updates = EXCLUDED.product_updates,
		   unsubscribed_at = NULL,
		   updated_at = now()
		 RETURNING user_id, marketing_emails, product_updates, unsubscribed_at, updated_at`,
		userID, in.MarketingEmails, in.ProductUpdates,
	).Scan(&prefs.UserID, &prefs.MarketingEmails, &prefs.ProductUpdates, &prefs.UnsubscribedAt, &prefs.UpdatedAt)
	if err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// Unsubscribe implements Storage. COALESCE keeps the first unsubscribe
// timestamp on repeated clicks.
func (s *PgStorage) Unsubscribe(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO email_preferences (user_id, marketing_emails, product_updates, unsubscribed_at, updated_at)
		 VALUES ($1, FALSE, FALSE, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   marketing_emails = FALSE,
		   product_updates = FALSE,
		   unsubscribed_at = COALESCE(email_preferences.unsubscribed_at, EXCLUDED.unsubscribed_at),
		   updated_at = now()`,
		userID, at,
	)
	return err
}

// DeletePreferences implements Storage.
func (s *PgStorage) DeletePreferences(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM email_preferences WHERE user_id = $1`, userID)
	return err
}
