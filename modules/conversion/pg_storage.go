package conversion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/distribuia/distribuia/pkg/entitlements"
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

// GetUsage implements Storage. Users without a counter row read as a zero
// counter; the service derives the cycle start.
func (s *PgStorage) GetUsage(ctx context.Context, userID uuid.UUID) (UsageCounter, error) {
	var counter UsageCounter
	err := s.pool.QueryRow(ctx,
		`SELECT conversions_used, billing_cycle_start FROM usage_counters WHERE user_id = $1`,
		userID,
	).Scan(&counter.ConversionsUsed, &counter.BillingCycleStart)
	if pg.IsNotFoundError(err) {
		return UsageCounter{}, nil
	}
	if err != nil {
		return UsageCounter{}, err
	}
	return counter, nil
}

// CreateConversion implements Storage. The conversion, its original output,
// and the counter increment commit atomically; the upsert restarts the
// counter when the billing cycle has rolled over.
func (s *PgStorage) CreateConversion(ctx context.Context, conv Conversion, original OutputVersion, cycleStart time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO conversions (id, user_id, source, source_ref, title, format, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		conv.ID, conv.UserID, conv.Source, conv.SourceRef, conv.Title, conv.Format, conv.CreatedAt,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO output_versions (id, conversion_id, format, version, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		original.ID, original.ConversionID, original.Format, original.Version, original.Content, original.CreatedAt,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO usage_counters (user_id, conversions_used, billing_cycle_start)
		 VALUES ($1, 1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET
		   conversions_used = CASE
		     WHEN usage_counters.billing_cycle_start = EXCLUDED.billing_cycle_start
		       THEN usage_counters.conversions_used + 1
		     ELSE 1
		   END,
		   billing_cycle_start = EXCLUDED.billing_cycle_start`,
		conv.UserID, cycleStart,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetConversion implements Storage.
func (s *PgStorage) GetConversion(ctx context.Context, userID, conversionID uuid.UUID) (Conversion, error) {
	var conv Conversion
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, source, source_ref, title, format, created_at
		 FROM conversions WHERE id = $1 AND user_id = $2`,
		conversionID, userID,
	).Scan(&conv.ID, &conv.UserID, &conv.Source, &conv.SourceRef, &conv.Title, &conv.Format, &conv.CreatedAt)
	if pg.IsNotFoundError(err) {
		return Conversion{}, ErrConversionNotFound
	}
	if err != nil {
		return Conversion{}, err
	}
	return conv, nil
}

// ListConversions implements Storage.
func (s *PgStorage) ListConversions(ctx context.Context, userID uuid.UUID) ([]Conversion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, source, source_ref, title, format, created_at
		 FROM conversions WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversions []Conversion
	for rows.Next() {
		var conv Conversion
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Source, &conv.SourceRef, &conv.Title, &conv.Format, &conv.CreatedAt); err != nil {
			return nil, err
		}
		conversions = append(conversions, conv)
	}
	return conversions, rows.Err()
}

// CountVersions implements Storage.
func (s *PgStorage) CountVersions(ctx context.Context, conversionID uuid.UUID, format entitlements.Format) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM output_versions WHERE conversion_id = $1 AND format = $2`,
		conversionID, format,
	).Scan(&count)
	return count, err
}

// InsertVersionIfBelow implements Storage. The insert derives the next
// version number from the current count in the same statement, guarded by
// the limit. The unique index on (conversion_id, format, version) turns a
// concurrent duplicate into a constraint error, so the statement is retried
// a couple of times; the limit can never be overshot.
func (s *PgStorage) InsertVersionIfBelow(ctx context.Context, conversionID uuid.UUID, format entitlements.Format, content string, maxVersions int) (OutputVersion, error) {
	for attempt := 0; attempt < 3; attempt++ {
		version := OutputVersion{
			ID:           uuid.New(),
			ConversionID: conversionID,
			Format:       format,
			Content:      content,
		}

		err := s.pool.QueryRow(ctx,
			`INSERT INTO output_versions (id, conversion_id, format, version, content, created_at)
			 SELECT $1, $2, $3, c.cnt + 1, $4, now()
			 FROM (SELECT count(*) AS cnt FROM output_versions WHERE conversion_id = $2 AND format = $3) c
			 WHERE c.cnt < $5
			 RETURNING version, created_at`,
			version.ID, conversionID, format, content, maxVersions,
		).Scan(&version.Version, &version.CreatedAt)

		if pg.IsNotFoundError(err) {
			return OutputVersion{}, ErrRegenerateLimit
		}
		if pg.IsDuplicateKeyError(err) {
			// Lost a race for the version number; recount and try again.
			continue
		}
		if err != nil {
			return OutputVersion{}, err
		}
		return version, nil
	}
	return OutputVersion{}, errors.New("conversion: version insert contention")
}

// DeleteUserData implements Storage. Versions cascade from conversions.
func (s *PgStorage) DeleteUserData(ctx context.Context, userID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM conversions WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM usage_counters WHERE user_id = $1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
