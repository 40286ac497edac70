// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection pool with
// retrying startup, goose schema migrations, and a health-check helper.
// Supabase exposes a standard Postgres connection string, so the pool config
// is plain pgxpool.
package pg
