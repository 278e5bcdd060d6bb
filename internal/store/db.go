package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pechomax/pechomax-api/internal/httpapi"
)

// DB is the subset of pgxpool.Pool the store needs. pgx.Tx satisfies it
// too (nested Begin becomes a savepoint), so a tx-scoped store can reuse
// every query. pgxmock implements it for tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore handles all relational persistence.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// WithTx returns a store whose queries run inside the given transaction.
func (s *PostgresStore) WithTx(tx pgx.Tx) *PostgresStore {
	return &PostgresStore{db: tx}
}

// Begin opens a transaction on the underlying pool.
func (s *PostgresStore) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.db.Begin(ctx)
}

// Migrate creates the schema if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS levels (
			id     UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title  TEXT    UNIQUE NOT NULL,
			value  INTEGER UNIQUE NOT NULL,
			start  INTEGER NOT NULL,
			"end"  INTEGER
		);
		CREATE TABLE IF NOT EXISTS users (
			id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username     TEXT UNIQUE NOT NULL,
			email        TEXT UNIQUE NOT NULL,
			password     TEXT NOT NULL,
			role         TEXT NOT NULL DEFAULT 'User',
			phone_number TEXT UNIQUE,
			profile_pic  TEXT,
			city         TEXT,
			region       TEXT,
			zip_code     TEXT,
			score        INTEGER NOT NULL DEFAULT 0 CHECK (score >= 0),
			level_id     UUID REFERENCES levels(id) ON DELETE SET NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS species (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name        TEXT UNIQUE NOT NULL,
			point_value INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS locations (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			longitude   TEXT NOT NULL,
			latitude    TEXT NOT NULL,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			user_id     UUID REFERENCES users(id) ON DELETE SET NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS catches (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			length      NUMERIC(5,2) NOT NULL,
			weight      NUMERIC(5,2) NOT NULL,
			location    TEXT NOT NULL,
			pictures    TEXT[] NOT NULL DEFAULT '{}',
			description TEXT NOT NULL DEFAULT '',
			point_value INTEGER NOT NULL,
			date        DATE NOT NULL,
			species_id  UUID NOT NULL REFERENCES species(id) ON DELETE CASCADE,
			user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// classify maps a driver error onto the API error taxonomy. Unique
// violations become Conflict, missing rows become NotFound, everything
// else is Internal.
func classify(err error, conflictMsg, notFoundMsg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return httpapi.E(httpapi.KindNotFound, notFoundMsg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return httpapi.Wrap(httpapi.KindConflict, conflictMsg, err)
	}
	return httpapi.Wrap(httpapi.KindInternal, "database error", err)
}
