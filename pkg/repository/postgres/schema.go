// Package postgres implements the lead and user repositories on PostgreSQL via sqlx
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id               UUID PRIMARY KEY,
	owner_id         UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	first_name       TEXT NOT NULL,
	last_name        TEXT NOT NULL,
	email            TEXT NOT NULL,
	phone            TEXT NOT NULL,
	company          TEXT NOT NULL,
	city             TEXT NOT NULL,
	state            TEXT NOT NULL,
	source           TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'new',
	score            INTEGER NOT NULL DEFAULT 0 CHECK (score BETWEEN 0 AND 100),
	lead_value       DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (lead_value >= 0),
	is_qualified     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	last_activity_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS leads_owner_created_idx ON leads (owner_id, created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS leads_status_idx ON leads (status);
`

// Migrate creates the tables and indexes when missing
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed creating schema resources: %w", err)
	}
	return nil
}
