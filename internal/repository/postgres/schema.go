package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// luckyNumberConstraint is the unique constraint on registrants.lucky_number.
const luckyNumberConstraint = "registrants_lucky_number_key"

// CreateSchema creates the registrants and archive tables.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Active registrants, one per email
CREATE TABLE IF NOT EXISTS registrants (
    email TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL,
    lucky_number INTEGER NOT NULL CHECK (lucky_number BETWEEN 1 AND 1000),
    is_donor BOOLEAN NOT NULL DEFAULT FALSE,
    is_author BOOLEAN NOT NULL DEFAULT FALSE,
    is_volunteer BOOLEAN NOT NULL DEFAULT FALSE,
    slot TEXT NOT NULL,
    remarks VARCHAR(200),
    guest_count INTEGER NOT NULL DEFAULT 0 CHECK (guest_count BETWEEN 0 AND 2),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT registrants_lucky_number_key UNIQUE (lucky_number)
);

-- Archived (deleted) registrants, append-only
CREATE TABLE IF NOT EXISTS archived_registrants (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL,
    name TEXT NOT NULL,
    phone TEXT NOT NULL,
    lucky_number INTEGER NOT NULL,
    is_donor BOOLEAN NOT NULL DEFAULT FALSE,
    is_author BOOLEAN NOT NULL DEFAULT FALSE,
    is_volunteer BOOLEAN NOT NULL DEFAULT FALSE,
    slot TEXT NOT NULL,
    remarks VARCHAR(200),
    guest_count INTEGER NOT NULL DEFAULT 0,
    deleted_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_archived_registrants_deleted_at ON archived_registrants(deleted_at);
`

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
