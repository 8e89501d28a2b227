package database

import (
	"context"
	"database/sql"
	"fmt"
)

// position keeps the collection order, since SaveAll replaces rows wholesale.
const schema = `
CREATE TABLE IF NOT EXISTS clients (
    id            TEXT PRIMARY KEY,
    position      INTEGER NOT NULL,
    name          TEXT NOT NULL,
    phone         TEXT NOT NULL,
    plan          TEXT NOT NULL DEFAULT '',
    location      TEXT NOT NULL DEFAULT '',
    install_date  DATE,
    billing_cycle INTEGER NOT NULL,
    due_date      DATE,
    status        TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    paid_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS notifications (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL,
    kind        TEXT NOT NULL,
    time        TIMESTAMPTZ NOT NULL,
    client_id   TEXT NOT NULL DEFAULT '',
    client_name TEXT NOT NULL DEFAULT '',
    due_date    DATE,
    message     TEXT NOT NULL
);
`

// EnsureSchema creates the panel tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
