package repository

import (
	"context"

	"github.com/osmaddr/extractor/internal/common"
)

// Portable DDL: runs unchanged on Postgres and SQLite.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS country_status (
		country_code  TEXT PRIMARY KEY,
		worker_id     TEXT NOT NULL,
		status        TEXT NOT NULL,
		started_at    TIMESTAMP NOT NULL,
		completed_at  TIMESTAMP,
		skipped_at    TIMESTAMP,
		skip_reason   TEXT,
		records_saved BIGINT NOT NULL DEFAULT 0,
		limit_reached BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS address (
		country      TEXT NOT NULL,
		country_name TEXT NOT NULL,
		street_name  TEXT NOT NULL,
		city         TEXT NOT NULL,
		fulladdress  TEXT NOT NULL,
		status       INTEGER NOT NULL DEFAULT 0,
		worker_id    TEXT NOT NULL,
		PRIMARY KEY (country, fulladdress)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_address_country ON address (country)`,
	`CREATE INDEX IF NOT EXISTS idx_address_city ON address (city)`,
	`CREATE INDEX IF NOT EXISTS idx_address_status ON address (status)`,
}

// EnsureSchema creates the claim and address tables if they do not exist.
// Safe to run from every worker at startup.
func (d *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := d.SQL.ExecContext(ctx, stmt); err != nil {
			return common.WrapError(err, "ensure schema")
		}
	}
	return nil
}
