package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied on start-up; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS affordability_assessments (
		id         UUID PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		broker_ref TEXT NOT NULL DEFAULT '',
		payload    JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS affordability_assessments_user_idx
		ON affordability_assessments (user_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS personal_access_tokens (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		token      CHAR(64) NOT NULL UNIQUE,
		abilities  TEXT,
		expires_at TIMESTAMPTZ
	)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
