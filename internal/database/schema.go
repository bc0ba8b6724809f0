package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema is idempotent DDL applied at startup. Unique indexes on title,
// job_title and portfolios.author_id close the check-then-insert races.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              BIGSERIAL PRIMARY KEY,
		username        TEXT NOT NULL,
		password_hashed TEXT NOT NULL,
		phone_number    TEXT NOT NULL,
		friends_list    TEXT[] NOT NULL DEFAULT '{}',
		profile         JSONB,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_username_key UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS portfolios (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		tags        TEXT[] NOT NULL DEFAULT '{}',
		images      TEXT[] NOT NULL DEFAULT '{}',
		url         TEXT,
		author      TEXT NOT NULL,
		author_id   BIGINT NOT NULL,
		comment_ids BIGINT[] NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT portfolios_title_key UNIQUE (title),
		CONSTRAINT portfolios_author_id_key UNIQUE (author_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id           BIGSERIAL PRIMARY KEY,
		portfolio_id BIGINT NOT NULL,
		author_id    BIGINT NOT NULL,
		author       TEXT NOT NULL,
		body         TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS comments_author_id_idx ON comments (author_id)`,
	`CREATE INDEX IF NOT EXISTS comments_portfolio_id_idx ON comments (portfolio_id)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id              BIGSERIAL PRIMARY KEY,
		job_title       TEXT NOT NULL,
		company_name    TEXT NOT NULL,
		company_rating  DOUBLE PRECISION,
		job_description TEXT NOT NULL,
		job_skills      TEXT[] NOT NULL DEFAULT '{}',
		project_types   TEXT[] NOT NULL DEFAULT '{}',
		job_poster_id   BIGINT NOT NULL,
		people_applied  BIGINT[] NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT jobs_job_title_key UNIQUE (job_title)
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_job_poster_id_idx ON jobs (job_poster_id)`,
	`CREATE TABLE IF NOT EXISTS inconsistencies (
		id          BIGSERIAL PRIMARY KEY,
		operation   TEXT NOT NULL,
		account_id  BIGINT NOT NULL,
		resource_id BIGINT,
		detail      TEXT NOT NULL,
		attempts    INT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS inconsistencies_unresolved_idx ON inconsistencies (created_at) WHERE resolved_at IS NULL`,
}

// EnsureSchema applies Schema inside a single transaction.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range Schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
