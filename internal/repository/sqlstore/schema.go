package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The two schema variants differ only in timestamp types: Postgres gets
// TIMESTAMPTZ, SQLite gets plain TIMESTAMP so the driver recognizes the
// declared type and parses stored text back into time.Time.

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id         TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		quantity   BIGINT NOT NULL DEFAULT 0,
		issued     BIGINT NOT NULL DEFAULT 0,
		status     TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vouchers (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL DEFAULT '',
		value      TEXT NOT NULL,
		prize      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'Pending',
		claimed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vouchers_value ON vouchers (value)`,
	`CREATE INDEX IF NOT EXISTS idx_vouchers_username ON vouchers (username)`,
	`CREATE TABLE IF NOT EXISTS referrals (
		id         TEXT PRIMARY KEY,
		referrer   TEXT NOT NULL,
		referee    TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_referrals_referee ON referrals (referee)`,
	`CREATE INDEX IF NOT EXISTS idx_referrals_referrer ON referrals (referrer, status)`,
	`CREATE TABLE IF NOT EXISTS referral_rewards (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL,
		milestone  BIGINT NOT NULL,
		prize      TEXT NOT NULL DEFAULT '',
		claimed    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		claimed_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_rewards_user_milestone ON referral_rewards (username, milestone)`,
	`CREATE TABLE IF NOT EXISTS wheel_segments (
		id          TEXT PRIMARY KEY,
		label       TEXT NOT NULL,
		prize       TEXT NOT NULL DEFAULT '',
		weight      BIGINT NOT NULL,
		campaign_id TEXT NOT NULL DEFAULT '',
		position    BIGINT NOT NULL,
		active      BOOLEAN NOT NULL DEFAULT TRUE
	)`,
}

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id         TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		quantity   BIGINT NOT NULL DEFAULT 0,
		issued     BIGINT NOT NULL DEFAULT 0,
		status     TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vouchers (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL DEFAULT '',
		value      TEXT NOT NULL,
		prize      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'Pending',
		claimed_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vouchers_value ON vouchers (value)`,
	`CREATE INDEX IF NOT EXISTS idx_vouchers_username ON vouchers (username)`,
	`CREATE TABLE IF NOT EXISTS referrals (
		id         TEXT PRIMARY KEY,
		referrer   TEXT NOT NULL,
		referee    TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_referrals_referee ON referrals (referee)`,
	`CREATE INDEX IF NOT EXISTS idx_referrals_referrer ON referrals (referrer, status)`,
	`CREATE TABLE IF NOT EXISTS referral_rewards (
		id         TEXT PRIMARY KEY,
		username   TEXT NOT NULL,
		milestone  BIGINT NOT NULL,
		prize      TEXT NOT NULL DEFAULT '',
		claimed    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		claimed_at TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_rewards_user_milestone ON referral_rewards (username, milestone)`,
	`CREATE TABLE IF NOT EXISTS wheel_segments (
		id          TEXT PRIMARY KEY,
		label       TEXT NOT NULL,
		prize       TEXT NOT NULL DEFAULT '',
		weight      BIGINT NOT NULL,
		campaign_id TEXT NOT NULL DEFAULT '',
		position    BIGINT NOT NULL,
		active      BOOLEAN NOT NULL DEFAULT TRUE
	)`,
}

func ensureSchema(ctx context.Context, db *sqlx.DB, driver string) error {
	stmts := schemaSQLite
	if driver == DriverPostgres {
		stmts = schemaPostgres
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
