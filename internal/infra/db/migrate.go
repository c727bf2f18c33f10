package db

import (
	"database/sql"
	"fmt"
	"os"
)

// Driver reports the driver name the current DATABASE_URL selects.
func Driver() string {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = defaultSQLiteDSN
	}
	return DriverFor(dsn)
}

// MigrateUp creates the schema for the given driver. Statements are
// idempotent so the migration can run on every startup.
func MigrateUp(db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case "pgx":
		stmts = postgresSchema
	case "sqlite":
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          VARCHAR(20) NOT NULL DEFAULT 'viewer',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS digests (
    id            BIGSERIAL PRIMARY KEY,
    district      TEXT NOT NULL,
    digest_date   VARCHAR(10) NOT NULL,
    provider      VARCHAR(40) NOT NULL,
    is_mock       BOOLEAN NOT NULL DEFAULT FALSE,
    article_count INTEGER NOT NULL DEFAULT 0,
    payload       JSONB NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (district, digest_date)
)`,
	// 履歴一覧は created_at DESC で取得する
	`CREATE INDEX IF NOT EXISTS idx_digests_created_at ON digests(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_digests_district ON digests(district)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'viewer',
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS digests (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    district      TEXT NOT NULL,
    digest_date   TEXT NOT NULL,
    provider      TEXT NOT NULL,
    is_mock       BOOLEAN NOT NULL DEFAULT 0,
    article_count INTEGER NOT NULL DEFAULT 0,
    payload       TEXT NOT NULL,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (district, digest_date)
)`,
	`CREATE INDEX IF NOT EXISTS idx_digests_created_at ON digests(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_digests_district ON digests(district)`,
}
