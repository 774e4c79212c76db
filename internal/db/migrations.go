package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{version: 1, name: "initial_schema", sql: initialSchemaV1},
	{version: 2, name: "feed_indexes", sql: feedIndexesSchemaV2},
}

// LatestSchemaVersion is the version ApplyMigrations brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// ApplyMigrations runs every migration newer than the recorded schema
// version, each in its own transaction.
func ApplyMigrations(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_version (
	version     INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	applied_at  TEXT NOT NULL
);`); err != nil {
		return fmt.Errorf("ensure schema_version table: %w", err)
	}

	current, err := SchemaVersion(ctx, database)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, database, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration, 0 for a fresh file.
func SchemaVersion(ctx context.Context, database *sql.DB) (int, error) {
	var version int
	err := database.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	return version, err
}

func applyMigration(ctx context.Context, database *sql.DB, m migration) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return err
	}
	// A concurrent migrator that got here first makes this insert fail,
	// rolling back the duplicate schema work.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, FormatTimestamp(time.Now()),
	); err != nil {
		return err
	}
	return tx.Commit()
}
