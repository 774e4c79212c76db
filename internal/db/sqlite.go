package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"
)

// connectionPragmas run on every connection the pool opens. The driver
// applies each _pragma DSN parameter at connect time.
var connectionPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"cache_size(-32000)",
}

// DSN builds the driver connection string for the database file at path.
func DSN(path string) string {
	q := url.Values{"_pragma": connectionPragmas}
	return "file:" + path + "?" + q.Encode()
}

// Open opens the SQLite database at path. Schema setup is left to
// ApplyMigrations.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sql open: empty database path")
	}
	database, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}

	database.SetMaxOpenConns(8)
	database.SetMaxIdleConns(4)
	database.SetConnMaxIdleTime(30 * time.Minute)

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return database, nil
}
