package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := ApplyMigrations(context.Background(), database); err != nil {
		_ = database.Close()
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return ts
}

func mustCreateAgent(t *testing.T, database *sql.DB, name string, now time.Time) {
	t.Helper()
	if _, err := CreateAgent(context.Background(), database, CreateAgentParams{Name: name}, now); err != nil {
		t.Fatalf("create agent %s: %v", name, err)
	}
}

func strPtr(s string) *string {
	return &s
}
