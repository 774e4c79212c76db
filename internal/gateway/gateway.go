// Package gateway is the single point of contact with the gmclaw database.
//
// A Gateway owns one lazily opened connection. Every operation degrades to an
// empty or nil result when the store is unavailable or a query fails; the
// failure is logged and also returned so callers can pick a response status.
package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gmclaw/internal/db"
)

// ErrUnavailable is returned by every operation when no database is
// configured or it could not be opened.
var ErrUnavailable = errors.New("persistence unavailable")

const (
	DefaultAgentLimit   = 50
	DefaultPulseLimit   = 50
	DefaultHistoryLimit = 20
	FeedPageSize        = 20
)

type Options struct {
	// Path is the SQLite database path. Empty disables persistence.
	Path   string
	Logger *slog.Logger
	// Now overrides the clock, mainly for day-boundary tests.
	Now func() time.Time
}

type Gateway struct {
	path string
	log  *slog.Logger
	now  func() time.Time

	mu       sync.Mutex
	database *sql.DB
	owned    bool
}

func New(opts Options) *Gateway {
	g := &Gateway{
		path: opts.Path,
		log:  opts.Logger,
		now:  opts.Now,
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// NewWithDB wraps an already migrated database. The caller keeps ownership
// and Close leaves it open.
func NewWithDB(database *sql.DB, opts Options) *Gateway {
	g := New(opts)
	g.database = database
	return g
}

// Connect opens and migrates the database on first use and returns the
// memoized handle afterwards. A failed open is not memoized.
func (g *Gateway) Connect(ctx context.Context) (*sql.DB, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.database != nil {
		return g.database, nil
	}
	if g.path == "" {
		return nil, ErrUnavailable
	}

	database, err := db.Open(g.path)
	if err != nil {
		g.log.Error("failed to open database", "path", g.path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := db.ApplyMigrations(ctx, database); err != nil {
		_ = database.Close()
		g.log.Error("failed to migrate database", "path", g.path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	g.database = database
	g.owned = true
	g.log.Info("connected to database", "path", g.path)
	return database, nil
}

// Enabled reports whether a database is configured at all.
func (g *Gateway) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.database != nil || g.path != ""
}

func (g *Gateway) Ping(ctx context.Context) error {
	database, err := g.Connect(ctx)
	if err != nil {
		return err
	}
	return database.PingContext(ctx)
}

func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.database == nil || !g.owned {
		return nil
	}
	err := g.database.Close()
	g.database = nil
	return err
}

func (g *Gateway) fail(op string, err error) error {
	g.log.Error("persistence operation failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}
