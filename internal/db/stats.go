package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const siteStatsType = "site_stats"

// IncrementViews bumps the site view counter in a single statement and
// returns the new value. The counter row is created on first use.
func IncrementViews(ctx context.Context, database *sql.DB) (int64, error) {
	var views int64
	err := database.QueryRowContext(ctx, `
INSERT INTO site_stats (type, views) VALUES (?, 1)
ON CONFLICT (type) DO UPDATE SET views = site_stats.views + 1
RETURNING views`, siteStatsType).Scan(&views)
	if err != nil {
		return 0, err
	}
	return views, nil
}

func GetViews(ctx context.Context, database *sql.DB) (int64, error) {
	var views int64
	err := database.QueryRowContext(ctx, `SELECT views FROM site_stats WHERE type = ?`, siteStatsType).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return views, nil
}

type DirectoryStats struct {
	Agents        int   `json:"agents"`
	PremiumAgents int   `json:"premiumAgents"`
	Pings         int   `json:"pings"`
	PingsToday    int   `json:"pingsToday"`
	Heartbeats    int   `json:"heartbeats"`
	CheckIns      int   `json:"checkIns"`
	Skills        int   `json:"skills"`
	Views         int64 `json:"views"`
}

func GetDirectoryStats(ctx context.Context, database *sql.DB, now time.Time) (DirectoryStats, error) {
	stats := DirectoryStats{}
	queries := []struct {
		sql  string
		args []any
		dst  any
	}{
		{`SELECT COUNT(1) FROM agents`, nil, &stats.Agents},
		{`SELECT COUNT(1) FROM agents WHERE premium = 1`, nil, &stats.PremiumAgents},
		{`SELECT COUNT(1) FROM pings`, nil, &stats.Pings},
		{`SELECT COUNT(1) FROM pings WHERE date = ?`, []any{DateKey(now)}, &stats.PingsToday},
		{`SELECT COUNT(1) FROM heartbeats`, nil, &stats.Heartbeats},
		{`SELECT COUNT(1) FROM heartbeat_history`, nil, &stats.CheckIns},
		{`SELECT COUNT(1) FROM skills`, nil, &stats.Skills},
		{`SELECT COALESCE(MAX(views), 0) FROM site_stats WHERE type = 'site_stats'`, nil, &stats.Views},
	}
	for _, q := range queries {
		if err := database.QueryRowContext(ctx, q.sql, q.args...).Scan(q.dst); err != nil {
			return DirectoryStats{}, err
		}
	}
	return stats, nil
}
