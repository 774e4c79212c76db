package gateway

import (
	"context"
	"database/sql"
	"errors"

	"gmclaw/internal/db"
	"gmclaw/internal/models"
)

// UpdateHeartbeat upserts the current heartbeat. It never touches history;
// callers append a history entry separately when activity was reported.
func (g *Gateway) UpdateHeartbeat(ctx context.Context, agentName string, fields models.HeartbeatFields) error {
	database, err := g.Connect(ctx)
	if err != nil {
		return err
	}
	if err := db.UpsertHeartbeat(ctx, database, agentName, fields, g.now()); err != nil {
		return g.fail("updateHeartbeat", err)
	}
	return nil
}

func (g *Gateway) GetHeartbeat(ctx context.Context, agentName string) (*models.Heartbeat, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return nil, err
	}
	hb, err := db.GetHeartbeat(ctx, database, agentName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, g.fail("getHeartbeat", err)
	}
	return hb, nil
}

func (g *Gateway) ListHeartbeats(ctx context.Context) ([]models.Heartbeat, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return []models.Heartbeat{}, err
	}
	out, err := db.ListHeartbeats(ctx, database)
	if err != nil {
		return []models.Heartbeat{}, g.fail("getAllHeartbeats", err)
	}
	return out, nil
}

func (g *Gateway) AppendHeartbeatHistory(ctx context.Context, agentName string, fields models.HeartbeatFields) (*models.HistoryEntry, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := db.AppendHistory(ctx, database, agentName, fields, g.now())
	if err != nil {
		return nil, g.fail("appendHeartbeatHistory", err)
	}
	return entry, nil
}

func (g *Gateway) HeartbeatHistory(ctx context.Context, agentName string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	database, err := g.Connect(ctx)
	if err != nil {
		return []models.HistoryEntry{}, err
	}
	out, err := db.ListHistory(ctx, database, agentName, limit)
	if err != nil {
		return []models.HistoryEntry{}, g.fail("getHeartbeatHistory", err)
	}
	return out, nil
}

// HeartbeatFeed returns one page of the global history feed. Pages are
// 1-indexed and hold FeedPageSize entries. Page values below 1 mean 1 and
// values past the end mean the last page.
func (g *Gateway) HeartbeatFeed(ctx context.Context, page int) (*models.HeartbeatFeed, error) {
	if page < 1 {
		page = 1
	}
	feed := &models.HeartbeatFeed{Entries: []models.HistoryEntry{}, Page: page}

	database, err := g.Connect(ctx)
	if err != nil {
		return feed, err
	}
	total, err := db.CountHistory(ctx, database)
	if err != nil {
		return feed, g.fail("getHeartbeatFeed", err)
	}
	feed.Total = total
	feed.TotalPages = (total + FeedPageSize - 1) / FeedPageSize
	if page > feed.TotalPages {
		page = max(feed.TotalPages, 1)
		feed.Page = page
	}
	entries, err := db.ListHistoryFeed(ctx, database, FeedPageSize, (page-1)*FeedPageSize)
	if err != nil {
		return feed, g.fail("getHeartbeatFeed", err)
	}
	feed.Entries = entries
	return feed, nil
}
