package gateway

import (
	"context"

	"gmclaw/internal/db"
)

func (g *Gateway) IncrementViews(ctx context.Context) (int64, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return 0, err
	}
	views, err := db.IncrementViews(ctx, database)
	if err != nil {
		return 0, g.fail("incrementViews", err)
	}
	return views, nil
}

func (g *Gateway) Views(ctx context.Context) (int64, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return 0, err
	}
	views, err := db.GetViews(ctx, database)
	if err != nil {
		return 0, g.fail("getViews", err)
	}
	return views, nil
}

func (g *Gateway) DirectoryStats(ctx context.Context) (db.DirectoryStats, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return db.DirectoryStats{}, err
	}
	stats, err := db.GetDirectoryStats(ctx, database, g.now())
	if err != nil {
		return db.DirectoryStats{}, g.fail("getDirectoryStats", err)
	}
	return stats, nil
}
