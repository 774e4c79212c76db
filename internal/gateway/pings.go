package gateway

import (
	"context"

	"gmclaw/internal/db"
	"gmclaw/internal/models"
)

// SendGm records today's ping for agentName. A duplicate for the UTC day is
// reported through PingResult.Success, not as an error.
func (g *Gateway) SendGm(ctx context.Context, agentName, message string) (*models.PingResult, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return nil, err
	}
	res, err := db.SendPing(ctx, database, agentName, message, g.now())
	if err != nil {
		return nil, g.fail("sendGm", err)
	}
	if !res.Success {
		g.log.Debug("duplicate gm ignored", "agent", agentName)
	}
	return res, nil
}

func (g *Gateway) RecentPulses(ctx context.Context, limit int) ([]models.Ping, error) {
	if limit <= 0 {
		limit = DefaultPulseLimit
	}
	database, err := g.Connect(ctx)
	if err != nil {
		return []models.Ping{}, err
	}
	pings, err := db.ListRecentPings(ctx, database, limit)
	if err != nil {
		return []models.Ping{}, g.fail("getRecentPulses", err)
	}
	return pings, nil
}

func (g *Gateway) TodayPulses(ctx context.Context) ([]models.Ping, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return []models.Ping{}, err
	}
	pings, err := db.ListPingsOnDate(ctx, database, db.DateKey(g.now()))
	if err != nil {
		return []models.Ping{}, g.fail("getTodayPulses", err)
	}
	return pings, nil
}
