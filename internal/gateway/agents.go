package gateway

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/sync/errgroup"

	"gmclaw/internal/db"
	"gmclaw/internal/models"
)

type NewAgent = db.CreateAgentParams

// RegisterAgent inserts a fresh agent. It does not look for an existing
// name first; a collision surfaces as db.ErrAgentExists.
func (g *Gateway) RegisterAgent(ctx context.Context, agent NewAgent) (*models.Agent, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return nil, err
	}
	created, err := db.CreateAgent(ctx, database, agent, g.now())
	if errors.Is(err, db.ErrAgentExists) {
		return nil, err
	}
	if err != nil {
		return nil, g.fail("registerAgent", err)
	}
	return created, nil
}

// GetAgent returns nil, nil for an unknown name.
func (g *Gateway) GetAgent(ctx context.Context, name string) (*models.Agent, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return nil, err
	}
	agent, err := db.GetAgent(ctx, database, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, g.fail("getAgent", err)
	}
	return agent, nil
}

func (g *Gateway) ListAgents(ctx context.Context, limit int) ([]models.Agent, error) {
	if limit <= 0 {
		limit = DefaultAgentLimit
	}
	database, err := g.Connect(ctx)
	if err != nil {
		return []models.Agent{}, err
	}
	agents, err := db.ListAgents(ctx, database, limit)
	if err != nil {
		return []models.Agent{}, g.fail("getAllAgents", err)
	}
	return agents, nil
}

func (g *Gateway) AgentCount(ctx context.Context) (int, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return 0, err
	}
	count, err := db.CountAgents(ctx, database)
	if err != nil {
		return 0, g.fail("getAgentCount", err)
	}
	return count, nil
}

// AgentsWithStats joins every agent with its current heartbeat and its
// heartbeat history totals. The three reads run concurrently.
func (g *Gateway) AgentsWithStats(ctx context.Context) ([]models.AgentWithStats, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return []models.AgentWithStats{}, err
	}

	var (
		agents     []models.Agent
		heartbeats []models.Heartbeat
		history    map[string]db.HistoryAggregate
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		agents, err = db.ListAgentsByCreated(egCtx, database)
		return err
	})
	eg.Go(func() error {
		var err error
		heartbeats, err = db.ListHeartbeats(egCtx, database)
		return err
	})
	eg.Go(func() error {
		var err error
		history, err = db.AggregateHistory(egCtx, database)
		return err
	})
	if err := eg.Wait(); err != nil {
		return []models.AgentWithStats{}, g.fail("getAgentsWithStats", err)
	}

	return composeAgentStats(agents, heartbeats, history, g.now()), nil
}

// AgentProfile returns an agent with its current heartbeat and most recent
// history, or nil, nil when the agent is unknown.
func (g *Gateway) AgentProfile(ctx context.Context, name string) (*models.AgentProfile, error) {
	agent, err := g.GetAgent(ctx, name)
	if err != nil || agent == nil {
		return nil, err
	}
	heartbeat, err := g.GetHeartbeat(ctx, name)
	if err != nil {
		return nil, err
	}
	history, err := g.HeartbeatHistory(ctx, name, DefaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	return &models.AgentProfile{Agent: *agent, Heartbeat: heartbeat, History: history}, nil
}
