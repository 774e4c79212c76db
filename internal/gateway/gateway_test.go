package gateway

import (
	"context"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gmclaw/internal/db"
	"gmclaw/internal/models"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Set(t *testing.T, s string) {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	c.now = ts
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway(t *testing.T) (*Gateway, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	g := New(Options{
		Path:   filepath.Join(t.TempDir(), "gateway.db"),
		Logger: quietLogger(),
		Now:    clock.Now,
	})
	t.Cleanup(func() { _ = g.Close() })
	return g, clock
}

func TestDisabledGatewayDegradesToEmptyResults(t *testing.T) {
	ctx := context.Background()
	g := New(Options{Logger: quietLogger()})

	assert.False(t, g.Enabled())

	agents, err := g.ListAgents(ctx, 0)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotNil(t, agents)
	assert.Empty(t, agents)

	agent, err := g.GetAgent(ctx, "atlas")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, agent)

	created, err := g.RegisterAgent(ctx, NewAgent{Name: "atlas"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, created)

	res, err := g.SendGm(ctx, "atlas", "")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, res)

	views, err := g.Views(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, views)

	feed, err := g.HeartbeatFeed(ctx, 3)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, feed.Page)
	assert.Empty(t, feed.Entries)

	stats, err := g.AgentsWithStats(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, stats)
}

func TestConnectIsMemoized(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGateway(t)

	first, err := g.Connect(ctx)
	require.NoError(t, err)
	second, err := g.Connect(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.NoError(t, g.Ping(ctx))
}

func TestAtlasStreakScenario(t *testing.T) {
	ctx := context.Background()
	g, clock := newTestGateway(t)

	_, err := g.RegisterAgent(ctx, NewAgent{Name: "Atlas"})
	require.NoError(t, err)

	clock.Set(t, "2026-03-01T09:00:00Z")
	res, err := g.SendGm(ctx, "Atlas", "")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, "gm", res.Pulse.Message)

	clock.Set(t, "2026-03-02T09:00:00Z")
	res, err = g.SendGm(ctx, "Atlas", "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak)

	dup, err := g.SendGm(ctx, "Atlas", "again")
	require.NoError(t, err)
	assert.False(t, dup.Success)

	clock.Set(t, "2026-03-04T09:00:00Z")
	res, err = g.SendGm(ctx, "Atlas", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)

	agent, err := g.GetAgent(ctx, "Atlas")
	require.NoError(t, err)
	require.NotNil(t, agent)
	assert.Equal(t, 1, agent.GmStreak)
	assert.Equal(t, 3, agent.TotalGms)

	today, err := g.TodayPulses(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 1)

	recent, err := g.RecentPulses(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestGetAgentUnknownReturnsNil(t *testing.T) {
	g, _ := newTestGateway(t)
	agent, err := g.GetAgent(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, agent)
}

func TestAgentsWithStatsActivityAndCheckIns(t *testing.T) {
	ctx := context.Background()
	g, clock := newTestGateway(t)

	clock.Set(t, "2026-03-01T00:00:00Z")
	for _, name := range []string{"fresh", "stale", "profile-only", "silent"} {
		_, err := g.RegisterAgent(ctx, NewAgent{Name: name})
		require.NoError(t, err)
	}

	// stale: history only, long ago
	require.NoError(t, g.UpdateHeartbeat(ctx, "stale", models.HeartbeatFields{Todo: []string{"a"}}))
	_, err := g.AppendHeartbeatHistory(ctx, "stale", models.HeartbeatFields{Todo: []string{"a"}})
	require.NoError(t, err)

	clock.Set(t, "2026-03-05T00:00:00Z")
	require.NoError(t, g.UpdateHeartbeat(ctx, "profile-only", models.HeartbeatFields{Name: strPtr("P")}))
	for i := 0; i < 2; i++ {
		fields := models.HeartbeatFields{WorkingOn: &models.WorkingOn{Task: "index"}}
		require.NoError(t, g.UpdateHeartbeat(ctx, "fresh", fields))
		_, err := g.AppendHeartbeatHistory(ctx, "fresh", fields)
		require.NoError(t, err)
	}

	clock.Set(t, "2026-03-06T12:00:00Z")
	rows, err := g.AgentsWithStats(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byName := map[string]models.AgentWithStats{}
	for _, row := range rows {
		byName[row.Name] = row
	}

	assert.True(t, byName["fresh"].IsActive)
	assert.Equal(t, 2, byName["fresh"].CheckInCount)
	require.NotNil(t, byName["fresh"].CurrentHeartbeat)
	assert.Equal(t, "index", byName["fresh"].CurrentHeartbeat.WorkingOn.Task)

	assert.False(t, byName["stale"].IsActive)
	assert.Equal(t, 1, byName["stale"].CheckInCount)

	assert.True(t, byName["profile-only"].IsActive)
	assert.Equal(t, 1, byName["profile-only"].CheckInCount)

	assert.False(t, byName["silent"].IsActive)
	assert.Zero(t, byName["silent"].CheckInCount)
	assert.Nil(t, byName["silent"].LastActivity)
	assert.Nil(t, byName["silent"].CurrentHeartbeat)
}

func TestHeartbeatFeedPagination(t *testing.T) {
	ctx := context.Background()
	g, clock := newTestGateway(t)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 45; i++ {
		clock.now = start.Add(time.Duration(i) * time.Minute)
		_, err := g.AppendHeartbeatHistory(ctx, "feeder", models.HeartbeatFields{Todo: []string{"t"}})
		require.NoError(t, err)
	}

	first, err := g.HeartbeatFeed(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 45, first.Total)
	assert.Equal(t, 3, first.TotalPages)
	assert.Len(t, first.Entries, FeedPageSize)
	assert.Equal(t, "2026-03-01T00:44:00.000Z", first.Entries[0].Timestamp)

	last, err := g.HeartbeatFeed(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, last.Entries, 5)

	clamped, err := g.HeartbeatFeed(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Page)

	for _, page := range []int{4, math.MaxInt, math.MaxInt/FeedPageSize + 2} {
		past, err := g.HeartbeatFeed(ctx, page)
		require.NoError(t, err)
		assert.Equal(t, 3, past.Page, "page %d", page)
		assert.Equal(t, past.TotalPages, past.Page, "page %d", page)
		require.Len(t, past.Entries, 5, "page %d", page)
		assert.Equal(t, "2026-03-01T00:04:00.000Z", past.Entries[0].Timestamp)
	}
}

func TestHeartbeatFeedEmptyHistoryReportsFirstPage(t *testing.T) {
	g, _ := newTestGateway(t)

	feed, err := g.HeartbeatFeed(context.Background(), math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Page)
	assert.Zero(t, feed.TotalPages)
	assert.Empty(t, feed.Entries)
}

func TestNewWithDBLeavesCallerDatabaseOpen(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(filepath.Join(t.TempDir(), "shared.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.ApplyMigrations(ctx, database))

	g := NewWithDB(database, Options{Logger: quietLogger()})
	assert.True(t, g.Enabled())

	count, err := g.IncrementViews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, g.Close())
	require.NoError(t, database.PingContext(ctx))

	// The handle survives Close, so the gateway keeps serving from it.
	views, err := g.Views(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)
}

func TestInstallSkillUnknownID(t *testing.T) {
	g, _ := newTestGateway(t)
	skill, err := g.InstallSkill(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, skill)
}

func strPtr(s string) *string {
	return &s
}
