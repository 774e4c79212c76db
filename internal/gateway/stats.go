package gateway

import (
	"time"

	"gmclaw/internal/db"
	"gmclaw/internal/models"
)

// ActiveWindow is how recent an agent's last check-in must be for the agent
// to count as active.
const ActiveWindow = 48 * time.Hour

func composeAgentStats(agents []models.Agent, heartbeats []models.Heartbeat, history map[string]db.HistoryAggregate, now time.Time) []models.AgentWithStats {
	current := make(map[string]models.Heartbeat, len(heartbeats))
	for _, hb := range heartbeats {
		current[hb.AgentName] = hb
	}

	out := make([]models.AgentWithStats, 0, len(agents))
	for _, agent := range agents {
		agg := history[agent.Name]
		row := models.AgentWithStats{
			Agent:        agent,
			CheckInCount: agg.Count,
		}

		var last string
		if hb, ok := current[agent.Name]; ok {
			row.CheckInCount = max(1, agg.Count)
			row.CurrentHeartbeat = &models.HeartbeatSummary{
				WorkingOn: hb.WorkingOn,
				UpdatedAt: hb.UpdatedAt,
			}
			last = hb.UpdatedAt
		}
		last = latestTimestamp(last, agg.LastActivity)
		if last != "" {
			row.LastActivity = &last
			row.IsActive = withinWindow(last, now, ActiveWindow)
		}
		out = append(out, row)
	}
	return out
}

// latestTimestamp picks the later of two stored timestamps. Both use
// db.TimestampLayout, so lexical order is time order.
func latestTimestamp(a, b string) string {
	if b > a {
		return b
	}
	return a
}

func withinWindow(ts string, now time.Time, window time.Duration) bool {
	t, err := db.ParseTimestamp(ts)
	if err != nil {
		return false
	}
	return now.Sub(t) < window
}
