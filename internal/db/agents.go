package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"gmclaw/internal/models"
)

var ErrAgentExists = errors.New("agent already exists")

type CreateAgentParams struct {
	Name        string
	Description *string
	Owner       *string
	Avatar      *string
	TweetURL    *string
	Premium     bool
}

const agentColumns = `id, name, description, owner, avatar, tweet_url, premium, created_at, last_gm, gm_streak, total_gms`

func CreateAgent(ctx context.Context, database *sql.DB, p CreateAgentParams, now time.Time) (*models.Agent, error) {
	agent := &models.Agent{
		ID:          uuid.NewString(),
		Name:        p.Name,
		Description: trimmed(p.Description),
		Owner:       trimmed(p.Owner),
		Avatar:      trimmed(p.Avatar),
		TweetURL:    trimmed(p.TweetURL),
		Premium:     p.Premium,
		CreatedAt:   FormatTimestamp(now),
	}
	_, err := database.ExecContext(ctx, `
INSERT INTO agents (id, name, description, owner, avatar, tweet_url, premium, created_at, last_gm, gm_streak, total_gms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, 0, 0)`,
		agent.ID, agent.Name,
		nullableString(agent.Description), nullableString(agent.Owner),
		nullableString(agent.Avatar), nullableString(agent.TweetURL),
		boolInt(agent.Premium), agent.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAgentExists
		}
		return nil, err
	}
	return agent, nil
}

func GetAgent(ctx context.Context, database *sql.DB, name string) (*models.Agent, error) {
	row := database.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE name = ?`, name)
	return scanAgent(row)
}

// ListAgents returns agents with the most recent gm first. Agents that never
// said gm sort last, newest registration first.
func ListAgents(ctx context.Context, database *sql.DB, limit int) ([]models.Agent, error) {
	return queryAgents(ctx, database, `
SELECT `+agentColumns+`
FROM agents
ORDER BY last_gm IS NULL, last_gm DESC, created_at DESC
LIMIT ?`, limit)
}

func ListAgentsByCreated(ctx context.Context, database *sql.DB) ([]models.Agent, error) {
	return queryAgents(ctx, database, `
SELECT `+agentColumns+`
FROM agents
ORDER BY created_at DESC, name ASC`)
}

func CountAgents(ctx context.Context, database *sql.DB) (int, error) {
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(1) FROM agents`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*models.Agent, error) {
	var a models.Agent
	var premium int
	var description, owner, avatar, tweetURL, lastGm sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &description, &owner, &avatar, &tweetURL,
		&premium, &a.CreatedAt, &lastGm, &a.GmStreak, &a.TotalGms); err != nil {
		return nil, err
	}
	a.Description = stringPtr(description)
	a.Owner = stringPtr(owner)
	a.Avatar = stringPtr(avatar)
	a.TweetURL = stringPtr(tweetURL)
	a.LastGm = stringPtr(lastGm)
	a.Premium = premium == 1
	return &a, nil
}

func queryAgents(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Agent, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]models.Agent, 0)
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

func trimmed(v *string) *string {
	s, ok := nullableString(v).(string)
	if !ok {
		return nil
	}
	return &s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
