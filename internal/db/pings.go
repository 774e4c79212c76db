package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gmclaw/internal/models"
)

const (
	DefaultPingMessage   = "gm"
	DuplicatePingMessage = "Already said GM today"
)

// NextStreak returns the streak after a ping at now. The streak continues
// only when the previous ping fell on the preceding UTC calendar day.
func NextStreak(lastGm *string, current int, now time.Time) int {
	if lastGm == nil || current < 0 {
		return 1
	}
	last, err := ParseTimestamp(*lastGm)
	if err != nil {
		return 1
	}
	if DateKey(last) == DateKey(now.AddDate(0, 0, -1)) {
		return current + 1
	}
	return 1
}

// SendPing records today's ping for agentName and advances the agent's
// streak. A second ping on the same UTC day leaves all state unchanged and
// reports the existing ping.
func SendPing(ctx context.Context, database *sql.DB, agentName, message string, now time.Time) (*models.PingResult, error) {
	now = now.UTC()
	today := DateKey(now)
	message = strings.TrimSpace(message)
	if message == "" {
		message = DefaultPingMessage
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := getPing(ctx, tx, agentName, today)
	if err == nil {
		return duplicatePing(existing), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check existing ping: %w", err)
	}

	ping := models.Ping{
		ID:        uuid.NewString(),
		AgentName: agentName,
		Message:   message,
		Date:      today,
		Timestamp: FormatTimestamp(now),
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO pings (id, agent_name, message, date, timestamp)
VALUES (?, ?, ?, ?, ?)`,
		ping.ID, ping.AgentName, ping.Message, ping.Date, ping.Timestamp); err != nil {
		if isUniqueViolation(err) {
			_ = tx.Rollback()
			existing, getErr := getPing(ctx, database, agentName, today)
			if getErr != nil {
				return nil, fmt.Errorf("read racing ping: %w", getErr)
			}
			return duplicatePing(existing), nil
		}
		return nil, fmt.Errorf("insert ping: %w", err)
	}

	var (
		lastGm sql.NullString
		streak int
	)
	err = tx.QueryRowContext(ctx, `SELECT last_gm, gm_streak FROM agents WHERE name = ?`, agentName).
		Scan(&lastGm, &streak)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read agent streak: %w", err)
	}
	newStreak := NextStreak(stringPtr(lastGm), streak, now)

	if _, err := tx.ExecContext(ctx, `
UPDATE agents
SET last_gm = ?, gm_streak = ?, total_gms = total_gms + 1
WHERE name = ?`,
		ping.Timestamp, newStreak, agentName); err != nil {
		return nil, fmt.Errorf("update agent streak: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &models.PingResult{Success: true, Pulse: &ping, Streak: newStreak}, nil
}

func duplicatePing(existing *models.Ping) *models.PingResult {
	return &models.PingResult{
		Success: false,
		Error:   DuplicatePingMessage,
		Pulse:   existing,
	}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPing(ctx context.Context, q queryRower, agentName, date string) (*models.Ping, error) {
	var p models.Ping
	err := q.QueryRowContext(ctx, `
SELECT id, agent_name, message, date, timestamp
FROM pings
WHERE agent_name = ? AND date = ?`, agentName, date).
		Scan(&p.ID, &p.AgentName, &p.Message, &p.Date, &p.Timestamp)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func ListRecentPings(ctx context.Context, database *sql.DB, limit int) ([]models.Ping, error) {
	return queryPings(ctx, database, `
SELECT id, agent_name, message, date, timestamp
FROM pings
ORDER BY timestamp DESC, rowid DESC
LIMIT ?`, limit)
}

func ListPingsOnDate(ctx context.Context, database *sql.DB, date string) ([]models.Ping, error) {
	return queryPings(ctx, database, `
SELECT id, agent_name, message, date, timestamp
FROM pings
WHERE date = ?
ORDER BY timestamp DESC, rowid DESC`, date)
}

func queryPings(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.Ping, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pings := make([]models.Ping, 0)
	for rows.Next() {
		var p models.Ping
		if err := rows.Scan(&p.ID, &p.AgentName, &p.Message, &p.Date, &p.Timestamp); err != nil {
			return nil, err
		}
		pings = append(pings, p)
	}
	return pings, rows.Err()
}
