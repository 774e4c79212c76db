package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gmclaw/internal/models"
)

type heartbeatColumns struct {
	workingOn, todo, upcoming, done, contact any
}

func encodeHeartbeat(f models.HeartbeatFields) (heartbeatColumns, error) {
	var (
		c   heartbeatColumns
		err error
	)
	if c.workingOn, err = jsonColumn(f.WorkingOn, f.WorkingOn != nil); err != nil {
		return c, fmt.Errorf("encode workingOn: %w", err)
	}
	if c.todo, err = jsonColumn(f.Todo, f.Todo != nil); err != nil {
		return c, fmt.Errorf("encode todo: %w", err)
	}
	if c.upcoming, err = jsonColumn(f.Upcoming, f.Upcoming != nil); err != nil {
		return c, fmt.Errorf("encode upcoming: %w", err)
	}
	if c.done, err = jsonColumn(f.Done, f.Done != nil); err != nil {
		return c, fmt.Errorf("encode done: %w", err)
	}
	if c.contact, err = jsonColumn(f.Contact, f.Contact != nil); err != nil {
		return c, fmt.Errorf("encode contact: %w", err)
	}
	return c, nil
}

// UpsertHeartbeat writes the current heartbeat for agentName. Supplied fields
// replace stored ones, omitted fields are kept, updated_at always moves and
// created_at is only set by the first write.
func UpsertHeartbeat(ctx context.Context, database *sql.DB, agentName string, f models.HeartbeatFields, now time.Time) error {
	cols, err := encodeHeartbeat(f)
	if err != nil {
		return err
	}
	ts := FormatTimestamp(now)
	_, err = database.ExecContext(ctx, `
INSERT INTO heartbeats (
    agent_name, name, wallet_address, pfp_url,
    working_on, todo, upcoming, done, contact,
    updated_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (agent_name) DO UPDATE SET
    name           = COALESCE(excluded.name, heartbeats.name),
    wallet_address = COALESCE(excluded.wallet_address, heartbeats.wallet_address),
    pfp_url        = COALESCE(excluded.pfp_url, heartbeats.pfp_url),
    working_on     = COALESCE(excluded.working_on, heartbeats.working_on),
    todo           = COALESCE(excluded.todo, heartbeats.todo),
    upcoming       = COALESCE(excluded.upcoming, heartbeats.upcoming),
    done           = COALESCE(excluded.done, heartbeats.done),
    contact        = COALESCE(excluded.contact, heartbeats.contact),
    updated_at     = excluded.updated_at`,
		agentName, nullableString(f.Name), nullableString(f.WalletAddress), nullableString(f.PfpURL),
		cols.workingOn, cols.todo, cols.upcoming, cols.done, cols.contact,
		ts, ts,
	)
	return err
}

const heartbeatSelect = `
SELECT agent_name, name, wallet_address, pfp_url,
       working_on, todo, upcoming, done, contact,
       updated_at, created_at
FROM heartbeats`

func GetHeartbeat(ctx context.Context, database *sql.DB, agentName string) (*models.Heartbeat, error) {
	row := database.QueryRowContext(ctx, heartbeatSelect+` WHERE agent_name = ?`, agentName)
	return scanHeartbeat(row)
}

func ListHeartbeats(ctx context.Context, database *sql.DB) ([]models.Heartbeat, error) {
	rows, err := database.QueryContext(ctx, heartbeatSelect+` ORDER BY updated_at DESC, agent_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Heartbeat, 0)
	for rows.Next() {
		hb, err := scanHeartbeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *hb)
	}
	return out, rows.Err()
}

func scanHeartbeat(row rowScanner) (*models.Heartbeat, error) {
	var hb models.Heartbeat
	var name, wallet, pfp sql.NullString
	var workingOn, todo, upcoming, done, contact sql.NullString
	if err := row.Scan(&hb.AgentName, &name, &wallet, &pfp,
		&workingOn, &todo, &upcoming, &done, &contact,
		&hb.UpdatedAt, &hb.CreatedAt); err != nil {
		return nil, err
	}
	hb.Name = stringPtr(name)
	hb.WalletAddress = stringPtr(wallet)
	hb.PfpURL = stringPtr(pfp)
	if workingOn.Valid {
		hb.WorkingOn = &models.WorkingOn{}
	}
	if contact.Valid {
		hb.Contact = &models.Contact{}
	}
	for _, col := range []struct {
		raw sql.NullString
		dst any
	}{
		{workingOn, hb.WorkingOn},
		{todo, &hb.Todo},
		{upcoming, &hb.Upcoming},
		{done, &hb.Done},
		{contact, hb.Contact},
	} {
		if err := decodeColumn(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decode heartbeat %s: %w", hb.AgentName, err)
		}
	}
	return &hb, nil
}

func AppendHistory(ctx context.Context, database *sql.DB, agentName string, f models.HeartbeatFields, now time.Time) (*models.HistoryEntry, error) {
	cols, err := encodeHeartbeat(f)
	if err != nil {
		return nil, err
	}
	entry := &models.HistoryEntry{
		AgentName: agentName,
		WorkingOn: f.WorkingOn,
		Todo:      f.Todo,
		Upcoming:  f.Upcoming,
		Done:      f.Done,
		Timestamp: FormatTimestamp(now),
	}
	res, err := database.ExecContext(ctx, `
INSERT INTO heartbeat_history (agent_name, working_on, todo, upcoming, done, timestamp)
VALUES (?, ?, ?, ?, ?, ?)`,
		agentName, cols.workingOn, cols.todo, cols.upcoming, cols.done, entry.Timestamp)
	if err != nil {
		return nil, err
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return entry, nil
}

const historySelect = `
SELECT id, agent_name, working_on, todo, upcoming, done, timestamp
FROM heartbeat_history`

func ListHistory(ctx context.Context, database *sql.DB, agentName string, limit int) ([]models.HistoryEntry, error) {
	return queryHistory(ctx, database, historySelect+`
WHERE agent_name = ?
ORDER BY timestamp DESC, id DESC
LIMIT ?`, agentName, limit)
}

// ListHistoryFeed pages through history entries of all agents, newest first.
func ListHistoryFeed(ctx context.Context, database *sql.DB, limit, offset int) ([]models.HistoryEntry, error) {
	return queryHistory(ctx, database, historySelect+`
ORDER BY timestamp DESC, id DESC
LIMIT ? OFFSET ?`, limit, offset)
}

func CountHistory(ctx context.Context, database *sql.DB) (int, error) {
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(1) FROM heartbeat_history`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type HistoryAggregate struct {
	Count        int
	LastActivity string
}

// AggregateHistory groups all history entries by agent.
func AggregateHistory(ctx context.Context, database *sql.DB) (map[string]HistoryAggregate, error) {
	rows, err := database.QueryContext(ctx, `
SELECT agent_name, COUNT(1), MAX(timestamp)
FROM heartbeat_history
GROUP BY agent_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]HistoryAggregate)
	for rows.Next() {
		var (
			name string
			agg  HistoryAggregate
		)
		if err := rows.Scan(&name, &agg.Count, &agg.LastActivity); err != nil {
			return nil, err
		}
		out[name] = agg
	}
	return out, rows.Err()
}

func queryHistory(ctx context.Context, database *sql.DB, query string, args ...any) ([]models.HistoryEntry, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var (
			e                               models.HistoryEntry
			workingOn, todo, upcoming, done sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.AgentName, &workingOn, &todo, &upcoming, &done, &e.Timestamp); err != nil {
			return nil, err
		}
		if workingOn.Valid {
			e.WorkingOn = &models.WorkingOn{}
			if err := decodeColumn(workingOn, e.WorkingOn); err != nil {
				return nil, err
			}
		}
		if err := decodeColumn(todo, &e.Todo); err != nil {
			return nil, err
		}
		if err := decodeColumn(upcoming, &e.Upcoming); err != nil {
			return nil, err
		}
		if err := decodeColumn(done, &e.Done); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
