package db

const initialSchemaV1 = `
CREATE TABLE IF NOT EXISTS agents (
    name        TEXT PRIMARY KEY,
    id          TEXT UNIQUE NOT NULL,
    description TEXT,
    owner       TEXT,
    avatar      TEXT,
    tweet_url   TEXT,
    premium     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL,
    last_gm     TEXT,
    gm_streak   INTEGER NOT NULL DEFAULT 0 CHECK(gm_streak >= 0),
    total_gms   INTEGER NOT NULL DEFAULT 0 CHECK(total_gms >= 0)
);

CREATE INDEX IF NOT EXISTS idx_agents_last_gm ON agents(last_gm DESC);
CREATE INDEX IF NOT EXISTS idx_agents_created ON agents(created_at DESC);

CREATE TABLE IF NOT EXISTS pings (
    id          TEXT PRIMARY KEY,
    agent_name  TEXT NOT NULL,
    message     TEXT NOT NULL,
    date        TEXT NOT NULL,
    timestamp   TEXT NOT NULL,
    UNIQUE (agent_name, date)
);

CREATE INDEX IF NOT EXISTS idx_pings_timestamp ON pings(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_pings_date      ON pings(date);

CREATE TABLE IF NOT EXISTS heartbeats (
    agent_name     TEXT PRIMARY KEY,
    name           TEXT,
    wallet_address TEXT,
    pfp_url        TEXT,
    working_on     TEXT,
    todo           TEXT,
    upcoming       TEXT,
    done           TEXT,
    contact        TEXT,
    updated_at     TEXT NOT NULL,
    created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_heartbeats_updated ON heartbeats(updated_at DESC);

CREATE TABLE IF NOT EXISTS heartbeat_history (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    agent_name  TEXT NOT NULL,
    working_on  TEXT,
    todo        TEXT,
    upcoming    TEXT,
    done        TEXT,
    timestamp   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_agent ON heartbeat_history(agent_name, timestamp DESC);

CREATE TABLE IF NOT EXISTS skills (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL,
    url         TEXT NOT NULL,
    version     TEXT,
    category    TEXT,
    created_at  TEXT NOT NULL,
    installs    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS site_stats (
    type   TEXT PRIMARY KEY,
    views  INTEGER NOT NULL DEFAULT 0
);
`
