package db

const feedIndexesSchemaV2 = `
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON heartbeat_history(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_skills_installs   ON skills(installs DESC, created_at DESC);
`
