package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the rules history tables.
const Schema = `
CREATE TABLE IF NOT EXISTS rules_versions (
    id TEXT PRIMARY KEY,
    version TEXT NOT NULL,
    checksum TEXT NOT NULL,
    revision TEXT NOT NULL,
    source TEXT NOT NULL,
    format TEXT NOT NULL,
    rule_count INTEGER NOT NULL,
    body BLOB NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rules_versions_created_at ON rules_versions(created_at);
CREATE INDEX IF NOT EXISTS idx_rules_versions_checksum ON rules_versions(checksum);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// Newest first; rowid breaks ties between rows saved in the same instant.
const orderNewest = ` ORDER BY created_at DESC, rowid DESC`

const selectColumns = `SELECT id, version, checksum, revision, source, format, rule_count, created_at`
