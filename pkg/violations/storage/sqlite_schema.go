package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the violations database schema.
const Schema = `
-- Violation records table
CREATE TABLE IF NOT EXISTS violations (
    id TEXT PRIMARY KEY,
    time TIMESTAMP NOT NULL,

    -- Contract identity
    func TEXT NOT NULL,
    param TEXT,
    "check" TEXT NOT NULL,

    -- Violation detail
    declared TEXT NOT NULL,
    value TEXT,
    value_type TEXT,
    message TEXT NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_violations_time ON violations(time);
CREATE INDEX IF NOT EXISTS idx_violations_func ON violations(func);
CREATE INDEX IF NOT EXISTS idx_violations_check ON violations("check");
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
