package sqlite

// Schema version for migration management
const SchemaVersion = 1

// RecordsTableSQL creates the records table. All twelve entity collections
// share one table keyed by (collection, id); the sync envelope is extracted
// into columns for indexed queries and the kind-specific payload is stored
// as a JSON object in local field naming.
const RecordsTableSQL = `
CREATE TABLE IF NOT EXISTS records (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    user_id TEXT NOT NULL DEFAULT '',
    sync_status TEXT NOT NULL DEFAULT 'pending' CHECK(sync_status IN ('pending', 'synced')),
    deleted INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    last_synced_at INTEGER,
    fields TEXT NOT NULL DEFAULT '{}',

    PRIMARY KEY (collection, id)
);
`

// SchemaVersionTableSQL creates the schema version table for migration tracking
const SchemaVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// RecordsIndexesSQL creates indexes for the sync engine's hot queries:
// pending-by-owner (push, pending counter) and owner scans (pull, migration).
const RecordsIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_records_status ON records(collection, sync_status, user_id);
CREATE INDEX IF NOT EXISTS idx_records_owner ON records(collection, user_id, deleted);
`

// AllTableSchemas returns all schema statements in creation order
func AllTableSchemas() []string {
	return []string{
		RecordsTableSQL,
		SchemaVersionTableSQL,
		RecordsIndexesSQL,
	}
}
