package sqlite

const (
	pragmaWAL         = `PRAGMA journal_mode = WAL`
	pragmaBusyTimeout = `PRAGMA busy_timeout = 5000`
	pragmaSynchronous = `PRAGMA synchronous = NORMAL`
)

const schemaSnapshots = `
CREATE TABLE IF NOT EXISTS graph_snapshots (
	paper_id   TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	node_count INTEGER NOT NULL,
	edge_count INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

const indexSnapshotsUpdated = `CREATE INDEX IF NOT EXISTS idx_graph_snapshots_updated ON graph_snapshots(updated_at)`

func allPragmas() []string {
	return []string{pragmaWAL, pragmaBusyTimeout, pragmaSynchronous}
}

func allSchemaStatements() []string {
	return []string{schemaSnapshots, indexSnapshotsUpdated}
}
