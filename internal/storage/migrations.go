package storage

import "fmt"

// migrate creates the audit schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// One row per ingest-and-build attempt (decode plus catalog.New): how
	// many stops/buses it produced, how long it took, and whether it
	// succeeded. The catalog itself is
	// never persisted here — only the fact that a build happened.
	`CREATE TABLE IF NOT EXISTS ingest_runs (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		source_kind  TEXT NOT NULL,
		source_path  TEXT NOT NULL,
		stop_count   INTEGER NOT NULL DEFAULT 0,
		bus_count    INTEGER NOT NULL DEFAULT 0,
		duration_ms  INTEGER NOT NULL,
		succeeded    INTEGER NOT NULL,
		error        TEXT,
		started_at   TEXT NOT NULL DEFAULT (datetime('now'))
	)`,

	// One row per answered query.Request, for latency and miss-rate
	// observability. request_id is the caller-supplied correlation id,
	// not this table's primary key.
	`CREATE TABLE IF NOT EXISTS query_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		ingest_run_id INTEGER REFERENCES ingest_runs(id),
		request_id   INTEGER NOT NULL,
		request_kind TEXT NOT NULL,
		found        INTEGER NOT NULL,
		duration_us  INTEGER NOT NULL,
		logged_at    TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_query_log_run ON query_log(ingest_run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_query_log_kind ON query_log(request_kind)`,
}
