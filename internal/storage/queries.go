package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// IngestRun records one ingest-and-build pass, for RecordIngestRun and
// later correlation from query_log rows.
type IngestRun struct {
	SourceKind string
	SourcePath string
	StopCount  int
	BusCount   int
	Duration   time.Duration
	Succeeded  bool
	Err        error
}

// RecordIngestRun inserts one row into ingest_runs and returns its id,
// used as the generation tag for a read-through query cache and as the
// foreign key query_log rows hang off of.
func (db *DB) RecordIngestRun(ctx context.Context, run IngestRun) (int64, error) {
	var errMsg sql.NullString
	if run.Err != nil {
		errMsg = sql.NullString{String: run.Err.Error(), Valid: true}
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO ingest_runs (source_kind, source_path, stop_count, bus_count, duration_ms, succeeded, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.SourceKind, run.SourcePath, run.StopCount, run.BusCount,
		run.Duration.Milliseconds(), boolToInt(run.Succeeded), errMsg,
	)
	if err != nil {
		return 0, fmt.Errorf("record ingest run: %w", err)
	}
	return res.LastInsertId()
}

// QueryLogEntry records one answered query, for RecordQuery.
type QueryLogEntry struct {
	IngestRunID int64
	RequestID   int
	RequestKind string // "bus", "stop", "route", "map"
	Found       bool
	Duration    time.Duration
}

// RecordQuery inserts one row into query_log.
func (db *DB) RecordQuery(ctx context.Context, entry QueryLogEntry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO query_log (ingest_run_id, request_id, request_kind, found, duration_us)
		VALUES (?, ?, ?, ?, ?)`,
		entry.IngestRunID, entry.RequestID, entry.RequestKind,
		boolToInt(entry.Found), entry.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	return nil
}

// MissRate returns the fraction of query_log rows for an ingest run that
// were misses (found = 0), for an operator-facing health check.
func (db *DB) MissRate(ctx context.Context, ingestRunID int64) (float64, error) {
	var total, misses int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN found = 0 THEN 1 ELSE 0 END), 0) FROM query_log WHERE ingest_run_id = ?`,
		ingestRunID,
	).Scan(&total, &misses)
	if err != nil {
		return 0, fmt.Errorf("miss rate query: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	return float64(misses) / float64(total), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
