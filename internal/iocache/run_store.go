package iocache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/huangsam/gazeplot/internal/contract"
	"github.com/huangsam/gazeplot/schema"
)

// buildRunsTable holds one row per build invocation.
const buildRunsTable = "gazeplot_build_runs"

// RunStoreImpl records build runs in a SQL table.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore opens the run history on the given backend, creating the table if needed.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetRunsDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run store: %w", err)
	}

	if _, err := db.Exec(getCreateBuildRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", buildRunsTable, err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// getCreateBuildRunsQuery returns the CREATE TABLE query for gazeplot_build_runs.
// It matches the first migration so that stores opened without `runs migrate` agree with it.
func getCreateBuildRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(buildRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id CHAR(36) PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				fingerprint VARCHAR(64) NOT NULL,
				cache_hit TINYINT(1) NOT NULL DEFAULT 0,
				feelings INT NOT NULL DEFAULT 0,
				metrics INT NOT NULL DEFAULT 0,
				combinations INT NOT NULL DEFAULT 0,
				empty_combinations INT NOT NULL DEFAULT 0,
				dropped_groups INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				fingerprint TEXT NOT NULL,
				cache_hit BOOLEAN NOT NULL DEFAULT FALSE,
				feelings INTEGER NOT NULL DEFAULT 0,
				metrics INTEGER NOT NULL DEFAULT 0,
				combinations INTEGER NOT NULL DEFAULT 0,
				empty_combinations INTEGER NOT NULL DEFAULT 0,
				dropped_groups INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				fingerprint TEXT NOT NULL,
				cache_hit INTEGER NOT NULL DEFAULT 0,
				feelings INTEGER NOT NULL DEFAULT 0,
				metrics INTEGER NOT NULL DEFAULT 0,
				combinations INTEGER NOT NULL DEFAULT 0,
				empty_combinations INTEGER NOT NULL DEFAULT 0,
				dropped_groups INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (rs *RunStoreImpl) rebind(query string) string {
	if rs.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BeginRun records a new build run and returns its id.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, fingerprint string, configParams map[string]any) (string, error) {
	if rs.db == nil {
		return "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runID := uuid.NewString()
	query := rs.rebind(fmt.Sprintf(`INSERT INTO %s (run_id, start_time, fingerprint, config_params) VALUES (?, ?, ?, ?)`,
		quoteTableName(buildRunsTable, rs.backend)))
	if _, err := rs.db.Exec(query, runID, formatTime(startTime, rs.backend), fingerprint, string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to record build run: %w", err)
	}
	return runID, nil
}

// EndRun stores completion data for runID.
func (rs *RunStoreImpl) EndRun(runID string, endTime time.Time, cacheHit bool, summary schema.BuildSummary) error {
	if rs.db == nil || runID == "" {
		return nil
	}

	quotedTableName := quoteTableName(buildRunsTable, rs.backend)
	var rawStart any
	row := rs.db.QueryRow(rs.rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName)), runID)
	if err := row.Scan(&rawStart); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	startTime, err := parseTime(rawStart)
	if err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}

	dropped := 0
	for _, n := range summary.DroppedGroups {
		dropped += n
	}

	query := rs.rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, cache_hit = ?, feelings = ?, metrics = ?,
		combinations = ?, empty_combinations = ?, dropped_groups = ? WHERE run_id = ?`, quotedTableName))
	_, err = rs.db.Exec(query,
		formatTime(endTime, rs.backend),
		endTime.Sub(startTime).Milliseconds(),
		cacheHit,
		summary.Feelings,
		summary.Metrics,
		summary.Combinations,
		summary.EmptyCombinations,
		dropped,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update build run: %w", err)
	}
	return nil
}

// ListRuns returns every recorded run, oldest first.
func (rs *RunStoreImpl) ListRuns() ([]schema.BuildRunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, fingerprint, cache_hit, feelings, metrics,
		combinations, empty_combinations, dropped_groups, config_params FROM %s ORDER BY start_time, run_id`,
		quoteTableName(buildRunsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query build runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.BuildRunRecord
	for rows.Next() {
		var record schema.BuildRunRecord
		var rawStart, rawEnd any
		if err := rows.Scan(&record.RunID, &rawStart, &rawEnd, &record.RunDurationMs, &record.Fingerprint, &record.CacheHit,
			&record.Feelings, &record.Metrics, &record.Combinations, &record.EmptyCombinations, &record.DroppedGroups,
			&record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan build run: %w", err)
		}
		if record.StartTime, err = parseTime(rawStart); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if rawEnd != nil {
			endTime, err := parseTime(rawEnd)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating build runs: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:   string(rs.backend),
		Connected: rs.db != nil,
	}
	if rs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(buildRunsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	if status.TotalRuns == 0 {
		return status, nil
	}

	var rawLast, rawOldest any
	row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC, run_id DESC LIMIT 1", quotedTableName))
	if err := row.Scan(&status.LastRunID, &rawLast); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", quotedTableName))
	if err := row.Scan(&rawOldest); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}

	var err error
	if status.LastRunTime, err = parseTime(rawLast); err != nil {
		return status, fmt.Errorf("failed to parse last run time: %w", err)
	}
	if status.OldestRunTime, err = parseTime(rawOldest); err != nil {
		return status, fmt.Errorf("failed to parse oldest run time: %w", err)
	}

	row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(combinations), 0) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalCombinations); err != nil {
		return status, fmt.Errorf("failed to get total combinations: %w", err)
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
