// Package kpi persists solve outcomes so schedule quality can be
// compared across runs and algorithm configurations.
package kpi

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	coremetrics "github.com/solvekit/uras/core/metrics"
)

// SQLiteStore persists solve records in a SQLite database. It
// implements the metrics sink interface so it can be listed next to
// the Prometheus sink in the configuration.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS solve_history (
        request_id TEXT PRIMARY KEY,
        algorithm TEXT,
        status TEXT,
        feasible INTEGER,
        makespan_ms INTEGER,
        penalty_ms REAL,
        elapsed_ms INTEGER,
        at INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// RecordSolve inserts or replaces the record for the request.
func (s *SQLiteStore) RecordSolve(r coremetrics.SolveResult) error {
	at := r.Time
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO solve_history
        (request_id, algorithm, status, feasible, makespan_ms, penalty_ms, elapsed_ms, at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(request_id) DO UPDATE SET
            algorithm = excluded.algorithm,
            status = excluded.status,
            feasible = excluded.feasible,
            makespan_ms = excluded.makespan_ms,
            penalty_ms = excluded.penalty_ms,
            elapsed_ms = excluded.elapsed_ms,
            at = excluded.at`,
		r.RequestID, r.Algorithm, r.Status, boolToInt(r.Feasible),
		r.MakespanMs, r.PenaltyMs, r.ElapsedMs, at.Unix())
	return err
}

// Query returns records for the algorithm in the range [start, end],
// oldest first. An empty algorithm matches all.
func (s *SQLiteStore) Query(algorithm string, start, end time.Time) ([]coremetrics.SolveResult, error) {
	rows, err := s.db.Query(`SELECT request_id, algorithm, status, feasible,
        makespan_ms, penalty_ms, elapsed_ms, at
        FROM solve_history
        WHERE (? = '' OR algorithm = ?) AND at >= ? AND at <= ?
        ORDER BY at`,
		algorithm, algorithm, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []coremetrics.SolveResult
	for rows.Next() {
		var r coremetrics.SolveResult
		var feasible int
		var at int64
		if err := rows.Scan(&r.RequestID, &r.Algorithm, &r.Status, &feasible,
			&r.MakespanMs, &r.PenaltyMs, &r.ElapsedMs, &at); err != nil {
			return nil, err
		}
		r.Feasible = feasible != 0
		r.Time = time.Unix(at, 0)
		res = append(res, r)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
