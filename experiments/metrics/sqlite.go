package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS deal_records (
	run_id TEXT NOT NULL,
	id INTEGER NOT NULL,
	variant TEXT NOT NULL,
	seed INTEGER NOT NULL,
	hash TEXT NOT NULL,
	attempts INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	budget INTEGER NOT NULL,
	expanded INTEGER NOT NULL,
	nodes INTEGER NOT NULL,
	max_bucket INTEGER NOT NULL,
	solution_length INTEGER NOT NULL,
	start_time TEXT NOT NULL,
	duration_ns INTEGER NOT NULL,
	PRIMARY KEY (run_id, id)
);
CREATE TABLE IF NOT EXISTS summaries (
	run_id TEXT NOT NULL,
	variant TEXT NOT NULL,
	games INTEGER NOT NULL,
	solved INTEGER NOT NULL,
	solve_rate REAL NOT NULL,
	mean_expanded REAL NOT NULL,
	mean_nodes REAL NOT NULL,
	mean_solution REAL NOT NULL,
	mean_duration_ns INTEGER NOT NULL,
	budget_exceeded INTEGER NOT NULL,
	PRIMARY KEY (run_id, variant)
);`

// SQLiteWriter appends the results of a run to a SQLite database, keyed by
// run ID so several runs can share one file.
type SQLiteWriter struct {
	db    *sql.DB
	path  string
	runID string
}

func NewSQLiteWriter(path, runID string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLiteWriter{db: db, path: path, runID: runID}, nil
}

func (w *SQLiteWriter) Location() string { return w.path }

func (w *SQLiteWriter) DB() *sql.DB { return w.db }

func (w *SQLiteWriter) Close() error { return w.db.Close() }

func (w *SQLiteWriter) WriteDealRecords(records []DealRecord) error {
	return w.insert(`INSERT INTO deal_records VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(records), func(stmt *sql.Stmt, i int) error {
		r := records[i]
		_, err := stmt.Exec(w.runID, r.ID, r.Variant, int64(r.Seed), fmt.Sprintf("%016x", r.Hash), r.Attempts,
			string(r.Outcome), r.Budget, r.Expanded, r.Nodes, r.MaxBucket, r.SolutionLength,
			r.StartTime.UTC().Format("2006-01-02T15:04:05.000000000Z"), r.Duration.Nanoseconds())
		return err
	})
}

func (w *SQLiteWriter) WriteSummaries(summaries []Summary) error {
	return w.insert(`INSERT INTO summaries VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, len(summaries), func(stmt *sql.Stmt, i int) error {
		s := summaries[i]
		_, err := stmt.Exec(w.runID, s.Variant, s.Games, s.Solved, s.SolveRate, s.MeanExpanded, s.MeanNodes,
			s.MeanSolution, s.MeanDuration.Nanoseconds(), s.BudgetExceeded)
		return err
	})
}

// insert runs exec for rows 0..n-1 in one transaction.
func (w *SQLiteWriter) insert(query string, n int, exec func(stmt *sql.Stmt, i int) error) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}
