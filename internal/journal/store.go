// Package journal keeps a SQLite history of conversion passes and the rows
// each pass failed to convert.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
)

// timeLayout is a fixed-width RFC 3339 layout, so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded pass.
type Entry struct {
	RunID      string
	InputPath  string
	OutputPath string
	StartedAt  time.Time
	FinishedAt time.Time
	RowsRead   int
	Skipped    int
	Converted  int

	// Failures holds the failed rows in index order.
	Failures []types.RowFailure
}

// FailedIndices returns the 1-based indices of the failed rows.
func (e Entry) FailedIndices() []int {
	indices := make([]int, len(e.Failures))
	for i, f := range e.Failures {
		indices[i] = f.Index
	}
	return indices
}

// Store manages the journal database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal database at path, creating the parent
// directory and the schema when they do not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			input_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			rows_read INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			converted INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS failed_rows (
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			row_index INTEGER NOT NULL,
			line INTEGER NOT NULL,
			name TEXT,
			cas TEXT,
			smiles TEXT,
			reason TEXT,
			PRIMARY KEY (run_id, row_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a finished pass and its failed rows in one transaction.
// Recording the same run ID twice is an error.
func (s *Store) Record(ctx context.Context, result types.ConversionResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, input_path, output_path, started_at, finished_at,
			rows_read, skipped, converted, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.InputPath, result.OutputPath,
		formatTime(result.StartedAt), formatTime(result.FinishedAt),
		result.RowsRead, result.Skipped, result.Converted, len(result.Failures),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if len(result.Failures) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO failed_rows (run_id, row_index, line, name, cas, smiles, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing row insert: %w", err)
		}
		defer stmt.Close()

		for _, f := range result.Failures {
			if _, err := stmt.ExecContext(ctx, result.RunID, f.Index, f.Line, f.Name, f.CAS, f.Smiles, f.Reason); err != nil {
				return fmt.Errorf("inserting row %d: %w", f.Index, err)
			}
		}
	}

	return tx.Commit()
}

// Recent returns up to n passes, newest first. n <= 0 returns all passes.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	query := `SELECT run_id, input_path, output_path, started_at, finished_at,
			rows_read, skipped, converted
		FROM runs ORDER BY started_at DESC, id DESC`
	var args []any
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished string
		if err := rows.Scan(&e.RunID, &e.InputPath, &e.OutputPath, &started, &finished,
			&e.RowsRead, &e.Skipped, &e.Converted); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		e.StartedAt = parseTime(started)
		e.FinishedAt = parseTime(finished)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	rows.Close()

	for i := range entries {
		failures, err := s.failures(ctx, entries[i].RunID)
		if err != nil {
			return nil, err
		}
		entries[i].Failures = failures
	}
	return entries, nil
}

func (s *Store) failures(ctx context.Context, runID string) ([]types.RowFailure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_index, line, name, cas, smiles, reason
		FROM failed_rows WHERE run_id = ? ORDER BY row_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying failed rows: %w", err)
	}
	defer rows.Close()

	var out []types.RowFailure
	for rows.Next() {
		var f types.RowFailure
		if err := rows.Scan(&f.Index, &f.Line, &f.Name, &f.CAS, &f.Smiles, &f.Reason); err != nil {
			return nil, fmt.Errorf("scanning failed row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
