// Package store exports checked measurements to a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukaji3/speclimits-go/pkg/speclimits"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/output"

	_ "modernc.org/sqlite"
)

// Store is a SQLite file holding measurements, limits and matches.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the database at path and creates the tables.
func Open(path string) (*Store, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			machine TEXT NOT NULL,
			variable TEXT NOT NULL,
			variable_key TEXT NOT NULL,
			value REAL,
			timestamp TEXT,
			process TEXT NOT NULL,
			lower REAL,
			upper REAL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_series ON measurements(process, machine, variable_key)`,
		`CREATE TABLE IF NOT EXISTS limits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			machine TEXT NOT NULL,
			variable TEXT NOT NULL,
			variable_key TEXT NOT NULL,
			lower REAL,
			upper REAL,
			process TEXT,
			sheet TEXT,
			row INTEGER
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// SaveReport replaces the stored contents with the report in one transaction.
func (s *Store) SaveReport(ctx context.Context, r *speclimits.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"measurements", "limits"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	mStmt, err := tx.PrepareContext(ctx, `INSERT INTO measurements
		(machine, variable, variable_key, value, timestamp, process, lower, upper, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer mStmt.Close()
	for _, m := range r.Matches {
		var lower, upper *float64
		if m.Limit != nil {
			lower, upper = m.Limit.Lower, m.Limit.Upper
		}
		ms := m.Measurement
		if _, err := mStmt.ExecContext(ctx, ms.Machine, ms.Variable, ms.VariableKey, ms.Value,
			nullString(output.FormatTime(ms.Timestamp)), string(ms.Process), lower, upper, string(m.Status)); err != nil {
			return fmt.Errorf("failed to insert measurement: %w", err)
		}
	}

	lStmt, err := tx.PrepareContext(ctx, `INSERT INTO limits
		(machine, variable, variable_key, lower, upper, process, sheet, row)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer lStmt.Close()
	for _, l := range r.Limits {
		if _, err := lStmt.ExecContext(ctx, l.Machine, l.Variable, l.VariableKey, l.Lower, l.Upper,
			nullString(string(l.Process)), l.Sheet, l.Row); err != nil {
			return fmt.Errorf("failed to insert limit: %w", err)
		}
	}

	return tx.Commit()
}

// CountMeasurements returns the number of stored measurements, optionally
// restricted to one status.
func (s *Store) CountMeasurements(ctx context.Context, status string) (int, error) {
	query, args := "SELECT COUNT(*) FROM measurements", []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
