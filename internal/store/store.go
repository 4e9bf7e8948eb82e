// Package store handles SQLite persistence of imported uploads.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/runlog/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when an import id does not exist.
var ErrNotFound = errors.New("import not found")

// Store wraps SQLite access for import history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			error_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			import_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			date TEXT NOT NULL,
			person TEXT NOT NULL,
			miles REAL NOT NULL,
			PRIMARY KEY (import_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS import_errors (
			import_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			message TEXT NOT NULL,
			PRIMARY KEY (import_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_person ON runs(person);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertImport stores a parse result with its records and diagnostics.
func (s *Store) InsertImport(ctx context.Context, source string, importedAt time.Time, result model.ParseResult) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source, imported_at, record_count, error_count) VALUES (?, ?, ?, ?)`,
		source,
		importedAt.UTC().Format(time.RFC3339Nano),
		len(result.Records),
		len(result.Errors),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, r := range result.Records {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO runs (import_id, seq, date, person, miles) VALUES (?, ?, ?, ?, ?)`,
			id, i, r.Date.UTC().Format(time.RFC3339Nano), r.Person, r.Miles); err != nil {
			return 0, err
		}
	}
	for i, msg := range result.Errors {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO import_errors (import_id, seq, message) VALUES (?, ?, ?)`,
			id, i, msg); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListImports returns stored imports, oldest first.
func (s *Store) ListImports(ctx context.Context) ([]model.ImportSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, imported_at, record_count, error_count FROM imports ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.ImportSummary
	for rows.Next() {
		var sum model.ImportSummary
		var importedAt string
		if err := rows.Scan(&sum.ID, &sum.Source, &importedAt, &sum.RecordCount, &sum.ErrorCount); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, importedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse import time: %w", err)
		}
		sum.ImportedAt = parsed
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadImport rebuilds the parse result of a stored import.
func (s *Store) LoadImport(ctx context.Context, id int64) (model.ParseResult, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM imports WHERE id = ?`, id).Scan(&exists); err != nil {
		return model.ParseResult{}, err
	}
	if exists == 0 {
		return model.ParseResult{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	records, err := s.loadRuns(ctx, id)
	if err != nil {
		return model.ParseResult{}, err
	}
	errs, err := s.loadErrors(ctx, id)
	if err != nil {
		return model.ParseResult{}, err
	}
	return model.ParseResult{Records: records, Errors: errs}, nil
}

func (s *Store) loadRuns(ctx context.Context, id int64) ([]model.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, person, miles FROM runs WHERE import_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	records := []model.RunRecord{}
	for rows.Next() {
		var rec model.RunRecord
		var date string
		if err := rows.Scan(&date, &rec.Person, &rec.Miles); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run date: %w", err)
		}
		rec.Date = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) loadErrors(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message FROM import_errors WHERE import_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	errs := []string{}
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		errs = append(errs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return errs, nil
}
