package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stantpm/propflow/internal/model"
)

// ImportRun summarizes one recorded import invocation.
type ImportRun struct {
	CreatedAt time.Time
	Source    string
	ID        int64
	RowCount  int
}

// Seen reports whether a row with this content hash was already imported.
func (s *SQLiteStorage) Seen(ctx context.Context, hash string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx,
		"SELECT hash FROM import_history WHERE hash = ?", hash).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query import history: %w", err)
	}
	return true, nil
}

// Record stores the content hashes of imported entries plus one run log
// row, all in a single transaction.
func (s *SQLiteStorage) Record(ctx context.Context, entries []model.LedgerEntry, source string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO import_history (hash, date, property, source)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range entries {
		e := &entries[i]
		if _, err := stmt.ExecContext(ctx, e.GenerateHash(), e.Date, e.Property, source); err != nil {
			return fmt.Errorf("failed to record imported row: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO import_runs (source, row_count) VALUES (?, ?)",
		source, len(entries)); err != nil {
		return fmt.Errorf("failed to record import run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import history: %w", err)
	}
	return nil
}

// Runs returns the most recent import runs, newest first.
func (s *SQLiteStorage) Runs(ctx context.Context, limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, row_count, created_at
		FROM import_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []ImportRun
	for rows.Next() {
		var run ImportRun
		if err := rows.Scan(&run.ID, &run.Source, &run.RowCount, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import runs: %w", err)
	}
	return runs, nil
}
