// Package store keeps a history of tailoring runs in SQLite.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 20

// ErrNotFound is returned by Get for unknown run ids.
var ErrNotFound = stderrors.New("run not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		job_title TEXT NOT NULL,
		job_poster TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		stop_reason TEXT NOT NULL,
		error_count INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		resume_json TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at)`,
}

// Store is a SQLite-backed run history. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewIOError(errors.ErrCodeStoreFailed,
				fmt.Sprintf("could not create directory for database '%s'", path), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStoreFailed,
			fmt.Sprintf("could not open SQLite database '%s'", path), err)
	}
	// a single connection keeps writers from racing on the file lock
	db.SetMaxOpenConns(1)

	for _, query := range schema {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "could not create runs table", err)
		}
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores rec under a new id and returns it. CreatedAt is set to the
// current time when empty.
func (s *Store) Record(ctx context.Context, rec types.RunRecord) (string, error) {
	rec.ID = uuid.NewString()
	if rec.CreatedAt == "" {
		rec.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, job_title, job_poster, iterations, stop_reason, error_count, succeeded, resume_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt, rec.JobTitle, rec.JobPoster, rec.Iterations,
		rec.StopReason, rec.ErrorCount, rec.Succeeded, rec.ResumeJSON)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeStoreFailed, "could not insert run", err)
	}
	return rec.ID, nil
}

// List returns the most recent runs first, without their resume bodies.
func (s *Store) List(ctx context.Context, limit int) ([]types.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, job_title, job_poster, iterations, stop_reason, error_count, succeeded
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "could not list runs", err)
	}
	defer rows.Close()

	runs := []types.RunRecord{}
	for rows.Next() {
		var rec types.RunRecord
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.JobTitle, &rec.JobPoster,
			&rec.Iterations, &rec.StopReason, &rec.ErrorCount, &rec.Succeeded); err != nil {
			return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "could not scan run", err)
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStoreFailed, "could not list runs", err)
	}
	return runs, nil
}

// Get returns one run including its resume JSON.
func (s *Store) Get(ctx context.Context, id string) (types.RunRecord, error) {
	var rec types.RunRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, job_title, job_poster, iterations, stop_reason, error_count, succeeded, resume_json
		FROM runs WHERE id = ?`, id).Scan(&rec.ID, &rec.CreatedAt, &rec.JobTitle, &rec.JobPoster,
		&rec.Iterations, &rec.StopReason, &rec.ErrorCount, &rec.Succeeded, &rec.ResumeJSON)
	if stderrors.Is(err, sql.ErrNoRows) {
		return types.RunRecord{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("run %s not found", id), ErrNotFound)
	}
	if err != nil {
		return types.RunRecord{}, errors.NewIOError(errors.ErrCodeStoreFailed, "could not load run", err)
	}
	return rec, nil
}
