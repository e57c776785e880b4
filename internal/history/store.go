package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"discforge/internal/config"
)

// Store is the job journal, backed by SQLite. A file lock beside the
// database keeps writers to one process at a time; readers piggyback on
// SQLite's own WAL concurrency.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.HistoryDir, "history.db")
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !ok {
		return nil, errors.New("history database is in use by another discforge process")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the writer lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
		s.lock = nil
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// Begin journals the start of a job run and returns the new record.
func (s *Store) Begin(ctx context.Context, runID, inputSpec, outputType, outputPath string) (*Record, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(inputSpec) == "" {
		return nil, errors.New("input spec is required")
	}
	now := time.Now().UTC()
	stamp := now.Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO job_runs (run_id, input_spec, output_type, output_path, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, inputSpec, outputType, outputPath, string(StatusRunning), stamp, stamp)
	if err != nil {
		return nil, fmt.Errorf("insert job run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read job run id: %w", err)
	}
	return &Record{
		ID:         id,
		RunID:      runID,
		InputSpec:  inputSpec,
		OutputType: outputType,
		OutputPath: outputPath,
		Status:     StatusRunning,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SetProgress updates the run's progress counter and status message.
func (s *Store) SetProgress(ctx context.Context, id int64, progress int64, message string) error {
	ctx = ensureContext(ctx)
	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		"UPDATE job_runs SET progress = ?, message = ?, updated_at = ? WHERE id = ?",
		progress, message, stamp, id)
	if err != nil {
		return fmt.Errorf("update job run progress: %w", err)
	}
	return nil
}

// Finish journals the run's terminal status.
func (s *Store) Finish(ctx context.Context, id int64, status Status, message string) error {
	ctx = ensureContext(ctx)
	switch status {
	case StatusSucceeded, StatusFailed, StatusAborted:
	default:
		return fmt.Errorf("status %q is not terminal", status)
	}
	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		"UPDATE job_runs SET status = ?, message = ?, updated_at = ? WHERE id = ?",
		string(status), message, stamp, id)
	if err != nil {
		return fmt.Errorf("finish job run: %w", err)
	}
	return nil
}

// Get returns one record by ID, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job run: %w", err)
	}
	return rec, nil
}

// List returns the most recent runs, newest first. A limit of zero or less
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	ctx = ensureContext(ctx)
	query := selectColumns + " ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*Record
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan job run: %w", scanErr)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job runs: %w", err)
	}
	return records, nil
}

// MarkStaleRunning fails any run still marked running, for recovery after a
// crash. It returns the number of runs touched.
func (s *Store) MarkStaleRunning(ctx context.Context, message string) (int64, error) {
	ctx = ensureContext(ctx)
	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		"UPDATE job_runs SET status = ?, message = ?, updated_at = ? WHERE status = ?",
		string(StatusFailed), message, stamp, string(StatusRunning))
	if err != nil {
		return 0, fmt.Errorf("mark stale runs: %w", err)
	}
	return res.RowsAffected()
}

// Prune deletes all but the newest keep records. It returns the number of
// records removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	ctx = ensureContext(ctx)
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM job_runs WHERE id NOT IN (SELECT id FROM job_runs ORDER BY id DESC LIMIT ?)",
		keep)
	if err != nil {
		return 0, fmt.Errorf("prune job runs: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	ctx = ensureContext(ctx)
	if _, err := s.db.ExecContext(ctx, "DELETE FROM job_runs"); err != nil {
		return fmt.Errorf("clear job runs: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, run_id, input_spec, output_type, output_path,
	status, message, progress, created_at, updated_at FROM job_runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var status, createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.RunID, &rec.InputSpec, &rec.OutputType,
		&rec.OutputPath, &status, &rec.Message, &rec.Progress,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	return &rec, nil
}
