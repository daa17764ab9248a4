package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const attemptColumns = "id, run_id, title, asset_path, state_reached, success, video_url, error_kind, error_message, snapshot_path, skipped_fields, started_at, finished_at"

const skippedSeparator = ","

// Store manages attempt persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a finished attempt.
func (s *Store) Record(ctx context.Context, attempt Attempt) (*Attempt, error) {
	if strings.TrimSpace(attempt.RunID) == "" {
		return nil, errors.New("attempt run id is empty")
	}
	if attempt.FinishedAt.IsZero() {
		attempt.FinishedAt = time.Now().UTC()
	}
	if attempt.StartedAt.IsZero() {
		attempt.StartedAt = attempt.FinishedAt
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO publish_attempts (
            run_id, title, asset_path, state_reached, success, video_url,
            error_kind, error_message, snapshot_path, skipped_fields, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.RunID,
		attempt.Title,
		attempt.AssetPath,
		nullableString(attempt.StateReached),
		boolToInt(attempt.Success),
		nullableString(attempt.VideoURL),
		nullableString(attempt.ErrorKind),
		nullableString(attempt.ErrorMessage),
		nullableString(attempt.SnapshotPath),
		nullableString(strings.Join(attempt.SkippedFields, skippedSeparator)),
		attempt.StartedAt.UTC().Format(time.RFC3339Nano),
		attempt.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches an attempt by row id. A missing row returns nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM publish_attempts WHERE id = ?`, id)
	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return attempt, nil
}

// GetByRunID fetches an attempt by run id, accepting a unique prefix.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Attempt, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errors.New("run id is empty")
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+attemptColumns+` FROM publish_attempts WHERE run_id = ? OR run_id LIKE ? ORDER BY id LIMIT 2`,
		runID,
		stripLikeWildcards(runID)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get attempt by run id: %w", err)
	}
	defer rows.Close()

	var matches []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if attempt.RunID == runID {
			return attempt, nil
		}
		matches = append(matches, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", runID)
	}
}

// List returns the most recent attempts first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]*Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM publish_attempts ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// Prune removes attempts that finished before cutoff and returns the count.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM publish_attempts WHERE finished_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}
	return res.RowsAffected()
}
