package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/handiism/vinyl-player/internal/export"
	ioutils "github.com/handiism/vinyl-player/internal/io"
)

// Status is the outcome of an export attempt.
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Entry is one recorded export attempt.
type Entry struct {
	ID        string
	Title     string
	FileName  string
	Path      string
	MIMEType  string
	Status    Status
	Error     string
	Bytes     int64
	Width     int
	Height    int
	Frames    int64
	Elapsed   time.Duration
	CreatedAt time.Time
}

// FromResult converts a finished export.
func FromResult(r export.Result) Entry {
	return Entry{
		ID:        r.SessionID,
		Title:     r.Title,
		FileName:  r.FileName,
		Path:      r.Path,
		MIMEType:  r.MIMEType,
		Status:    StatusComplete,
		Bytes:     int64(len(r.Video)),
		Width:     r.Size.X,
		Height:    r.Size.Y,
		Frames:    r.Frames,
		Elapsed:   r.Elapsed,
		CreatedAt: time.Now(),
	}
}

// FromFailure converts a failed export.
func FromFailure(f export.Failure) Entry {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return Entry{
		ID:        f.SessionID,
		Title:     f.Title,
		Status:    StatusFailed,
		Error:     msg,
		Elapsed:   f.Elapsed,
		CreatedAt: time.Now(),
	}
}

// Store manages export history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	file_name   TEXT NOT NULL DEFAULT '',
	path        TEXT NOT NULL DEFAULT '',
	mime_type   TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	bytes       INTEGER NOT NULL DEFAULT 0,
	width       INTEGER NOT NULL DEFAULT 0,
	height      INTEGER NOT NULL DEFAULT 0,
	frames      INTEGER NOT NULL DEFAULT 0,
	elapsed_ms  INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);
`

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = ioutils.ExpandHome(path)
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
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
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores an entry. Recording the same id twice replaces the row.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("history entry has no id")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO exports
	(id, title, file_name, path, mime_type, status, error, bytes, width, height, frames, elapsed_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Title, e.FileName, e.Path, e.MIMEType, string(e.Status), e.Error,
			e.Bytes, e.Width, e.Height, e.Frames, e.Elapsed.Milliseconds(), e.CreatedAt.UnixMilli())
		return err
	})
}

// List returns the most recent entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
SELECT id, title, file_name, path, mime_type, status, error, bytes, width, height, frames, elapsed_ms, created_at
FROM exports ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			status    string
			elapsedMs int64
			created   int64
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.FileName, &e.Path, &e.MIMEType, &status, &e.Error,
			&e.Bytes, &e.Width, &e.Height, &e.Frames, &elapsedMs, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Status = Status(status)
		e.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		e.CreatedAt = time.UnixMilli(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns the number of entries per status.
func (s *Store) Counts(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM exports GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
