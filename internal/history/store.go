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

	"webpconv/internal/batch"
	"webpconv/internal/conversion"
)

// Store persists finished batch reports in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// timeLayout has fixed width so ORDER BY on the text column is chronological.
	timeLayout = "2006-01-02T15:04:05.000000000Z"

	// DefaultLimit caps Recent when the caller passes a non-positive limit.
	DefaultLimit = 20
)

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

// retryOnBusy retries op with exponential backoff while SQLite reports a
// busy database; two concurrent batches on different roots share the file.
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

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a finished batch. Recording the same batch twice replaces
// the earlier row.
func (s *Store) Record(ctx context.Context, r batch.Report) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(r.BatchID) == "" {
		return errors.New("record batch: missing batch id")
	}
	t := r.Totals
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO batches (
			id, root, workers, started_at, finished_at, cancelled,
			total, converted, skipped, failed, discarded_larger, discarded_empty,
			source_bytes, output_bytes, encode_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.BatchID, r.Root, r.Workers,
			r.StartedAt.UTC().Format(timeLayout),
			r.FinishedAt.UTC().Format(timeLayout),
			boolToInt(r.Cancelled),
			t.Total, t.Converted, t.Skipped, t.Failed, t.DiscardedLarger, t.DiscardedEmpty,
			t.SourceBytes, t.OutputBytes, int64(t.Elapsed),
		)
		if err != nil {
			return fmt.Errorf("insert batch %s: %w", r.BatchID, err)
		}
		return nil
	})
}

// Recent returns up to limit batches, newest first. A non-empty root
// restricts results to that directory.
func (s *Store) Recent(ctx context.Context, limit int, root string) ([]batch.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT id, root, workers, started_at, finished_at, cancelled,
		total, converted, skipped, failed, discarded_larger, discarded_empty,
		source_bytes, output_bytes, encode_ns
		FROM batches`
	args := []any{}
	if root != "" {
		query += " WHERE root = ?"
		args = append(args, root)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	var reports []batch.Report
	err := retryOnBusy(ctx, func() error {
		reports = reports[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query batches: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			r, err := scanReport(rows)
			if err != nil {
				return err
			}
			reports = append(reports, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func scanReport(rows *sql.Rows) (batch.Report, error) {
	var (
		r                 batch.Report
		t                 conversion.Totals
		started, finished string
		cancelled         int
		encodeNanos       int64
	)
	if err := rows.Scan(
		&r.BatchID, &r.Root, &r.Workers, &started, &finished, &cancelled,
		&t.Total, &t.Converted, &t.Skipped, &t.Failed, &t.DiscardedLarger, &t.DiscardedEmpty,
		&t.SourceBytes, &t.OutputBytes, &encodeNanos,
	); err != nil {
		return batch.Report{}, fmt.Errorf("scan batch: %w", err)
	}
	var err error
	if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return batch.Report{}, fmt.Errorf("parse started_at for %s: %w", r.BatchID, err)
	}
	if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return batch.Report{}, fmt.Errorf("parse finished_at for %s: %w", r.BatchID, err)
	}
	r.Cancelled = cancelled != 0
	t.Elapsed = time.Duration(encodeNanos)
	r.Totals = t
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
