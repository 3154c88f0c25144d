package takes

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Take is one row of the history. Nil pointers are unknown values.
type Take struct {
	CycleID      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MediaPath    string
	Text         string
	WindowStart  float64
	WindowEnd    float64
	Duration     *float64
	TrackIndex   *int
	ClipPath     string
	MicPath      string
	LatencyMs    *float64
	RMS          *float64
	Peak         *float64
	RefMedianHz  *float64
	TakeMedianHz *float64
	OffsetCents  *float64
	ContourCents *float64
}

// Store manages take persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history database path is empty")
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
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start a fresh history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
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

const takeColumns = "cycle_id, created_at, updated_at, media_path, subtitle_text, window_start, window_end, duration, track_index, clip_path, mic_path, latency_ms, rms, peak, ref_median_hz, take_median_hz, offset_cents, contour_cents"

// Upsert inserts take or fills in columns of the existing row with the same
// cycle id. Unknown values in take never overwrite stored ones.
func (s *Store) Upsert(ctx context.Context, take Take) error {
	if take.CycleID == "" {
		return errors.New("take has no cycle id")
	}
	now := time.Now().UTC()
	created := take.CreatedAt
	if created.IsZero() {
		created = now
	}

	query := `INSERT INTO takes (` + takeColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(cycle_id) DO UPDATE SET
            updated_at = excluded.updated_at,
            media_path = COALESCE(excluded.media_path, takes.media_path),
            subtitle_text = COALESCE(excluded.subtitle_text, takes.subtitle_text),
            duration = COALESCE(excluded.duration, takes.duration),
            track_index = COALESCE(excluded.track_index, takes.track_index),
            clip_path = COALESCE(excluded.clip_path, takes.clip_path),
            mic_path = COALESCE(excluded.mic_path, takes.mic_path),
            latency_ms = COALESCE(excluded.latency_ms, takes.latency_ms),
            rms = COALESCE(excluded.rms, takes.rms),
            peak = COALESCE(excluded.peak, takes.peak),
            ref_median_hz = COALESCE(excluded.ref_median_hz, takes.ref_median_hz),
            take_median_hz = COALESCE(excluded.take_median_hz, takes.take_median_hz),
            offset_cents = COALESCE(excluded.offset_cents, takes.offset_cents),
            contour_cents = COALESCE(excluded.contour_cents, takes.contour_cents)`

	args := []any{
		take.CycleID,
		created.UTC().Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		nullableString(take.MediaPath),
		nullableString(take.Text),
		take.WindowStart,
		take.WindowEnd,
		nullableFloat(take.Duration),
		nullableInt(take.TrackIndex),
		nullableString(take.ClipPath),
		nullableString(take.MicPath),
		nullableFloat(take.LatencyMs),
		nullableFloat(take.RMS),
		nullableFloat(take.Peak),
		nullableFloat(take.RefMedianHz),
		nullableFloat(take.TakeMedianHz),
		nullableFloat(take.OffsetCents),
		nullableFloat(take.ContourCents),
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	}); err != nil {
		return fmt.Errorf("upsert take %s: %w", take.CycleID, err)
	}
	return nil
}

// Get returns the take for cycleID, or nil when no such row exists.
func (s *Store) Get(ctx context.Context, cycleID string) (*Take, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+takeColumns+" FROM takes WHERE cycle_id = ?", cycleID)
	take, err := scanTake(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get take: %w", err)
	}
	return take, nil
}

// Recent returns up to limit takes, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Take, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+takeColumns+" FROM takes ORDER BY created_at DESC, cycle_id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list takes: %w", err)
	}
	defer rows.Close()

	var takes []*Take
	for rows.Next() {
		take, err := scanTake(rows)
		if err != nil {
			return nil, fmt.Errorf("scan take: %w", err)
		}
		takes = append(takes, take)
	}
	return takes, rows.Err()
}

// Count returns the number of recorded takes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM takes").Scan(&n); err != nil {
		return 0, fmt.Errorf("count takes: %w", err)
	}
	return n, nil
}
