package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"focustimer/internal/core/model"
	"focustimer/internal/core/stats"
	"focustimer/internal/core/timer"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DatabaseFileName is the history database kept in the data directory.
const DatabaseFileName = "focustimer.db"

const (
	keyStatistics = "statistics"
	keyTimerState = "timer_state"
)

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer at a time; the GUI and the CLI may share the file.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (store *SQLiteStore) Close() error {
	return store.db.Close()
}

// Migrate runs all embedded SQL migration files in order.
func (store *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := store.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := store.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (filename, applied_at) VALUES (?, ?)",
			name, formatTime(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// RecordSession stores a completed session, assigning an ID when missing.
func (store *SQLiteStore) RecordSession(ctx context.Context, record *SessionRecord) error {
	if record.CompletedAt.IsZero() {
		record.CompletedAt = time.Now()
	}
	if record.ID == "" {
		record.ID = newULID(record.CompletedAt)
	}
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO sessions (id, mode, minutes, task, completed_at) VALUES (?, ?, ?, ?, ?)`,
		record.ID, string(record.Mode), record.Minutes, record.Task, formatTime(record.CompletedAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ListSessions returns sessions completed at or after since, newest first.
// A limit of zero or less returns every match.
func (store *SQLiteStore) ListSessions(ctx context.Context, since time.Time, limit int) ([]*SessionRecord, error) {
	query := `SELECT id, mode, minutes, task, completed_at FROM sessions
		WHERE completed_at >= ? ORDER BY completed_at DESC, id DESC`
	args := []any{formatTime(since)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []*SessionRecord
	for rows.Next() {
		var (
			record      SessionRecord
			mode        string
			completedAt string
		)
		if err := rows.Scan(&record.ID, &mode, &record.Minutes, &record.Task, &completedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		record.Mode = model.Mode(mode)
		if record.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, fmt.Errorf("parse session %s: %w", record.ID, err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// SaveStatistics stores the statistics snapshot.
func (store *SQLiteStore) SaveStatistics(ctx context.Context, statistics stats.Statistics, at time.Time) error {
	return store.put(ctx, keyStatistics, statistics, at)
}

// LoadStatistics returns the stored snapshot and when it was saved. A missing
// snapshot yields zero statistics and a zero time.
func (store *SQLiteStore) LoadStatistics(ctx context.Context) (stats.Statistics, time.Time, error) {
	var statistics stats.Statistics
	savedAt, err := store.get(ctx, keyStatistics, &statistics)
	if errors.Is(err, sql.ErrNoRows) {
		return stats.Statistics{}, time.Time{}, nil
	}
	return statistics, savedAt, err
}

// SaveTimerState stores the engine counters so a restart resumes the cycle.
func (store *SQLiteStore) SaveTimerState(ctx context.Context, state timer.State) error {
	return store.put(ctx, keyTimerState, state, time.Now())
}

// LoadTimerState returns the stored counters, or nil when none were saved.
func (store *SQLiteStore) LoadTimerState(ctx context.Context) (*timer.State, error) {
	var state timer.State
	_, err := store.get(ctx, keyTimerState, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (store *SQLiteStore) put(ctx context.Context, key string, value any, at time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = store.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), formatTime(at))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (store *SQLiteStore) get(ctx context.Context, key string, target any) (time.Time, error) {
	var value, updatedAt string
	err := store.db.QueryRowContext(ctx, "SELECT value, updated_at FROM kv WHERE key = ?", key).Scan(&value, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, err
		}
		return time.Time{}, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return time.Time{}, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	savedAt, err := parseTime(updatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s timestamp: %w", key, err)
	}
	return savedAt, nil
}

// newULID generates a ULID sortable by completion time.
func newULID(at time.Time) string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(at), ulid.Monotonic(entropy, 0)).String()
}

// Timestamps are stored as fixed-width UTC text so string order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(at time.Time) string {
	return at.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}
