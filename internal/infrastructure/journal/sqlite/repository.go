// Package sqlite provides a SQLite implementation of the Journal interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/osegermany/ont2wb/internal/domain/entities"
	"github.com/osegermany/ont2wb/internal/infrastructure/config"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Repository implements ports.Journal using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository opens (and creates, if needed) the journal database.
func NewRepository(cfg config.JournalConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("journal path is required")
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- One row per synchronizer run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_file TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		created INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		unchanged INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		relations_written INTEGER NOT NULL DEFAULT 0,
		relations_skipped INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Remote actions taken during a run
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		action TEXT NOT NULL,
		iri TEXT NOT NULL,
		remote_id TEXT,
		details TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_run ON entries(run_id);
	CREATE INDEX IF NOT EXISTS idx_entries_iri ON entries(iri);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// StartRun records the beginning of a run.
func (r *Repository) StartRun(ctx context.Context, run *entities.SyncRun) error {
	query := `
		INSERT INTO runs (id, source_file, endpoint, dry_run, started_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, run.ID, run.SourceFile, run.Endpoint, run.DryRun, formatTime(run.StartedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Record appends an action to a run.
func (r *Repository) Record(ctx context.Context, entry *entities.JournalEntry) error {
	var detailsJSON sql.NullString
	if entry.Details != nil {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var remoteID sql.NullString
	if entry.RemoteID != "" {
		remoteID = sql.NullString{String: entry.RemoteID, Valid: true}
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO entries (run_id, action, iri, remote_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query, entry.RunID, entry.Action, entry.IRI, remoteID, detailsJSON, formatTime(createdAt))
	if err != nil {
		return fmt.Errorf("saving journal entry: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// FinishRun stores the summary of a run.
func (r *Repository) FinishRun(ctx context.Context, runID string, summary entities.SyncSummary, finishedAt time.Time) error {
	query := `
		UPDATE runs SET
			finished_at = ?, created = ?, updated = ?, unchanged = ?, failed = ?,
			relations_written = ?, relations_skipped = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		formatTime(finishedAt),
		summary.Created, summary.Updated, summary.Unchanged, summary.Failed,
		summary.RelationsWritten, summary.RelationsSkipped,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// ListRuns lists the most recent runs first. A limit of zero lists all runs.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]entities.SyncRun, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, source_file, endpoint, dry_run, started_at, finished_at,
			created, updated, unchanged, failed, relations_written, relations_skipped
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []entities.SyncRun
	for rows.Next() {
		var run entities.SyncRun
		var startedAt string
		var finishedAt sql.NullString

		if err := rows.Scan(
			&run.ID,
			&run.SourceFile,
			&run.Endpoint,
			&run.DryRun,
			&startedAt,
			&finishedAt,
			&run.Summary.Created,
			&run.Summary.Updated,
			&run.Summary.Unchanged,
			&run.Summary.Failed,
			&run.Summary.RelationsWritten,
			&run.Summary.RelationsSkipped,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			t, err := parseTime(finishedAt.String)
			if err != nil {
				return nil, err
			}
			run.FinishedAt = &t
		}

		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindEntries lists the actions of a run in the order they happened.
func (r *Repository) FindEntries(ctx context.Context, runID string) ([]entities.JournalEntry, error) {
	query := `
		SELECT id, run_id, action, iri, remote_id, details, created_at
		FROM entries
		WHERE run_id = ?
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	defer rows.Close()

	var entries []entities.JournalEntry
	for rows.Next() {
		var entry entities.JournalEntry
		var remoteID, details sql.NullString
		var createdAt string

		if err := rows.Scan(
			&entry.ID,
			&entry.RunID,
			&entry.Action,
			&entry.IRI,
			&remoteID,
			&details,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}

		entry.RemoteID = remoteID.String
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
