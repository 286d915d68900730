package ports

import (
	"context"
	"time"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// Journal records runs and the remote actions taken during them.
// It is an audit trail only; nothing is read back to drive synchronization.
type Journal interface {
	// StartRun records the beginning of a run.
	StartRun(ctx context.Context, run *entities.SyncRun) error

	// Record appends an action to a run.
	Record(ctx context.Context, entry *entities.JournalEntry) error

	// FinishRun stores the summary of a run.
	FinishRun(ctx context.Context, runID string, summary entities.SyncSummary, finishedAt time.Time) error

	// ListRuns lists the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]entities.SyncRun, error)

	// FindEntries lists the actions of a run in the order they happened.
	FindEntries(ctx context.Context, runID string) ([]entities.JournalEntry, error)

	// Close releases the underlying storage.
	Close() error
}
