package mocks

import (
	"context"
	"time"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// Journal is a mock implementation of ports.Journal.
type Journal struct {
	Runs    []*entities.SyncRun
	Entries []entities.JournalEntry
	Err     error
	Closed  bool
}

// NewJournal creates a new mock Journal.
func NewJournal() *Journal {
	return &Journal{}
}

// StartRun records a run.
func (m *Journal) StartRun(_ context.Context, run *entities.SyncRun) error {
	if m.Err != nil {
		return m.Err
	}
	m.Runs = append(m.Runs, run)
	return nil
}

// Record appends an entry.
func (m *Journal) Record(_ context.Context, entry *entities.JournalEntry) error {
	if m.Err != nil {
		return m.Err
	}
	entry.ID = int64(len(m.Entries) + 1)
	m.Entries = append(m.Entries, *entry)
	return nil
}

// FinishRun stores the summary on the matching run.
func (m *Journal) FinishRun(_ context.Context, runID string, summary entities.SyncSummary, finishedAt time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	for _, r := range m.Runs {
		if r.ID == runID {
			r.Summary = summary
			r.FinishedAt = &finishedAt
		}
	}
	return nil
}

// ListRuns returns runs newest first.
func (m *Journal) ListRuns(_ context.Context, limit int) ([]entities.SyncRun, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.SyncRun
	for i := len(m.Runs) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, *m.Runs[i])
	}
	return result, nil
}

// FindEntries returns the entries of a run.
func (m *Journal) FindEntries(_ context.Context, runID string) ([]entities.JournalEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.JournalEntry
	for _, e := range m.Entries {
		if e.RunID == runID {
			result = append(result, e)
		}
	}
	return result, nil
}

// Close marks the journal closed.
func (m *Journal) Close() error {
	m.Closed = true
	return nil
}

// Actions returns the recorded actions in order.
func (m *Journal) Actions() []string {
	actions := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		actions = append(actions, e.Action)
	}
	return actions
}
