package handlers

import (
	"context"
	"fmt"

	"github.com/osegermany/ont2wb/internal/domain/entities"
	"github.com/osegermany/ont2wb/internal/domain/ports"
)

// HistoryHandler handles listing journaled runs.
type HistoryHandler struct {
	journal ports.Journal
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(journal ports.Journal) *HistoryHandler {
	return &HistoryHandler{journal: journal}
}

// HistoryOptions controls what is listed.
type HistoryOptions struct {
	Limit int    // Number of runs, 0 for all
	RunID string // When set, list the actions of this run
}

// HistoryResult contains runs, or the actions of a single run.
type HistoryResult struct {
	Runs    []entities.SyncRun
	Entries []entities.JournalEntry
}

// Handle lists recent runs, or the entries of one run.
func (h *HistoryHandler) Handle(ctx context.Context, opts HistoryOptions) (*HistoryResult, error) {
	if opts.RunID == "" {
		runs, err := h.journal.ListRuns(ctx, opts.Limit)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		return &HistoryResult{Runs: runs}, nil
	}

	entries, err := h.journal.FindEntries(ctx, opts.RunID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no journal entries for run: %s", opts.RunID)
	}
	return &HistoryResult{Entries: entries}, nil
}
