package entities

import "time"

// Journal actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionClaims = "claims"
	ActionFail   = "fail"
)

// SyncRun is one journaled execution of the synchronizer.
type SyncRun struct {
	ID         string      `json:"id"`
	SourceFile string      `json:"source_file"`
	Endpoint   string      `json:"endpoint"`
	DryRun     bool        `json:"dry_run"`
	Summary    SyncSummary `json:"summary"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// JournalEntry is a single remote action taken during a run.
type JournalEntry struct {
	ID        int64          `json:"id"`
	RunID     string         `json:"run_id"`
	Action    string         `json:"action"`
	IRI       string         `json:"iri"`
	RemoteID  string         `json:"remote_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
