package ports

import (
	"time"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// Metrics receives counters about a run.
type Metrics interface {
	// ObserveEntity counts one entity outcome (created, updated, unchanged, failed).
	ObserveEntity(outcome string)

	// ObserveRelation counts one relation outcome (written, skipped).
	ObserveRelation(outcome string)

	// ObserveRun records the end of a run.
	ObserveRun(summary entities.SyncSummary, duration time.Duration)
}
