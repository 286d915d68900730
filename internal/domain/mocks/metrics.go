package mocks

import (
	"time"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// Metrics is a mock implementation of ports.Metrics that counts observations.
type Metrics struct {
	Entities  map[string]int
	Relations map[string]int
	Runs      []entities.SyncSummary
}

// NewMetrics creates a new mock Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Entities:  make(map[string]int),
		Relations: make(map[string]int),
	}
}

// ObserveEntity counts an entity outcome.
func (m *Metrics) ObserveEntity(outcome string) {
	m.Entities[outcome]++
}

// ObserveRelation counts a relation outcome.
func (m *Metrics) ObserveRelation(outcome string) {
	m.Relations[outcome]++
}

// ObserveRun records the summary of a run.
func (m *Metrics) ObserveRun(summary entities.SyncSummary, _ time.Duration) {
	m.Runs = append(m.Runs, summary)
}
