// Package metrics exports run counters in the Prometheus text format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

const namespace = "ont2wb"

// Recorder implements ports.Metrics with Prometheus collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	entitiesTotal  *prometheus.CounterVec // By outcome (created/updated/unchanged/failed)
	relationsTotal *prometheus.CounterVec // By outcome (written/skipped)
	runDuration    prometheus.Gauge
	lastRun        prometheus.Gauge
	lastFailed     prometheus.Gauge
}

// NewRecorder creates a Recorder and registers its collectors.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		entitiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_total",
			Help:      "Ontology entities processed, by outcome",
		}, []string{"outcome"}),

		relationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relations_total",
			Help:      "Relations processed, by outcome",
		}, []string{"outcome"}),

		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run in seconds",
		}),

		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),

		lastFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_failed_entities",
			Help:      "Number of entities that failed in the last run",
		}),
	}

	for _, c := range []prometheus.Collector{r.entitiesTotal, r.relationsTotal, r.runDuration, r.lastRun, r.lastFailed} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering metric: %w", err)
		}
	}

	return r, nil
}

// ObserveEntity counts one entity outcome.
func (r *Recorder) ObserveEntity(outcome string) {
	r.entitiesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRelation counts one relation outcome.
func (r *Recorder) ObserveRelation(outcome string) {
	r.relationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRun records the end of a run.
func (r *Recorder) ObserveRun(summary entities.SyncSummary, duration time.Duration) {
	r.runDuration.Set(duration.Seconds())
	r.lastRun.SetToCurrentTime()
	r.lastFailed.Set(float64(summary.Failed))
}

// WriteFile writes all metrics to path for the node_exporter textfile collector.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
