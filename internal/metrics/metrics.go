// Package metrics records run outcomes in a private Prometheus registry and
// writes them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nibzard/subspace-go/internal/agents"
)

const namespace = "subspace"

// Recorder tracks run and batch metrics. It implements agents.Observer. A
// nil Recorder ignores every call.
type Recorder struct {
	registry  *prometheus.Registry
	runs      *prometheus.CounterVec
	durations *prometheus.HistogramVec
	batchWall prometheus.Gauge

	mu sync.Mutex
}

// NewRecorder builds a Recorder backed by a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Agent runs by outcome (ok, failed, timeout, launch_error, cancelled).",
		}, []string{"agent", "outcome"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of each agent run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"agent"}),
		batchWall: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_wall_seconds",
			Help:      "Wall time of the most recent parallel batch.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RunFinished records one completed run.
func (r *Recorder) RunFinished(result agents.RunResult) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(result.Agent, result.Outcome()).Inc()
	r.durations.WithLabelValues(result.Agent).Observe(result.Elapsed.Seconds())
}

// BatchFinished records the wall time of a batch.
func (r *Recorder) BatchFinished(wall time.Duration) {
	if r == nil {
		return
	}
	r.batchWall.Set(wall.Seconds())
}

// WriteTextfile writes the registry to path atomically. An empty path is a
// no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

var _ agents.Observer = (*Recorder)(nil)
