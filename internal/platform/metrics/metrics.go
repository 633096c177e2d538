package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the matrix engine.
type Metrics struct {
	TogglesTotal      prometheus.Counter
	RollbacksTotal    prometheus.Counter
	SavesTotal        prometheus.Counter
	SaveFailuresTotal prometheus.Counter
	CellsSavedTotal   prometheus.Counter
	SnapshotLoads     prometheus.Counter
	PersistDuration   prometheus.Histogram
}

// New creates and registers all metrics against the given registerer. Tests
// pass a fresh prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TogglesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "entmatrix_toggles_total",
			Help: "Total number of optimistic cell toggles applied",
		}),
		RollbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "entmatrix_toggle_rollbacks_total",
			Help: "Total number of toggles rolled back after a failed persistence call",
		}),
		SavesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "entmatrix_saves_total",
			Help: "Total number of batch save submissions",
		}),
		SaveFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "entmatrix_save_failures_total",
			Help: "Total number of batch saves that failed as a whole",
		}),
		CellsSavedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "entmatrix_cells_saved_total",
			Help: "Total number of dirty cells confirmed by successful batch saves",
		}),
		SnapshotLoads: factory.NewCounter(prometheus.CounterOpts{
			Name: "entmatrix_snapshot_loads_total",
			Help: "Total number of product snapshot loads",
		}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "entmatrix_persist_duration_seconds",
			Help:    "Latency of catalog persistence calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
