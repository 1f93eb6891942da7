package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes pipeline counters to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	rows     *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealerconnect",
			Subsystem: "pipeline",
			Name:      "rows_total",
			Help:      "Source rows processed, by stage and outcome.",
		}, []string{"stage", "status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealerconnect",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs, by final state.",
		}, []string{"state"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dealerconnect",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}
	reg.MustRegister(m.rows, m.runs, m.duration)
	return m
}

func (m *Metrics) rowProcessed(stage Stage, status RowStatus) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(string(stage), string(status)).Inc()
}

func (m *Metrics) runFinished(state State, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(state)).Inc()
	m.duration.Observe(elapsed.Seconds())
}
