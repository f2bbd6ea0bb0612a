// Package metrics provides observability for the schedule module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the schedule module's Prometheus collectors. All methods
// tolerate a nil receiver so wiring metrics stays optional.
type Metrics struct {
	// Expansion latency for a full quarter.
	ExpandLatency prometheus.Histogram

	// Slots committed through chunked batch writes.
	SlotsCommitted prometheus.Counter

	// Batch chunks that failed to commit.
	ChunkFailures prometheus.Counter

	// Completion recompute runs by resulting status.
	Recomputes *prometheus.CounterVec

	// Weekly patterns mined from historical quarters.
	PatternsMined prometheus.Counter
}

// New creates and registers all schedule module metrics.
func New() *Metrics {
	return &Metrics{
		ExpandLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "whereabouts_schedule_expand_duration_seconds",
			Help:    "Duration of weekly pattern expansion over a quarter",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		SlotsCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "whereabouts_schedule_slots_committed_total",
			Help: "Total daily slots committed through batch writes",
		}),
		ChunkFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "whereabouts_schedule_batch_chunk_failures_total",
			Help: "Total batch chunks that failed to commit",
		}),
		Recomputes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "whereabouts_schedule_completion_recomputes_total",
			Help: "Total completion recomputes by resulting quarter status",
		}, []string{"status"}),
		PatternsMined: promauto.NewCounter(prometheus.CounterOpts{
			Name: "whereabouts_schedule_patterns_mined_total",
			Help: "Total weekly patterns mined from historical quarters",
		}),
	}
}

// ObserveExpand records the duration of one expansion run.
func (m *Metrics) ObserveExpand(d time.Duration) {
	if m != nil {
		m.ExpandLatency.Observe(d.Seconds())
	}
}

// AddSlotsCommitted records slots persisted by a committed chunk.
func (m *Metrics) AddSlotsCommitted(n int) {
	if m != nil {
		m.SlotsCommitted.Add(float64(n))
	}
}

// IncChunkFailure records a failed chunk commit.
func (m *Metrics) IncChunkFailure() {
	if m != nil {
		m.ChunkFailures.Inc()
	}
}

// IncRecompute records a completion recompute and its resulting status.
func (m *Metrics) IncRecompute(status string) {
	if m != nil {
		m.Recomputes.WithLabelValues(status).Inc()
	}
}

// IncPatternMined records one successful pattern extraction.
func (m *Metrics) IncPatternMined() {
	if m != nil {
		m.PatternsMined.Inc()
	}
}
