// Package metrics exposes Prometheus instrumentation for the check-in path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks check-in volume and latency.
type Metrics struct {
	CheckinsRecorded       prometheus.Counter
	CheckinsUnrecognized   prometheus.Counter
	CheckinsRejected       prometheus.Counter
	CheckinDuration        prometheus.Histogram
	StatsRequestedDuration prometheus.Histogram
}

// New registers and returns all check-in metrics.
func New() *Metrics {
	return &Metrics{
		CheckinsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingertrack_checkins_recorded_total",
			Help: "Total number of attendance events appended",
		}),
		CheckinsUnrecognized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingertrack_checkins_unrecognized_total",
			Help: "Total check-in attempts with an unrecognized fingerprint",
		}),
		CheckinsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingertrack_checkins_rejected_total",
			Help: "Total check-in attempts rejected as malformed",
		}),
		CheckinDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fingertrack_checkin_duration_seconds",
			Help:    "Duration of check-in recording",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		StatsRequestedDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fingertrack_stats_duration_seconds",
			Help:    "Duration of stats computation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveCheckin records the duration of a check-in. Call with time.Now()
// captured at the start of the operation.
func (m *Metrics) ObserveCheckin(start time.Time) {
	m.CheckinDuration.Observe(time.Since(start).Seconds())
}

// ObserveStats records the duration of a stats computation.
func (m *Metrics) ObserveStats(start time.Time) {
	m.StatsRequestedDuration.Observe(time.Since(start).Seconds())
}
