package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RentalMetrics records rental lifecycle activity.
type RentalMetrics struct {
	transitions *prometheus.CounterVec
	settlements *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewRentalMetrics registers the rental metrics on the provided registerer.
func NewRentalMetrics(reg prometheus.Registerer) *RentalMetrics {
	if reg == nil {
		return &RentalMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_transitions_total",
		Help: "Rental state transitions by origin and target status.",
	}, []string{"from", "to"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_settlements_total",
		Help: "Completed rental settlements by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rental_operation_duration_seconds",
		Help:    "Duration of rental service operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(transitions, settlements, duration)
	return &RentalMetrics{
		transitions: transitions,
		settlements: settlements,
		duration:    duration,
	}
}

// IncTransition counts one state transition.
func (m *RentalMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncSettlement counts one settlement by outcome (clean, damage, dispute).
func (m *RentalMetrics) IncSettlement(outcome string) {
	if m == nil || m.settlements == nil {
		return
	}
	m.settlements.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveDuration records the duration for the named operation.
func (m *RentalMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
