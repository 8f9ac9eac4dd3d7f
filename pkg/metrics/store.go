package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records fan-out write outcomes for denormalized entities.
type StoreMetrics struct {
	fanoutWrites      *prometheus.CounterVec
	partialWrites     *prometheus.CounterVec
	consistencyChecks *prometheus.CounterVec
}

// NewStoreMetrics registers the repository metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	fanout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fanout_writes_total",
		Help: "Dual-copy writes attempted, by entity and outcome.",
	}, []string{"entity", "outcome"})
	partial := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "partial_writes_total",
		Help: "Fan-out writes that landed on only one copy.",
	}, []string{"entity"})
	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consistency_checks_total",
		Help: "Read-repair checks, by entity and result.",
	}, []string{"entity", "result"})
	reg.MustRegister(fanout, partial, checks)
	return &StoreMetrics{
		fanoutWrites:      fanout,
		partialWrites:     partial,
		consistencyChecks: checks,
	}
}

// ObserveFanout records one completed dual-copy write attempt.
func (s *StoreMetrics) ObserveFanout(entity string, ok bool) {
	if s == nil || s.fanoutWrites == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	s.fanoutWrites.WithLabelValues(normalizeLabel(entity), outcome).Inc()
}

// ObservePartialWrite records a write that updated the global copy but not
// the scoped one.
func (s *StoreMetrics) ObservePartialWrite(entity string) {
	if s == nil || s.partialWrites == nil {
		return
	}
	s.partialWrites.WithLabelValues(normalizeLabel(entity)).Inc()
}

// ObserveConsistencyCheck records a read-repair comparison result.
func (s *StoreMetrics) ObserveConsistencyCheck(entity string, consistent bool) {
	if s == nil || s.consistencyChecks == nil {
		return
	}
	result := "consistent"
	if !consistent {
		result = "divergent"
	}
	s.consistencyChecks.WithLabelValues(normalizeLabel(entity), result).Inc()
}

func normalizeLabel(entity string) string {
	if entity == "" {
		return "unknown"
	}
	return entity
}
