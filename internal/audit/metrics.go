package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterDeliveryMetrics exposes Kafka delivery health: events dropped by a
// full queue, events skipped by an open breaker, and the breaker state.
func RegisterDeliveryMetrics(reg prometheus.Registerer, q *Queue, b *Breaker) {
	f := promauto.With(reg)
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "stargate_audit_queue_dropped_total",
		Help: "Audit events dropped because the delivery queue was full",
	}, func() float64 { return float64(q.Dropped()) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "stargate_audit_circuit_breaker_dropped_total",
		Help: "Audit events skipped while the Kafka circuit breaker was open",
	}, func() float64 { return float64(b.Dropped()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "stargate_audit_circuit_breaker_open",
		Help: "1 while the Kafka circuit breaker is open",
	}, func() float64 {
		if b.IsOpen() {
			return 1
		}
		return 0
	})
}
