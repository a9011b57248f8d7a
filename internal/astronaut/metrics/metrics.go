package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the astronaut module.
type Metrics struct {
	PeopleCreated  prometheus.Counter
	PeopleRenamed  prometheus.Counter
	DutiesRecorded prometheus.Counter
	Retirements    prometheus.Counter

	// Commands rejected by operation and reason (guard rule or error code)
	CommandsRejected *prometheus.CounterVec

	CommandDuration *prometheus.HistogramVec

	// Projection cache lookups by result: "hit", "miss", "error"
	CacheLookups *prometheus.CounterVec
}

// New registers the astronaut metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PeopleCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "stargate_people_created_total",
			Help: "Total number of people created",
		}),
		PeopleRenamed: f.NewCounter(prometheus.CounterOpts{
			Name: "stargate_people_renamed_total",
			Help: "Total number of people renamed",
		}),
		DutiesRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "stargate_duties_recorded_total",
			Help: "Total number of astronaut duties recorded",
		}),
		Retirements: f.NewCounter(prometheus.CounterOpts{
			Name: "stargate_retirements_total",
			Help: "Total number of duties that ended a career",
		}),
		CommandsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stargate_commands_rejected_total",
			Help: "Commands rejected by operation and reason",
		}, []string{"operation", "reason"}),
		CommandDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stargate_command_duration_seconds",
			Help:    "Duration of astronaut commands including the unit of work",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		}, []string{"operation"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stargate_projection_cache_lookups_total",
			Help: "Projection cache lookups by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementPeopleCreated() {
	if m != nil {
		m.PeopleCreated.Inc()
	}
}

func (m *Metrics) IncrementPeopleRenamed() {
	if m != nil {
		m.PeopleRenamed.Inc()
	}
}

// IncrementDutyRecorded counts an accepted duty and, when it ended a career,
// a retirement.
func (m *Metrics) IncrementDutyRecorded(retired bool) {
	if m == nil {
		return
	}
	m.DutiesRecorded.Inc()
	if retired {
		m.Retirements.Inc()
	}
}

func (m *Metrics) IncrementRejected(operation, reason string) {
	if m != nil {
		m.CommandsRejected.WithLabelValues(operation, reason).Inc()
	}
}

// ObserveCommand records a command's duration. Call with time.Now() taken at the start.
func (m *Metrics) ObserveCommand(operation string, start time.Time) {
	if m != nil {
		m.CommandDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}
