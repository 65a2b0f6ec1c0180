package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts transport solver work. A nil *Metrics records nothing.
type Metrics struct {
	// Sub-step sequences run, including retries
	Attempts prometheus.Counter
	// Sub-step doublings after a failed attempt
	Retries prometheus.Counter
	// Newton iterations over all sub-steps
	Iterations prometheus.Counter
	// Solves that exhausted the repeat budget
	Failures prometheus.Counter
	// Wall time per Solve call
	SolveDuration prometheus.Histogram
}

// NewMetrics registers the transport metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Attempts: f.NewCounter(prometheus.CounterOpts{
			Name: "gotpfa_transport_attempts_total",
			Help: "Sub-step sequences attempted by the transport solver",
		}),
		Retries: f.NewCounter(prometheus.CounterOpts{
			Name: "gotpfa_transport_retries_total",
			Help: "Sub-step doublings after a failed attempt",
		}),
		Iterations: f.NewCounter(prometheus.CounterOpts{
			Name: "gotpfa_transport_newton_iterations_total",
			Help: "Newton-Raphson iterations performed",
		}),
		Failures: f.NewCounter(prometheus.CounterOpts{
			Name: "gotpfa_transport_failures_total",
			Help: "Transport solves that did not converge within the repeat budget",
		}),
		SolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gotpfa_transport_solve_duration_seconds",
			Help:    "Duration of one transport solve over a macro time step",
			Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
		}),
	}
}

func (m *Metrics) incAttempt() {
	if m != nil {
		m.Attempts.Inc()
	}
}

func (m *Metrics) incRetry() {
	if m != nil {
		m.Retries.Inc()
	}
}

func (m *Metrics) addIterations(n int) {
	if m != nil {
		m.Iterations.Add(float64(n))
	}
}

func (m *Metrics) incFailure() {
	if m != nil {
		m.Failures.Inc()
	}
}

func (m *Metrics) observeSolve(d time.Duration) {
	if m != nil {
		m.SolveDuration.Observe(d.Seconds())
	}
}
