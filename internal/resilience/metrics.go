package resilience

import "github.com/prometheus/client_golang/prometheus"

// Breaker visibility. The state gauge answers "is checkout degraded right
// now"; the counters show how often the processor dependency flapped.
var (
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Breaker position per guarded dependency: 0=closed, 1=open, 2=half_open.",
		},
		[]string{"target"},
	)
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Breaker state transitions per guarded dependency.",
		},
		[]string{"target", "from", "to"},
	)
	BreakerOpenedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_opened_total",
			Help: "Times the breaker gave up on a dependency and opened.",
		},
		[]string{"target"},
	)
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions, BreakerOpenedTotal)
}
