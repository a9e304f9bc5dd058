package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Breaker call outcomes
const (
	outcomeCalled   = "called"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "seatshare_breaker_state",
		Help: "Breaker state: 0 closed, 1 half-open, 2 open",
	}, []string{"breaker"})

	breakerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatshare_breaker_calls_total",
		Help: "Calls through a breaker by outcome",
	}, []string{"breaker", "outcome"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seatshare_breaker_transitions_total",
		Help: "Breaker state transitions",
	}, []string{"breaker", "from", "to"})
)

func nextBreakerName(base string) string {
	if base == "" {
		return "unnamed"
	}
	return base
}

// gobreaker numbers its states closed=0, half-open=1, open=2
func recordBreakerState(name string, state gobreaker.State) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

func recordBreakerStateChange(name string, from, to gobreaker.State) {
	breakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	recordBreakerState(name, to)
}

func recordBreakerRequest(name string) {
	breakerCalls.WithLabelValues(name, outcomeCalled).Inc()
}

func recordBreakerFailure(name string) {
	breakerCalls.WithLabelValues(name, outcomeFailed).Inc()
}

func recordBreakerFallback(name string) {
	breakerCalls.WithLabelValues(name, outcomeRejected).Inc()
}
