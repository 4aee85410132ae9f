package scheduler

import "github.com/prometheus/client_golang/prometheus"

var (
	// transitions counts status writes that reached the store.
	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_status_transitions_total",
			Help: "Total number of scheduled message status transitions applied.",
		},
		[]string{"status"},
	)

	// transitionFailures counts status writes that failed and were dropped.
	transitionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_status_transition_failures_total",
			Help: "Total number of scheduled message status transitions that failed.",
		},
		[]string{"status"},
	)

	// pendingChains gauges messages that still have steps to run.
	pendingChains = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_status_pending_messages",
			Help: "Current number of messages with scheduled status transitions.",
		},
	)
)

func init() {
	prometheus.MustRegister(transitions, transitionFailures, pendingChains)
}
