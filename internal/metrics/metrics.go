// Package metrics provides Prometheus instrumentation for the agent.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CommandsTotal counts processed commands by detected intent type.
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "treasuryagent",
			Name:      "commands_total",
			Help:      "Total commands processed by intent type.",
		},
		[]string{"intent"},
	)

	// ExecutionsTotal counts executor dispatches by intent type and result status.
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "treasuryagent",
			Name:      "executions_total",
			Help:      "Total intent executions by type and status.",
		},
		[]string{"type", "status"},
	)

	// ProviderRequestDuration observes provider call latency by provider and operation.
	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "treasuryagent",
			Name:      "provider_request_duration_seconds",
			Help:      "Provider request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "op"},
	)

	// SwapVolumeLamports totals the lamports swapped out of the wallet.
	SwapVolumeLamports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "treasuryagent",
			Name:      "swap_volume_lamports_total",
			Help:      "Cumulative swap input volume in lamports.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		CommandsTotal,
		ExecutionsTotal,
		ProviderRequestDuration,
		SwapVolumeLamports,
	)
}
