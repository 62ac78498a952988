// Package risk gates parsed intents against a fixed wallet policy.
//
// The gate is pure with respect to its inputs: assessments are deterministic
// functions of (policy, breaker, intent, balance) and are never cached or
// reused across intents. Amounts are compared in base-currency terms; the
// wallet balance arrives in lamports.
package risk

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Default policy limits.
const (
	DefaultMaxTransactionSOL = 10.0
	// DefaultMinReserveSOL keeps some SOL for fees. The interactive loop and
	// the full gate read the same value.
	DefaultMinReserveSOL = 0.1
)

// Policy is the fixed risk configuration, loaded once at process start and
// never mutated at runtime.
type Policy struct {
	MaxTransactionSOL   float64
	MinReserveSOL       float64
	AllowedProtocols    []string
	RequireConfirmation bool
}

// DefaultPolicy returns the stock limits.
func DefaultPolicy() Policy {
	return Policy{
		MaxTransactionSOL:   DefaultMaxTransactionSOL,
		MinReserveSOL:       DefaultMinReserveSOL,
		AllowedProtocols:    []string{"jupiter", "kamino", "jito"},
		RequireConfirmation: true,
	}
}

// protocolAllowed reports whether a protocol hint is on the allowlist.
func (p Policy) protocolAllowed(protocol string) bool {
	for _, allowed := range p.AllowedProtocols {
		if allowed == protocol {
			return true
		}
	}
	return false
}

// Assessment is the outcome of evaluating one intent against policy and
// balance. Reasons block; warnings do not.
type Assessment struct {
	Approved             bool     `json:"approved"`
	Reasons              []string `json:"reasons,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
	RequiresConfirmation bool     `json:"requiresConfirmation"`
}

var (
	rejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treasuryagent",
		Subsystem: "risk",
		Name:      "rejections_total",
		Help:      "Blocking risk-gate reasons by check.",
	}, []string{"check"})

	breakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "treasuryagent",
		Subsystem: "risk",
		Name:      "breaker_trips_total",
		Help:      "Times the circuit breaker was tripped.",
	})
)

func init() {
	prometheus.MustRegister(rejectionsTotal, breakerTripsTotal)
}
