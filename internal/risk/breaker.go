package risk

import "time"

// Breaker is the manual kill-switch. It is an explicit value threaded through
// assessment calls: Trip and Reset return new values rather than mutating in
// place. A process starts untripped and breaker state is never persisted.
type Breaker struct {
	Tripped   bool      `json:"tripped"`
	Reason    string    `json:"reason,omitempty"`
	TrippedAt time.Time `json:"trippedAt,omitzero"`
}

// Trip returns a tripped breaker recording the reason. While tripped, every
// assessment short-circuits to rejection.
func (b Breaker) Trip(reason string) Breaker {
	breakerTripsTotal.Inc()
	return Breaker{Tripped: true, Reason: reason, TrippedAt: time.Now()}
}

// Reset returns a cleared breaker.
func (b Breaker) Reset() Breaker {
	return Breaker{}
}
