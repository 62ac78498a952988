package intent

import (
	"fmt"
	"strings"
)

// minConfidence is the fixed low-confidence threshold below which a command
// is flagged as not understood.
const minConfidence = 0.5

// Validation is the outcome of checking an Intent's own fields. It does not
// consult wallet state and does not itself block execution; the risk gate
// owns that decision. Interactive flows use it for earlier feedback.
type Validation struct {
	Valid  bool
	Errors []string
}

// Validate checks an Intent for internal consistency.
func Validate(in Intent) Validation {
	var errs []string

	if in.Confidence < minConfidence {
		errs = append(errs, "could not understand command")
	}

	if in.Type == TypeSwap && in.Tokens.From == "" {
		errs = append(errs, "missing source token")
	}
	if in.Type == TypeSwap && in.Tokens.To == "" {
		errs = append(errs, "missing destination token")
	}

	if in.Amount != nil && *in.Amount <= 0 {
		errs = append(errs, "amount must be positive")
	}

	if in.Unit == UnitPercent {
		switch in.Type {
		case TypeSwap, TypeLend, TypeWithdraw:
			errs = append(errs, fmt.Sprintf("percentage amounts are not supported for %s", in.Type))
		}
	}

	// The parser silently keeps the last protocol mention; surface the
	// ambiguity here so callers can warn before execution.
	if mentions := countProtocolMentions(in.Raw); mentions > 1 {
		errs = append(errs, "ambiguous protocol: multiple providers mentioned")
	}

	return Validation{Valid: len(errs) == 0, Errors: errs}
}

func countProtocolMentions(raw string) int {
	lower := strings.ToLower(raw)
	n := 0
	for _, p := range []string{ProtocolJupiter, ProtocolKamino, ProtocolJito} {
		if strings.Contains(lower, p) {
			n++
		}
	}
	return n
}
