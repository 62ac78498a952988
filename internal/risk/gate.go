package risk

import (
	"fmt"

	"github.com/walt-openclaw/treasuryagent/internal/intent"
	"github.com/walt-openclaw/treasuryagent/internal/token"
)

// Assess evaluates an intent against the policy and the wallet's current
// lamport balance. Every check runs; all blocking reasons are collected so
// the caller sees the full picture at once. A tripped breaker short-circuits
// to rejection regardless of the other checks.
func Assess(p Policy, b Breaker, in intent.Intent, balanceLamports uint64) Assessment {
	if b.Tripped {
		rejectionsTotal.WithLabelValues("breaker").Inc()
		return Assessment{
			Approved:             false,
			Reasons:              []string{fmt.Sprintf("circuit breaker tripped: %s", b.Reason)},
			RequiresConfirmation: true,
		}
	}

	var reasons, warnings []string
	amountSOL := solAmount(in)
	amountLamports := int64(token.SOLToLamports(amountSOL))

	if amountSOL > p.MaxTransactionSOL {
		reasons = append(reasons, fmt.Sprintf(
			"transaction amount (%g SOL) exceeds limit (%g SOL)", amountSOL, p.MaxTransactionSOL))
		rejectionsTotal.WithLabelValues("ceiling").Inc()
	}

	if in.Protocol != "" && !p.protocolAllowed(in.Protocol) {
		reasons = append(reasons, fmt.Sprintf("protocol %q not in allowlist", in.Protocol))
		rejectionsTotal.WithLabelValues("protocol").Inc()
	}

	estimated := int64(balanceLamports) - amountLamports
	minBalance := int64(token.SOLToLamports(p.MinReserveSOL))
	if estimated < minBalance {
		reasons = append(reasons, fmt.Sprintf(
			"transaction would leave balance below minimum (%g SOL)", p.MinReserveSOL))
		rejectionsTotal.WithLabelValues("reserve").Inc()
	}

	if float64(amountLamports) > float64(balanceLamports)*0.8 && amountLamports > 0 {
		warnings = append(warnings, "transaction uses >80% of available balance")
	}

	return Assessment{
		Approved:             len(reasons) == 0,
		Reasons:              reasons,
		Warnings:             warnings,
		RequiresConfirmation: p.RequireConfirmation || len(reasons) > 0,
	}
}

// solAmount returns the intent's amount when it is SOL-denominated, 0
// otherwise. The ceiling and reserve are SOL policies; a USDC-denominated
// deposit cannot debit the SOL reserve and is not bounded by the SOL
// ceiling.
func solAmount(in intent.Intent) float64 {
	if in.Unit == "" || in.Unit == "SOL" {
		return in.AmountValue()
	}
	return 0
}

// Check is the lightweight gate used on the interactive hot path. It runs
// only the ceiling and affordability checks and returns the first rejection
// reason. It reads the same policy values as Assess: anything Check rejects,
// Assess rejects too.
func Check(p Policy, in intent.Intent, balanceLamports uint64) (bool, string) {
	amountSOL := solAmount(in)

	if amountSOL > p.MaxTransactionSOL {
		rejectionsTotal.WithLabelValues("ceiling").Inc()
		return false, fmt.Sprintf("amount exceeds maximum transaction size (%g SOL)", p.MaxTransactionSOL)
	}

	affordable := int64(balanceLamports) - int64(token.SOLToLamports(p.MinReserveSOL))
	if int64(token.SOLToLamports(amountSOL)) > affordable {
		rejectionsTotal.WithLabelValues("reserve").Inc()
		return false, fmt.Sprintf("insufficient balance after %g SOL reserve", p.MinReserveSOL)
	}

	return true, ""
}
