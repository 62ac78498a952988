// Package agent runs the natural-language command loop: parse, risk-gate,
// execute, record.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"

	"github.com/walt-openclaw/treasuryagent/internal/executor"
	"github.com/walt-openclaw/treasuryagent/internal/intent"
	"github.com/walt-openclaw/treasuryagent/internal/logging"
	"github.com/walt-openclaw/treasuryagent/internal/metrics"
	"github.com/walt-openclaw/treasuryagent/internal/risk"
	"github.com/walt-openclaw/treasuryagent/internal/token"
)

// HistoryEntry records one processed command.
type HistoryEntry struct {
	ID      string        `json:"id"`
	Time    time.Time     `json:"time"`
	Command string        `json:"command"`
	Intent  intent.Intent `json:"intent"`
	Status  string        `json:"status"`
}

// Response is the outcome of one processed command. Exactly one of Help,
// Assessment-rejection, or Result describes what happened; Warnings carry
// advisory validation notes alongside either outcome.
type Response struct {
	Intent     intent.Intent    `json:"intent"`
	Warnings   []string         `json:"warnings,omitempty"`
	Assessment *risk.Assessment `json:"assessment,omitempty"`
	Result     *executor.Result `json:"result,omitempty"`
	Help       string           `json:"help,omitempty"`
}

// Agent holds the state one command session mutates: the risk breaker and the
// command history. Wallet balance is read fresh per command, never cached.
type Agent struct {
	deps    executor.Deps
	policy  risk.Policy
	breaker risk.Breaker
	logger  *slog.Logger
	history []HistoryEntry
	sleep   func(time.Duration)
}

// New creates an agent over the given providers and policy.
func New(deps executor.Deps, policy risk.Policy, logger *slog.Logger) *Agent {
	return &Agent{
		deps:   deps,
		policy: policy,
		logger: logger,
		sleep:  time.Sleep,
	}
}

const helpText = `I can understand commands like:
  swap 0.1 SOL to USDC
  deposit 100 USDC into kamino
  withdraw 50 USDC from kamino
  check balance
  check my USDC position`

// executable reports whether an intent type moves or commits funds and so
// must pass the risk gate.
func executable(t intent.Type) bool {
	switch t {
	case intent.TypeSwap, intent.TypeStake, intent.TypeLend, intent.TypeWithdraw:
		return true
	}
	return false
}

// ProcessCommand runs one command through the full pipeline. Unknown or
// invalid commands short-circuit with help text; rejected commands carry the
// assessment; provider failures return an error after being recorded. The
// history entry ID doubles as the log correlation ID.
func (a *Agent) ProcessCommand(ctx context.Context, command string) (*Response, error) {
	id := uuid.NewString()
	ctx = logging.WithCommandID(logging.WithLogger(ctx, a.logger), id)
	log := logging.L(ctx)

	in := intent.Parse(command)
	metrics.CommandsTotal.WithLabelValues(string(in.Type)).Inc()
	log.Info("command parsed",
		"type", in.Type, "confidence", in.Confidence, "command", command)

	if in.Type == intent.TypeUnknown {
		a.record(id, command, in, "unknown")
		return &Response{Intent: in, Help: helpText}, nil
	}

	// Validation is advisory: surface its notes but let the gate and the
	// executor decide. A swap with no stated pair still runs with the
	// executor's SOL to USDC defaults.
	var warnings []string
	if v := intent.Validate(in); !v.Valid {
		warnings = v.Errors
		log.Warn("command validation notes", "notes", strings.Join(v.Errors, "; "))
	}

	if executable(in.Type) {
		balance, err := a.balanceLamports(ctx)
		if err != nil {
			a.record(id, command, in, "error")
			return nil, fmt.Errorf("agent: balance for risk check: %w", err)
		}

		assessment := risk.Assess(a.policy, a.breaker, in, balance)
		if !assessment.Approved {
			log.Warn("command rejected", "reasons", assessment.Reasons)
			a.record(id, command, in, "rejected")
			return &Response{Intent: in, Warnings: warnings, Assessment: &assessment}, nil
		}
		for _, w := range assessment.Warnings {
			log.Warn("risk warning", "warning", w)
		}
	}

	result, err := executor.Execute(ctx, a.deps, in)
	if err != nil {
		a.record(id, command, in, "error")
		return nil, fmt.Errorf("agent: execute: %w", err)
	}

	a.record(id, command, in, string(result.Status))
	return &Response{Intent: in, Warnings: warnings, Result: result}, nil
}

func (a *Agent) balanceLamports(ctx context.Context) (uint64, error) {
	out, err := a.deps.Chain.GetBalance(ctx, a.deps.Wallet.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

func (a *Agent) record(id, command string, in intent.Intent, status string) {
	a.history = append(a.history, HistoryEntry{
		ID:      id,
		Time:    time.Now().UTC(),
		Command: command,
		Intent:  in,
		Status:  status,
	})
}

// History returns a copy of the processed-command log.
func (a *Agent) History() []HistoryEntry {
	out := make([]HistoryEntry, len(a.history))
	copy(out, a.history)
	return out
}

// TripBreaker halts all executable commands until ResetBreaker.
func (a *Agent) TripBreaker(reason string) {
	a.breaker = a.breaker.Trip(reason)
	a.logger.Warn("circuit breaker tripped", "reason", reason)
}

// ResetBreaker re-enables execution.
func (a *Agent) ResetBreaker() {
	a.breaker = a.breaker.Reset()
	a.logger.Info("circuit breaker reset")
}

// Run reads commands from r one line at a time and writes rendered responses
// to w. Each command fully resolves before the next prompt. "exit" and
// "quit" end the loop; provider failures are reported and the loop continues.
func (a *Agent) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	balance, err := a.balanceLamports(ctx)
	if err != nil {
		return fmt.Errorf("agent: startup balance: %w", err)
	}

	fmt.Fprintf(w, "Treasury agent ready\n")
	fmt.Fprintf(w, "Wallet: %s\n", a.deps.Wallet.Address())
	fmt.Fprintf(w, "Balance: %.4f SOL\n", token.LamportsToSOL(balance))
	if balance == 0 {
		fmt.Fprintf(w, "Balance is zero. On devnet, run: treasury fund\n")
	}
	fmt.Fprintf(w, "\nType a command, or exit to quit.\n")

	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprintf(w, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Fprintf(w, "bye\n")
			return nil
		}

		resp, err := a.ProcessCommand(ctx, line)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		render(w, resp)
	}
}

// demoScript exercises each intent family against a fresh devnet wallet.
var demoScript = []string{
	"check balance",
	"swap 0.01 SOL to USDC",
	"deposit 1 USDC into kamino",
	"check my USDC position",
	"withdraw 1 USDC from kamino",
	"swap 100 SOL to USDC",
	"do something clever",
}

// Demo runs a fixed command script with short pauses between commands.
func (a *Agent) Demo(ctx context.Context, w io.Writer) error {
	for _, command := range demoScript {
		fmt.Fprintf(w, "> %s\n", command)
		resp, err := a.ProcessCommand(ctx, command)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		} else {
			render(w, resp)
		}
		a.sleep(2 * time.Second)
	}
	return nil
}

func render(w io.Writer, resp *Response) {
	for _, warning := range resp.Warnings {
		fmt.Fprintf(w, "note: %s\n", warning)
	}
	switch {
	case resp.Help != "":
		fmt.Fprintln(w, resp.Help)
	case resp.Assessment != nil && !resp.Assessment.Approved:
		fmt.Fprintln(w, "rejected:")
		for _, reason := range resp.Assessment.Reasons {
			fmt.Fprintf(w, "  - %s\n", reason)
		}
	case resp.Result != nil:
		renderResult(w, resp.Result)
	}
}

func renderResult(w io.Writer, result *executor.Result) {
	switch result.Type {
	case intent.TypeBalance:
		fmt.Fprintf(w, "%s: %.4f SOL\n", result.Address, result.BalanceSOL)
	case intent.TypeSwap:
		fmt.Fprintf(w, "swap confirmed: %s\n", result.Signature)
		fmt.Fprintf(w, "  in %s, out %s via %s\n", result.InputAmount, result.OutputAmount, result.Route)
	case intent.TypePosition:
		pos := result.Position
		fmt.Fprintf(w, "%s position: %g deposited, %g earned, %.2f%% APY\n",
			pos.Token, pos.Deposited, pos.Earned, result.APY)
	case intent.TypeStake:
		fmt.Fprintln(w, "staking is not available yet; nothing was executed")
	default:
		fmt.Fprintf(w, "%s %s: %s\n", result.Type, result.Status, result.Signature)
	}
}
