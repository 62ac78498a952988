// Package executor dispatches approved intents to capability providers and
// normalizes their results.
package executor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/walt-openclaw/treasuryagent/internal/chain"
	"github.com/walt-openclaw/treasuryagent/internal/intent"
	"github.com/walt-openclaw/treasuryagent/internal/jupiter"
	"github.com/walt-openclaw/treasuryagent/internal/kamino"
	"github.com/walt-openclaw/treasuryagent/internal/metrics"
	"github.com/walt-openclaw/treasuryagent/internal/token"
	"github.com/walt-openclaw/treasuryagent/internal/traces"
	"github.com/walt-openclaw/treasuryagent/internal/wallet"
)

// Typed errors for programmatic handling.
var (
	ErrUnknownIntent = errors.New("executor: unknown intent type")
	ErrMissingAmount = errors.New("executor: amount is required")
	ErrUnknownToken  = errors.New("executor: unknown token pair")
	ErrPercentAmount = errors.New("executor: percentage amounts are not supported")
)

// Status of a normalized execution result.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusPending   Status = "pending"
	StatusRejected  Status = "rejected"
	StatusSimulated Status = "simulated"
)

// Result is the normalized outcome of executing one intent.
type Result struct {
	Status Status      `json:"status"`
	Type   intent.Type `json:"type"`

	// Swap / vault fields
	Signature    string `json:"signature,omitempty"`
	InputAmount  string `json:"inputAmount,omitempty"`
	OutputAmount string `json:"outputAmount,omitempty"`
	Route        string `json:"route,omitempty"`

	// Balance fields
	Address    string  `json:"address,omitempty"`
	BalanceSOL float64 `json:"balanceSol,omitempty"`

	// Position fields
	Position *kamino.Position `json:"position,omitempty"`
	APY      float64          `json:"apy,omitempty"`
}

// SwapProvider quotes and builds swap transactions. *jupiter.Client
// satisfies it.
type SwapProvider interface {
	Quote(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64) (*jupiter.QuoteResponse, error)
	SwapTransaction(ctx context.Context, quote *jupiter.QuoteResponse, user solana.PublicKey) (string, error)
}

// Lender manages yield-vault positions. *kamino.Client satisfies it.
type Lender interface {
	APY(ctx context.Context, symbol string) float64
	Position(ctx context.Context, owner solana.PublicKey, symbol string) (*kamino.Position, error)
	Deposit(ctx context.Context, w *wallet.Wallet, symbol string, amount float64) (*kamino.VaultResult, error)
	Withdraw(ctx context.Context, w *wallet.Wallet, symbol string, amount float64) (*kamino.VaultResult, error)
}

// Broadcaster sends signed transactions and waits for confirmation.
// *chain.Sender satisfies it.
type Broadcaster interface {
	SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Deps bundles the capability providers behind the router.
type Deps struct {
	Chain     chain.Client
	Swap      SwapProvider
	Lender    Lender
	Broadcast Broadcaster
	Wallet    *wallet.Wallet
	Logger    *slog.Logger
}

// Execute dispatches an intent to the matching provider. The caller is
// responsible for risk-gating first; Execute assumes approval.
func Execute(ctx context.Context, deps Deps, in intent.Intent) (*Result, error) {
	ctx, span := traces.StartSpan(ctx, "executor.execute",
		traces.IntentType(string(in.Type)),
		traces.AmountSOL(in.AmountValue()),
	)
	defer span.End()

	result, err := dispatch(ctx, deps, in)
	status := "error"
	if err == nil {
		status = string(result.Status)
	}
	metrics.ExecutionsTotal.WithLabelValues(string(in.Type), status).Inc()
	return result, err
}

func dispatch(ctx context.Context, deps Deps, in intent.Intent) (*Result, error) {
	switch in.Type {
	case intent.TypeSwap:
		return executeSwap(ctx, deps, in)
	case intent.TypeBalance:
		return checkBalance(ctx, deps)
	case intent.TypeStake:
		// Staking is not implemented; report pending without side effects.
		deps.Logger.Warn("staking not yet implemented")
		return &Result{Status: StatusPending, Type: intent.TypeStake}, nil
	case intent.TypeLend:
		return executeLend(ctx, deps, in)
	case intent.TypeWithdraw:
		return executeWithdraw(ctx, deps, in)
	case intent.TypePosition:
		return checkPosition(ctx, deps, in)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
	}
}

// executeSwap runs the full pipeline: quote, build, sign, broadcast, confirm.
// Each step's failure is terminal for the call; there is no partial-progress
// resumption.
func executeSwap(ctx context.Context, deps Deps, in intent.Intent) (*Result, error) {
	if !in.HasAmount() {
		return nil, fmt.Errorf("%w for swap", ErrMissingAmount)
	}
	// A percent amount would otherwise be misread as token units.
	if in.Unit == intent.UnitPercent {
		return nil, fmt.Errorf("%w for swap", ErrPercentAmount)
	}

	from := in.Tokens.From
	if from == "" {
		from = "SOL"
	}
	to := in.Tokens.To
	if to == "" {
		to = "USDC"
	}

	fromInfo, okFrom := token.Lookup(from)
	toInfo, okTo := token.Lookup(to)
	if !okFrom || !okTo {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownToken, from, to)
	}

	amount, err := token.FloatToBaseUnits(from, in.AmountValue())
	if err != nil {
		return nil, fmt.Errorf("executor: swap amount: %w", err)
	}

	ctx, span := traces.StartSpan(ctx, "executor.swap",
		traces.TokenPair(from, to), traces.Provider("jupiter"))
	defer span.End()

	deps.Logger.Info("requesting quote", "from", from, "to", to, "amount", amount)
	quote, err := timedQuote(ctx, deps.Swap, fromInfo.Mint, toInfo.Mint, amount)
	if err != nil {
		return nil, fmt.Errorf("executor: quote: %w", err)
	}
	deps.Logger.Info("quote received", "out_amount", quote.OutAmount, "route", quote.RouteLabels())

	txBase64, err := deps.Swap.SwapTransaction(ctx, quote, deps.Wallet.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("executor: build swap transaction: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return nil, fmt.Errorf("executor: decode swap transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("executor: deserialize swap transaction: %w", err)
	}

	if _, err := tx.Sign(deps.Wallet.Signer()); err != nil {
		return nil, fmt.Errorf("executor: sign swap transaction: %w", err)
	}

	sig, err := deps.Broadcast.SendAndConfirm(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("executor: broadcast swap: %w", err)
	}
	span.SetAttributes(traces.Signature(sig.String()))

	if from == "SOL" {
		metrics.SwapVolumeLamports.Add(float64(amount))
	}
	deps.Logger.Info("swap confirmed", "signature", sig.String())

	return &Result{
		Status:       StatusSuccess,
		Type:         intent.TypeSwap,
		Signature:    sig.String(),
		InputAmount:  quote.InAmount,
		OutputAmount: quote.OutAmount,
		Route:        quote.RouteLabels(),
	}, nil
}

func timedQuote(ctx context.Context, swap SwapProvider, inputMint, outputMint solana.PublicKey, amount uint64) (*jupiter.QuoteResponse, error) {
	timer := prometheus.NewTimer(metrics.ProviderRequestDuration.WithLabelValues("jupiter", "quote"))
	defer timer.ObserveDuration()
	return swap.Quote(ctx, inputMint, outputMint, amount)
}

func checkBalance(ctx context.Context, deps Deps) (*Result, error) {
	out, err := deps.Chain.GetBalance(ctx, deps.Wallet.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("executor: balance query: %w", err)
	}
	return &Result{
		Status:     StatusSuccess,
		Type:       intent.TypeBalance,
		Address:    deps.Wallet.Address(),
		BalanceSOL: token.LamportsToSOL(out.Value),
	}, nil
}

func executeLend(ctx context.Context, deps Deps, in intent.Intent) (*Result, error) {
	if !in.HasAmount() || in.AmountValue() <= 0 {
		return nil, fmt.Errorf("%w for lend", ErrMissingAmount)
	}
	if in.Unit == intent.UnitPercent {
		return nil, fmt.Errorf("%w for lend", ErrPercentAmount)
	}
	symbol := lendSymbol(in)

	pos, err := deps.Lender.Position(ctx, deps.Wallet.PublicKey(), symbol)
	if err != nil {
		return nil, fmt.Errorf("executor: lend position: %w", err)
	}
	deps.Logger.Info("current lend position",
		"token", symbol, "deposited", pos.Deposited, "apy", pos.APY)

	vault, err := timedDeposit(ctx, deps, symbol, in.AmountValue())
	if err != nil {
		return nil, fmt.Errorf("executor: deposit: %w", err)
	}

	return &Result{
		Status:      Status(vault.Status),
		Type:        intent.TypeLend,
		Signature:   vault.Signature,
		InputAmount: fmt.Sprintf("%g %s", vault.Amount, vault.Token),
		APY:         pos.APY,
	}, nil
}

func timedDeposit(ctx context.Context, deps Deps, symbol string, amount float64) (*kamino.VaultResult, error) {
	timer := prometheus.NewTimer(metrics.ProviderRequestDuration.WithLabelValues("kamino", "deposit"))
	defer timer.ObserveDuration()
	return deps.Lender.Deposit(ctx, deps.Wallet, symbol, amount)
}

func executeWithdraw(ctx context.Context, deps Deps, in intent.Intent) (*Result, error) {
	if !in.HasAmount() || in.AmountValue() <= 0 {
		return nil, fmt.Errorf("%w for withdraw", ErrMissingAmount)
	}
	if in.Unit == intent.UnitPercent {
		return nil, fmt.Errorf("%w for withdraw", ErrPercentAmount)
	}
	symbol := lendSymbol(in)

	vault, err := deps.Lender.Withdraw(ctx, deps.Wallet, symbol, in.AmountValue())
	if err != nil {
		return nil, fmt.Errorf("executor: withdraw: %w", err)
	}

	return &Result{
		Status:       Status(vault.Status),
		Type:         intent.TypeWithdraw,
		Signature:    vault.Signature,
		OutputAmount: fmt.Sprintf("%g %s", vault.Amount, vault.Token),
	}, nil
}

func checkPosition(ctx context.Context, deps Deps, in intent.Intent) (*Result, error) {
	symbol := lendSymbol(in)

	pos, err := deps.Lender.Position(ctx, deps.Wallet.PublicKey(), symbol)
	if err != nil {
		return nil, fmt.Errorf("executor: position: %w", err)
	}

	return &Result{
		Status:   StatusSuccess,
		Type:     intent.TypePosition,
		Position: pos,
		APY:      deps.Lender.APY(ctx, symbol),
	}, nil
}

// lendSymbol picks the vault token for lend/withdraw/position intents: a
// token symbol mentioned anywhere in the command, otherwise the stated unit,
// otherwise SOL.
func lendSymbol(in intent.Intent) string {
	lower := strings.ToLower(in.Raw)
	for _, sym := range token.Symbols() {
		if sym == "SOL" {
			continue // "sol" appears inside unrelated words too often
		}
		if strings.Contains(lower, strings.ToLower(sym)) {
			return sym
		}
	}
	if in.Unit != "" && in.Unit != intent.UnitPercent {
		return in.Unit
	}
	return "SOL"
}
