package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walt-openclaw/treasuryagent/internal/agent"
	"github.com/walt-openclaw/treasuryagent/internal/executor"
	"github.com/walt-openclaw/treasuryagent/internal/intent"
	"github.com/walt-openclaw/treasuryagent/internal/jupiter"
	"github.com/walt-openclaw/treasuryagent/internal/kamino"
	"github.com/walt-openclaw/treasuryagent/internal/risk"
	"github.com/walt-openclaw/treasuryagent/internal/wallet"
)

// --- Test helpers ---

type fakeChain struct {
	balance uint64
	err     error
}

func (f *fakeChain) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.GetBalanceResult{Value: f.balance}, nil
}

func (f *fakeChain) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return nil, rpc.ErrNotFound
}

func (f *fakeChain) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{Value: &rpc.LatestBlockhashResult{}}, nil
}

func (f *fakeChain) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	return solana.Signature{}, errors.New("send unsupported")
}

func (f *fakeChain) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	return nil, errors.New("statuses unsupported")
}

func (f *fakeChain) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error) {
	return solana.Signature{}, errors.New("airdrop unsupported")
}

func (f *fakeChain) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error) {
	return nil, errors.New("token balance unsupported")
}

type fakeSwap struct {
	quote *jupiter.QuoteResponse
	err   error
}

func (f *fakeSwap) Quote(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64) (*jupiter.QuoteResponse, error) {
	return f.quote, f.err
}

func (f *fakeSwap) SwapTransaction(ctx context.Context, quote *jupiter.QuoteResponse, user solana.PublicKey) (string, error) {
	return "", errors.New("unused")
}

type fakeLender struct{}

func (f *fakeLender) APY(ctx context.Context, symbol string) float64 { return 8.5 }

func (f *fakeLender) Position(ctx context.Context, owner solana.PublicKey, symbol string) (*kamino.Position, error) {
	if symbol != "USDC" && symbol != "SOL" {
		return nil, kamino.ErrUnsupportedToken
	}
	return &kamino.Position{Token: symbol, Deposited: 42, APY: 8.5}, nil
}

func (f *fakeLender) Deposit(ctx context.Context, w *wallet.Wallet, symbol string, amount float64) (*kamino.VaultResult, error) {
	return &kamino.VaultResult{Signature: "sig", Token: symbol, Amount: amount, Status: "simulated"}, nil
}

func (f *fakeLender) Withdraw(ctx context.Context, w *wallet.Wallet, symbol string, amount float64) (*kamino.VaultResult, error) {
	return &kamino.VaultResult{Signature: "sig", Token: symbol, Amount: amount, Status: "simulated"}, nil
}

func newTestHandlers(t *testing.T, ch *fakeChain, swap *fakeSwap) *Handlers {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	deps := executor.Deps{
		Chain:  ch,
		Swap:   swap,
		Lender: &fakeLender{},
		Wallet: wallet.New(key),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	a := agent.New(deps, risk.DefaultPolicy(), deps.Logger)
	return NewHandlers(a, deps)
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	if args == nil {
		args = map[string]any{}
	}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content block")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

// ============================================================
// Handler tests
// ============================================================

func TestHandleParseCommand(t *testing.T) {
	h := newTestHandlers(t, &fakeChain{balance: 1_000_000_000}, &fakeSwap{})

	result, err := h.HandleParseCommand(context.Background(),
		makeRequest(map[string]any{"command": "swap 0.1 SOL to USDC"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var parsed struct {
		Intent intent.Intent `json:"intent"`
		Valid  bool          `json:"valid"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &parsed))
	assert.Equal(t, intent.TypeSwap, parsed.Intent.Type)
	assert.Equal(t, "SOL", parsed.Intent.Tokens.From)
	assert.Equal(t, "USDC", parsed.Intent.Tokens.To)
	assert.True(t, parsed.Valid)
}

func TestHandleParseCommand_MissingCommand(t *testing.T) {
	h := newTestHandlers(t, &fakeChain{}, &fakeSwap{})

	result, err := h.HandleParseCommand(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleCheckBalance(t *testing.T) {
	h := newTestHandlers(t, &fakeChain{balance: 2_500_000_000}, &fakeSwap{})

	result, err := h.HandleCheckBalance(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "2.500000000 SOL")
	assert.Contains(t, text, "2500000000 lamports")
}

func TestHandleCheckBalance_RPCError(t *testing.T) {
	h := newTestHandlers(t, &fakeChain{err: errors.New("rpc down")}, &fakeSwap{})

	result, err := h.HandleCheckBalance(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetQuote(t *testing.T) {
	swap := &fakeSwap{quote: &jupiter.QuoteResponse{
		OutAmount:      "15000000",
		PriceImpactPct: "0.01",
		RoutePlan: []jupiter.RouteStep{
			{SwapInfo: jupiter.SwapInfo{Label: "Orca"}},
		},
	}}
	h := newTestHandlers(t, &fakeChain{}, swap)

	result, err := h.HandleGetQuote(context.Background(),
		makeRequest(map[string]any{"from": "sol", "to": "usdc", "amount": "0.1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "0.1 SOL -> USDC")
	assert.Contains(t, text, "15000000")
	assert.Contains(t, text, "Orca")
}

func TestHandleGetQuote_BadInput(t *testing.T) {
	h := newTestHandlers(t, &fakeChain{}, &fakeSwap{})

	result, err := h.HandleGetQuote(context.Background(),
		makeRequest(map[string]any{"from": "DOGE", "to": "USDC", "amount": "1"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = h.HandleGetQuote(context.Background(),
		makeRequest(map[string]any{"from": "SOL", "to": "USDC", "amount": "-1"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetPosition_DefaultsToUSDC(t *testing.T) {
	h := newTestHandlers(t, &fakeChain{}, &fakeSwap{})

	result, err := h.HandleGetPosition(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "USDC position")
	assert.Contains(t, text, "8.50% APY")
}

func TestHandleExecuteCommand_RefusesRejected(t *testing.T) {
	h := newTestHandlers(t, &fakeChain{balance: 100_000_000_000}, &fakeSwap{})

	result, err := h.HandleExecuteCommand(context.Background(),
		makeRequest(map[string]any{"command": "swap 50 SOL to USDC"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Refused by risk assessment")
}

func TestHandleExecuteCommand_UnknownReturnsHelp(t *testing.T) {
	h := newTestHandlers(t, &fakeChain{balance: 1_000_000_000}, &fakeSwap{})

	result, err := h.HandleExecuteCommand(context.Background(),
		makeRequest(map[string]any{"command": "make me rich"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "swap 0.1 SOL to USDC")
}

func TestHandleExecuteCommand_Balance(t *testing.T) {
	h := newTestHandlers(t, &fakeChain{balance: 1_000_000_000}, &fakeSwap{})

	result, err := h.HandleExecuteCommand(context.Background(),
		makeRequest(map[string]any{"command": "check balance"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "1.000000000 SOL")
}
