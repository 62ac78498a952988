package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/walt-openclaw/treasuryagent/internal/agent"
	"github.com/walt-openclaw/treasuryagent/internal/executor"
	"github.com/walt-openclaw/treasuryagent/internal/intent"
	"github.com/walt-openclaw/treasuryagent/internal/token"
)

// Handlers holds the handler functions for each MCP tool. Tool failures are
// reported as tool-result errors, not transport errors, so the LLM can read
// and react to them.
type Handlers struct {
	agent *agent.Agent
	deps  executor.Deps
}

// NewHandlers creates handlers over an agent and its providers.
func NewHandlers(a *agent.Agent, deps executor.Deps) *Handlers {
	return &Handlers{agent: a, deps: deps}
}

// HandleParseCommand parses a command without executing it.
func (h *Handlers) HandleParseCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := req.GetString("command", "")
	if command == "" {
		return mcp.NewToolResultError("command is required"), nil
	}

	in := intent.Parse(command)
	v := intent.Validate(in)

	payload, err := json.MarshalIndent(struct {
		Intent intent.Intent `json:"intent"`
		Valid  bool          `json:"valid"`
		Errors []string      `json:"errors,omitempty"`
	}{in, v.Valid, v.Errors}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode intent: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// HandleCheckBalance reads the wallet's SOL balance.
func (h *Handlers) HandleCheckBalance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := h.deps.Chain.GetBalance(ctx, h.deps.Wallet.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Balance query failed: %v", err)), nil
	}

	text := fmt.Sprintf("Wallet %s\nBalance: %.9f SOL (%d lamports)",
		h.deps.Wallet.Address(), token.LamportsToSOL(out.Value), out.Value)
	return mcp.NewToolResultText(text), nil
}

// HandleGetQuote fetches a Jupiter quote without executing.
func (h *Handlers) HandleGetQuote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := strings.ToUpper(req.GetString("from", ""))
	to := strings.ToUpper(req.GetString("to", ""))
	amountText := req.GetString("amount", "")

	fromInfo, okFrom := token.Lookup(from)
	toInfo, okTo := token.Lookup(to)
	if !okFrom || !okTo {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown token pair %s -> %s; known tokens: %s",
			from, to, strings.Join(token.Symbols(), ", "))), nil
	}

	amount, err := strconv.ParseFloat(amountText, 64)
	if err != nil || amount <= 0 {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid amount %q", amountText)), nil
	}

	baseUnits, err := token.FloatToBaseUnits(from, amount)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid amount: %v", err)), nil
	}

	quote, err := h.deps.Swap.Quote(ctx, fromInfo.Mint, toInfo.Mint, baseUnits)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Quote failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Quote: %s %s -> %s\n", amountText, from, to)
	fmt.Fprintf(&b, "Output: %s base units of %s\n", quote.OutAmount, to)
	fmt.Fprintf(&b, "Price impact: %s%%\n", quote.PriceImpactPct)
	if route := quote.RouteLabels(); route != "" {
		fmt.Fprintf(&b, "Route: %s\n", route)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// HandleGetPosition reads the wallet's lending position.
func (h *Handlers) HandleGetPosition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol := strings.ToUpper(req.GetString("token", "USDC"))

	pos, err := h.deps.Lender.Position(ctx, h.deps.Wallet.PublicKey(), symbol)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Position query failed: %v", err)), nil
	}

	text := fmt.Sprintf("%s position: %g deposited, %g earned, %.2f%% APY",
		pos.Token, pos.Deposited, pos.Earned, pos.APY)
	return mcp.NewToolResultText(text), nil
}

// HandleExecuteCommand runs a command through parse, assessment, and
// execution. Rejections come back as readable refusals.
func (h *Handlers) HandleExecuteCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := req.GetString("command", "")
	if command == "" {
		return mcp.NewToolResultError("command is required"), nil
	}

	resp, err := h.agent.ProcessCommand(ctx, command)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Execution failed: %v", err)), nil
	}

	var body string
	switch {
	case resp.Help != "":
		body = resp.Help
	case resp.Assessment != nil && !resp.Assessment.Approved:
		body = formatRejection(resp.Assessment.Reasons)
	default:
		body = formatResult(resp.Result)
	}
	if len(resp.Warnings) > 0 {
		body = "Notes:\n- " + strings.Join(resp.Warnings, "\n- ") + "\n\n" + body
	}
	return mcp.NewToolResultText(body), nil
}

func formatRejection(reasons []string) string {
	var b strings.Builder
	b.WriteString("Refused by risk assessment:\n")
	for _, reason := range reasons {
		fmt.Fprintf(&b, "- %s\n", reason)
	}
	return b.String()
}

func formatResult(result *executor.Result) string {
	switch result.Type {
	case intent.TypeBalance:
		return fmt.Sprintf("Balance of %s: %.9f SOL", result.Address, result.BalanceSOL)
	case intent.TypeSwap:
		return fmt.Sprintf("Swap confirmed.\nSignature: %s\nIn: %s\nOut: %s\nRoute: %s",
			result.Signature, result.InputAmount, result.OutputAmount, result.Route)
	case intent.TypePosition:
		pos := result.Position
		return fmt.Sprintf("%s position: %g deposited, %g earned, %.2f%% APY",
			pos.Token, pos.Deposited, pos.Earned, result.APY)
	case intent.TypeStake:
		return "Staking is not available yet; nothing was executed."
	default:
		return fmt.Sprintf("%s %s\nSignature: %s", result.Type, result.Status, result.Signature)
	}
}
