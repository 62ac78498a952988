package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	mcpgo "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/walt-openclaw/treasuryagent/internal/chain"
	"github.com/walt-openclaw/treasuryagent/internal/executor"
	"github.com/walt-openclaw/treasuryagent/internal/intent"
	"github.com/walt-openclaw/treasuryagent/internal/mcpserver"
	"github.com/walt-openclaw/treasuryagent/internal/risk"
	"github.com/walt-openclaw/treasuryagent/internal/token"
)

// Public endpoints per named network, used by the balance --network override.
var networkEndpoints = map[string]string{
	"devnet":  "https://api.devnet.solana.com",
	"testnet": "https://api.testnet.solana.com",
	"mainnet": "https://api.mainnet-beta.solana.com",
}

func (a *App) newBalanceCommand() *cobra.Command {
	var network string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the wallet's SOL balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			rpcURL := a.cfg.RPCURL
			if network != "" {
				u, ok := networkEndpoints[network]
				if !ok {
					return fmt.Errorf("unknown network %q (devnet, testnet, mainnet)", network)
				}
				rpcURL = u
			}

			w, err := a.loadWallet()
			if err != nil {
				return err
			}
			client := rpc.New(rpcURL)

			out, err := client.GetBalance(cmd.Context(), w.PublicKey(), rpc.CommitmentConfirmed)
			if err != nil {
				return fmt.Errorf("balance query: %w", err)
			}

			clusterName := cluster(rpcURL)
			fmt.Fprintf(a.stdout, "Address:  %s\n", w.Address())
			fmt.Fprintf(a.stdout, "Balance:  %.9f SOL (%d lamports)\n",
				token.LamportsToSOL(out.Value), out.Value)
			fmt.Fprintf(a.stdout, "Explorer: %s\n", explorerURL("address", w.Address(), clusterName))
			if out.Value == 0 && clusterName == "devnet" {
				fmt.Fprintln(a.stdout, "\nBalance is zero. Run: treasury fund")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "query a named network instead of the configured endpoint")
	return cmd
}

func (a *App) newPortfolioCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show SOL and SPL token balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.loadWallet()
			if err != nil {
				return err
			}
			client := a.rpcClient()

			out, err := client.GetBalance(cmd.Context(), w.PublicKey(), rpc.CommitmentConfirmed)
			if err != nil {
				return fmt.Errorf("balance query: %w", err)
			}

			fmt.Fprintf(a.stdout, "Wallet %s\n\n", w.Address())
			fmt.Fprintf(a.stdout, "  SOL   %.9f\n", token.LamportsToSOL(out.Value))

			for _, symbol := range token.Symbols() {
				if symbol == "SOL" {
					continue
				}
				info, _ := token.Lookup(symbol)
				account, _, err := solana.FindAssociatedTokenAddress(w.PublicKey(), info.Mint)
				if err != nil {
					return fmt.Errorf("derive %s token account: %w", symbol, err)
				}

				bal, err := client.GetTokenAccountBalance(cmd.Context(), account, rpc.CommitmentConfirmed)
				if err != nil {
					// No token account yet means a zero holding.
					fmt.Fprintf(a.stdout, "  %-5s 0 (no token account)\n", symbol)
					continue
				}
				fmt.Fprintf(a.stdout, "  %-5s %s\n", symbol, bal.Value.UiAmountString)
			}
			return nil
		},
	}
}

func (a *App) newFundCommand() *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Request a devnet airdrop",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cluster(a.cfg.RPCURL) == "" {
				return errors.New("airdrops are only available on devnet or testnet")
			}
			if amount <= 0 {
				return errors.New("--amount must be positive")
			}

			w, err := a.loadWallet()
			if err != nil {
				return err
			}
			client := a.rpcClient()
			sender := chain.NewSender(client)

			lamports := token.SOLToLamports(amount)
			fmt.Fprintf(a.stdout, "Requesting %.2f SOL airdrop for %s...\n", amount, w.Address())

			sig, err := client.RequestAirdrop(cmd.Context(), w.PublicKey(), lamports, rpc.CommitmentConfirmed)
			if err != nil {
				return fmt.Errorf("airdrop request: %w", err)
			}
			if err := sender.Confirm(cmd.Context(), sig); err != nil {
				return fmt.Errorf("airdrop confirmation: %w", err)
			}

			fmt.Fprintf(a.stdout, "Airdrop confirmed: %s\n", sig.String())
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 1.0, "airdrop amount in SOL")
	return cmd
}

func (a *App) newQuoteCommand() *cobra.Command {
	var provider string
	var raw bool

	cmd := &cobra.Command{
		Use:   "quote FROM TO AMOUNT",
		Short: "Fetch a swap quote without executing",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider != "jupiter" {
				return fmt.Errorf("unsupported quote provider %q", provider)
			}

			from, to := strings.ToUpper(args[0]), strings.ToUpper(args[1])
			fromInfo, okFrom := token.Lookup(from)
			toInfo, okTo := token.Lookup(to)
			if !okFrom || !okTo {
				return fmt.Errorf("unknown token pair %s -> %s (known: %s)",
					from, to, strings.Join(token.Symbols(), ", "))
			}

			amount, err := strconv.ParseFloat(args[2], 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("invalid amount %q", args[2])
			}
			baseUnits, err := token.FloatToBaseUnits(from, amount)
			if err != nil {
				return err
			}

			deps, err := a.buildDeps()
			if err != nil {
				return err
			}
			quote, err := deps.Swap.Quote(cmd.Context(), fromInfo.Mint, toInfo.Mint, baseUnits)
			if err != nil {
				return fmt.Errorf("quote: %w", err)
			}

			if raw {
				payload, err := json.MarshalIndent(quote, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, string(payload))
				return nil
			}

			fmt.Fprintf(a.stdout, "Quote %g %s -> %s\n", amount, from, to)
			fmt.Fprintf(a.stdout, "  out:          %s base units\n", quote.OutAmount)
			fmt.Fprintf(a.stdout, "  min out:      %s base units\n", quote.OtherAmountThreshold)
			fmt.Fprintf(a.stdout, "  price impact: %s%%\n", quote.PriceImpactPct)
			fmt.Fprintf(a.stdout, "  slippage:     %d bps\n", quote.SlippageBps)
			if route := quote.RouteLabels(); route != "" {
				fmt.Fprintf(a.stdout, "  route:        %s\n", route)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "jupiter", "quote provider")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw quote response")
	return cmd
}

func (a *App) newSwapCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "swap FROM TO AMOUNT",
		Short: "Execute a risk-gated token swap",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := strings.ToUpper(args[0]), strings.ToUpper(args[1])
			amount, err := strconv.ParseFloat(args[2], 64)
			if err != nil || amount <= 0 {
				return fmt.Errorf("invalid amount %q", args[2])
			}

			deps, err := a.buildDeps()
			if err != nil {
				return err
			}

			in := intent.Intent{
				Type:       intent.TypeSwap,
				Amount:     &amount,
				Unit:       from,
				Tokens:     intent.TokenPair{From: from, To: to},
				Raw:        fmt.Sprintf("swap %g %s to %s", amount, from, to),
				Confidence: 1,
			}

			balance, err := deps.Chain.GetBalance(cmd.Context(), deps.Wallet.PublicKey(), rpc.CommitmentConfirmed)
			if err != nil {
				return fmt.Errorf("balance query: %w", err)
			}

			// One-shot command, no breaker state: the lightweight gate with
			// the same policy values suffices.
			ok, reason := risk.Check(a.policy(), in, balance.Value)
			if !ok {
				return fmt.Errorf("swap rejected: %s", reason)
			}

			if a.cfg.RequireConfirmation && !yes {
				fmt.Fprintf(a.stdout, "Swap %g %s to %s. Proceed? [y/N] ", amount, from, to)
				if !confirm(a.stdin) {
					fmt.Fprintln(a.stdout, "aborted")
					return nil
				}
			}

			result, err := executor.Execute(cmd.Context(), deps, in)
			if err != nil {
				return err
			}

			clusterName := cluster(a.cfg.RPCURL)
			fmt.Fprintf(a.stdout, "Swap confirmed: %s\n", result.Signature)
			fmt.Fprintf(a.stdout, "  in:    %s\n", result.InputAmount)
			fmt.Fprintf(a.stdout, "  out:   %s\n", result.OutputAmount)
			fmt.Fprintf(a.stdout, "  route: %s\n", result.Route)
			fmt.Fprintf(a.stdout, "  %s\n", explorerURL("tx", result.Signature, clusterName))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func (a *App) newAgentCommand() *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run the interactive natural-language agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ag, _, err := a.buildAgent()
			if err != nil {
				return err
			}
			if demo {
				return ag.Demo(cmd.Context(), a.stdout)
			}
			return ag.Run(cmd.Context(), a.stdin, a.stdout)
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "run the scripted demo instead of the interactive loop")
	return cmd
}

func (a *App) newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the agent's tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ag, deps, err := a.buildAgent()
			if err != nil {
				return err
			}
			s := mcpserver.NewMCPServer(ag, deps)
			a.logger.Info("mcp server listening on stdio")
			return mcpgo.ServeStdio(s)
		},
	}
}

// confirm reads one line and accepts y/yes, case-insensitive.
func confirm(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
