// Package cli wires the treasury subcommands over the shared provider stack.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"

	"github.com/walt-openclaw/treasuryagent/internal/agent"
	"github.com/walt-openclaw/treasuryagent/internal/chain"
	"github.com/walt-openclaw/treasuryagent/internal/config"
	"github.com/walt-openclaw/treasuryagent/internal/executor"
	"github.com/walt-openclaw/treasuryagent/internal/jupiter"
	"github.com/walt-openclaw/treasuryagent/internal/kamino"
	"github.com/walt-openclaw/treasuryagent/internal/logging"
	"github.com/walt-openclaw/treasuryagent/internal/metrics"
	"github.com/walt-openclaw/treasuryagent/internal/risk"
	"github.com/walt-openclaw/treasuryagent/internal/traces"
	"github.com/walt-openclaw/treasuryagent/internal/wallet"
)

// App carries the process-wide state the subcommands share. Writers are
// injectable for tests.
type App struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger

	shutdownTraces func(context.Context) error
}

// NewApp creates an App bound to the process streams.
func NewApp() *App {
	return &App{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

// Execute runs the CLI and returns the process exit code.
func (a *App) Execute(args []string) int {
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	if a.shutdownTraces != nil {
		_ = a.shutdownTraces(context.Background())
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "treasury",
		Short: "Natural-language Solana treasury agent",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			a.cfg = cfg
			a.logger = logging.New(cfg.LogLevel, cfg.LogFormat)

			shutdown, err := traces.Init(cmd.Context(), cfg.OTLPEndpoint, a.logger)
			if err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}
			a.shutdownTraces = shutdown

			if cfg.MetricsAddr != "" {
				go func() {
					if err := metrics.Serve(cmd.Context(), cfg.MetricsAddr, a.logger); err != nil {
						a.logger.Error("metrics listener failed", "error", err)
					}
				}()
			}
			return nil
		},
	}

	root.AddCommand(
		a.newBalanceCommand(),
		a.newPortfolioCommand(),
		a.newFundCommand(),
		a.newQuoteCommand(),
		a.newSwapCommand(),
		a.newAgentCommand(),
		a.newMCPCommand(),
	)
	return root
}

// rpcClient returns a fresh RPC client for the configured endpoint.
func (a *App) rpcClient() *rpc.Client {
	return rpc.New(a.cfg.RPCURL)
}

// loadWallet is fatal-on-miss: every executing command needs a key.
func (a *App) loadWallet() (*wallet.Wallet, error) {
	w, err := wallet.Load(a.cfg.KeypairPath)
	if err != nil {
		return nil, fmt.Errorf("load wallet (set SOLANA_KEYPAIR_PATH): %w", err)
	}
	return w, nil
}

// buildDeps assembles the full provider stack behind the executor.
func (a *App) buildDeps() (executor.Deps, error) {
	w, err := a.loadWallet()
	if err != nil {
		return executor.Deps{}, err
	}

	client := a.rpcClient()
	sender := chain.NewSender(client)
	jup := jupiter.NewClient(
		jupiter.WithBaseURL(a.cfg.JupiterAPIURL),
		jupiter.WithSlippageBps(a.cfg.SlippageBps),
	)

	return executor.Deps{
		Chain:     client,
		Swap:      jup,
		Lender:    kamino.NewClient(client, sender, a.logger),
		Broadcast: sender,
		Wallet:    w,
		Logger:    a.logger,
	}, nil
}

func (a *App) policy() risk.Policy {
	p := risk.DefaultPolicy()
	p.MaxTransactionSOL = a.cfg.MaxTransactionSOL
	p.MinReserveSOL = a.cfg.MinReserveSOL
	p.RequireConfirmation = a.cfg.RequireConfirmation
	return p
}

func (a *App) buildAgent() (*agent.Agent, executor.Deps, error) {
	deps, err := a.buildDeps()
	if err != nil {
		return nil, executor.Deps{}, err
	}
	return agent.New(deps, a.policy(), a.logger), deps, nil
}

// cluster maps the RPC endpoint to the explorer's cluster query parameter,
// empty for mainnet.
func cluster(rpcURL string) string {
	switch {
	case strings.Contains(rpcURL, "devnet"):
		return "devnet"
	case strings.Contains(rpcURL, "testnet"):
		return "testnet"
	}
	return ""
}

// explorerURL links an address or transaction on the Solana explorer.
func explorerURL(kind, id, clusterName string) string {
	u := fmt.Sprintf("https://explorer.solana.com/%s/%s", kind, id)
	if clusterName != "" {
		u += "?cluster=" + clusterName
	}
	return u
}
