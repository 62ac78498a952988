// Package kamino manages yield positions on Kamino lending vaults.
//
// Deposits and withdrawals are currently simulated: the client verifies or
// creates the associated token account on-chain, then returns a synthetic
// transaction identifier with a "simulated" status. Real vault-program
// instructions are pending Kamino program integration.
package kamino

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	ata "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/walt-openclaw/treasuryagent/internal/chain"
	"github.com/walt-openclaw/treasuryagent/internal/token"
	"github.com/walt-openclaw/treasuryagent/internal/wallet"
)

// ProgramID is the Kamino lending program.
var ProgramID = solana.MustPublicKeyFromBase58("6LtLpnUFNByNXLyCoK9wA2MykKAmQNZKBdK8Bu9fPdg")

// Mainnet lending vaults by token symbol.
var vaults = map[string]solana.PublicKey{
	"USDC": solana.MustPublicKeyFromBase58("7u3HeHxYLPxnG8mocrFWNwC8btyF6tNjkfzbEPDqz8to"),
	"SOL":  solana.MustPublicKeyFromBase58("SoLobHAiHN5dXnabBcnZCoh9iXbTgg8wcT7QYnr5yqQ"),
}

// Static APY table, placeholder pending on-chain vault state queries.
var staticAPY = map[string]float64{
	"USDC": 8.5,
	"SOL":  6.2,
}

// ErrUnsupportedToken is returned for tokens without a known vault.
var ErrUnsupportedToken = errors.New("kamino: unsupported token")

// Position is a user's claim on a lending vault.
type Position struct {
	Token     string  `json:"token"`
	Deposited float64 `json:"deposited"`
	Earned    float64 `json:"earned"`
	APY       float64 `json:"apy"`
}

// VaultResult is the outcome of a deposit or withdrawal.
type VaultResult struct {
	Signature string  `json:"signature"`
	Token     string  `json:"token"`
	Amount    float64 `json:"amount"`
	Vault     string  `json:"vault"`
	Status    string  `json:"status"`
}

// Client talks to Kamino vaults.
type Client struct {
	chain  chain.Client
	sender *chain.Sender
	logger *slog.Logger
	now    func() time.Time
}

// NewClient creates a Kamino client over the given chain access.
func NewClient(c chain.Client, sender *chain.Sender, logger *slog.Logger) *Client {
	return &Client{chain: c, sender: sender, logger: logger, now: time.Now}
}

// APY returns the current lend APY for a token, 0 when unknown.
func (c *Client) APY(ctx context.Context, symbol string) float64 {
	return staticAPY[symbol]
}

// Position returns the wallet's vault position for a token.
func (c *Client) Position(ctx context.Context, owner solana.PublicKey, symbol string) (*Position, error) {
	if _, ok := vaults[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedToken, symbol)
	}
	// Share-account queries are pending vault integration; the position is
	// empty until a real deposit instruction exists.
	return &Position{
		Token: symbol,
		APY:   c.APY(ctx, symbol),
	}, nil
}

// Deposit supplies tokens to a lending vault. The associated token account is
// created on-chain when missing; the deposit itself is simulated.
func (c *Client) Deposit(ctx context.Context, w *wallet.Wallet, symbol string, amount float64) (*VaultResult, error) {
	vault, ok := vaults[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedToken, symbol)
	}

	if err := c.ensureTokenAccount(ctx, w, symbol); err != nil {
		return nil, fmt.Errorf("kamino: deposit: %w", err)
	}

	sig := fmt.Sprintf("kamino_deposit_%d", c.now().UnixMilli())
	c.logger.Info("deposit simulated",
		"token", symbol, "amount", amount, "vault", vault.String(), "signature", sig)

	return &VaultResult{
		Signature: sig,
		Token:     symbol,
		Amount:    amount,
		Vault:     vault.String(),
		Status:    "simulated",
	}, nil
}

// Withdraw pulls tokens from a lending vault. Simulated, like Deposit.
func (c *Client) Withdraw(ctx context.Context, w *wallet.Wallet, symbol string, amount float64) (*VaultResult, error) {
	vault, ok := vaults[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedToken, symbol)
	}

	sig := fmt.Sprintf("kamino_withdraw_%d", c.now().UnixMilli())
	c.logger.Info("withdrawal simulated",
		"token", symbol, "amount", amount, "vault", vault.String(), "signature", sig)

	return &VaultResult{
		Signature: sig,
		Token:     symbol,
		Amount:    amount,
		Vault:     vault.String(),
		Status:    "simulated",
	}, nil
}

// ensureTokenAccount creates the wallet's associated token account for the
// token's mint when it does not exist yet.
func (c *Client) ensureTokenAccount(ctx context.Context, w *wallet.Wallet, symbol string) error {
	info, ok := token.Lookup(symbol)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedToken, symbol)
	}

	account, _, err := solana.FindAssociatedTokenAddress(w.PublicKey(), info.Mint)
	if err != nil {
		return fmt.Errorf("derive token account: %w", err)
	}

	_, err = c.chain.GetAccountInfo(ctx, account)
	if err == nil {
		return nil
	}
	if !errors.Is(err, rpc.ErrNotFound) {
		return fmt.Errorf("token account lookup: %w", err)
	}

	c.logger.Info("creating token account", "account", account.String(), "mint", info.Mint.String())

	latest, err := c.chain.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return fmt.Errorf("fetch blockhash: %w", err)
	}

	inst := ata.NewCreateInstruction(w.PublicKey(), w.PublicKey(), info.Mint).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{inst},
		latest.Value.Blockhash,
		solana.TransactionPayer(w.PublicKey()),
	)
	if err != nil {
		return fmt.Errorf("build transaction: %w", err)
	}
	if _, err := tx.Sign(w.Signer()); err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := c.sender.SendAndConfirm(ctx, tx)
	if err != nil {
		return fmt.Errorf("create token account: %w", err)
	}
	c.logger.Info("token account created", "signature", sig.String())
	return nil
}
