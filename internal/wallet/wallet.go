// Package wallet loads the local Solana keypair and reads its balance.
//
// Signing itself is delegated to the keypair primitive; this package only
// exposes the signer callback that transaction builders expect.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/walt-openclaw/treasuryagent/internal/token"
)

// Typed errors for programmatic handling.
var (
	ErrNoKeypairPath  = errors.New("wallet: keypair path not configured")
	ErrInvalidKeypair = errors.New("wallet: invalid keypair file")
)

// BalanceReader reads on-chain lamport balances. *rpc.Client satisfies it.
type BalanceReader interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
}

// Wallet wraps a loaded keypair.
type Wallet struct {
	key solana.PrivateKey
	pub solana.PublicKey
}

// Load reads a Solana keygen JSON file (the standard 64-byte array format)
// from path.
func Load(path string) (*Wallet, error) {
	if path == "" {
		return nil, ErrNoKeypairPath
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	return New(key), nil
}

// New wraps an already-loaded private key.
func New(key solana.PrivateKey) *Wallet {
	return &Wallet{key: key, pub: key.PublicKey()}
}

// PublicKey returns the wallet's public key.
func (w *Wallet) PublicKey() solana.PublicKey { return w.pub }

// Address returns the base58 wallet address.
func (w *Wallet) Address() string { return w.pub.String() }

// Signer returns the key-lookup callback used by solana.Transaction.Sign.
func (w *Wallet) Signer() func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.key
		}
		return nil
	}
}

// BalanceLamports fetches the wallet's confirmed lamport balance.
func (w *Wallet) BalanceLamports(ctx context.Context, reader BalanceReader) (uint64, error) {
	out, err := reader.GetBalance(ctx, w.pub, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("wallet: balance query failed: %w", err)
	}
	return out.Value, nil
}

// BalanceSOL fetches the balance as a SOL-denominated figure.
func (w *Wallet) BalanceSOL(ctx context.Context, reader BalanceReader) (float64, error) {
	lamports, err := w.BalanceLamports(ctx, reader)
	if err != nil {
		return 0, err
	}
	return token.LamportsToSOL(lamports), nil
}
