// Package chain wraps the Solana RPC client for transaction broadcast and
// confirmation. Confirmation is poll-based with a bounded retry budget.
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/walt-openclaw/treasuryagent/internal/retry"
)

// Client is the subset of the RPC client this system touches. *rpc.Client
// satisfies it.
type Client interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
}

// ErrTransactionFailed is returned when the cluster reports an on-chain error
// for a broadcast transaction.
var ErrTransactionFailed = errors.New("chain: transaction failed")

// errNotConfirmed drives the confirmation poll loop.
var errNotConfirmed = errors.New("chain: transaction not yet confirmed")

const (
	// DefaultMaxRetries is the broadcast retry budget handed to the RPC node.
	DefaultMaxRetries = uint(3)

	defaultPollDelay       = 2 * time.Second
	defaultConfirmAttempts = 20
)

// Sender broadcasts signed transactions and waits for confirmation.
type Sender struct {
	client          Client
	maxRetries      uint
	pollDelay       time.Duration
	confirmAttempts int
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithPollDelay sets the base delay between confirmation polls.
func WithPollDelay(d time.Duration) SenderOption {
	return func(s *Sender) { s.pollDelay = d }
}

// WithConfirmAttempts bounds the confirmation poll count.
func WithConfirmAttempts(n int) SenderOption {
	return func(s *Sender) { s.confirmAttempts = n }
}

// NewSender creates a Sender over the given RPC client.
func NewSender(client Client, opts ...SenderOption) *Sender {
	s := &Sender{
		client:          client,
		maxRetries:      DefaultMaxRetries,
		pollDelay:       defaultPollDelay,
		confirmAttempts: defaultConfirmAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send broadcasts a signed transaction with preflight enabled and a bounded
// node-side retry count.
func (s *Sender) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	maxRetries := s.maxRetries
	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
		MaxRetries:          &maxRetries,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("chain: broadcast failed: %w", err)
	}
	return sig, nil
}

// Confirm polls signature status until the cluster reports at least confirmed
// commitment, the transaction errors, or the poll budget runs out.
func (s *Sender) Confirm(ctx context.Context, sig solana.Signature) error {
	return retry.Do(ctx, s.confirmAttempts, s.pollDelay, func() error {
		out, err := s.client.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return fmt.Errorf("chain: status query: %w", err)
		}
		if len(out.Value) == 0 || out.Value[0] == nil {
			return errNotConfirmed
		}
		status := out.Value[0]
		if status.Err != nil {
			return retry.Permanent(fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err))
		}
		switch status.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return nil
		}
		return errNotConfirmed
	})
}

// SendAndConfirm broadcasts then waits for confirmation.
func (s *Sender) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := s.Send(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := s.Confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}
