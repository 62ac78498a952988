package kamino

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walt-openclaw/treasuryagent/internal/chain"
	"github.com/walt-openclaw/treasuryagent/internal/wallet"
)

type fakeChain struct {
	accountExists bool
	sendCalls     int
}

func (f *fakeChain) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	return &rpc.GetBalanceResult{}, nil
}

func (f *fakeChain) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	if f.accountExists {
		return &rpc.GetAccountInfoResult{}, nil
	}
	return nil, rpc.ErrNotFound
}

func (f *fakeChain) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{Value: &rpc.LatestBlockhashResult{}}, nil
}

func (f *fakeChain) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	f.sendCalls++
	return solana.Signature{}, nil
}

func (f *fakeChain) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{
		{ConfirmationStatus: rpc.ConfirmationStatusConfirmed},
	}}, nil
}

func (f *fakeChain) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func (f *fakeChain) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error) {
	return &rpc.GetTokenAccountBalanceResult{}, nil
}

func testClient(t *testing.T, fc *fakeChain) (*Client, *wallet.Wallet) {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	sender := chain.NewSender(fc, chain.WithPollDelay(time.Millisecond), chain.WithConfirmAttempts(3))
	return NewClient(fc, sender, slog.Default()), wallet.New(key)
}

func TestDepositExistingAccount(t *testing.T) {
	fc := &fakeChain{accountExists: true}
	c, w := testClient(t, fc)

	result, err := c.Deposit(context.Background(), w, "USDC", 100)
	require.NoError(t, err)

	assert.Equal(t, "simulated", result.Status)
	assert.Equal(t, "USDC", result.Token)
	assert.Equal(t, 100.0, result.Amount)
	assert.Contains(t, result.Signature, "kamino_deposit_")
	assert.Equal(t, vaults["USDC"].String(), result.Vault)
	assert.Zero(t, fc.sendCalls, "no transaction when the token account exists")
}

func TestDepositCreatesTokenAccount(t *testing.T) {
	fc := &fakeChain{accountExists: false}
	c, w := testClient(t, fc)

	result, err := c.Deposit(context.Background(), w, "USDC", 50)
	require.NoError(t, err)

	assert.Equal(t, "simulated", result.Status)
	assert.Equal(t, 1, fc.sendCalls, "missing token account should be created on-chain")
}

func TestDepositUnsupportedToken(t *testing.T) {
	c, w := testClient(t, &fakeChain{})

	_, err := c.Deposit(context.Background(), w, "DOGE", 1)
	assert.ErrorIs(t, err, ErrUnsupportedToken)
}

func TestWithdraw(t *testing.T) {
	fc := &fakeChain{}
	c, w := testClient(t, fc)

	result, err := c.Withdraw(context.Background(), w, "SOL", 2)
	require.NoError(t, err)

	assert.Equal(t, "simulated", result.Status)
	assert.Contains(t, result.Signature, "kamino_withdraw_")
	assert.Zero(t, fc.sendCalls)

	_, err = c.Withdraw(context.Background(), w, "PEPE", 1)
	assert.ErrorIs(t, err, ErrUnsupportedToken)
}

func TestPosition(t *testing.T) {
	c, w := testClient(t, &fakeChain{})

	pos, err := c.Position(context.Background(), w.PublicKey(), "USDC")
	require.NoError(t, err)
	assert.Equal(t, 8.5, pos.APY)
	assert.Zero(t, pos.Deposited)

	_, err = c.Position(context.Background(), w.PublicKey(), "DOGE")
	assert.ErrorIs(t, err, ErrUnsupportedToken)
}

func TestAPY(t *testing.T) {
	c, _ := testClient(t, &fakeChain{})
	assert.Equal(t, 6.2, c.APY(context.Background(), "SOL"))
	assert.Zero(t, c.APY(context.Background(), "DOGE"))
}
