package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeypairFile(t *testing.T, key solana.PrivateKey) string {
	t.Helper()
	data, err := json.Marshal([]byte(key))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "keypair.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoad(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	path := writeKeypairFile(t, key)

	w, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey())
	assert.Equal(t, key.PublicKey().String(), w.Address())
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load("")
	assert.ErrorIs(t, err, ErrNoKeypairPath)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("not a keypair"), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidKeypair)
}

func TestSigner(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w := New(key)

	signer := w.Signer()
	assert.NotNil(t, signer(w.PublicKey()))

	other, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	assert.Nil(t, signer(other.PublicKey()))
}

type fakeBalanceReader struct {
	lamports uint64
	err      error
}

func (f *fakeBalanceReader) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.GetBalanceResult{Value: f.lamports}, nil
}

func TestBalance(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w := New(key)

	reader := &fakeBalanceReader{lamports: 1_500_000_000}

	lamports, err := w.BalanceLamports(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), lamports)

	sol, err := w.BalanceSOL(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, 1.5, sol)

	reader.err = errors.New("rpc down")
	_, err = w.BalanceLamports(context.Background(), reader)
	assert.Error(t, err)
}
