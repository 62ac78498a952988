package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCluster(t *testing.T) {
	assert.Equal(t, "devnet", cluster("https://api.devnet.solana.com"))
	assert.Equal(t, "testnet", cluster("https://api.testnet.solana.com"))
	assert.Equal(t, "", cluster("https://api.mainnet-beta.solana.com"))
}

func TestExplorerURL(t *testing.T) {
	assert.Equal(t,
		"https://explorer.solana.com/address/abc?cluster=devnet",
		explorerURL("address", "abc", "devnet"))
	assert.Equal(t,
		"https://explorer.solana.com/tx/sig123",
		explorerURL("tx", "sig123", ""))
}

func TestConfirm(t *testing.T) {
	assert.True(t, confirm(strings.NewReader("y\n")))
	assert.True(t, confirm(strings.NewReader("YES\n")))
	assert.False(t, confirm(strings.NewReader("n\n")))
	assert.False(t, confirm(strings.NewReader("\n")))
	assert.False(t, confirm(strings.NewReader("")))
}

func TestQuoteRejectsUnknownPair(t *testing.T) {
	app := NewApp()
	var out, errOut strings.Builder
	app.stdout = &out
	app.stderr = &errOut

	code := app.Execute([]string{"quote", "DOGE", "USDC", "1"})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "unknown token pair")
}

func TestQuoteRejectsUnknownProvider(t *testing.T) {
	app := NewApp()
	var out, errOut strings.Builder
	app.stdout = &out
	app.stderr = &errOut

	code := app.Execute([]string{"quote", "--provider", "raydium", "SOL", "USDC", "1"})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "unsupported quote provider")
}
