// Package token provides the known-token registry and amount conversion.
//
// Human-readable amounts are converted to each token's smallest integral
// unit (lamports for SOL, 10^-6 units for USDC/USDT) using a fixed per-token
// decimals table. Amounts are carried as big.Int in smallest units.
package token

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = solana.LAMPORTS_PER_SOL

// Info describes a known token.
type Info struct {
	Symbol   string
	Mint     solana.PublicKey
	Decimals uint8
}

// Known token mints.
var registry = map[string]Info{
	"SOL": {
		Symbol:   "SOL",
		Mint:     solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"),
		Decimals: 9,
	},
	"USDC": {
		Symbol:   "USDC",
		Mint:     solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		Decimals: 6,
	},
	"USDT": {
		Symbol:   "USDT",
		Mint:     solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"),
		Decimals: 6,
	},
}

// Lookup returns the registry entry for a symbol (case-insensitive).
func Lookup(symbol string) (Info, bool) {
	info, ok := registry[strings.ToUpper(symbol)]
	return info, ok
}

// Symbols returns the known token symbols.
func Symbols() []string {
	return []string{"SOL", "USDC", "USDT"}
}

// ToBaseUnits converts a decimal string (e.g. "1.50") to the token's
// smallest-unit big.Int representation. Returns (nil, false) on invalid
// input or unknown symbol.
//
// Rules:
//   - Empty string returns (0, true)
//   - Negative amounts are rejected
//   - Multiple decimal points are rejected
//   - Fractional parts are padded/truncated to the token's decimals
func ToBaseUnits(symbol, s string) (*big.Int, bool) {
	info, ok := Lookup(symbol)
	if !ok {
		return nil, false
	}
	if s == "" {
		return big.NewInt(0), true
	}

	if strings.HasPrefix(s, "-") {
		return nil, false
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return nil, false
	}
	whole := parts[0]
	frac := ""
	if len(parts) > 1 {
		frac = parts[1]
	}

	decimals := int(info.Decimals)
	for len(frac) < decimals {
		frac += "0"
	}
	frac = frac[:decimals]

	combined := whole + frac
	result, ok := new(big.Int).SetString(combined, 10)
	return result, ok
}

// FromBaseUnits converts a smallest-unit big.Int to a human-readable decimal
// string with exactly the token's decimal places (e.g. "1.500000" for USDC).
func FromBaseUnits(symbol string, amount *big.Int) string {
	info, ok := Lookup(symbol)
	if !ok {
		return "0"
	}
	decimals := int(info.Decimals)
	if amount == nil {
		return "0." + strings.Repeat("0", decimals)
	}
	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)
	s := abs.String()
	for len(s) < decimals+1 {
		s = "0" + s
	}
	point := len(s) - decimals
	result := s[:point] + "." + s[point:]
	if neg {
		result = "-" + result
	}
	return result
}

// FloatToBaseUnits converts a float amount to the token's smallest unit.
// Returns an error for unknown symbols or negative amounts.
func FloatToBaseUnits(symbol string, amount float64) (uint64, error) {
	info, ok := Lookup(symbol)
	if !ok {
		return 0, fmt.Errorf("token: unknown symbol %q", symbol)
	}
	if amount < 0 {
		return 0, fmt.Errorf("token: negative amount %f", amount)
	}
	scale := float64(pow10(info.Decimals))
	return uint64(amount * scale), nil
}

// SOLToLamports converts a SOL-denominated float to lamports.
func SOLToLamports(sol float64) uint64 {
	return uint64(sol * float64(LamportsPerSOL))
}

// LamportsToSOL converts lamports to a SOL-denominated float.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / float64(LamportsPerSOL)
}

func pow10(n uint8) uint64 {
	out := uint64(1)
	for i := uint8(0); i < n; i++ {
		out *= 10
	}
	return out
}
