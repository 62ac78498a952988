// Package intent converts free-text wallet commands into structured intents.
package intent

// Type classifies what the user asked for.
type Type string

const (
	TypeSwap     Type = "swap"
	TypeStake    Type = "stake"
	TypeLend     Type = "lend"
	TypeWithdraw Type = "withdraw"
	TypeBalance  Type = "balance"
	TypePosition Type = "position"
	TypeUnknown  Type = "unknown"
)

// Known protocol hints.
const (
	ProtocolJupiter = "jupiter"
	ProtocolKamino  = "kamino"
	ProtocolJito    = "jito"
)

// UnitPercent marks a percentage amount rather than a token quantity.
const UnitPercent = "%"

// TokenPair is the source/destination legs of a swap. Either side may be
// empty when the text could not be disambiguated.
type TokenPair struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Intent is the parsed representation of one user command. It is constructed
// fresh per command and immutable after construction.
type Intent struct {
	Type       Type      `json:"type"`
	Amount     *float64  `json:"amount,omitempty"`
	Unit       string    `json:"unit"`
	Tokens     TokenPair `json:"tokens"`
	Protocol   string    `json:"protocol,omitempty"`
	Raw        string    `json:"raw"`
	Confidence float64   `json:"confidence"`
}

// AmountValue returns the parsed amount, or 0 when none was stated.
func (in Intent) AmountValue() float64 {
	if in.Amount == nil {
		return 0
	}
	return *in.Amount
}

// HasAmount reports whether the command stated a quantity.
func (in Intent) HasAmount() bool {
	return in.Amount != nil
}
