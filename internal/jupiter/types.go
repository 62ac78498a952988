package jupiter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuoteResponse is a Jupiter v6 quote: a proposed rate and route for a swap,
// valid for a short window. The raw payload is retained so the swap
// transaction is built against this exact quote.
type QuoteResponse struct {
	InputMint            string      `json:"inputMint"`
	InAmount             string      `json:"inAmount"`
	OutputMint           string      `json:"outputMint"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SwapMode             string      `json:"swapMode"`
	SlippageBps          int         `json:"slippageBps"`
	PriceImpactPct       string      `json:"priceImpactPct"`
	RoutePlan            []RouteStep `json:"routePlan"`

	raw json.RawMessage
}

// RouteStep is one hop of the quoted route.
type RouteStep struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
}

// SwapInfo describes the AMM a hop routes through.
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// RouteLabels renders the route as "Orca -> Raydium" style text.
func (q *QuoteResponse) RouteLabels() string {
	labels := make([]string, 0, len(q.RoutePlan))
	for _, step := range q.RoutePlan {
		labels = append(labels, step.SwapInfo.Label)
	}
	return strings.Join(labels, " -> ")
}

// swapRequest is the POST /swap body.
type swapRequest struct {
	QuoteResponse                 json.RawMessage `json:"quoteResponse"`
	UserPublicKey                 string          `json:"userPublicKey"`
	WrapAndUnwrapSol              bool            `json:"wrapAndUnwrapSol"`
	ComputeUnitPriceMicroLamports int             `json:"computeUnitPriceMicroLamports"`
	AsLegacyTransaction           bool            `json:"asLegacyTransaction"`
}

// swapResponse is the POST /swap reply.
type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// APIError carries the upstream status and diagnostic body.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jupiter: %s failed: status %d: %s", e.Op, e.Status, e.Body)
}
