// Package jupiter is a client for the Jupiter v6 swap aggregator API.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
)

// DefaultBaseURL is the public Jupiter v6 endpoint.
const DefaultBaseURL = "https://quote-api.jup.ag/v6"

// DefaultSlippageBps is the default tolerated price deviation (0.5%).
const DefaultSlippageBps = 50

// computeUnitPriceMicroLamports is the priority-fee price attached to swap
// transactions.
const computeUnitPriceMicroLamports = 1000

// Client talks to the Jupiter quote/swap API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	slippageBps int
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL points the client at a non-default endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSlippageBps overrides the default slippage tolerance.
func WithSlippageBps(bps int) Option {
	return func(c *Client) { c.slippageBps = bps }
}

// NewClient creates a Jupiter API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		slippageBps: DefaultSlippageBps,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote requests a price quote for swapping amount (in the input token's
// smallest units) between the two mints.
func (c *Client) Quote(ctx context.Context, inputMint, outputMint solana.PublicKey, amount uint64) (*QuoteResponse, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint.String())
	params.Set("outputMint", outputMint.String())
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("slippageBps", strconv.Itoa(c.slippageBps))
	params.Set("onlyDirectRoutes", "false")
	params.Set("asLegacyTransaction", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("jupiter: create quote request: %w", err)
	}

	body, err := c.do(req, "quote")
	if err != nil {
		return nil, err
	}

	var quote QuoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("jupiter: decode quote: %w", err)
	}
	quote.raw = body
	return &quote, nil
}

// SwapTransaction asks Jupiter to build a serialized, unsigned transaction
// against the exact quote previously returned. The result is base64.
func (c *Client) SwapTransaction(ctx context.Context, quote *QuoteResponse, user solana.PublicKey) (string, error) {
	if quote == nil || quote.raw == nil {
		return "", fmt.Errorf("jupiter: swap transaction requires a quote from this client")
	}

	payload, err := json.Marshal(swapRequest{
		QuoteResponse:                 quote.raw,
		UserPublicKey:                 user.String(),
		WrapAndUnwrapSol:              true,
		ComputeUnitPriceMicroLamports: computeUnitPriceMicroLamports,
		AsLegacyTransaction:           false,
	})
	if err != nil {
		return "", fmt.Errorf("jupiter: marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("jupiter: create swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, "swap")
	if err != nil {
		return "", err
	}

	var resp swapResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("jupiter: decode swap response: %w", err)
	}
	if resp.SwapTransaction == "" {
		return "", fmt.Errorf("jupiter: swap response missing transaction")
	}
	return resp.SwapTransaction, nil
}

// do executes the request and returns the body, surfacing non-2xx statuses
// as *APIError with the upstream diagnostic payload.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupiter: %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jupiter: read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
