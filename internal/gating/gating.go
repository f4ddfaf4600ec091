package gating

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dayjobfun/dayjob/backend/go-services/pkg/logger"
)

// Predicate decides whether a wallet may publish a gated (JOB) listing.
// Backed by an external balance snapshot, it is eventually consistent: a false
// negative from snapshot lag is accepted behavior, not an error.
type Predicate interface {
	Check(ctx context.Context, wallet string) bool
}

// TokenGate gates on the total balance of an SPL token across all of the
// wallet's token accounts. An unconfigured mint or any RPC failure closes the
// gate rather than failing the caller.
type TokenGate struct {
	rpcURL   string
	mint     string
	required float64
	http     *http.Client
}

func NewTokenGate(rpcURL, mint string, required float64) *TokenGate {
	return &TokenGate{
		rpcURL:   rpcURL,
		mint:     mint,
		required: required,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *TokenGate) Check(ctx context.Context, wallet string) bool {
	balance, err := g.Balance(ctx, wallet)
	if err != nil {
		logger.Warnf("token gate check failed for %s: %v", wallet, err)
		return false
	}
	return balance >= g.required
}

// Required returns the configured minimum balance.
func (g *TokenGate) Required() float64 { return g.required }

// Balance sums uiAmount over the wallet's token accounts for the gating mint.
func (g *TokenGate) Balance(ctx context.Context, wallet string) (float64, error) {
	if g.mint == "" {
		logger.Warnf("gating token mint not configured; denying access")
		return 0, nil
	}

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "getTokenAccountsByOwner",
		"params": []any{
			wallet,
			map[string]string{"mint": g.mint},
			map[string]string{"encoding": "jsonParsed", "commitment": "confirmed"},
		},
	})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.rpcURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("token accounts lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("token accounts lookup: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Result struct {
			Value []struct {
				Account struct {
					Data struct {
						Parsed struct {
							Info struct {
								TokenAmount struct {
									UIAmount *float64 `json:"uiAmount"`
								} `json:"tokenAmount"`
							} `json:"info"`
						} `json:"parsed"`
					} `json:"data"`
				} `json:"account"`
			} `json:"value"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("token accounts lookup: decode: %w", err)
	}
	if out.Error != nil {
		return 0, fmt.Errorf("token accounts lookup: %d %s", out.Error.Code, out.Error.Message)
	}

	var total float64
	for _, v := range out.Result.Value {
		if amt := v.Account.Data.Parsed.Info.TokenAmount.UIAmount; amt != nil {
			total += *amt
		}
	}
	return total, nil
}
