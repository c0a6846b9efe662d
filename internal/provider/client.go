package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/swaplab/swap-history/internal/core/swap"
)

// Client talks to the swap status provider over HTTP. It implements the
// poller's Refresher interface.
//
// Contract: GET {addr}/v1/accounts/{id}/swaps returns 200 with the full
// refreshed account snapshot, or 204 when nothing changed since the last
// poll. Any other status is a per-account refresh failure.
type Client struct {
	addr string
	http *resty.Client
}

// NewClient creates a provider client for the given base address.
func NewClient(addr string, timeout time.Duration) *Client {
	return &Client{
		addr: addr,
		http: resty.New().SetTimeout(timeout),
	}
}

// RefreshAccount requests updated statuses for every operation of one
// account. Returns changed=false when the provider reports no change.
func (c *Client) RefreshAccount(ctx context.Context, account swap.Account) (swap.Account, bool, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/v1/accounts/%s/swaps", c.addr, account.ID))
	if err != nil {
		return swap.Account{}, false, fmt.Errorf("refresh account %s: %w", account.ID, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		var fresh swap.Account
		if err := json.Unmarshal(resp.Body(), &fresh); err != nil {
			return swap.Account{}, false, fmt.Errorf("decode account %s: %w", account.ID, err)
		}
		if fresh.ID == "" {
			fresh.ID = account.ID
		}
		if err := fresh.Validate(); err != nil {
			return swap.Account{}, false, fmt.Errorf("invalid refresh payload for account %s: %w", account.ID, err)
		}
		return fresh, true, nil
	case http.StatusNoContent, http.StatusNotModified:
		return swap.Account{}, false, nil
	default:
		return swap.Account{}, false, fmt.Errorf("refresh account %s: provider status %d", account.ID, resp.StatusCode())
	}
}
