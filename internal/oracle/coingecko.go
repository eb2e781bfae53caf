// Package oracle resolves token prices through the CoinGecko simple price API.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
)

const priceCacheTTL = 60 * time.Second

// coinIDs maps a token symbol to its CoinGecko coin id. Symbols outside
// this map price at zero without touching the network.
var coinIDs = map[string]string{
	"aave": "aave",
	"gmx":  "gmx",
	"rdnt": "radiant-capital",
}

// metricCache is the slice of the cache this client uses. *cache.Cache
// satisfies it.
type metricCache interface {
	GetFloat(ctx context.Context, key string) (float64, bool)
	PutFloat(ctx context.Context, key string, val float64, ttl time.Duration)
}

type Client struct {
	client  *http.Client
	baseURL string
	cache   metricCache
}

// New creates a CoinGecko client. cache may be nil to disable the
// stale-on-error fallback.
func New(baseURL string, c metricCache) *Client {
	return &Client{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		cache:   c,
	}
}

// TokenPrice returns the USD price for a token symbol. Unmapped symbols
// return 0, not an error. On upstream failure the last cached price is
// served when available; otherwise the failure propagates.
func (c *Client) TokenPrice(ctx context.Context, symbol string) (float64, error) {
	coinID, ok := coinIDs[strings.ToLower(symbol)]
	if !ok {
		return 0, nil
	}

	price, err := c.fetchPrice(ctx, coinID)
	if err != nil {
		if c.cache != nil {
			if cached, ok := c.cache.GetFloat(ctx, "price:"+coinID); ok {
				return cached, nil
			}
		}
		return 0, apperr.Upstream("price provider unavailable", err)
	}

	if c.cache != nil {
		c.cache.PutFloat(ctx, "price:"+coinID, price, priceCacheTTL)
	}
	return price, nil
}

func (c *Client) fetchPrice(ctx context.Context, coinID string) (float64, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(coinID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("coingecko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coingecko status %d", resp.StatusCode)
	}

	var body map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode coingecko response: %w", err)
	}

	return body[coinID].USD, nil
}
