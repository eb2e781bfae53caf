// Package defillama fetches protocol TVL from the DefiLlama API.
package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
)

const (
	tvlCacheTTL = 60 * time.Second

	// monitoredChain selects which chain's figure to report from the
	// multi-chain breakdown; all registry protocols live on Arbitrum.
	monitoredChain = "Arbitrum"
)

// TVLData is the TVL reading for one protocol. TVLChange24h is always 0:
// the 24h delta is not computed anywhere yet and consumers treat it as an
// unimplemented signal, not a measured zero.
type TVLData struct {
	Name         string  `json:"name"`
	TVL          float64 `json:"tvl"`
	TVLChange24h float64 `json:"tvlChange24h"`
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

// New creates a DefiLlama client. cache may be nil to disable the
// stale-on-error fallback.
func New(baseURL string, c metricCache) *Client {
	return &Client{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		cache:   c,
	}
}

type protocolResponse struct {
	Name             string             `json:"name"`
	CurrentChainTvls map[string]float64 `json:"currentChainTvls"`
	TVL              json.RawMessage    `json:"tvl"`
}

// ProtocolTVL returns the current TVL for a protocol slug, preferring the
// monitored chain's figure, then the aggregate total, then 0. On upstream
// failure the last cached TVL is served when available.
func (c *Client) ProtocolTVL(ctx context.Context, slug string) (TVLData, error) {
	data, err := c.fetchProtocol(ctx, slug)
	if err != nil {
		if c.cache != nil {
			if cached, ok := c.cache.GetFloat(ctx, "tvl:"+slug); ok {
				// Only the figure is cached, so the slug stands in
				// for the display name on stale reads. Handlers
				// label responses from the registry, not from here.
				return TVLData{Name: slug, TVL: cached}, nil
			}
		}
		return TVLData{}, apperr.Upstream("tvl provider unavailable", err)
	}

	tvl := selectTVL(data)
	if c.cache != nil {
		c.cache.PutFloat(ctx, "tvl:"+slug, tvl, tvlCacheTTL)
	}

	return TVLData{Name: data.Name, TVL: tvl, TVLChange24h: 0}, nil
}

func (c *Client) fetchProtocol(ctx context.Context, slug string) (*protocolResponse, error) {
	u := fmt.Sprintf("%s/protocol/%s", c.baseURL, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("defillama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("defillama status %d", resp.StatusCode)
	}

	var data protocolResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode defillama response: %w", err)
	}
	return &data, nil
}

func selectTVL(data *protocolResponse) float64 {
	if v, ok := data.CurrentChainTvls[monitoredChain]; ok && v > 0 {
		return v
	}
	// The aggregate tvl field is a plain number on some responses and a
	// time series on others; only the numeric form is usable here.
	var aggregate float64
	if len(data.TVL) > 0 && json.Unmarshal(data.TVL, &aggregate) == nil {
		return aggregate
	}
	return 0
}
