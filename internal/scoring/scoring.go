// Package scoring submits a signal bundle to the external ML scoring
// service and returns its verdict unmodified.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
)

// Placeholder values for signals no collector computes yet. They are fixed
// inputs to the model, not measurements; a genuine zero never comes from
// these constants.
const (
	DefaultWhaleActivity   = 0
	DefaultLiquidationRisk = 0
	DefaultPriceVolatility = 0
	DefaultCodeActivity    = 50
)

// SignalBundle is the fixed seven-field record the scoring service expects.
type SignalBundle struct {
	TVL             float64 `json:"tvl"`
	TVLChange24h    float64 `json:"tvlChange24h"`
	WhaleActivity   float64 `json:"whaleActivity"`
	LiquidationRisk float64 `json:"liquidationRisk"`
	PriceVolatility float64 `json:"priceVolatility"`
	SocialSentiment float64 `json:"socialSentiment"`
	CodeActivity    float64 `json:"codeActivity"`
}

// Report is the scoring service's response, passed through as-is.
type Report struct {
	HealthScore int      `json:"healthScore"`
	Confidence  float64  `json:"confidence"`
	Trend       string   `json:"trend"`
	RiskFactors []string `json:"riskFactors"`
}

type Client struct {
	client  *http.Client
	baseURL string
}

func New(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
	}
}

// Predict posts the bundle to the scoring service and decodes its report.
func (c *Client) Predict(ctx context.Context, signals SignalBundle) (*Report, error) {
	payload, err := json.Marshal(struct {
		Signals SignalBundle `json:"signals"`
	}{Signals: signals})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("scoring service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("scoring service unavailable",
			fmt.Errorf("scoring status %d", resp.StatusCode))
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, apperr.Upstream("scoring service unavailable",
			fmt.Errorf("decode scoring response: %w", err))
	}

	return &report, nil
}
