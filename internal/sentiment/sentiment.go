// Package sentiment queries the external social sentiment service. The
// score's range and polarity belong to the upstream contract; this client
// passes the number through untouched.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
)

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

// Score returns the sentiment score for a protocol slug.
func (c *Client) Score(ctx context.Context, slug string) (float64, error) {
	u := fmt.Sprintf("%s/sentiment/%s", c.baseURL, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, apperr.Upstream("sentiment service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, apperr.Upstream("sentiment service unavailable",
			fmt.Errorf("sentiment status %d", resp.StatusCode))
	}

	var body struct {
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, apperr.Upstream("sentiment service unavailable",
			fmt.Errorf("decode sentiment response: %w", err))
	}

	return body.Score, nil
}
