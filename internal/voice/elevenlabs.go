// Package voice generates spoken alert audio through the ElevenLabs
// text-to-speech API.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
)

const ttsModel = "eleven_turbo_v2"

type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	voiceID string
}

func New(baseURL, apiKey, voiceID string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		voiceID: voiceID,
	}
}

// AlertAudio renders a spoken health alert and returns the audio bytes.
func (c *Client) AlertAudio(ctx context.Context, protocolName string, healthScore int, riskFactors []string) ([]byte, error) {
	msg := fmt.Sprintf("Alert: %s health score is %d. ", protocolName, healthScore)
	if len(riskFactors) > 0 {
		msg += "Risk factors: " + strings.Join(riskFactors, ", ")
	}
	return c.speak(ctx, msg)
}

func (c *Client) speak(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": ttsModel,
	})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("voice service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("voice service unavailable",
			fmt.Errorf("elevenlabs status %d", resp.StatusCode))
	}

	return io.ReadAll(resp.Body)
}
