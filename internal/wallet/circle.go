// Package wallet provisions custodial wallets through the Circle
// developer-controlled wallets API.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
)

const walletBlockchain = "ARQ-TESTNET"

// Wallet holds the provider identifiers for a provisioned wallet.
type Wallet struct {
	WalletID string `json:"walletId"`
	Address  string `json:"address"`
}

type Client struct {
	client       *http.Client
	baseURL      string
	apiKey       string
	entitySecret string
}

func New(baseURL, apiKey, entitySecret string) *Client {
	return &Client{
		client:       &http.Client{Timeout: 30 * time.Second},
		baseURL:      baseURL,
		apiKey:       apiKey,
		entitySecret: entitySecret,
	}
}

// CreateUserWallet provisions one wallet for a user: first a wallet set
// named after the user id, then a single wallet inside it.
func (c *Client) CreateUserWallet(ctx context.Context, userID string) (*Wallet, error) {
	setID, err := c.createWalletSet(ctx, "SentinelAI-"+userID)
	if err != nil {
		return nil, apperr.Upstream("wallet provider unavailable", err)
	}

	w, err := c.createWallet(ctx, setID)
	if err != nil {
		return nil, apperr.Upstream("wallet provider unavailable", err)
	}
	return w, nil
}

type walletSetResponse struct {
	Data struct {
		WalletSet struct {
			ID string `json:"id"`
		} `json:"walletSet"`
	} `json:"data"`
}

func (c *Client) createWalletSet(ctx context.Context, name string) (string, error) {
	body := map[string]any{
		"name":                   name,
		"entitySecretCiphertext": c.entitySecret,
	}

	raw, err := c.post(ctx, "/v1/w3s/developer/walletSets", body)
	if err != nil {
		return "", fmt.Errorf("create wallet set: %w", err)
	}

	var result walletSetResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("unmarshal wallet set: %w", err)
	}
	if result.Data.WalletSet.ID == "" {
		return "", fmt.Errorf("wallet set response missing id")
	}
	return result.Data.WalletSet.ID, nil
}

type walletResponse struct {
	Data struct {
		Wallets []struct {
			ID      string `json:"id"`
			Address string `json:"address"`
		} `json:"wallets"`
	} `json:"data"`
}

func (c *Client) createWallet(ctx context.Context, walletSetID string) (*Wallet, error) {
	body := map[string]any{
		"walletSetId":            walletSetID,
		"blockchains":            []string{walletBlockchain},
		"count":                  1,
		"entitySecretCiphertext": c.entitySecret,
	}

	raw, err := c.post(ctx, "/v1/w3s/developer/wallets", body)
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	var result walletResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal wallet: %w", err)
	}
	if len(result.Data.Wallets) == 0 {
		return nil, fmt.Errorf("wallet response contains no wallets")
	}

	w := result.Data.Wallets[0]
	return &Wallet{WalletID: w.ID, Address: w.Address}, nil
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("circle status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
