package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	infisical "github.com/infisical/go-sdk"
)

type Config struct {
	Port           string
	DatabaseURL    string
	FrontendOrigin string
	RedisURL       string
	RedisPassword  string

	CircleAPIKey       string
	CircleEntitySecret string
	CircleAPIURL       string

	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string

	SentimentURL string
	ScoringURL   string
	CoinGeckoURL string
	DefiLlamaURL string

	RPCURL           string
	USDCTokenAddress string
}

func Load() Config {
	cfg := Config{
		Port:           envOr("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		FrontendOrigin: envOr("FRONTEND_ORIGIN", "*"),
		RedisURL:       envOr("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),

		CircleAPIKey:       os.Getenv("CIRCLE_API_KEY"),
		CircleEntitySecret: os.Getenv("CIRCLE_ENTITY_SECRET"),
		CircleAPIURL:       envOr("CIRCLE_API_URL", "https://api.circle.com"),

		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),

		SentimentURL: envOr("SENTIMENT_URL", "http://localhost:8100"),
		ScoringURL:   envOr("SCORING_URL", "http://localhost:8000"),
		CoinGeckoURL: envOr("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		DefiLlamaURL: envOr("DEFILLAMA_URL", "https://api.llama.fi"),

		RPCURL:           os.Getenv("ARC_RPC_URL"),
		USDCTokenAddress: os.Getenv("USDC_TOKEN_ADDRESS"),
	}

	// If Infisical credentials are available, fetch secrets from Infisical
	clientID := os.Getenv("INFISICAL_CLIENT_ID")
	clientSecret := os.Getenv("INFISICAL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		loadFromInfisical(&cfg, clientID, clientSecret)
	}

	return cfg
}

// Validate reports the first required setting that is missing. The server
// refuses to start on a non-nil result instead of surfacing a 500 on first use.
func (c Config) Validate() error {
	required := []struct {
		key string
		val string
	}{
		{"DATABASE_URL", c.DatabaseURL},
		{"CIRCLE_API_KEY", c.CircleAPIKey},
		{"CIRCLE_ENTITY_SECRET", c.CircleEntitySecret},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	return nil
}

func loadFromInfisical(cfg *Config, clientID, clientSecret string) {
	siteURL := envOr("INFISICAL_SITE_URL", "https://app.infisical.com")
	projectID := os.Getenv("INFISICAL_PROJECT_ID")
	envSlug := envOr("INFISICAL_ENV", "prod")

	if projectID == "" {
		slog.Warn("INFISICAL_PROJECT_ID not set, skipping Infisical")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := infisical.NewInfisicalClient(ctx, infisical.Config{
		SiteUrl:          siteURL,
		AutoTokenRefresh: false,
	})

	_, err := client.Auth().UniversalAuthLogin(clientID, clientSecret)
	if err != nil {
		slog.Error("infisical auth failed", "error", err)
		return
	}

	secrets := map[string]*string{
		"CIRCLE_API_KEY":       &cfg.CircleAPIKey,
		"CIRCLE_ENTITY_SECRET": &cfg.CircleEntitySecret,
		"ELEVENLABS_API_KEY":   &cfg.ElevenLabsAPIKey,
		"REDIS_PASSWORD":       &cfg.RedisPassword,
	}

	for key, target := range secrets {
		if *target != "" {
			continue // env var already set, skip
		}
		secret, err := client.Secrets().Retrieve(infisical.RetrieveSecretOptions{
			SecretKey:   key,
			Environment: envSlug,
			ProjectID:   projectID,
			SecretPath:  "/",
		})
		if err != nil {
			slog.Warn("failed to retrieve secret from infisical", "key", key, "error", err)
			continue
		}
		*target = secret.SecretValue
		slog.Info("loaded secret from infisical", "key", key)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
