package config

import (
	"os"
	"testing"
)

func TestEnvOr(t *testing.T) {
	// Unset key returns fallback
	os.Unsetenv("TEST_ENVOR_KEY")
	if got := envOr("TEST_ENVOR_KEY", "default"); got != "default" {
		t.Errorf("envOr unset key = %q, want %q", got, "default")
	}

	// Set key returns value
	os.Setenv("TEST_ENVOR_KEY", "custom")
	defer os.Unsetenv("TEST_ENVOR_KEY")
	if got := envOr("TEST_ENVOR_KEY", "default"); got != "custom" {
		t.Errorf("envOr set key = %q, want %q", got, "custom")
	}

	// Empty string returns fallback
	os.Setenv("TEST_ENVOR_KEY", "")
	if got := envOr("TEST_ENVOR_KEY", "fallback"); got != "fallback" {
		t.Errorf("envOr empty key = %q, want %q", got, "fallback")
	}
}

func clearEnv() {
	for _, k := range []string{
		"PORT", "DATABASE_URL", "FRONTEND_ORIGIN", "REDIS_URL", "REDIS_PASSWORD",
		"CIRCLE_API_KEY", "CIRCLE_ENTITY_SECRET", "CIRCLE_API_URL",
		"ELEVENLABS_API_KEY", "ELEVENLABS_VOICE_ID",
		"SENTIMENT_URL", "SCORING_URL", "COINGECKO_URL", "DEFILLAMA_URL",
		"ARC_RPC_URL", "USDC_TOKEN_ADDRESS",
		"INFISICAL_CLIENT_ID", "INFISICAL_CLIENT_SECRET",
	} {
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv()

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.FrontendOrigin != "*" {
		t.Errorf("FrontendOrigin = %q, want %q", cfg.FrontendOrigin, "*")
	}
	if cfg.ScoringURL != "http://localhost:8000" {
		t.Errorf("ScoringURL = %q, want %q", cfg.ScoringURL, "http://localhost:8000")
	}
	if cfg.CoinGeckoURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("CoinGeckoURL = %q", cfg.CoinGeckoURL)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.CircleAPIKey != "" {
		t.Errorf("CircleAPIKey = %q, want empty", cfg.CircleAPIKey)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv()
	os.Setenv("PORT", "9090")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("CIRCLE_API_KEY", "ck-test")
	os.Setenv("SCORING_URL", "http://scoring:8000")
	defer clearEnv()

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.DatabaseURL != "postgres://test" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "postgres://test")
	}
	if cfg.CircleAPIKey != "ck-test" {
		t.Errorf("CircleAPIKey = %q, want %q", cfg.CircleAPIKey, "ck-test")
	}
	if cfg.ScoringURL != "http://scoring:8000" {
		t.Errorf("ScoringURL = %q, want %q", cfg.ScoringURL, "http://scoring:8000")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		DatabaseURL:        "postgres://test",
		CircleAPIKey:       "ck",
		CircleEntitySecret: "es",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }},
		{"missing circle api key", func(c *Config) { c.CircleAPIKey = "" }},
		{"missing entity secret", func(c *Config) { c.CircleEntitySecret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
