package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/web3-frozen/defi-sentinel/internal/cache"
	"github.com/web3-frozen/defi-sentinel/internal/chain"
	"github.com/web3-frozen/defi-sentinel/internal/config"
	"github.com/web3-frozen/defi-sentinel/internal/defillama"
	"github.com/web3-frozen/defi-sentinel/internal/handler"
	"github.com/web3-frozen/defi-sentinel/internal/middleware"
	"github.com/web3-frozen/defi-sentinel/internal/monitor"
	"github.com/web3-frozen/defi-sentinel/internal/onboarding"
	"github.com/web3-frozen/defi-sentinel/internal/oracle"
	"github.com/web3-frozen/defi-sentinel/internal/registry"
	"github.com/web3-frozen/defi-sentinel/internal/scoring"
	"github.com/web3-frozen/defi-sentinel/internal/sentiment"
	"github.com/web3-frozen/defi-sentinel/internal/store"
	"github.com/web3-frozen/defi-sentinel/internal/voice"
	"github.com/web3-frozen/defi-sentinel/internal/wallet"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected and migrated")

	// Redis cache (retry up to 30s for ExternalSecret to sync). The server
	// still starts without Redis; caching and alert dedup degrade to no-ops.
	var metricCache *cache.Cache
	for i := 0; i < 6; i++ {
		metricCache, err = cache.New(cfg.RedisURL, cfg.RedisPassword)
		if err == nil {
			break
		}
		logger.Warn("redis not ready, retrying...", "attempt", i+1, "error", err)
		time.Sleep(5 * time.Second)
	}
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "error", err)
		metricCache = nil
	} else {
		defer metricCache.Close()
		logger.Info("redis connected")
	}

	// Protocol registry
	reg, err := registry.Load()
	if err != nil {
		logger.Error("failed to load protocol registry", "error", err)
		os.Exit(1)
	}
	logger.Info("protocol registry loaded", "protocols", len(reg.List()))

	// Upstream clients
	prices := oracle.New(cfg.CoinGeckoURL, metricCache)
	tvl := defillama.New(cfg.DefiLlamaURL, metricCache)
	sentiments := sentiment.New(cfg.SentimentURL)
	scorer := scoring.New(cfg.ScoringURL)
	checker := monitor.NewChecker(tvl, sentiments, prices, scorer)

	var voiceClient monitor.VoiceAlerter
	if cfg.ElevenLabsAPIKey != "" {
		voiceClient = voice.New("https://api.elevenlabs.io", cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID)
		logger.Info("voice alerts enabled")
	} else {
		logger.Warn("ELEVENLABS_API_KEY not set, voice alerts disabled")
	}

	// Monitoring engine
	engine := monitor.NewEngine(reg, checker, voiceClient, metricCache, logger)
	go engine.Run(ctx)

	// Onboarding
	circleClient := wallet.New(cfg.CircleAPIURL, cfg.CircleAPIKey, cfg.CircleEntitySecret)
	onboarder := onboarding.New(db, circleClient, logger)

	// On-chain balance reads (optional, needs an RPC endpoint)
	var balances *chain.BalanceReader
	if cfg.RPCURL != "" && cfg.USDCTokenAddress != "" {
		balances, err = chain.NewBalanceReader(cfg.RPCURL, cfg.USDCTokenAddress)
		if err != nil {
			logger.Error("failed to connect to rpc endpoint", "error", err)
			os.Exit(1)
		}
		logger.Info("balance reads enabled", "token", cfg.USDCTokenAddress)
	} else {
		logger.Warn("ARC_RPC_URL or USDC_TOKEN_ADDRESS not set, balance reads disabled")
	}

	// HTTP routes
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", handler.Health())
	r.Get("/readyz", handler.Ready(db))

	r.Route("/api", func(r chi.Router) {
		r.Get("/protocols", handler.ListProtocols(reg))
		r.Get("/protocol/{slug}/health", handler.ProtocolHealth(reg, checker, logger))
		r.Get("/protocol/{slug}/snapshot", handler.Snapshot(engine, reg, logger))
		r.Get("/protocol/{slug}/alert-audio", handler.AlertAudio(engine, reg, logger))
		r.Post("/onboard", handler.Onboard(onboarder, logger))
		if balances != nil {
			r.Get("/wallet/{address}/balance", handler.WalletBalance(balances, logger))
		}
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
