// Package monitor assembles upstream signals into protocol health reports
// and polls all registered protocols in the background.
package monitor

import (
	"context"
	"fmt"

	"github.com/web3-frozen/defi-sentinel/internal/defillama"
	"github.com/web3-frozen/defi-sentinel/internal/scoring"
)

type TVLSource interface {
	ProtocolTVL(ctx context.Context, slug string) (defillama.TVLData, error)
}

type SentimentSource interface {
	Score(ctx context.Context, slug string) (float64, error)
}

type PriceSource interface {
	TokenPrice(ctx context.Context, symbol string) (float64, error)
}

type Scorer interface {
	Predict(ctx context.Context, signals scoring.SignalBundle) (*scoring.Report, error)
}

// Checker runs the health-check flow: fetch TVL, sentiment and price in
// sequence, bundle them, and forward to the scoring service. The policy is
// all-or-nothing: any failed lookup fails the whole check.
type Checker struct {
	tvl       TVLSource
	sentiment SentimentSource
	prices    PriceSource
	scorer    Scorer
}

func NewChecker(tvl TVLSource, sentiment SentimentSource, prices PriceSource, scorer Scorer) *Checker {
	return &Checker{tvl: tvl, sentiment: sentiment, prices: prices, scorer: scorer}
}

// HealthScore returns the scoring service's report for one protocol. The
// on-chain address rides along for parity with the registry record but no
// lookup consumes it yet. Price defaults to 1 when no token symbol is given.
func (c *Checker) HealthScore(ctx context.Context, address, slug, tokenSymbol string) (*scoring.Report, error) {
	tvlData, err := c.tvl.ProtocolTVL(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("health check %s: %w", slug, err)
	}

	sentimentScore, err := c.sentiment.Score(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("health check %s: %w", slug, err)
	}

	tokenPrice := 1.0
	if tokenSymbol != "" {
		tokenPrice, err = c.prices.TokenPrice(ctx, tokenSymbol)
		if err != nil {
			return nil, fmt.Errorf("health check %s: %w", slug, err)
		}
	}
	_ = tokenPrice // feeds no signal yet; volatility stays a placeholder

	bundle := scoring.SignalBundle{
		TVL:             tvlData.TVL,
		TVLChange24h:    tvlData.TVLChange24h,
		WhaleActivity:   scoring.DefaultWhaleActivity,
		LiquidationRisk: scoring.DefaultLiquidationRisk,
		PriceVolatility: scoring.DefaultPriceVolatility,
		SocialSentiment: sentimentScore,
		CodeActivity:    scoring.DefaultCodeActivity,
	}

	report, err := c.scorer.Predict(ctx, bundle)
	if err != nil {
		return nil, fmt.Errorf("health check %s: %w", slug, err)
	}
	return report, nil
}
