package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/web3-frozen/defi-sentinel/internal/metrics"
	"github.com/web3-frozen/defi-sentinel/internal/registry"
	"github.com/web3-frozen/defi-sentinel/internal/scoring"
)

const (
	pollInterval   = 5 * time.Minute
	alertThreshold = 40 // health score below this triggers a voice alert
)

type HealthChecker interface {
	HealthScore(ctx context.Context, address, slug, tokenSymbol string) (*scoring.Report, error)
}

// VoiceAlerter produces spoken alert audio. Nil disables alerting.
type VoiceAlerter interface {
	AlertAudio(ctx context.Context, protocolName string, healthScore int, riskFactors []string) ([]byte, error)
}

// AlertGate suppresses repeat alerts for an ongoing incident.
type AlertGate interface {
	AlreadySent(ctx context.Context, key string) bool
	Record(ctx context.Context, key string)
	Clear(ctx context.Context, key string)
}

// Snapshot is the engine's cached reading for one protocol.
type Snapshot struct {
	Protocol string `json:"protocol"`
	scoring.Report
	FetchedAt time.Time `json:"fetchedAt"`
}

// Engine polls every registered protocol's health on a fixed interval,
// keeps the latest report per slug, and raises a voice alert once per
// below-threshold incident.
type Engine struct {
	registry *registry.Registry
	checker  HealthChecker
	voice    VoiceAlerter
	gate     AlertGate
	logger   *slog.Logger

	mu        sync.RWMutex
	lastSnap  map[string]*Snapshot
	lastAudio map[string][]byte
}

func NewEngine(reg *registry.Registry, checker HealthChecker, voice VoiceAlerter, gate AlertGate, logger *slog.Logger) *Engine {
	return &Engine{
		registry:  reg,
		checker:   checker,
		voice:     voice,
		gate:      gate,
		logger:    logger,
		lastSnap:  make(map[string]*Snapshot),
		lastAudio: make(map[string][]byte),
	}
}

// Snapshot returns the latest cached report for a slug, or nil.
func (e *Engine) Snapshot(slug string) *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSnap[slug]
}

// AlertAudio returns the most recent alert audio for a slug, or nil.
func (e *Engine) AlertAudio(slug string) []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastAudio[slug]
}

// Run polls until ctx is cancelled. Poll failures are logged and skipped.
func (e *Engine) Run(ctx context.Context) {
	e.PollAll(ctx)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.PollAll(ctx)
		}
	}
}

// PollAll runs one health check per registered protocol.
func (e *Engine) PollAll(ctx context.Context) {
	for _, p := range e.registry.List() {
		start := time.Now()
		report, err := e.checker.HealthScore(ctx, p.Address, p.Slug, p.TokenSymbol)
		metrics.PollDuration.WithLabelValues(p.Slug).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.PollTotal.WithLabelValues(p.Slug, "error").Inc()
			e.logger.Error("health poll failed", "protocol", p.Slug, "error", err)
			continue
		}
		metrics.PollTotal.WithLabelValues(p.Slug, "ok").Inc()
		metrics.ProtocolHealthScore.WithLabelValues(p.Slug).Set(float64(report.HealthScore))

		e.mu.Lock()
		e.lastSnap[p.Slug] = &Snapshot{Protocol: p.Name, Report: *report, FetchedAt: time.Now()}
		e.mu.Unlock()

		e.logger.Info("health snapshot",
			"protocol", p.Slug, "score", report.HealthScore, "trend", report.Trend)

		e.checkAlert(ctx, p, report)
	}
}

func (e *Engine) checkAlert(ctx context.Context, p registry.Protocol, report *scoring.Report) {
	if e.voice == nil {
		return
	}
	gateKey := "alert:" + p.Slug

	if report.HealthScore >= alertThreshold {
		// Condition recovered; re-arm the gate.
		if e.gate != nil {
			e.gate.Clear(ctx, gateKey)
		}
		return
	}

	if e.gate != nil && e.gate.AlreadySent(ctx, gateKey) {
		metrics.AlertsDeduplicatedTotal.WithLabelValues(p.Slug).Inc()
		return
	}

	audio, err := e.voice.AlertAudio(ctx, p.Name, report.HealthScore, report.RiskFactors)
	if err != nil {
		metrics.AlertsFailedTotal.WithLabelValues(p.Slug).Inc()
		e.logger.Error("voice alert failed", "protocol", p.Slug, "error", err)
		return
	}

	e.mu.Lock()
	e.lastAudio[p.Slug] = audio
	e.mu.Unlock()

	if e.gate != nil {
		e.gate.Record(ctx, gateKey)
	}
	metrics.AlertsSentTotal.WithLabelValues(p.Slug).Inc()
	e.logger.Info("voice alert generated", "protocol", p.Slug, "score", report.HealthScore)
}
