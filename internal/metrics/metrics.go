package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── HTTP request metrics (RED method) ──────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defi_sentinel",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "defi_sentinel",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "defi_sentinel",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})
)

// ── Health polling metrics ─────────────────────────────────────────────

var (
	PollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defi_sentinel",
		Subsystem: "poll",
		Name:      "total",
		Help:      "Total number of health poll attempts per protocol.",
	}, []string{"protocol", "status"})

	PollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "defi_sentinel",
		Subsystem: "poll",
		Name:      "duration_seconds",
		Help:      "Duration of one health poll per protocol in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"protocol"})

	ProtocolHealthScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "defi_sentinel",
		Subsystem: "protocol",
		Name:      "health_score",
		Help:      "Latest health score reported by the scoring service per protocol.",
	}, []string{"protocol"})
)

// ── Alert delivery metrics ─────────────────────────────────────────────

var (
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defi_sentinel",
		Subsystem: "alerts",
		Name:      "sent_total",
		Help:      "Total voice alerts generated.",
	}, []string{"protocol"})

	AlertsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defi_sentinel",
		Subsystem: "alerts",
		Name:      "failed_total",
		Help:      "Total voice alert generation failures.",
	}, []string{"protocol"})

	AlertsDeduplicatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defi_sentinel",
		Subsystem: "alerts",
		Name:      "deduplicated_total",
		Help:      "Total alerts suppressed because the incident already fired.",
	}, []string{"protocol"})
)

// ── Onboarding metrics ─────────────────────────────────────────────────

var (
	OnboardTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defi_sentinel",
		Subsystem: "onboarding",
		Name:      "total",
		Help:      "Total onboarding attempts by outcome.",
	}, []string{"outcome"})
)
