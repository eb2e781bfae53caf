package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/web3-frozen/defi-sentinel/internal/apperr"
	"github.com/web3-frozen/defi-sentinel/internal/monitor"
	"github.com/web3-frozen/defi-sentinel/internal/registry"
	"github.com/web3-frozen/defi-sentinel/internal/scoring"
)

func ListProtocols(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"protocols": reg.List()})
	}
}

// healthResponse is the scoring report with the protocol name attached.
type healthResponse struct {
	Protocol string `json:"protocol"`
	scoring.Report
}

// ProtocolHealth runs a fresh health check for one protocol.
func ProtocolHealth(reg *registry.Registry, checker monitor.HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		p, ok := reg.BySlug(slug)
		if !ok {
			writeError(w, logger, apperr.NotFound("protocol not found"))
			return
		}

		report, err := checker.HealthScore(r.Context(), p.Address, p.Slug, p.TokenSymbol)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, healthResponse{Protocol: p.Name, Report: *report})
	}
}

// Snapshot serves the engine's last cached report for one protocol.
func Snapshot(engine *monitor.Engine, reg *registry.Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if _, ok := reg.BySlug(slug); !ok {
			writeError(w, logger, apperr.NotFound("protocol not found"))
			return
		}

		snap := engine.Snapshot(slug)
		if snap == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no data available yet"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// AlertAudio serves the most recent voice alert for one protocol.
func AlertAudio(engine *monitor.Engine, reg *registry.Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if _, ok := reg.BySlug(slug); !ok {
			writeError(w, logger, apperr.NotFound("protocol not found"))
			return
		}

		audio := engine.AlertAudio(slug)
		if audio == nil {
			writeError(w, logger, apperr.NotFound("no alert audio for protocol"))
			return
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(audio)
	}
}
