package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps the error's kind to a status code and sends only the
// client-safe message; the full error goes to the log.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindUpstream:
		status = http.StatusBadGateway
	case apperr.KindValidation:
		status = http.StatusConflict
	}

	if logger != nil {
		logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.ClientMessage(err)})
}
