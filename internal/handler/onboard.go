package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/web3-frozen/defi-sentinel/internal/onboarding"
)

type Onboarder interface {
	Onboard(ctx context.Context, email string) (*onboarding.Result, error)
}

func Onboard(svc Onboarder, logger *slog.Logger) http.HandlerFunc {
	type request struct {
		Email string `json:"email"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Email == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email required"})
			return
		}

		result, err := svc.Onboard(r.Context(), req.Email)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"user":    result,
		})
	}
}
