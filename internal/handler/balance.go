package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type BalanceReader interface {
	USDCBalance(ctx context.Context, address string) (float64, error)
}

// WalletBalance reports the USDC balance for a wallet address.
func WalletBalance(reader BalanceReader, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")

		balance, err := reader.USDCBalance(r.Context(), address)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"address": address,
			"balance": balance,
		})
	}
}
