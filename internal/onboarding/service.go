// Package onboarding runs the two-phase signup saga: create a user row,
// provision a custodial wallet, then link the wallet to the row.
package onboarding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
	"github.com/web3-frozen/defi-sentinel/internal/metrics"
	"github.com/web3-frozen/defi-sentinel/internal/store"
	"github.com/web3-frozen/defi-sentinel/internal/wallet"
)

type UserStore interface {
	CreateUser(ctx context.Context, email string) (*store.User, error)
	LinkWallet(ctx context.Context, userID, walletID, address string) error
}

type WalletProvisioner interface {
	CreateUserWallet(ctx context.Context, userID string) (*wallet.Wallet, error)
}

// Result is returned to the client after a fully linked onboarding.
type Result struct {
	UserID        string `json:"userId"`
	WalletID      string `json:"walletId"`
	WalletAddress string `json:"address"`
}

type Service struct {
	users   UserStore
	wallets WalletProvisioner
	logger  *slog.Logger
}

func New(users UserStore, wallets WalletProvisioner, logger *slog.Logger) *Service {
	return &Service{users: users, wallets: wallets, logger: logger}
}

// Onboard creates the user, provisions a wallet, and links it. Each step
// must complete before the next begins. A wallet-provider failure leaves
// the user row pending with empty wallet fields; a link failure after the
// wallet exists logs the orphaned wallet id for reconciliation.
func (s *Service) Onboard(ctx context.Context, email string) (*Result, error) {
	if email == "" {
		return nil, apperr.Validation("email is required", nil)
	}

	user, err := s.users.CreateUser(ctx, email)
	if err != nil {
		metrics.OnboardTotal.WithLabelValues("user_create_failed").Inc()
		return nil, fmt.Errorf("create user: %w", err)
	}

	w, err := s.wallets.CreateUserWallet(ctx, user.ID)
	if err != nil {
		metrics.OnboardTotal.WithLabelValues("wallet_failed").Inc()
		s.logger.Error("wallet provisioning failed, user left pending",
			"user_id", user.ID, "error", err)
		return nil, fmt.Errorf("provision wallet: %w", err)
	}

	if err := s.users.LinkWallet(ctx, user.ID, w.WalletID, w.Address); err != nil {
		metrics.OnboardTotal.WithLabelValues("link_failed").Inc()
		// The external wallet exists but is not recorded; keep its id in
		// the logs so the pending row can be reconciled.
		s.logger.Error("wallet link failed, orphaned wallet",
			"user_id", user.ID, "wallet_id", w.WalletID, "error", err)
		return nil, apperr.Upstream("onboarding incomplete, retry later", err)
	}

	metrics.OnboardTotal.WithLabelValues("ok").Inc()
	s.logger.Info("user onboarded", "user_id", user.ID, "wallet_id", w.WalletID)

	return &Result{
		UserID:        user.ID,
		WalletID:      w.WalletID,
		WalletAddress: w.Address,
	}, nil
}
