package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/web3-frozen/defi-sentinel/internal/apperr"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("store: not found")

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// --- Users ---

// Wallet provisioning states. A row stays pending until the external
// wallet is both created and recorded; re-running provisioning for
// pending users resumes the saga.
const (
	WalletStatusPending = "pending"
	WalletStatusLinked  = "linked"
)

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	CircleWalletID *string   `json:"circle_wallet_id,omitempty"`
	WalletAddress  *string   `json:"wallet_address,omitempty"`
	WalletStatus   string    `json:"wallet_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateUser inserts a user with a server-generated id. A duplicate email
// surfaces as a validation error, not an internal one.
func (s *Store) CreateUser(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, wallet_status)
		VALUES ($1, $2, $3)
		RETURNING id, email, wallet_status, created_at`,
		uuid.NewString(), email, WalletStatusPending).
		Scan(&u.ID, &u.Email, &u.WalletStatus, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.Validation("email already registered", err)
		}
		return nil, err
	}
	return &u, nil
}

// LinkWallet records the provisioned wallet on the user row and marks the
// saga complete.
func (s *Store) LinkWallet(ctx context.Context, userID, walletID, address string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET circle_wallet_id = $2, wallet_address = $3, wallet_status = $4
		WHERE id = $1`,
		userID, walletID, address, WalletStatusLinked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, circle_wallet_id, wallet_address, wallet_status, created_at
		FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.CircleWalletID, &u.WalletAddress, &u.WalletStatus, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
