package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shopdash/internal/domain"
	"shopdash/internal/ports"

	"github.com/rs/zerolog"
)

type tokenRepository struct {
	db     *sql.DB
	driver string
	logger zerolog.Logger
}

// NewTokenRepository creates a new shop token repository.
func NewTokenRepository(db *sql.DB, driver string, logger zerolog.Logger) ports.TokenRepository {
	return &tokenRepository{db: db, driver: driver, logger: logger}
}

// SaveToken upserts the token for a shop, last write wins.
func (r *tokenRepository) SaveToken(ctx context.Context, token *domain.ShopToken) error {
	now := time.Now().UTC()
	if token.InstalledAt.IsZero() {
		token.InstalledAt = now
	}
	token.UpdatedAt = now

	query := rebind(r.driver, `
		INSERT INTO shop_tokens (shop, access_token, installed_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (shop) DO UPDATE SET
			access_token = excluded.access_token,
			updated_at = excluded.updated_at
	`)

	_, err := r.db.ExecContext(ctx, query, token.Shop, token.AccessToken, token.InstalledAt, token.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("shop", token.Shop).Msg("Failed to save token")
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// GetToken retrieves the token for a shop, or nil when not installed.
func (r *tokenRepository) GetToken(ctx context.Context, shop string) (*domain.ShopToken, error) {
	query := rebind(r.driver, `
		SELECT shop, access_token, installed_at, updated_at
		FROM shop_tokens
		WHERE shop = ?
	`)

	var token domain.ShopToken
	err := r.db.QueryRowContext(ctx, query, shop).Scan(
		&token.Shop,
		&token.AccessToken,
		&token.InstalledAt,
		&token.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, nil
}
