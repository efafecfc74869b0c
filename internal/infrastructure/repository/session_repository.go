package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shopdash/internal/domain"
	"shopdash/internal/ports"

	"github.com/rs/zerolog"
)

type sessionRepository struct {
	db     *sql.DB
	driver string
	logger zerolog.Logger
}

// NewSessionRepository creates a new OAuth session repository.
func NewSessionRepository(db *sql.DB, driver string, logger zerolog.Logger) ports.SessionRepository {
	return &sessionRepository{db: db, driver: driver, logger: logger}
}

func (r *sessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	query := rebind(r.driver, `
		INSERT INTO oauth_sessions (state, shop, scopes, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		session.State,
		session.Shop,
		strings.Join(session.Scopes, ","),
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("shop", session.Shop).Msg("Failed to create session")
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetSession(ctx context.Context, state string) (*domain.Session, error) {
	query := rebind(r.driver, `
		SELECT state, shop, scopes, expires_at, created_at
		FROM oauth_sessions
		WHERE state = ?
	`)

	var session domain.Session
	var scopes string
	err := r.db.QueryRowContext(ctx, query, state).Scan(
		&session.State,
		&session.Shop,
		&scopes,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if scopes != "" {
		session.Scopes = strings.Split(scopes, ",")
	}

	return &session, nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context, state string) error {
	query := rebind(r.driver, `DELETE FROM oauth_sessions WHERE state = ?`)

	if _, err := r.db.ExecContext(ctx, query, state); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
