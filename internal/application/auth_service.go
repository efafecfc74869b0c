package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"shopdash/internal/domain"
	"shopdash/internal/ports"
	apperrors "shopdash/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const sessionTTL = 10 * time.Minute

// AuthService drives the OAuth install handshake and owns access tokens:
// they are encrypted before they reach the token repository and decrypted
// on the way out.
type AuthService struct {
	tokens     ports.TokenRepository
	sessions   ports.SessionRepository
	client     ports.ShopifyClient
	encryption ports.EncryptionService
	logger     zerolog.Logger
	appURL     string
	apiKey     string
	scopes     []string
}

// NewAuthService creates a new auth service.
func NewAuthService(
	tokens ports.TokenRepository,
	sessions ports.SessionRepository,
	client ports.ShopifyClient,
	encryption ports.EncryptionService,
	logger zerolog.Logger,
	appURL string,
	apiKey string,
	scopes []string,
) *AuthService {
	return &AuthService{
		tokens:     tokens,
		sessions:   sessions,
		client:     client,
		encryption: encryption,
		logger:     logger,
		appURL:     appURL,
		apiKey:     apiKey,
		scopes:     scopes,
	}
}

// BeginInstall persists a CSRF state session and returns the Shopify
// authorization URL to redirect the merchant to.
func (s *AuthService) BeginInstall(ctx context.Context, shop string) (string, error) {
	if shop == "" {
		return "", &apperrors.ErrValidation{Message: "missing shop parameter"}
	}

	session := &domain.Session{
		State:     uuid.NewString(),
		Shop:      shop,
		Scopes:    s.scopes,
		ExpiresAt: time.Now().UTC().Add(sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", err
	}

	redirectURI := s.appURL + "/auth/callback"
	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		s.apiKey,
		url.QueryEscape(strings.Join(s.scopes, ",")),
		url.QueryEscape(redirectURI),
		url.QueryEscape(session.State),
	)

	s.logger.Info().Str("shop", shop).Msg("OAuth install initiated")
	return authURL, nil
}

// CompleteInstall validates the callback state, exchanges the code for an
// access token and stores it encrypted. The state session is single use.
func (s *AuthService) CompleteInstall(ctx context.Context, shop, code, state string) error {
	if shop == "" || code == "" || state == "" {
		return &apperrors.ErrValidation{Message: "missing oauth callback parameters"}
	}

	session, err := s.sessions.GetSession(ctx, state)
	if err != nil {
		return err
	}
	if session == nil || session.Shop != shop {
		return &apperrors.ErrUnauthorized{Message: "invalid oauth state"}
	}
	if session.Expired(time.Now().UTC()) {
		_ = s.sessions.DeleteSession(ctx, state)
		return &apperrors.ErrUnauthorized{Message: "oauth state expired"}
	}

	if err := s.sessions.DeleteSession(ctx, state); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to delete oauth session")
	}

	token, err := s.client.ExchangeToken(ctx, shop, code)
	if err != nil {
		return &apperrors.ErrUpstream{Operation: "token exchange", Err: err}
	}

	encrypted, err := s.encryption.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	if err := s.tokens.SaveToken(ctx, &domain.ShopToken{Shop: shop, AccessToken: encrypted}); err != nil {
		return err
	}

	s.logger.Info().Str("shop", shop).Msg("Shop installed")
	return nil
}

// IsInstalled reports whether a token is stored for the shop.
func (s *AuthService) IsInstalled(ctx context.Context, shop string) (bool, error) {
	if shop == "" {
		return false, nil
	}
	token, err := s.tokens.GetToken(ctx, shop)
	if err != nil {
		return false, err
	}
	return token != nil, nil
}

// AccessToken returns the decrypted token for a shop, or ErrUnauthorized
// when the app is not installed there.
func (s *AuthService) AccessToken(ctx context.Context, shop string) (string, error) {
	token, err := s.tokens.GetToken(ctx, shop)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", &apperrors.ErrUnauthorized{Message: "app not installed for shop"}
	}

	plaintext, err := s.encryption.Decrypt(token.AccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return plaintext, nil
}
