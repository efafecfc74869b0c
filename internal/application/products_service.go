package application

import (
	"context"

	"shopdash/internal/domain"
	"shopdash/internal/ports"
	apperrors "shopdash/pkg/errors"

	"github.com/rs/zerolog"
)

// ProductsService proxies the dashboard's products page to the Shopify
// Admin API using the shop's stored token.
type ProductsService struct {
	auth   *AuthService
	client ports.ShopifyClient
	logger zerolog.Logger
}

// NewProductsService creates a new products service.
func NewProductsService(auth *AuthService, client ports.ShopifyClient, logger zerolog.Logger) *ProductsService {
	return &ProductsService{auth: auth, client: client, logger: logger}
}

// ListProducts fetches the shop's first products page. Requires a valid
// install; returns ErrUnauthorized otherwise.
func (s *ProductsService) ListProducts(ctx context.Context, shop string) ([]domain.ProductSummary, error) {
	if shop == "" {
		return nil, &apperrors.ErrValidation{Message: "missing shop parameter"}
	}

	token, err := s.auth.AccessToken(ctx, shop)
	if err != nil {
		return nil, err
	}

	products, err := s.client.GetProducts(ctx, shop, token)
	if err != nil {
		return nil, &apperrors.ErrUpstream{Operation: "products fetch", Err: err}
	}

	summaries := make([]domain.ProductSummary, 0, len(products))
	for _, p := range products {
		summary := domain.ProductSummary{
			ID:    p.Id,
			Title: p.Title,
		}
		if len(p.Images) > 0 {
			summary.Image = p.Images[0].Src
		}
		if len(p.Variants) > 0 {
			summary.Price = p.Variants[0].Price
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}
