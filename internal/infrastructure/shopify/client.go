package shopify

import (
	"context"
	"fmt"

	"shopdash/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type client struct {
	app    goshopify.App
	logger zerolog.Logger
}

// NewClient creates a Shopify Admin API client adapter.
func NewClient(apiKey, apiSecret string, logger zerolog.Logger) ports.ShopifyClient {
	return &client{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		logger: logger,
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(shop string, accessToken string) (*goshopify.Client, error) {
	cl, err := goshopify.NewClient(c.app, shop, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return cl, nil
}

// ExchangeToken exchanges an OAuth authorization code for an access token.
func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}

	c.logger.Info().Str("shop", shop).Msg("OAuth token exchange completed")
	return token, nil
}

// GetProducts retrieves the first page of products for a shop.
func (c *client) GetProducts(ctx context.Context, shop string, accessToken string) ([]goshopify.Product, error) {
	cl, err := c.createClient(shop, accessToken)
	if err != nil {
		return nil, err
	}

	products, err := cl.Product.List(ctx, goshopify.ListOptions{Limit: 20})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
