package ports

import (
	"context"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the outbound Shopify Admin API surface this app
// uses: the OAuth token exchange during install and the products read
// behind the dashboard's products page.
type ShopifyClient interface {
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)
	GetProducts(ctx context.Context, shop string, accessToken string) ([]goshopify.Product, error)
}
