package domain

import "context"

// contextKey is a type for context keys to avoid collisions
type contextKey string

const shopKey contextKey = "shop"

// WithShop returns a context carrying the shop domain.
func WithShop(ctx context.Context, shop string) context.Context {
	return context.WithValue(ctx, shopKey, shop)
}

// ShopFromContext extracts the shop domain from the context, or "".
func ShopFromContext(ctx context.Context) string {
	shop, _ := ctx.Value(shopKey).(string)
	return shop
}
