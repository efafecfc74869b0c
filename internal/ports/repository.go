package ports

import (
	"context"

	"shopdash/internal/domain"
)

// OrderRepository defines the interface for order persistence.
// Every read is scoped by shop; implementations must be safe for
// concurrent use.
type OrderRepository interface {
	// UpsertOrder inserts the order or, when the order_id already exists,
	// updates total_price, status, product_name and order_name in place.
	// Customer identity and created_at are immutable after first insert.
	UpsertOrder(ctx context.Context, order *domain.Order) error
	ListOrders(ctx context.Context, shop string) ([]*domain.Order, error)
	// ListOrdersByCustomerSort returns the shop's orders ordered by
	// customer_name, then created_at, for grouping in application code.
	ListOrdersByCustomerSort(ctx context.Context, shop string) ([]*domain.Order, error)
}

// TokenRepository defines the interface for per-shop access token
// persistence. SaveToken is a last-write-wins upsert.
type TokenRepository interface {
	SaveToken(ctx context.Context, token *domain.ShopToken) error
	// GetToken returns nil, nil when the shop has no stored token.
	GetToken(ctx context.Context, shop string) (*domain.ShopToken, error)
}

// SessionRepository defines the interface for OAuth session persistence.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	// GetSession returns nil, nil when no session exists for the state.
	GetSession(ctx context.Context, state string) (*domain.Session, error)
	DeleteSession(ctx context.Context, state string) error
}
