package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shopdash/internal/domain"
	"shopdash/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type orderRepository struct {
	db     *sql.DB
	driver string
	logger zerolog.Logger
}

// NewOrderRepository creates a new order repository backed by database/sql.
func NewOrderRepository(db *sql.DB, driver string, logger zerolog.Logger) ports.OrderRepository {
	return &orderRepository{db: db, driver: driver, logger: logger}
}

// UpsertOrder inserts the order or updates the mutable fields in place.
// The conflict target is order_id; customer_name, customer_email, shop and
// created_at keep their first-delivery values, so webhook redelivery is
// safe to re-execute any number of times.
func (r *orderRepository) UpsertOrder(ctx context.Context, order *domain.Order) error {
	query := rebind(r.driver, `
		INSERT INTO shop_orders
			(order_id, shop, order_name, product_name, customer_name, customer_email, total_price, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id) DO UPDATE SET
			total_price = excluded.total_price,
			status = excluded.status,
			product_name = excluded.product_name,
			order_name = excluded.order_name
	`)

	_, err := r.db.ExecContext(ctx, query,
		order.OrderID,
		order.Shop,
		order.OrderName,
		order.ProductName,
		order.CustomerName,
		order.CustomerEmail,
		order.TotalPrice.String(),
		order.CreatedAt,
		order.Status,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("shop", order.Shop).Str("orderId", order.OrderID).Msg("Failed to upsert order")
		return fmt.Errorf("failed to upsert order: %w", err)
	}

	return nil
}

// ListOrders returns all orders for a shop, newest first.
func (r *orderRepository) ListOrders(ctx context.Context, shop string) ([]*domain.Order, error) {
	query := rebind(r.driver, `
		SELECT order_id, shop, order_name, product_name, customer_name, customer_email, total_price, created_at, status
		FROM shop_orders
		WHERE shop = ?
		ORDER BY created_at DESC
	`)
	return r.queryOrders(ctx, query, shop)
}

// ListOrdersByCustomerSort returns the shop's orders ordered by
// customer_name then created_at, the order the customer grouping walks.
func (r *orderRepository) ListOrdersByCustomerSort(ctx context.Context, shop string) ([]*domain.Order, error) {
	query := rebind(r.driver, `
		SELECT order_id, shop, order_name, product_name, customer_name, customer_email, total_price, created_at, status
		FROM shop_orders
		WHERE shop = ?
		ORDER BY customer_name, customer_email, created_at
	`)
	return r.queryOrders(ctx, query, shop)
}

func (r *orderRepository) queryOrders(ctx context.Context, query, shop string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		var order domain.Order
		var totalPrice string

		if err := rows.Scan(
			&order.OrderID,
			&order.Shop,
			&order.OrderName,
			&order.ProductName,
			&order.CustomerName,
			&order.CustomerEmail,
			&totalPrice,
			&order.CreatedAt,
			&order.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		order.TotalPrice, err = decimal.NewFromString(totalPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid total_price %q for order %s: %w", totalPrice, order.OrderID, err)
		}

		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}
