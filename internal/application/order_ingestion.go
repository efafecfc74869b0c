package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shopdash/internal/domain"
	"shopdash/internal/infrastructure/metrics"
	"shopdash/internal/infrastructure/pubsub"
	"shopdash/internal/ports"
	apperrors "shopdash/pkg/errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// defaultProductName is used when an order carries no line items.
const defaultProductName = "Unknown Product"

// orderPayload is the subset of Shopify's order JSON this app persists.
type orderPayload struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"name"`
	LineItems []struct {
		Title string `json:"title"`
	} `json:"line_items"`
	Customer *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	} `json:"customer"`
	TotalPrice      string `json:"total_price"`
	CreatedAt       string `json:"created_at"`
	FinancialStatus string `json:"financial_status"`
}

// IngestionService turns verified order webhooks into durable rows.
// Redelivery of the same order is safe: persistence is an upsert keyed by
// order_id, so repeating a delivery never creates duplicate rows or
// rewrites first-delivery fields.
type IngestionService struct {
	orders  ports.OrderRepository
	cache   ports.Cache
	pubsub  *pubsub.OrderPubSub
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewIngestionService creates a new order ingestion service. cache may be
// nil when no cache is configured.
func NewIngestionService(
	orders ports.OrderRepository,
	cache ports.Cache,
	ps *pubsub.OrderPubSub,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *IngestionService {
	return &IngestionService{
		orders:  orders,
		cache:   cache,
		pubsub:  ps,
		metrics: m,
		logger:  logger,
	}
}

// ParseOrder extracts the persisted fields from a raw order payload.
// Returns ErrValidation when the payload is not a usable order.
func ParseOrder(shop string, payload []byte) (*domain.Order, error) {
	var p orderPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, &apperrors.ErrValidation{Message: fmt.Sprintf("invalid order payload: %v", err)}
	}

	orderID := p.ID.String()
	if orderID == "" {
		return nil, &apperrors.ErrValidation{Message: "order payload has no id"}
	}

	order := &domain.Order{
		OrderID:     orderID,
		Shop:        shop,
		OrderName:   p.Name,
		ProductName: defaultProductName,
		Status:      p.FinancialStatus,
	}

	if len(p.LineItems) > 0 && p.LineItems[0].Title != "" {
		order.ProductName = p.LineItems[0].Title
	}

	if p.Customer != nil {
		order.CustomerName = strings.TrimSpace(p.Customer.FirstName + " " + p.Customer.LastName)
		order.CustomerEmail = p.Customer.Email
	}

	if p.TotalPrice != "" {
		price, err := decimal.NewFromString(p.TotalPrice)
		if err != nil {
			return nil, &apperrors.ErrValidation{Message: fmt.Sprintf("invalid total_price %q", p.TotalPrice)}
		}
		order.TotalPrice = price
	}

	order.CreatedAt = time.Now().UTC()
	if p.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339, p.CreatedAt)
		if err != nil {
			return nil, &apperrors.ErrValidation{Message: fmt.Sprintf("invalid created_at %q", p.CreatedAt)}
		}
		order.CreatedAt = created.UTC()
	}

	return order, nil
}

// Ingest parses and persists one order payload, then invalidates the
// shop's cached reads and publishes a live-feed event. The write is the
// only durable side effect; everything after it is best-effort.
func (s *IngestionService) Ingest(ctx context.Context, event *domain.WebhookEvent) (*domain.Order, error) {
	order, err := ParseOrder(event.Shop, event.Payload)
	if err != nil {
		s.metrics.WebhooksMalformed.Inc()
		return nil, err
	}

	if err := s.orders.UpsertOrder(ctx, order); err != nil {
		s.metrics.WebhooksFailed.Inc()
		return nil, err
	}
	s.metrics.OrdersPersisted.Inc()

	s.logger.Info().
		Str("shop", order.Shop).
		Str("orderId", order.OrderID).
		Str("status", order.Status).
		Str("webhookId", event.WebhookID).
		Msg("Order persisted")

	if s.cache != nil {
		if err := s.cache.Delete(ctx, shopCacheKeys(order.Shop)...); err != nil {
			s.logger.Warn().Err(err).Str("shop", order.Shop).Msg("Failed to invalidate cache")
		}
	}

	s.pubsub.Publish(&domain.OrderEvent{
		Topic: event.Topic,
		Shop:  order.Shop,
		Order: order,
	})

	return order, nil
}
