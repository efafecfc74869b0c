package webhook_handlers

import (
	"context"

	"shopdash/internal/application"
	"shopdash/internal/domain"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related webhook events
type OrderHandler struct {
	ingestion *application.IngestionService
	logger    zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(ingestion *application.IngestionService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
// Updates and payment events reuse the create path: the upsert keyed by
// order_id makes them in-place updates of the mutable fields.
func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == "orders/create" ||
		topic == "orders/updated" ||
		topic == "orders/paid" ||
		topic == "orders/cancelled"
}

// Handle processes an order webhook event
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	order, err := h.ingestion.Ingest(ctx, event)
	if err != nil {
		return err
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Str("orderId", order.OrderID).
		Msg("Processed order webhook event")

	return nil
}
