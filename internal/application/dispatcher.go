package application

import (
	"context"
	"fmt"

	"shopdash/internal/domain"

	"github.com/rs/zerolog"
)

// WebhookHandler processes webhook events for the topics it claims.
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes verified webhook events to registered handlers.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates a new webhook dispatcher
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler to the dispatch list.
func (d *WebhookDispatcher) RegisterHandler(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch hands the event to every handler claiming its topic. The first
// handler error aborts dispatch so the caller can surface a retryable
// status to Shopify.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	handled := false
	for _, handler := range d.handlers {
		if !handler.CanHandle(event.Topic) {
			continue
		}
		handled = true
		if err := handler.Handle(ctx, event); err != nil {
			return fmt.Errorf("handler failed for topic %s: %w", event.Topic, err)
		}
	}

	if !handled {
		d.logger.Warn().
			Str("topic", event.Topic).
			Str("shop", event.Shop).
			Msg("No handler registered for webhook topic")
	}

	return nil
}
