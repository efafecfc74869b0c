package pubsub

import (
	"context"
	"sync"

	"shopdash/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderEventChannel represents a subscription channel
type OrderEventChannel struct {
	ID     string
	Shop   string
	Events chan *domain.OrderEvent
	ctx    context.Context
	cancel context.CancelFunc
}

// OrderPubSub fans ingested orders out to live-feed subscribers. Shop is
// the only filter; every subscriber is scoped to one shop.
type OrderPubSub struct {
	mu       sync.RWMutex
	channels map[string]*OrderEventChannel
	logger   zerolog.Logger
}

// NewOrderPubSub creates a new order pub/sub system
func NewOrderPubSub(logger zerolog.Logger) *OrderPubSub {
	return &OrderPubSub{
		channels: make(map[string]*OrderEventChannel),
		logger:   logger,
	}
}

// Subscribe creates a subscription for one shop's order events. The
// subscription is removed when ctx is cancelled.
func (ps *OrderPubSub) Subscribe(ctx context.Context, shop string) *OrderEventChannel {
	subCtx, cancel := context.WithCancel(ctx)

	channel := &OrderEventChannel{
		ID:     uuid.NewString(),
		Shop:   shop,
		Events: make(chan *domain.OrderEvent, 16),
		ctx:    subCtx,
		cancel: cancel,
	}

	ps.mu.Lock()
	ps.channels[channel.ID] = channel
	ps.mu.Unlock()

	ps.logger.Debug().
		Str("channelId", channel.ID).
		Str("shop", shop).
		Msg("Order feed subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(channel.ID)
	}()

	return channel
}

// Unsubscribe removes a subscription channel
func (ps *OrderPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Events)
	channel.cancel()
	delete(ps.channels, channelID)

	ps.logger.Debug().
		Str("channelId", channelID).
		Msg("Order feed subscription removed")
}

// Publish broadcasts an order event to the shop's subscribers. Delivery
// is non-blocking; a subscriber with a full buffer misses the event.
func (ps *OrderPubSub) Publish(event *domain.OrderEvent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, channel := range ps.channels {
		if channel.Shop != event.Shop {
			continue
		}
		select {
		case channel.Events <- event:
		case <-channel.ctx.Done():
		default:
			ps.logger.Warn().
				Str("channelId", channel.ID).
				Msg("Channel buffer full, dropping event")
		}
	}
}

// ActiveSubscriptions returns the number of live channels.
func (ps *OrderPubSub) ActiveSubscriptions() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.channels)
}
