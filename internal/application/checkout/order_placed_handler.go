package checkout

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MessagePublisher forwards integration events to an external broker
type MessagePublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// OrderPlacedHandler forwards OrderPlacedEvent to downstream consumers
// (fulfilment, sales follow-up for custom quotes) through the message broker.
type OrderPlacedHandler struct {
	publisher MessagePublisher
	topic     string
	logger    *zap.Logger
}

// NewOrderPlacedHandler creates a new handler publishing to topic
func NewOrderPlacedHandler(publisher MessagePublisher, topic string, logger *zap.Logger) *OrderPlacedHandler {
	return &OrderPlacedHandler{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced}
}

// Handle publishes the event keyed by order ID so all messages of one order land
// on the same partition.
func (h *OrderPlacedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*order.OrderPlacedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", order.EventTypeOrderPlaced),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderPlaced, event.EventType())
	}

	if err := h.publisher.PublishEvent(ctx, h.topic, placed.OrderID.String(), placed); err != nil {
		h.logger.Error("failed to forward order placed event",
			zap.String("order_id", placed.OrderID.String()),
			zap.String("topic", h.topic),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("order placed event forwarded",
		zap.String("order_id", placed.OrderID.String()),
		zap.String("order_number", placed.OrderNumber),
		zap.Bool("requires_custom_quote", placed.RequiresCustomQuote),
	)
	return nil
}

var _ shared.EventHandler = (*OrderPlacedHandler)(nil)
