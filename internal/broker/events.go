package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventWriter is the part of Producer the publisher needs
type EventWriter interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// EventPublisher handles publishing shop events
type EventPublisher struct {
	writer  EventWriter
	timeout time.Duration
	logger  *zap.Logger
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(writer EventWriter) *EventPublisher {
	return &EventPublisher{
		writer:  writer,
		timeout: 5 * time.Second,
		logger:  util.GetLogger(),
	}
}

// PublishCartUpdated publishes CartUpdated event
func (ep *EventPublisher) PublishCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error {
	return ep.writer.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishWishlistUpdated publishes WishlistUpdated event
func (ep *EventPublisher) PublishWishlistUpdated(ctx context.Context, event *models.WishlistUpdatedEvent) error {
	return ep.writer.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// PublishCheckoutSimulated publishes CheckoutSimulated event
func (ep *EventPublisher) PublishCheckoutSimulated(ctx context.Context, event *models.CheckoutSimulatedEvent) error {
	return ep.writer.PublishEvent(ctx, sessionKey(event.SessionID), event)
}

// ForSession returns a shop subscriber that publishes the session's changes
func (ep *EventPublisher) ForSession(sessionID string) *SessionSubscriber {
	return &SessionSubscriber{publisher: ep, sessionID: sessionID}
}

// SessionSubscriber turns shop changes into events. Publishing happens off
// the command path; failures are logged and dropped.
type SessionSubscriber struct {
	publisher *EventPublisher
	sessionID string
}

// CartChanged publishes a CART_UPDATED event
func (s *SessionSubscriber) CartChanged(_ context.Context, cart models.CartState) {
	items := make([]models.CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = models.CartItemData{
			ProductID: item.Product.ID,
			Size:      item.Size,
			Color:     item.Color.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
		}
	}

	event := &models.CartUpdatedEvent{
		BaseEvent: s.base(models.EventTypeCartUpdated),
		Items:     items,
		Total:     cart.Total,
		ItemCount: cart.ItemCount,
	}
	s.async(event.EventType, func(ctx context.Context) error {
		return s.publisher.PublishCartUpdated(ctx, event)
	})
}

// WishlistChanged publishes a WISHLIST_UPDATED event
func (s *SessionSubscriber) WishlistChanged(_ context.Context, wishlist models.WishlistState) {
	ids := make([]int64, len(wishlist.Items))
	for i, entry := range wishlist.Items {
		ids[i] = entry.ProductID
	}

	event := &models.WishlistUpdatedEvent{
		BaseEvent:  s.base(models.EventTypeWishlistUpdated),
		ProductIDs: ids,
		ItemCount:  wishlist.ItemCount,
	}
	s.async(event.EventType, func(ctx context.Context) error {
		return s.publisher.PublishWishlistUpdated(ctx, event)
	})
}

func (s *SessionSubscriber) base(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		SessionID: s.sessionID,
		Timestamp: time.Now(),
	}
}

func (s *SessionSubscriber) async(eventType string, publish func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.publisher.timeout)
		defer cancel()

		if err := publish(ctx); err != nil {
			util.EventsPublishFailed.WithLabelValues(eventType).Inc()
			s.publisher.logger.Warn("Failed to publish shop event",
				zap.String("event_type", eventType),
				zap.String("session_id", s.sessionID),
				zap.Error(err))
		}
	}()
}

func sessionKey(sessionID string) string {
	return "session-" + sessionID
}

// EventHandler routes incoming shop events to registered callbacks
type EventHandler struct {
	onCartUpdated       func(context.Context, *models.CartUpdatedEvent) error
	onWishlistUpdated   func(context.Context, *models.WishlistUpdatedEvent) error
	onCheckoutSimulated func(context.Context, *models.CheckoutSimulatedEvent) error
	logger              *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnCartUpdated registers a handler for CartUpdated events
func (eh *EventHandler) OnCartUpdated(handler func(context.Context, *models.CartUpdatedEvent) error) {
	eh.onCartUpdated = handler
}

// OnWishlistUpdated registers a handler for WishlistUpdated events
func (eh *EventHandler) OnWishlistUpdated(handler func(context.Context, *models.WishlistUpdatedEvent) error) {
	eh.onWishlistUpdated = handler
}

// OnCheckoutSimulated registers a handler for CheckoutSimulated events
func (eh *EventHandler) OnCheckoutSimulated(handler func(context.Context, *models.CheckoutSimulatedEvent) error) {
	eh.onCheckoutSimulated = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeCartUpdated:
		if eh.onCartUpdated != nil {
			var event models.CartUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CartUpdated event: %w", err)
			}
			return eh.onCartUpdated(ctx, &event)
		}

	case models.EventTypeWishlistUpdated:
		if eh.onWishlistUpdated != nil {
			var event models.WishlistUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal WishlistUpdated event: %w", err)
			}
			return eh.onWishlistUpdated(ctx, &event)
		}

	case models.EventTypeCheckoutSimulated:
		if eh.onCheckoutSimulated != nil {
			var event models.CheckoutSimulatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CheckoutSimulated event: %w", err)
			}
			return eh.onCheckoutSimulated(ctx, &event)
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("event_type", baseEvent.EventType))
	}

	return nil
}
