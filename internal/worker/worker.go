package worker

import (
	"context"
	"sync/atomic"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// ActivityWorker consumes shop events and records what it sees as metrics
type ActivityWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger

	cartEvents     atomic.Int64
	wishlistEvents atomic.Int64
	checkouts      atomic.Int64
}

// NewActivityWorker creates a new activity worker. consumer may be nil when
// the worker is only used as an event sink.
func NewActivityWorker(consumer *broker.Consumer) *ActivityWorker {
	w := &ActivityWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnCartUpdated(w.handleCartUpdated)
	w.eventHandler.OnWishlistUpdated(w.handleWishlistUpdated)
	w.eventHandler.OnCheckoutSimulated(w.handleCheckoutSimulated)

	return w
}

// Handler returns the event router used by Start
func (w *ActivityWorker) Handler() *broker.EventHandler {
	return w.eventHandler
}

// Start starts the worker
func (w *ActivityWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting activity worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ActivityWorker) Stop() error {
	w.logger.Info("Stopping activity worker",
		zap.Int64("cart_events", w.cartEvents.Load()),
		zap.Int64("wishlist_events", w.wishlistEvents.Load()),
		zap.Int64("checkouts", w.checkouts.Load()))
	return w.consumer.Close()
}

// Counts returns the number of events handled per kind
func (w *ActivityWorker) Counts() (cart, wishlist, checkouts int64) {
	return w.cartEvents.Load(), w.wishlistEvents.Load(), w.checkouts.Load()
}

func (w *ActivityWorker) handleCartUpdated(_ context.Context, event *models.CartUpdatedEvent) error {
	w.cartEvents.Add(1)
	value, _ := event.Total.Float64()
	util.ObservedCartValue.Observe(value)
	util.ObservedCartItems.Observe(float64(event.ItemCount))
	return nil
}

func (w *ActivityWorker) handleWishlistUpdated(_ context.Context, event *models.WishlistUpdatedEvent) error {
	w.wishlistEvents.Add(1)
	util.ObservedWishlistItems.Observe(float64(event.ItemCount))
	return nil
}

func (w *ActivityWorker) handleCheckoutSimulated(_ context.Context, event *models.CheckoutSimulatedEvent) error {
	w.checkouts.Add(1)
	w.logger.Info("Simulated checkout observed",
		zap.String("session_id", event.SessionID),
		zap.String("reference", event.Reference),
		zap.String("total", event.Total.StringFixed(2)))
	return nil
}
