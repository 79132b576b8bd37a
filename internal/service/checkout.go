package service

import (
	"context"
	"errors"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

// CheckoutPublisher receives completed simulated checkouts
type CheckoutPublisher interface {
	PublishCheckoutSimulated(ctx context.Context, event *models.CheckoutSimulatedEvent) error
}

// Pricing holds the order summary rules
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// Quote is the order summary shown next to the cart
type Quote struct {
	Subtotal             decimal.Decimal `json:"subtotal"`
	Shipping             decimal.Decimal `json:"shipping"`
	Tax                  decimal.Decimal `json:"tax"`
	Total                decimal.Decimal `json:"total"`
	FreeShipping         bool            `json:"free_shipping"`
	AmountToFreeShipping decimal.Decimal `json:"amount_to_free_shipping"`
}

// Receipt is the result of a simulated checkout
type Receipt struct {
	Reference string    `json:"reference"`
	Quote     Quote     `json:"quote"`
	ItemCount int       `json:"item_count"`
	PlacedAt  time.Time `json:"placed_at"`
}

// CheckoutService prices carts and runs the simulated checkout
type CheckoutService struct {
	pricing   Pricing
	delay     time.Duration
	publisher CheckoutPublisher
	logger    *zap.Logger
}

// NewCheckoutService creates a checkout service. publisher may be nil.
func NewCheckoutService(pricing Pricing, delay time.Duration, publisher CheckoutPublisher) *CheckoutService {
	return &CheckoutService{
		pricing:   pricing,
		delay:     delay,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Quote prices cart. Shipping is free above the threshold and for empty
// carts; tax applies to the subtotal only.
func (s *CheckoutService) Quote(cart models.CartState) Quote {
	subtotal := cart.Total
	q := Quote{
		Subtotal:             subtotal,
		Shipping:             decimal.Zero,
		AmountToFreeShipping: decimal.Zero,
	}

	if len(cart.Items) == 0 || subtotal.GreaterThan(s.pricing.FreeShippingThreshold) {
		q.FreeShipping = true
	} else {
		q.Shipping = s.pricing.ShippingFee
		q.AmountToFreeShipping = s.pricing.FreeShippingThreshold.Sub(subtotal)
	}

	q.Tax = subtotal.Mul(s.pricing.TaxRate).Round(2)
	q.Total = subtotal.Add(q.Shipping).Add(q.Tax)
	return q
}

// Checkout simulates placing an order for cart. It waits the configured
// delay, or until ctx is done, and leaves the cart untouched.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, cart models.CartState) (*Receipt, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	if len(cart.Items) == 0 {
		util.CheckoutsTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		util.CheckoutsTotal.WithLabelValues("cancelled").Inc()
		return nil, ctx.Err()
	case <-timer.C:
	}

	receipt := &Receipt{
		Reference: uuid.New().String(),
		Quote:     s.Quote(cart),
		ItemCount: cart.ItemCount,
		PlacedAt:  time.Now().UTC(),
	}
	util.CheckoutsTotal.WithLabelValues("simulated").Inc()

	s.logger.Info("Simulated checkout",
		zap.String("session_id", sessionID),
		zap.String("reference", receipt.Reference),
		zap.String("total", receipt.Quote.Total.StringFixed(2)))

	if s.publisher != nil {
		event := &models.CheckoutSimulatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCheckoutSimulated,
				SessionID: sessionID,
				Timestamp: receipt.PlacedAt,
			},
			Reference: receipt.Reference,
			Total:     receipt.Quote.Total,
			ItemCount: receipt.ItemCount,
		}
		if err := s.publisher.PublishCheckoutSimulated(ctx, event); err != nil {
			s.logger.Error("Failed to publish CheckoutSimulated event", zap.Error(err))
		}
	}

	return receipt, nil
}
