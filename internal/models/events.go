package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeCartUpdated       = "CART_UPDATED"
	EventTypeWishlistUpdated   = "WISHLIST_UPDATED"
	EventTypeCheckoutSimulated = "CHECKOUT_SIMULATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CartUpdatedEvent published after every cart reduction
type CartUpdatedEvent struct {
	BaseEvent
	Items     []CartItemData  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// WishlistUpdatedEvent published after every wishlist reduction
type WishlistUpdatedEvent struct {
	BaseEvent
	ProductIDs []int64 `json:"product_ids"`
	ItemCount  int     `json:"item_count"`
}

// CheckoutSimulatedEvent published when a simulated checkout completes
type CheckoutSimulatedEvent struct {
	BaseEvent
	Reference string          `json:"reference"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// CartItemData represents a cart line in events
type CartItemData struct {
	ProductID int64           `json:"product_id"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
