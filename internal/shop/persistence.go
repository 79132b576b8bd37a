package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Default storage keys
const (
	DefaultCartKey     = "jatoll-cart"
	DefaultWishlistKey = "jatoll-wishlist"
)

// Store is an opaque string key/value store. Get reports absence with
// ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Persistence hydrates a Shop from a Store and writes every later change
// back under the same keys. Write failures are logged and dropped.
type Persistence struct {
	store       Store
	cartKey     string
	wishlistKey string
	logger      *zap.Logger
}

// NewPersistence creates a persistence subscriber over store
func NewPersistence(store Store, cartKey, wishlistKey string) *Persistence {
	if cartKey == "" {
		cartKey = DefaultCartKey
	}
	if wishlistKey == "" {
		wishlistKey = DefaultWishlistKey
	}
	return &Persistence{
		store:       store,
		cartKey:     cartKey,
		wishlistKey: wishlistKey,
		logger:      util.GetLogger(),
	}
}

// LoadCartItems reads and decodes the stored cart lines. Lines with a
// quantity below one are dropped.
func (p *Persistence) LoadCartItems(ctx context.Context) ([]models.CartLineItem, bool, error) {
	raw, ok, err := p.store.Get(ctx, p.cartKey)
	if err != nil || !ok {
		return nil, ok, err
	}

	var items []models.CartLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, fmt.Errorf("failed to decode cart %q: %w", p.cartKey, err)
	}

	valid := items[:0]
	for _, item := range items {
		if item.Quantity < 1 {
			p.logger.Warn("Dropping stored cart line with non-positive quantity",
				zap.Int64("product_id", item.Product.ID),
				zap.Int("quantity", item.Quantity))
			continue
		}
		valid = append(valid, item)
	}
	return valid, true, nil
}

// LoadWishlistItems reads and decodes the stored wishlist entries
func (p *Persistence) LoadWishlistItems(ctx context.Context) ([]models.WishlistEntry, bool, error) {
	raw, ok, err := p.store.Get(ctx, p.wishlistKey)
	if err != nil || !ok {
		return nil, ok, err
	}

	var items []models.WishlistEntry
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, fmt.Errorf("failed to decode wishlist %q: %w", p.wishlistKey, err)
	}
	return items, true, nil
}

// CartChanged writes the cart items through to the store
func (p *Persistence) CartChanged(ctx context.Context, cart models.CartState) {
	p.write(ctx, "cart", p.cartKey, cart.Items)
}

// WishlistChanged writes the wishlist entries through to the store
func (p *Persistence) WishlistChanged(ctx context.Context, wishlist models.WishlistState) {
	p.write(ctx, "wishlist", p.wishlistKey, wishlist.Items)
}

func (p *Persistence) write(ctx context.Context, state, key string, items interface{}) {
	start := time.Now()
	defer func() {
		util.PersistWriteLatency.Observe(time.Since(start).Seconds())
	}()

	data, err := json.Marshal(items)
	if err != nil {
		util.PersistWritesFailed.WithLabelValues(state).Inc()
		p.logger.Error("Failed to encode state for store", zap.String("key", key), zap.Error(err))
		return
	}

	if err := p.store.Set(ctx, key, string(data)); err != nil {
		util.PersistWritesFailed.WithLabelValues(state).Inc()
		p.logger.Warn("Failed to persist state, keeping in-memory copy",
			zap.String("key", key),
			zap.Error(err))
	}
}
