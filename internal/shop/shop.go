package shop

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// ErrInvalidQuantity is returned when an add asks for less than one unit
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// DefaultQuantity is used by callers when an add carries no quantity
const DefaultQuantity = 1

// MaxLineQuantity bounds the units on a single cart line
const MaxLineQuantity = math.MaxInt32

// Phase is the persistence synchronisation phase of one state instance
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseHydrating
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseHydrating:
		return "hydrating"
	case PhaseReady:
		return "ready"
	}
	return "unknown"
}

// Subscriber is notified after every successful reduction of a state
// instance that has reached PhaseReady
type Subscriber interface {
	CartChanged(ctx context.Context, cart models.CartState)
	WishlistChanged(ctx context.Context, wishlist models.WishlistState)
}

// Source supplies previously persisted items at hydration. A false ok with
// a nil error means nothing was stored.
type Source interface {
	LoadCartItems(ctx context.Context) (items []models.CartLineItem, ok bool, err error)
	LoadWishlistItems(ctx context.Context) (items []models.WishlistEntry, ok bool, err error)
}

// Shop owns one cart and one wishlist. All mutation goes through its
// command methods, which are serialised by an internal lock.
type Shop struct {
	mu            sync.Mutex
	cart          models.CartState
	wishlist      models.WishlistState
	cartPhase     Phase
	wishlistPhase Phase
	subscribers   []Subscriber
	clock         func() time.Time
	logger        *zap.Logger
}

// Option configures a Shop
type Option func(*Shop)

// WithClock overrides the wishlist timestamp clock
func WithClock(clock func() time.Time) Option {
	return func(s *Shop) { s.clock = clock }
}

// WithSubscriber registers a subscriber at construction
func WithSubscriber(sub Subscriber) Option {
	return func(s *Shop) { s.subscribers = append(s.subscribers, sub) }
}

// WithLogger overrides the package logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Shop) { s.logger = logger }
}

// New creates an empty, uninitialized shop
func New(opts ...Option) *Shop {
	s := &Shop{
		cart:     EmptyCart(),
		wishlist: EmptyWishlist(),
		clock:    time.Now,
		logger:   util.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers sub for future changes
func (s *Shop) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, sub)
}

// Hydrate loads persisted state from src exactly once per state instance.
// Missing or unreadable data leaves that instance empty; either way it ends
// Ready. A nil src marks both instances Ready without loading anything.
func (s *Shop) Hydrate(ctx context.Context, src Source) {
	ctx, span := util.StartSpan(ctx, "Shop.Hydrate")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cartPhase == PhaseUninitialized {
		s.cartPhase = PhaseHydrating
		if src != nil {
			s.hydrateCart(ctx, src)
		}
		s.cartPhase = PhaseReady
	}

	if s.wishlistPhase == PhaseUninitialized {
		s.wishlistPhase = PhaseHydrating
		if src != nil {
			s.hydrateWishlist(ctx, src)
		}
		s.wishlistPhase = PhaseReady
	}
}

func (s *Shop) hydrateCart(ctx context.Context, src Source) {
	items, ok, err := src.LoadCartItems(ctx)
	switch {
	case err != nil:
		util.HydrationsTotal.WithLabelValues("cart", "failed").Inc()
		s.logger.Warn("Error loading cart from store, starting empty", zap.Error(err))
	case !ok:
		util.HydrationsTotal.WithLabelValues("cart", "absent").Inc()
		s.logger.Debug("No stored cart, starting empty")
	default:
		util.HydrationsTotal.WithLabelValues("cart", "loaded").Inc()
		s.cart = ReduceCart(s.cart, LoadCart{Items: items})
	}
}

func (s *Shop) hydrateWishlist(ctx context.Context, src Source) {
	items, ok, err := src.LoadWishlistItems(ctx)
	switch {
	case err != nil:
		util.HydrationsTotal.WithLabelValues("wishlist", "failed").Inc()
		s.logger.Warn("Error loading wishlist from store, starting empty", zap.Error(err))
	case !ok:
		util.HydrationsTotal.WithLabelValues("wishlist", "absent").Inc()
		s.logger.Debug("No stored wishlist, starting empty")
	default:
		util.HydrationsTotal.WithLabelValues("wishlist", "loaded").Inc()
		s.wishlist = ReduceWishlist(s.wishlist, LoadWishlist{Items: items})
	}
}

// CartPhase returns the synchronisation phase of the cart
func (s *Shop) CartPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartPhase
}

// WishlistPhase returns the synchronisation phase of the wishlist
func (s *Shop) WishlistPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistPhase
}

// AddToCart adds quantity units of product in size and color
func (s *Shop) AddToCart(ctx context.Context, product models.Product, size string, color models.ProductColor, quantity int) error {
	if quantity <= 0 {
		util.InvalidCommandsTotal.WithLabelValues("non_positive_quantity").Inc()
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := CartQuantity(s.cart, product.ID, size, color.Name)
	if quantity > MaxLineQuantity-existing {
		util.InvalidCommandsTotal.WithLabelValues("line_quantity_overflow").Inc()
		return ErrInvalidQuantity
	}
	s.dispatchCart(ctx, "add", AddItem{Product: product, Size: size, Color: color, Quantity: quantity})
	return nil
}

// RemoveFromCart removes the line for productID/size/colorName, if any
func (s *Shop) RemoveFromCart(ctx context.Context, productID int64, size, colorName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchCart(ctx, "remove", RemoveItem{Key: lineKey(productID, size, colorName)})
}

// UpdateCartQuantity sets the line quantity; quantity <= 0 removes the line
// and quantities above MaxLineQuantity are capped
func (s *Shop) UpdateCartQuantity(ctx context.Context, productID int64, size, colorName string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchCart(ctx, "update_quantity", UpdateQuantity{Key: lineKey(productID, size, colorName), Quantity: quantity})
}

// ClearCart empties the cart
func (s *Shop) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchCart(ctx, "clear", ClearCart{})
}

// AddToWishlist wishlists productID, keeping the original timestamp when it
// is already present
func (s *Shop) AddToWishlist(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyWishlist(ctx, "add", AddToWishlist{ProductID: productID, AddedAt: s.clock()})
}

// RemoveFromWishlist removes productID, if present
func (s *Shop) RemoveFromWishlist(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyWishlist(ctx, "remove", RemoveFromWishlist{ProductID: productID})
}

// IsInWishlist reports whether productID is wishlisted
func (s *Shop) IsInWishlist(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WishlistContains(s.wishlist, productID)
}

// IsInCart reports whether the cart holds productID; empty size or colour
// name match any line of the product
func (s *Shop) IsInCart(productID int64, size, colorName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CartContains(s.cart, productID, size, colorName)
}

// CartItemQuantity returns the quantity of the matching line, or 0
func (s *Shop) CartItemQuantity(productID int64, size, colorName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CartQuantity(s.cart, productID, size, colorName)
}

// Cart returns a snapshot of the cart
func (s *Shop) Cart() models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.cart
	snapshot.Items = cloneItems(s.cart.Items)
	return snapshot
}

// Wishlist returns a snapshot of the wishlist
func (s *Shop) Wishlist() models.WishlistState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.wishlist
	snapshot.Items = make([]models.WishlistEntry, len(s.wishlist.Items))
	copy(snapshot.Items, s.wishlist.Items)
	return snapshot
}

// dispatchCart must be called with s.mu held
func (s *Shop) dispatchCart(ctx context.Context, name string, cmd CartCommand) {
	s.cart = ReduceCart(s.cart, cmd)
	util.CartCommandsTotal.WithLabelValues(name).Inc()

	if s.cartPhase != PhaseReady {
		return
	}
	for _, sub := range s.subscribers {
		sub.CartChanged(ctx, s.cart)
	}
}

// applyWishlist must be called with s.mu held
func (s *Shop) applyWishlist(ctx context.Context, name string, cmd WishlistCommand) {
	s.wishlist = ReduceWishlist(s.wishlist, cmd)
	util.WishlistCommandsTotal.WithLabelValues(name).Inc()

	if s.wishlistPhase != PhaseReady {
		return
	}
	for _, sub := range s.subscribers {
		sub.WishlistChanged(ctx, s.wishlist)
	}
}

func lineKey(productID int64, size, colorName string) models.LineKey {
	return models.LineKey{ProductID: productID, Size: size, ColorName: colorName}
}
