package shop

import (
	"time"

	"storefront/internal/models"
)

// WishlistCommand is one of AddToWishlist, RemoveFromWishlist or LoadWishlist
type WishlistCommand interface {
	wishlistCommand()
}

// AddToWishlist records ProductID at AddedAt unless it is already present
type AddToWishlist struct {
	ProductID int64
	AddedAt   time.Time
}

// RemoveFromWishlist drops ProductID, if present
type RemoveFromWishlist struct {
	ProductID int64
}

// LoadWishlist replaces the entries wholesale, used at hydration
type LoadWishlist struct {
	Items []models.WishlistEntry
}

func (AddToWishlist) wishlistCommand()      {}
func (RemoveFromWishlist) wishlistCommand() {}
func (LoadWishlist) wishlistCommand()       {}

// EmptyWishlist returns the zero wishlist state
func EmptyWishlist() models.WishlistState {
	return models.WishlistState{Items: []models.WishlistEntry{}}
}

// ReduceWishlist applies cmd to state and returns the next state
func ReduceWishlist(state models.WishlistState, cmd WishlistCommand) models.WishlistState {
	switch c := cmd.(type) {
	case AddToWishlist:
		if wishlistIndex(state.Items, c.ProductID) >= 0 {
			return state
		}
		items := make([]models.WishlistEntry, len(state.Items), len(state.Items)+1)
		copy(items, state.Items)
		items = append(items, models.WishlistEntry{ProductID: c.ProductID, AddedAt: c.AddedAt})
		return models.WishlistState{Items: items, ItemCount: len(items)}

	case RemoveFromWishlist:
		items := make([]models.WishlistEntry, 0, len(state.Items))
		for _, entry := range state.Items {
			if entry.ProductID != c.ProductID {
				items = append(items, entry)
			}
		}
		return models.WishlistState{Items: items, ItemCount: len(items)}

	case LoadWishlist:
		items := make([]models.WishlistEntry, len(c.Items))
		copy(items, c.Items)
		return models.WishlistState{Items: items, ItemCount: len(items)}
	}

	return state
}

func wishlistIndex(items []models.WishlistEntry, productID int64) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
