package service

import (
	"time"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

// WishlistProduct is a wishlist entry joined with its catalog product
type WishlistProduct struct {
	Product models.Product `json:"product"`
	AddedAt time.Time      `json:"added_at"`
}

// ResolveWishlist joins wishlist entries with the catalog, skipping ids the
// catalog no longer knows
func ResolveWishlist(c *catalog.Catalog, wishlist models.WishlistState) []WishlistProduct {
	out := make([]WishlistProduct, 0, len(wishlist.Items))
	for _, entry := range wishlist.Items {
		p, err := c.GetByID(entry.ProductID)
		if err != nil {
			continue
		}
		out = append(out, WishlistProduct{Product: p, AddedAt: entry.AddedAt})
	}
	return out
}
