package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductColor is one selectable colour of a product
type ProductColor struct {
	Name       string `json:"name"`
	Hex        string `json:"hex"`
	StyleClass string `json:"style_class"`
}

// Product represents a catalog product. Products are defined once at startup
// and never mutated.
type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Category      string           `json:"category"`
	Type          string           `json:"type"`
	Collection    string           `json:"collection"`
	Sizes         []string         `json:"sizes"`
	Colors        []ProductColor   `json:"colors"`
	Images        []string         `json:"images"`
	Features      []string         `json:"features"`
	Material      string           `json:"material"`
	Care          []string         `json:"care"`
	IsNew         bool             `json:"is_new"`
	IsFeatured    bool             `json:"is_featured"`
	IsOnSale      bool             `json:"is_on_sale"`
	Stock         int              `json:"stock"`
	Rating        float64          `json:"rating"`
	ReviewCount   int              `json:"review_count"`
	Tags          []string         `json:"tags"`
}

// ColorByName returns the product colour with the given name
func (p *Product) ColorByName(name string) (ProductColor, bool) {
	for _, c := range p.Colors {
		if c.Name == name {
			return c, true
		}
	}
	return ProductColor{}, false
}

// CartLineItem is one (product, size, colour) combination in the cart.
// The product is carried by value so a hydrated cart prices itself without
// a catalog lookup.
type CartLineItem struct {
	Product  Product      `json:"product"`
	Size     string       `json:"size"`
	Color    ProductColor `json:"color"`
	Quantity int          `json:"quantity"`
}

// Key returns the identity key of the line
func (li CartLineItem) Key() LineKey {
	return LineKey{ProductID: li.Product.ID, Size: li.Size, ColorName: li.Color.Name}
}

// Subtotal returns price * quantity for the line
func (li CartLineItem) Subtotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// LineKey identifies a cart line
type LineKey struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	ColorName string `json:"color_name"`
}

// CartState is the cart plus its derived aggregates. Total and ItemCount are
// only ever produced by the cart reducer.
type CartState struct {
	Items     []CartLineItem  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// WishlistEntry records when a product was wishlisted
type WishlistEntry struct {
	ProductID int64     `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// WishlistState is the wishlist plus its derived count
type WishlistState struct {
	Items     []WishlistEntry `json:"items"`
	ItemCount int             `json:"item_count"`
}
