package shop

import "storefront/internal/models"

// WishlistContains reports whether productID is wishlisted
func WishlistContains(state models.WishlistState, productID int64) bool {
	return wishlistIndex(state.Items, productID) >= 0
}

// CartContains reports whether the cart holds productID. An empty size or
// colour name matches any line of the product.
func CartContains(state models.CartState, productID int64, size, colorName string) bool {
	if size == "" || colorName == "" {
		for _, item := range state.Items {
			if item.Product.ID == productID {
				return true
			}
		}
		return false
	}
	return findLine(state.Items, models.LineKey{ProductID: productID, Size: size, ColorName: colorName}) >= 0
}

// CartQuantity returns the quantity of the matching line, or 0
func CartQuantity(state models.CartState, productID int64, size, colorName string) int {
	i := findLine(state.Items, models.LineKey{ProductID: productID, Size: size, ColorName: colorName})
	if i < 0 {
		return 0
	}
	return state.Items[i].Quantity
}
