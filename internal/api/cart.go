package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/models"
	"storefront/internal/service"
	"storefront/internal/shop"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest adds a product line; a missing quantity means one
type AddCartItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

// UpdateCartItemRequest sets a line's quantity; zero or less removes it
type UpdateCartItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  *int   `json:"quantity" binding:"required"`
}

// RemoveCartItemRequest identifies the line to drop
type RemoveCartItemRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// getCart returns the cart with its order summary
func (h *Handler) getCart(c *gin.Context) {
	h.respondCart(c, h.shopFor(c).Cart())
}

// addCartItem handles add to cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	product, err := h.catalog.GetByID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return
	}

	color, ok := product.ColorByName(req.Color)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown color for product",
		})
		return
	}

	quantity := shop.DefaultQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	sh := h.shopFor(c)
	if err := sh.AddToCart(c.Request.Context(), product, req.Size, color, quantity); err != nil {
		if errors.Is(err, shop.ErrInvalidQuantity) {
			badRequest(c, "Invalid quantity", err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to add item",
			"details": err.Error(),
		})
		return
	}

	h.respondCart(c, sh.Cart())
}

// updateCartItem handles quantity changes
func (h *Handler) updateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	sh := h.shopFor(c)
	sh.UpdateCartQuantity(c.Request.Context(), req.ProductID, req.Size, req.Color, *req.Quantity)
	h.respondCart(c, sh.Cart())
}

// removeCartItem handles line removal
func (h *Handler) removeCartItem(c *gin.Context) {
	var req RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	sh := h.shopFor(c)
	sh.RemoveFromCart(c.Request.Context(), req.ProductID, req.Size, req.Color)
	h.respondCart(c, sh.Cart())
}

// clearCart empties the cart
func (h *Handler) clearCart(c *gin.Context) {
	sh := h.shopFor(c)
	sh.ClearCart(c.Request.Context())
	h.respondCart(c, sh.Cart())
}

// cartContains reports whether a product (optionally size/colour) is in the cart
func (h *Handler) cartContains(c *gin.Context) {
	productID, ok := productIDParam(c, c.Query("product_id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"in_cart":    h.shopFor(c).IsInCart(productID, c.Query("size"), c.Query("color")),
	})
}

// cartQuantity returns the quantity of one line
func (h *Handler) cartQuantity(c *gin.Context) {
	productID, ok := productIDParam(c, c.Query("product_id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"quantity":   h.shopFor(c).CartItemQuantity(productID, c.Query("size"), c.Query("color")),
	})
}

// checkoutCart runs the simulated checkout
func (h *Handler) checkoutCart(c *gin.Context) {
	sessionID := c.GetString(sessionContextKey)
	receipt, err := h.checkout.Checkout(c.Request.Context(), sessionID, h.shopFor(c).Cart())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			badRequest(c, "Cart is empty", err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Checkout interrupted",
				"details": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Checkout failed",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// getWishlist returns the wishlist joined with the catalog
func (h *Handler) getWishlist(c *gin.Context) {
	wishlist := h.shopFor(c).Wishlist()
	c.JSON(http.StatusOK, gin.H{
		"items":      service.ResolveWishlist(h.catalog, wishlist),
		"item_count": wishlist.ItemCount,
	})
}

// addToWishlist wishlists a catalog product
func (h *Handler) addToWishlist(c *gin.Context) {
	productID, ok := productIDParam(c, c.Param("productId"))
	if !ok {
		return
	}
	if _, err := h.catalog.GetByID(productID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return
	}

	sh := h.shopFor(c)
	sh.AddToWishlist(c.Request.Context(), productID)
	h.respondWishlist(c, sh.Wishlist())
}

// removeFromWishlist drops a product from the wishlist
func (h *Handler) removeFromWishlist(c *gin.Context) {
	productID, ok := productIDParam(c, c.Param("productId"))
	if !ok {
		return
	}

	sh := h.shopFor(c)
	sh.RemoveFromWishlist(c.Request.Context(), productID)
	h.respondWishlist(c, sh.Wishlist())
}

// wishlistContains reports whether a product is wishlisted
func (h *Handler) wishlistContains(c *gin.Context) {
	productID, ok := productIDParam(c, c.Param("productId"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id":  productID,
		"in_wishlist": h.shopFor(c).IsInWishlist(productID),
	})
}

func (h *Handler) respondCart(c *gin.Context, cart models.CartState) {
	c.JSON(http.StatusOK, gin.H{
		"cart":  cart,
		"quote": h.checkout.Quote(cart),
	})
}

func (h *Handler) respondWishlist(c *gin.Context, wishlist models.WishlistState) {
	c.JSON(http.StatusOK, wishlist)
}

func productIDParam(c *gin.Context, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return 0, false
	}
	return id, true
}
