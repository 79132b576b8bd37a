package api

import (
	"net/http"
	"strconv"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/service"
	"storefront/internal/shop"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionHeader carries the browser session id in both directions
const SessionHeader = "X-Session-ID"

const sessionContextKey = "session_id"

// Handler contains HTTP handlers
type Handler struct {
	catalog  *catalog.Catalog
	sessions *service.SessionRegistry
	checkout *service.CheckoutService
	pageSize int
}

// NewHandler creates a new HTTP handler
func NewHandler(c *catalog.Catalog, sessions *service.SessionRegistry, checkout *service.CheckoutService, pageSize int) *Handler {
	return &Handler{
		catalog:  c,
		sessions: sessions,
		checkout: checkout,
		pageSize: pageSize,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:slug", h.getProduct)
		v1.GET("/products/:slug/related", h.relatedProducts)
		v1.GET("/collections/:collection", h.collection)
	}

	sessioned := v1.Group("", sessionMiddleware())
	{
		sessioned.GET("/cart", h.getCart)
		sessioned.POST("/cart/items", h.addCartItem)
		sessioned.PATCH("/cart/items", h.updateCartItem)
		sessioned.DELETE("/cart/items", h.removeCartItem)
		sessioned.DELETE("/cart", h.clearCart)
		sessioned.GET("/cart/contains", h.cartContains)
		sessioned.GET("/cart/quantity", h.cartQuantity)
		sessioned.POST("/checkout", h.checkoutCart)

		sessioned.GET("/wishlist", h.getWishlist)
		sessioned.POST("/wishlist/:productId", h.addToWishlist)
		sessioned.DELETE("/wishlist/:productId", h.removeFromWishlist)
		sessioned.GET("/wishlist/:productId", h.wishlistContains)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"products": h.catalog.Len(),
		"sessions": h.sessions.Len(),
		"time":     time.Now().Unix(),
	})
}

// sessionMiddleware reuses a valid X-Session-ID or issues a new one
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set(sessionContextKey, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

func (h *Handler) shopFor(c *gin.Context) *shop.Shop {
	return h.sessions.Get(c.Request.Context(), c.GetString(sessionContextKey))
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
