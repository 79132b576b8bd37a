package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Pseudo collections served next to the real ones
const (
	collectionFeatured = "featured"
	collectionSale     = "sale"
)

// listProducts handles the shop page: filter, sort, paginate
func (h *Handler) listProducts(c *gin.Context) {
	q := catalog.Query{
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Colors:   splitList(c.Query("colors")),
		SortBy:   c.Query("sort"),
	}

	var err error
	if q.MinPrice, err = priceParam(c, "min_price"); err != nil {
		badRequest(c, "Invalid min_price", err)
		return
	}
	if q.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		badRequest(c, "Invalid max_price", err)
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid page",
			})
			return
		}
	}

	matches := h.catalog.Filter(q)
	products, totalPages := catalog.Paginate(matches, page, h.pageSize)

	c.JSON(http.StatusOK, gin.H{
		"products":    products,
		"total":       len(matches),
		"page":        page,
		"total_pages": totalPages,
	})
}

// getProduct handles product detail by slug
func (h *Handler) getProduct(c *gin.Context) {
	product, ok := h.productBySlug(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, product)
}

// relatedProducts handles the "you may also like" list
func (h *Handler) relatedProducts(c *gin.Context) {
	product, ok := h.productBySlug(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products": h.catalog.Related(product),
	})
}

// collection handles collection pages and the featured/sale lists
func (h *Handler) collection(c *gin.Context) {
	name := c.Param("collection")

	var products []models.Product
	switch name {
	case collectionFeatured:
		products = h.catalog.Featured()
	case collectionSale:
		products = h.catalog.OnSale()
	default:
		products = h.catalog.ByCollection(name)
	}

	c.JSON(http.StatusOK, gin.H{
		"collection": name,
		"products":   catalog.Sort(products, c.Query("sort")),
	})
}

func (h *Handler) productBySlug(c *gin.Context) (models.Product, bool) {
	product, err := h.catalog.GetBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return models.Product{}, false
	}
	return product, true
}

func priceParam(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, errors.New("price must not be negative")
	}
	return &d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func badRequest(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}
