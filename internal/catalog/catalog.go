package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

//go:embed data/products.json
var productsJSON []byte

var ErrProductNotFound = errors.New("product not found")

// Category pseudo-values understood by ByCategory
const (
	CategoryAll = "all"
	CategoryNew = "new"
)

// Sort keys understood by Sort
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNewest    = "newest"
	SortName      = "name"
	SortPopular   = "popular"
	SortRating    = "rating"
)

// Catalog is a read-only view over a fixed product list
type Catalog struct {
	products []models.Product
	byID     map[int64]int
	bySlug   map[string]int
}

// Load builds the catalog from the embedded product dataset
func Load() (*Catalog, error) {
	var products []models.Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("failed to decode embedded products: %w", err)
	}
	return New(products)
}

// New builds a catalog over products, rejecting duplicate ids or slugs
func New(products []models.Product) (*Catalog, error) {
	c := &Catalog{
		products: products,
		byID:     make(map[int64]int, len(products)),
		bySlug:   make(map[string]int, len(products)),
	}

	for i, p := range products {
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("duplicate product id: %d", p.ID)
		}
		if _, ok := c.bySlug[p.Slug]; ok {
			return nil, fmt.Errorf("duplicate product slug: %s", p.Slug)
		}
		c.byID[p.ID] = i
		c.bySlug[p.Slug] = i
	}

	return c, nil
}

// All returns every product in catalog order
func (c *Catalog) All() []models.Product {
	return c.copyOf(c.products)
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// GetByID retrieves a product by ID
func (c *Catalog) GetByID(id int64) (models.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return c.products[i], nil
}

// GetBySlug retrieves a product by slug
func (c *Catalog) GetBySlug(slug string) (models.Product, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, slug)
	}
	return c.products[i], nil
}

// ByCategory returns products whose category or type equals category.
// "all" returns everything and "new" returns products flagged as new.
func (c *Catalog) ByCategory(category string) []models.Product {
	switch category {
	case "", CategoryAll:
		return c.All()
	case CategoryNew:
		return c.filter(func(p models.Product) bool { return p.IsNew })
	}
	return c.filter(func(p models.Product) bool {
		return p.Category == category || p.Type == category
	})
}

// ByCollection returns products of one collection
func (c *Catalog) ByCollection(collection string) []models.Product {
	return c.filter(func(p models.Product) bool { return p.Collection == collection })
}

// ByTag returns products carrying tag, compared case-insensitively
func (c *Catalog) ByTag(tag string) []models.Product {
	return c.filter(func(p models.Product) bool {
		for _, t := range p.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	})
}

// Featured returns featured products
func (c *Catalog) Featured() []models.Product {
	return c.filter(func(p models.Product) bool { return p.IsFeatured })
}

// OnSale returns products on sale
func (c *Catalog) OnSale() []models.Product {
	return c.filter(func(p models.Product) bool { return p.IsOnSale })
}

// Related returns the other products of the product's collection
func (c *Catalog) Related(product models.Product) []models.Product {
	return c.filter(func(p models.Product) bool {
		return p.Collection == product.Collection && p.ID != product.ID
	})
}

// Search matches query case-insensitively against name, description and tags
func (c *Catalog) Search(query string) []models.Product {
	return c.filter(func(p models.Product) bool { return matchesText(p, strings.ToLower(query)) })
}

// Sort returns a sorted copy of products. Unknown keys sort featured first.
func Sort(products []models.Product, sortBy string) []models.Product {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)

	var less func(a, b models.Product) bool
	switch sortBy {
	case SortPriceLow:
		less = func(a, b models.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceHigh:
		less = func(a, b models.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortNewest:
		less = func(a, b models.Product) bool { return a.IsNew && !b.IsNew }
	case SortName:
		less = func(a, b models.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortPopular:
		less = func(a, b models.Product) bool { return a.ReviewCount > b.ReviewCount }
	case SortRating:
		less = func(a, b models.Product) bool { return a.Rating > b.Rating }
	default:
		less = func(a, b models.Product) bool { return a.IsFeatured && !b.IsFeatured }
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// Query combines the shop page filters
type Query struct {
	Category string
	Search   string
	Colors   []string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string
}

// Filter applies q and returns the sorted matches
func (c *Catalog) Filter(q Query) []models.Product {
	matches := c.ByCategory(q.Category)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := matches[:0]
	for _, p := range matches {
		if search != "" && !matchesText(p, search) {
			continue
		}
		if len(q.Colors) > 0 && !hasAnyColor(p, q.Colors) {
			continue
		}
		if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		filtered = append(filtered, p)
	}

	return Sort(filtered, q.SortBy)
}

// Paginate returns the 1-based page of products and the total page count
func Paginate(products []models.Product, page, perPage int) ([]models.Product, int) {
	if perPage <= 0 {
		return products, 1
	}
	totalPages := (len(products) + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	if start >= len(products) {
		return []models.Product{}, totalPages
	}
	end := start + perPage
	if end > len(products) {
		end = len(products)
	}
	return products[start:end], totalPages
}

func (c *Catalog) filter(keep func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) copyOf(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	return out
}

func matchesText(p models.Product, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(p.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Description), lowerQuery) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), lowerQuery) {
			return true
		}
	}
	return false
}

func hasAnyColor(p models.Product, names []string) bool {
	for _, c := range p.Colors {
		for _, name := range names {
			if c.Name == name {
				return true
			}
		}
	}
	return false
}
