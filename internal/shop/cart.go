package shop

import (
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// CartCommand is one of AddItem, RemoveItem, UpdateQuantity, ClearCart or
// LoadCart. The set is closed: only this package can add variants.
type CartCommand interface {
	cartCommand()
}

// AddItem adds Quantity of a product/size/colour, merging into an existing
// line with the same key
type AddItem struct {
	Product  models.Product
	Size     string
	Color    models.ProductColor
	Quantity int
}

// RemoveItem drops the line with Key, if any
type RemoveItem struct {
	Key models.LineKey
}

// UpdateQuantity sets the quantity of an existing line. A quantity <= 0
// removes the line.
type UpdateQuantity struct {
	Key      models.LineKey
	Quantity int
}

// ClearCart empties the cart
type ClearCart struct{}

// LoadCart replaces the items wholesale, used at hydration
type LoadCart struct {
	Items []models.CartLineItem
}

func (AddItem) cartCommand()        {}
func (RemoveItem) cartCommand()     {}
func (UpdateQuantity) cartCommand() {}
func (ClearCart) cartCommand()      {}
func (LoadCart) cartCommand()       {}

// EmptyCart returns the zero cart state
func EmptyCart() models.CartState {
	return models.CartState{Items: []models.CartLineItem{}, Total: decimal.Zero}
}

// ReduceCart applies cmd to state and returns the next state. The input
// state is never modified.
func ReduceCart(state models.CartState, cmd CartCommand) models.CartState {
	switch c := cmd.(type) {
	case AddItem:
		key := models.LineKey{ProductID: c.Product.ID, Size: c.Size, ColorName: c.Color.Name}
		items := cloneItems(state.Items)
		if i := findLine(items, key); i >= 0 {
			items[i].Quantity = addQuantity(items[i].Quantity, c.Quantity)
		} else {
			items = append(items, models.CartLineItem{
				Product:  c.Product,
				Size:     c.Size,
				Color:    c.Color,
				Quantity: capQuantity(c.Quantity),
			})
		}
		return withAggregates(items)

	case RemoveItem:
		return withAggregates(removeLine(state.Items, c.Key))

	case UpdateQuantity:
		if c.Quantity <= 0 {
			return ReduceCart(state, RemoveItem{Key: c.Key})
		}
		items := cloneItems(state.Items)
		if i := findLine(items, c.Key); i >= 0 {
			items[i].Quantity = capQuantity(c.Quantity)
		}
		return withAggregates(items)

	case ClearCart:
		return EmptyCart()

	case LoadCart:
		items := cloneItems(c.Items)
		for i := range items {
			items[i].Quantity = capQuantity(items[i].Quantity)
		}
		return withAggregates(items)
	}

	return state
}

// CartTotals recomputes total and item count from items
func CartTotals(items []models.CartLineItem) (decimal.Decimal, int) {
	total := decimal.Zero
	var count int
	for _, item := range items {
		total = total.Add(item.Subtotal())
		count += item.Quantity
	}
	return total, count
}

func withAggregates(items []models.CartLineItem) models.CartState {
	total, count := CartTotals(items)
	return models.CartState{Items: items, Total: total, ItemCount: count}
}

// addQuantity adds delta to a line, saturating at MaxLineQuantity
func addQuantity(current, delta int) int {
	if delta > MaxLineQuantity-current {
		return MaxLineQuantity
	}
	return current + delta
}

func capQuantity(q int) int {
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}

func findLine(items []models.CartLineItem, key models.LineKey) int {
	for i := range items {
		if items[i].Key() == key {
			return i
		}
	}
	return -1
}

func removeLine(items []models.CartLineItem, key models.LineKey) []models.CartLineItem {
	out := make([]models.CartLineItem, 0, len(items))
	for _, item := range items {
		if item.Key() != key {
			out = append(out, item)
		}
	}
	return out
}

func cloneItems(items []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, len(items))
	copy(out, items)
	return out
}
