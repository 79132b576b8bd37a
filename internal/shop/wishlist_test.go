package shop

import (
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceWishlist_DuplicateAddKeepsOriginal(t *testing.T) {
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	state := ReduceWishlist(EmptyWishlist(), AddToWishlist{ProductID: 7, AddedAt: first})
	state = ReduceWishlist(state, AddToWishlist{ProductID: 7, AddedAt: later})

	require.Len(t, state.Items, 1)
	assert.Equal(t, 1, state.ItemCount)
	assert.Equal(t, first, state.Items[0].AddedAt)
}

func TestReduceWishlist_AddAppends(t *testing.T) {
	at := time.Now()
	state := EmptyWishlist()
	for _, id := range []int64{3, 1, 2} {
		state = ReduceWishlist(state, AddToWishlist{ProductID: id, AddedAt: at})
	}

	assert.Equal(t, 3, state.ItemCount)
	assert.Equal(t, int64(3), state.Items[0].ProductID)
	assert.Equal(t, int64(2), state.Items[2].ProductID)
}

func TestReduceWishlist_RemoveIsIdempotent(t *testing.T) {
	at := time.Now()
	state := ReduceWishlist(EmptyWishlist(), AddToWishlist{ProductID: 7, AddedAt: at})
	state = ReduceWishlist(state, AddToWishlist{ProductID: 8, AddedAt: at})

	once := ReduceWishlist(state, RemoveFromWishlist{ProductID: 7})
	twice := ReduceWishlist(once, RemoveFromWishlist{ProductID: 7})

	assert.Equal(t, once, twice)
	assert.Equal(t, 1, twice.ItemCount)
	assert.False(t, WishlistContains(twice, 7))
	assert.True(t, WishlistContains(twice, 8))
}

func TestReduceWishlist_Load(t *testing.T) {
	items := []models.WishlistEntry{
		{ProductID: 4, AddedAt: time.Unix(100, 0).UTC()},
		{ProductID: 9, AddedAt: time.Unix(200, 0).UTC()},
	}

	state := ReduceWishlist(models.WishlistState{ItemCount: 12}, LoadWishlist{Items: items})
	assert.Equal(t, items, state.Items)
	assert.Equal(t, 2, state.ItemCount)

	items[0].ProductID = 40
	assert.Equal(t, int64(4), state.Items[0].ProductID)
}

func TestCartQueries(t *testing.T) {
	h, j := hoodie(), joggers()
	state := EmptyCart()
	state = ReduceCart(state, AddItem{Product: h, Size: "M", Color: neonGreen, Quantity: 2})
	state = ReduceCart(state, AddItem{Product: j, Size: "M", Color: neonBlue, Quantity: 1})

	assert.True(t, CartContains(state, 1, "", ""))
	assert.True(t, CartContains(state, 1, "M", ""))
	assert.True(t, CartContains(state, 1, "M", "Neon Green"))
	assert.False(t, CartContains(state, 1, "M", "Neon Blue"))
	assert.False(t, CartContains(state, 3, "", ""))

	assert.Equal(t, 2, CartQuantity(state, 1, "M", "Neon Green"))
	assert.Equal(t, 0, CartQuantity(state, 1, "L", "Neon Green"))
	assert.Equal(t, 1, CartQuantity(state, 2, "M", "Neon Blue"))
}
