package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/catalog"
	"storefront/internal/service"
	"storefront/internal/shop"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartResponse struct {
	Cart struct {
		Items []struct {
			Size     string `json:"size"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Total     decimal.Decimal `json:"total"`
		ItemCount int             `json:"item_count"`
	} `json:"cart"`
	Quote service.Quote `json:"quote"`
}

type testServer struct {
	router *gin.Engine
	kv     *store.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := catalog.Load()
	require.NoError(t, err)

	kv := store.NewMemoryStore()
	sessions := service.NewSessionRegistry(kv, shop.DefaultCartKey, shop.DefaultWishlistKey)
	checkout := service.NewCheckoutService(service.Pricing{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.NewFromInt(15),
		TaxRate:               decimal.RequireFromString("0.08"),
	}, 0, nil)

	router := gin.New()
	NewHandler(c, sessions, checkout, 12).SetupRoutes(router)
	return &testServer{router: router, kv: kv}
}

func (s *testServer) do(t *testing.T, method, path, session string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t)

	var page struct {
		Products []struct {
			ID int64 `json:"id"`
		} `json:"products"`
		Total      int `json:"total"`
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	}

	w := s.do(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Equal(t, 42, page.Total)
	assert.Equal(t, 4, page.TotalPages)
	assert.Len(t, page.Products, 12)

	w = s.do(t, http.MethodGet, "/api/v1/products?page=4&sort=name", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Len(t, page.Products, 6)

	w = s.do(t, http.MethodGet, "/api/v1/products?category=women&min_price=40&max_price=60&sort=price-low", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	ids := make([]int64, 0, len(page.Products))
	for _, p := range page.Products {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{19, 14, 35, 28, 3, 21}, ids)

	for _, bad := range []string{"?min_price=abc", "?max_price=-1", "?page=0", "?page=x"} {
		w = s.do(t, http.MethodGet, "/api/v1/products"+bad, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestProductDetailAndRelated(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/products/neon-strike-performance-hoodie", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &p)
	assert.Equal(t, int64(1), p.ID)

	w = s.do(t, http.MethodGet, "/api/v1/products/no-such-thing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/products/neon-strike-performance-hoodie/related", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var related struct {
		Products []json.RawMessage `json:"products"`
	}
	decode(t, w, &related)
	assert.Len(t, related.Products, 12)

	w = s.do(t, http.MethodGet, "/api/v1/collections/sale", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &related)
	assert.Len(t, related.Products, 6)
}

func TestSessionHeader(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	issued := w.Header().Get(SessionHeader)
	_, err := uuid.Parse(issued)
	require.NoError(t, err)

	w = s.do(t, http.MethodGet, "/api/v1/cart", issued, nil)
	assert.Equal(t, issued, w.Header().Get(SessionHeader))

	w = s.do(t, http.MethodGet, "/api/v1/cart", "../../etc", nil)
	assert.NotEqual(t, "../../etc", w.Header().Get(SessionHeader))
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)
	session := uuid.New().String()
	line := gin.H{"product_id": 1, "size": "M", "color": "Neon Green"}

	var cart cartResponse
	w := s.do(t, http.MethodPost, "/api/v1/cart/items", session, line)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Equal(t, 1, cart.Cart.ItemCount)
	assert.True(t, decimal.NewFromInt(89).Equal(cart.Cart.Total))
	assert.True(t, decimal.NewFromInt(15).Equal(cart.Quote.Shipping))
	assert.True(t, decimal.RequireFromString("111.12").Equal(cart.Quote.Total))

	w = s.do(t, http.MethodPost, "/api/v1/cart/items", session,
		gin.H{"product_id": 1, "size": "M", "color": "Neon Green", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	require.Len(t, cart.Cart.Items, 1)
	assert.Equal(t, 3, cart.Cart.Items[0].Quantity)
	assert.True(t, cart.Quote.FreeShipping)

	var q struct {
		InCart   bool `json:"in_cart"`
		Quantity int  `json:"quantity"`
	}
	w = s.do(t, http.MethodGet, "/api/v1/cart/contains?product_id=1", session, nil)
	decode(t, w, &q)
	assert.True(t, q.InCart)
	w = s.do(t, http.MethodGet, "/api/v1/cart/contains?product_id=1&size=L", session, nil)
	decode(t, w, &q)
	assert.False(t, q.InCart)
	w = s.do(t, http.MethodGet, "/api/v1/cart/quantity?product_id=1&size=M&color=Neon%20Green", session, nil)
	decode(t, w, &q)
	assert.Equal(t, 3, q.Quantity)

	w = s.do(t, http.MethodPatch, "/api/v1/cart/items", session,
		gin.H{"product_id": 1, "size": "M", "color": "Neon Green", "quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Equal(t, 0, cart.Cart.ItemCount)

	_, ok, err := s.kv.Get(context.Background(), session+":"+shop.DefaultCartKey)
	require.NoError(t, err)
	assert.True(t, ok)

	other := s.do(t, http.MethodPost, "/api/v1/cart/items", uuid.New().String(), line)
	require.Equal(t, http.StatusOK, other.Code)
	w = s.do(t, http.MethodGet, "/api/v1/cart", session, nil)
	decode(t, w, &cart)
	assert.Equal(t, 0, cart.Cart.ItemCount)
}

func TestCartValidation(t *testing.T) {
	s := newTestServer(t)
	session := uuid.New().String()

	cases := []struct {
		name string
		body gin.H
		code int
	}{
		{"unknown product", gin.H{"product_id": 9999, "size": "M", "color": "Neon Green"}, http.StatusNotFound},
		{"unknown color", gin.H{"product_id": 1, "size": "M", "color": "Plaid"}, http.StatusBadRequest},
		{"zero quantity", gin.H{"product_id": 1, "size": "M", "color": "Neon Green", "quantity": 0}, http.StatusBadRequest},
		{"oversized quantity", gin.H{"product_id": 1, "size": "M", "color": "Neon Green", "quantity": 1 << 40}, http.StatusBadRequest},
		{"missing size", gin.H{"product_id": 1, "color": "Neon Green"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/cart/items", session, tc.body)
			assert.Equal(t, tc.code, w.Code)
		})
	}

	w := s.do(t, http.MethodGet, "/api/v1/cart/contains?product_id=abc", session, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout(t *testing.T) {
	s := newTestServer(t)
	session := uuid.New().String()

	w := s.do(t, http.MethodPost, "/api/v1/checkout", session, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/cart/items", session,
		gin.H{"product_id": 2, "size": "L", "color": "Matte Black"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/checkout", session, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var receipt service.Receipt
	decode(t, w, &receipt)
	assert.NotEmpty(t, receipt.Reference)
	assert.Equal(t, 1, receipt.ItemCount)

	var cart cartResponse
	w = s.do(t, http.MethodGet, "/api/v1/cart", session, nil)
	decode(t, w, &cart)
	assert.Equal(t, 1, cart.Cart.ItemCount)
}

func TestWishlistFlow(t *testing.T) {
	s := newTestServer(t)
	session := uuid.New().String()

	w := s.do(t, http.MethodPost, "/api/v1/wishlist/5", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/wishlist/5", session, nil)
	var state struct {
		ItemCount int `json:"item_count"`
	}
	decode(t, w, &state)
	assert.Equal(t, 1, state.ItemCount)

	w = s.do(t, http.MethodPost, "/api/v1/wishlist/9999", session, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/wishlist", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resolved struct {
		Items []service.WishlistProduct `json:"items"`
	}
	decode(t, w, &resolved)
	require.Len(t, resolved.Items, 1)
	assert.Equal(t, int64(5), resolved.Items[0].Product.ID)

	var contains struct {
		InWishlist bool `json:"in_wishlist"`
	}
	w = s.do(t, http.MethodGet, "/api/v1/wishlist/5", session, nil)
	decode(t, w, &contains)
	assert.True(t, contains.InWishlist)

	w = s.do(t, http.MethodDelete, "/api/v1/wishlist/5", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.Equal(t, 0, state.ItemCount)

	w = s.do(t, http.MethodGet, "/api/v1/wishlist/abc", session, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
