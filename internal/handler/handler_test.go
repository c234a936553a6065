package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/domain/cart"
	"github.com/sneakstore/storefront/internal/domain/catalog"
	"github.com/sneakstore/storefront/internal/domain/favorites"
	"github.com/sneakstore/storefront/internal/storage/memory"
)

// --- Mock catalog source ---

type mockSource struct {
	products []catalog.Product
	err      error
}

func (m *mockSource) Fetch(_ context.Context) ([]catalog.Product, int, error) {
	return m.products, 0, m.err
}

// --- Helpers ---

func newShoe(id, name, brand, category, price string, rating float64) catalog.Product {
	return catalog.Product{
		ID:       id,
		Name:     name,
		Brand:    brand,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Rating:   rating,
	}
}

func newTestRouter(src catalog.Source) (chi.Router, *favorites.Store, *cart.Store) {
	gw := memory.New()
	lg := zap.NewNop()

	loader := catalog.NewLoader(src, gw, lg)
	favs := favorites.NewStore(gw, lg)
	c := cart.NewStore(gw, lg)

	r := chi.NewRouter()
	r.Mount("/api", New(loader, favs, c).Routes())
	return r, favs, c
}

func doRequest(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// --- Catalog ---

func TestGetCatalog_ProjectsAndSorts(t *testing.T) {
	src := &mockSource{products: []catalog.Product{
		newShoe("1", "Air Max", "Nike", "Running", "149.99", 90),
		newShoe("2", "Classic", "Adidas", "Casual", "79.50", 70),
		newShoe("3", "Pegasus", "Nike", "Running", "119.00", 85),
	}}
	router, _, _ := newTestRouter(src)

	rec := doRequest(t, router, http.MethodGet, "/api/catalog?category=Running", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []struct {
			ID       string `json:"id"`
			Favorite bool   `json:"favorite"`
		} `json:"products"`
		Categories []string `json:"categories"`
		Stale      bool     `json:"stale"`
	}
	decodeBody(t, rec, &resp)

	require.Len(t, resp.Products, 2)
	assert.Equal(t, "1", resp.Products[0].ID) // rating 90 before 85
	assert.Equal(t, "3", resp.Products[1].ID)
	assert.Equal(t, []string{"Running", "Casual"}, resp.Categories)
	assert.False(t, resp.Stale)
}

func TestGetCatalog_SearchQuery(t *testing.T) {
	src := &mockSource{products: []catalog.Product{
		newShoe("1", "Air Max", "Nike", "Running", "149.99", 90),
		newShoe("2", "Classic", "Adidas", "Casual", "79.50", 70),
	}}
	router, _, _ := newTestRouter(src)

	rec := doRequest(t, router, http.MethodGet, "/api/catalog?category=All&q=air", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []struct {
			Name string `json:"name"`
		} `json:"products"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Air Max", resp.Products[0].Name)
}

func TestGetCatalog_InvalidSortKey(t *testing.T) {
	router, _, _ := newTestRouter(&mockSource{})

	rec := doRequest(t, router, http.MethodGet, "/api/catalog?sort=name", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCatalog_UnavailableWithoutCache(t *testing.T) {
	router, _, _ := newTestRouter(&mockSource{err: errors.New("connection refused")})

	rec := doRequest(t, router, http.MethodGet, "/api/catalog", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetCatalog_ServesCacheWhenFetchFails(t *testing.T) {
	src := &mockSource{products: []catalog.Product{
		newShoe("1", "Air Max", "Nike", "Running", "149.99", 90),
	}}
	router, _, _ := newTestRouter(src)

	// First call warms the cache, then the endpoint goes down.
	rec := doRequest(t, router, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	src.err = errors.New("connection refused")
	rec = doRequest(t, router, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []struct {
			ID string `json:"id"`
		} `json:"products"`
		Stale bool `json:"stale"`
	}
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Stale)
	require.Len(t, resp.Products, 1)
}

func TestGetCatalog_MarksFavorites(t *testing.T) {
	src := &mockSource{products: []catalog.Product{
		newShoe("1", "Air Max", "Nike", "Running", "149.99", 90),
		newShoe("2", "Classic", "Adidas", "Casual", "79.50", 70),
	}}
	router, favs, _ := newTestRouter(src)

	_, err := favs.Toggle(context.Background(), newShoe("2", "Classic", "Adidas", "Casual", "79.50", 70))
	require.NoError(t, err)

	rec := doRequest(t, router, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []struct {
			ID       string `json:"id"`
			Favorite bool   `json:"favorite"`
		} `json:"products"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Products, 2)
	assert.False(t, resp.Products[0].Favorite)
	assert.True(t, resp.Products[1].Favorite)
}

// --- Favorites ---

func TestToggleFavorite_RoundTrip(t *testing.T) {
	router, _, _ := newTestRouter(&mockSource{})
	body := `{"id":"s1","name":"Air Max","brand":"Nike","price":149.99}`

	rec := doRequest(t, router, http.MethodPost, "/api/favorites", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	decodeBody(t, rec, &resp)
	assert.True(t, resp["favorite"])

	rec = doRequest(t, router, http.MethodPost, "/api/favorites", body)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.False(t, resp["favorite"])
}

func TestToggleFavorite_RequiresID(t *testing.T) {
	router, _, _ := newTestRouter(&mockSource{})

	rec := doRequest(t, router, http.MethodPost, "/api/favorites", `{"name":"No ID"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/favorites", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFavorites_ReloadsFromStorage(t *testing.T) {
	router, _, _ := newTestRouter(&mockSource{})

	rec := doRequest(t, router, http.MethodPost, "/api/favorites", `{"id":"s1","name":"Air Max","price":10}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Favorites []struct {
			ID string `json:"id"`
		} `json:"favorites"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Favorites, 1)
	assert.Equal(t, "s1", resp.Favorites[0].ID)
}

func TestRemoveFavorite(t *testing.T) {
	router, _, _ := newTestRouter(&mockSource{})

	doRequest(t, router, http.MethodPost, "/api/favorites", `{"id":"s1","name":"Air Max","price":10}`)

	rec := doRequest(t, router, http.MethodDelete, "/api/favorites/s1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/favorites", "")
	var resp struct {
		Favorites []any `json:"favorites"`
	}
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Favorites)
}

// --- Cart ---

func TestAddToCart_DuplicateIsConflict(t *testing.T) {
	router, _, c := newTestRouter(&mockSource{})
	body := `{"id":"A","name":"Air Max","price":19.99}`

	rec := doRequest(t, router, http.MethodPost, "/api/cart", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, c.Increment(context.Background(), "A"))
	require.NoError(t, c.Increment(context.Background(), "A"))

	rec = doRequest(t, router, http.MethodPost, "/api/cart", body)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "already_in_cart", resp["code"])

	// The existing entry is untouched.
	require.Len(t, c.Items(), 1)
	assert.Equal(t, 3, c.Items()[0].Quantity)
}

func TestCartQuantityFlow(t *testing.T) {
	router, _, _ := newTestRouter(&mockSource{})

	doRequest(t, router, http.MethodPost, "/api/cart", `{"id":"A","name":"Air Max","price":19.99}`)

	rec := doRequest(t, router, http.MethodPost, "/api/cart/A/increment", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Total string `json:"total"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, "39.98", resp.Total)

	// Decrement twice: floors at 1, never removes.
	doRequest(t, router, http.MethodPost, "/api/cart/A/decrement", "")
	rec = doRequest(t, router, http.MethodPost, "/api/cart/A/decrement", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].Quantity)
}

func TestGetCart_TotalRounding(t *testing.T) {
	router, _, c := newTestRouter(&mockSource{})
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, newShoe("A", "Shoe A", "X", "Running", "19.99", 0)))
	require.NoError(t, c.Increment(ctx, "A"))
	require.NoError(t, c.Increment(ctx, "A"))
	require.NoError(t, c.Add(ctx, newShoe("B", "Shoe B", "X", "Running", "5.005", 0)))

	rec := doRequest(t, router, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total string `json:"total"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "64.98", resp.Total)
}

func TestRemoveAndClearCart(t *testing.T) {
	router, _, _ := newTestRouter(&mockSource{})

	doRequest(t, router, http.MethodPost, "/api/cart", `{"id":"A","name":"A","price":10}`)
	doRequest(t, router, http.MethodPost, "/api/cart", `{"id":"B","name":"B","price":20}`)

	rec := doRequest(t, router, http.MethodDelete, "/api/cart/A", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/cart", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/cart", "")
	var resp struct {
		Items []any  `json:"items"`
		Total string `json:"total"`
	}
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp.Items)
	assert.Equal(t, "0.00", resp.Total)
}

func TestCheckout_NotImplemented(t *testing.T) {
	router, _, _ := newTestRouter(&mockSource{})

	rec := doRequest(t, router, http.MethodPost, "/api/cart/checkout", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
