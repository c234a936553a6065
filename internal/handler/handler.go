// Package handler exposes the storefront data layer over HTTP/JSON. Only
// plain data crosses this boundary: products, ids, and filter criteria in;
// product lists, cart entries, and totals out.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/domain/cart"
	"github.com/sneakstore/storefront/internal/domain/catalog"
	"github.com/sneakstore/storefront/internal/domain/favorites"
)

// Handler wires the catalog loader and the two stores to HTTP routes.
type Handler struct {
	loader    *catalog.Loader
	favorites *favorites.Store
	cart      *cart.Store
}

// New constructs a Handler with the required domain dependencies.
func New(loader *catalog.Loader, favs *favorites.Store, c *cart.Store) *Handler {
	return &Handler{
		loader:    loader,
		favorites: favs,
		cart:      c,
	}
}

// Routes returns the API router. Every GET doubles as the screen's
// focus-gained reload, so each handler refreshes its store before reading.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/catalog", h.GetCatalog)

	r.Get("/favorites", h.ListFavorites)
	r.Post("/favorites", h.ToggleFavorite)
	r.Delete("/favorites/{id}", h.RemoveFavorite)

	r.Get("/cart", h.GetCart)
	r.Post("/cart", h.AddToCart)
	r.Post("/cart/{id}/increment", h.IncrementCartItem)
	r.Post("/cart/{id}/decrement", h.DecrementCartItem)
	r.Delete("/cart/{id}", h.RemoveCartItem)
	r.Delete("/cart", h.ClearCart)
	r.Post("/cart/checkout", h.Checkout)

	return r
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zctx.From(r.Context()).Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{"error": message})
}
