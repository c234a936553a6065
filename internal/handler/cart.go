package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/domain/cart"
	"github.com/sneakstore/storefront/internal/domain/catalog"
)

type cartResponse struct {
	Items []cart.Entry `json:"items"`
	Total string       `json:"total"`
}

func (h *Handler) cartPayload() cartResponse {
	return cartResponse{
		Items: h.cart.Items(),
		Total: h.cart.Total().StringFixed(2),
	}
}

// GetCart handles GET /api/cart. Called on cart-view focus, so it reloads the
// persisted collection first.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.cart.Refresh(ctx); err != nil {
		zctx.From(ctx).Warn("Cart reload failed, serving in-memory state", zap.Error(err))
	}
	writeJSON(w, r, http.StatusOK, h.cartPayload())
}

// AddToCart handles POST /api/cart with a Product body. A product already in
// the cart is reported with 409 and left untouched; quantity changes go
// through the increment control instead.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid product body")
		return
	}
	if p.ID == "" {
		writeError(w, r, http.StatusBadRequest, "product id is required")
		return
	}

	if err := h.cart.Add(ctx, p); err != nil {
		if errors.Is(err, cart.ErrAlreadyInCart) {
			writeJSON(w, r, http.StatusConflict, map[string]string{
				"code":  "already_in_cart",
				"error": "this product is already in your cart",
			})
			return
		}
		zctx.From(ctx).Warn("Cart persist failed", zap.String("id", p.ID), zap.Error(err))
	}

	writeJSON(w, r, http.StatusCreated, h.cartPayload())
}

// IncrementCartItem handles POST /api/cart/{id}/increment.
func (h *Handler) IncrementCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.cart.Increment(ctx, id); err != nil {
		zctx.From(ctx).Warn("Cart persist failed", zap.String("id", id), zap.Error(err))
	}
	writeJSON(w, r, http.StatusOK, h.cartPayload())
}

// DecrementCartItem handles POST /api/cart/{id}/decrement. Quantity never
// drops below 1; removal is an explicit DELETE.
func (h *Handler) DecrementCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.cart.Decrement(ctx, id); err != nil {
		zctx.From(ctx).Warn("Cart persist failed", zap.String("id", id), zap.Error(err))
	}
	writeJSON(w, r, http.StatusOK, h.cartPayload())
}

// RemoveCartItem handles DELETE /api/cart/{id}.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.cart.Remove(ctx, id); err != nil {
		zctx.From(ctx).Warn("Cart persist failed", zap.String("id", id), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart handles DELETE /api/cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.cart.Clear(ctx); err != nil {
		zctx.From(ctx).Warn("Cart persist failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/cart/checkout. Payment is out of scope; the
// endpoint exists so the UI's checkout button has somewhere to land.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotImplemented, "checkout is not implemented")
}
