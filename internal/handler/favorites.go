package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/domain/catalog"
)

// ListFavorites handles GET /api/favorites. Called on favorites-view focus,
// so it reloads the persisted collection first.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.favorites.Refresh(ctx); err != nil {
		zctx.From(ctx).Warn("Favorites reload failed, serving in-memory state", zap.Error(err))
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"favorites": h.favorites.List(),
	})
}

// ToggleFavorite handles POST /api/favorites with a Product body. It flips
// membership and reports the new state. Persistence failures are best-effort:
// the toggled state stands for the session.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
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

	favorited, err := h.favorites.Toggle(ctx, p)
	if err != nil {
		zctx.From(ctx).Warn("Favorites persist failed", zap.String("id", p.ID), zap.Error(err))
	}

	writeJSON(w, r, http.StatusOK, map[string]bool{"favorite": favorited})
}

// RemoveFavorite handles DELETE /api/favorites/{id}. Removing an absent id
// succeeds.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.favorites.Remove(ctx, id); err != nil {
		zctx.From(ctx).Warn("Favorites persist failed", zap.String("id", id), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
