package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/domain/catalog"
)

// productView is a catalog product annotated with the favorite badge state
// the browsing screen renders.
type productView struct {
	catalog.Product
	Favorite bool `json:"favorite"`
}

type catalogResponse struct {
	Products   []productView `json:"products"`
	Categories []string      `json:"categories"`
	Stale      bool          `json:"stale"`
	Dropped    int           `json:"dropped,omitempty"`
}

// GetCatalog handles GET /api/catalog?category=&q=&sort=.
//
// It refreshes the catalog (falling back to the local cache when the remote
// endpoint is down), applies the view projection, and annotates each product
// with its favorite state. 503 only when both fetch and cache fail.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := catalog.Query{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
		Sort:     catalog.SortKey(r.URL.Query().Get("sort")),
	}
	switch query.Sort {
	case catalog.SortNone, catalog.SortPrice, catalog.SortRating:
	default:
		writeError(w, r, http.StatusBadRequest, "invalid sort key")
		return
	}

	snap, err := h.loader.Refresh(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrUnavailable) {
			writeError(w, r, http.StatusServiceUnavailable, "catalog unavailable")
			return
		}
		zctx.From(ctx).Error("Catalog refresh failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	// The browsing screen shows favorite badges; reload them so edits made on
	// other screens are reflected.
	if err := h.favorites.Refresh(ctx); err != nil {
		zctx.From(ctx).Warn("Favorites reload failed, badges may be stale", zap.Error(err))
	}

	projected := catalog.Project(snap.Products, query)
	views := make([]productView, len(projected))
	for i, p := range projected {
		views[i] = productView{Product: p, Favorite: h.favorites.Contains(p.ID)}
	}

	writeJSON(w, r, http.StatusOK, catalogResponse{
		Products:   views,
		Categories: snap.Categories,
		Stale:      snap.FromCache,
		Dropped:    snap.Dropped,
	})
}
