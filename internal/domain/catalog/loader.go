package catalog

import (
	"context"
	"sort"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/storage"
)

// ErrUnavailable is returned by Refresh when the remote fetch failed and no
// cached snapshot exists to fall back to.
var ErrUnavailable = errors.New("catalog unavailable")

// Snapshot is the result of one catalog refresh: the authoritative product
// list in canonical (rating-descending) order plus derived view data.
type Snapshot struct {
	Products   []Product
	Categories []string

	// FromCache reports that the remote fetch failed and Products were read
	// from the last-known-good local copy instead.
	FromCache bool

	// Dropped counts malformed records rejected at the decode boundary.
	Dropped int
}

// Loader fetches the remote catalog and maintains the last-known-good cached
// copy under the shoes_cache key. The cache is a best-effort stale mirror:
// every successful fetch overwrites it unconditionally, and it is read only
// when the fetch fails.
type Loader struct {
	source Source
	gw     storage.Gateway
	lg     *zap.Logger
}

// NewLoader creates a Loader over the given source and storage gateway.
func NewLoader(source Source, gw storage.Gateway, lg *zap.Logger) *Loader {
	return &Loader{source: source, gw: gw, lg: lg}
}

// Refresh fetches the catalog, republishing it sorted by descending rating
// (the canonical order; price and explicit rating sorts are view-level
// concerns). On fetch or parse failure it serves the cached snapshot as-is,
// and returns ErrUnavailable only when the cache is empty too.
func (l *Loader) Refresh(ctx context.Context) (*Snapshot, error) {
	products, dropped, err := l.source.Fetch(ctx)
	if err != nil {
		return l.fromCache(ctx, err)
	}
	if dropped > 0 {
		l.lg.Warn("Dropped malformed catalog records", zap.Int("dropped", dropped))
	}

	// Last successful fetch always overwrites the cache; a write failure
	// only costs us the next offline fallback.
	if err := storage.WriteList(ctx, l.gw, storage.KeyCatalogCache, products); err != nil {
		l.lg.Warn("Failed to write catalog cache", zap.Error(err))
	}

	// Categories come from fetch order (first-seen), before the re-sort.
	categories := Categories(products)

	sorted := make([]Product, len(products))
	copy(sorted, products)
	sortByRatingDesc(sorted)

	return &Snapshot{
		Products:   sorted,
		Categories: categories,
		Dropped:    dropped,
	}, nil
}

func (l *Loader) fromCache(ctx context.Context, fetchErr error) (*Snapshot, error) {
	cached, err := storage.ReadList[Product](ctx, l.gw, storage.KeyCatalogCache)
	if err != nil {
		// An unreadable cache is the same as an absent one.
		l.lg.Warn("Failed to read catalog cache", zap.Error(err))
		cached = nil
	}
	if len(cached) == 0 {
		l.lg.Error("Catalog fetch failed with empty cache", zap.Error(fetchErr))
		return nil, ErrUnavailable
	}

	l.lg.Info("Serving catalog from cache", zap.Int("products", len(cached)), zap.Error(fetchErr))
	return &Snapshot{
		Products:   cached,
		Categories: Categories(cached),
		FromCache:  true,
	}, nil
}

func sortByRatingDesc(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Rating > products[j].Rating
	})
}
