// Package favorites maintains the user's favorited products: full snapshots
// keyed by product id, persisted write-through on every mutation.
package favorites

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/domain/catalog"
	"github.com/sneakstore/storefront/internal/storage"
)

// Store owns the persisted favorites collection. At most one entry exists per
// product id; order is insertion order.
//
// The in-memory copy is not assumed fresh across screen transitions: the UI
// collaborator calls Refresh whenever a view regains focus, so edits made on
// another screen are picked up. Persistence failures are best-effort — the
// in-memory state keeps the intended change and the error is returned for
// observability only.
type Store struct {
	gw storage.Gateway
	lg *zap.Logger

	mu    sync.Mutex
	items []catalog.Product
}

// NewStore creates a favorites Store over the given gateway. Call Refresh to
// load the persisted collection.
func NewStore(gw storage.Gateway, lg *zap.Logger) *Store {
	return &Store{gw: gw, lg: lg}
}

// Refresh reloads the collection from storage, replacing the in-memory copy.
// On a read failure the current in-memory state is kept.
func (s *Store) Refresh(ctx context.Context) error {
	items, err := storage.ReadList[catalog.Product](ctx, s.gw, storage.KeyFavorites)
	if err != nil {
		s.lg.Warn("Failed to reload favorites", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Contains reports whether the product with the given id is favorited.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Toggle flips membership for the given product: removes it when present,
// appends a snapshot when absent. It persists the resulting collection before
// returning and reports the new membership state.
func (s *Store) Toggle(ctx context.Context, p catalog.Product) (bool, error) {
	s.mu.Lock()
	var favorited bool
	if i := s.indexOf(p.ID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	} else {
		s.items = append(s.items, p)
		favorited = true
	}
	items := s.snapshot()
	s.mu.Unlock()

	return favorited, s.persist(ctx, items)
}

// Remove deletes the entry with the given id. Removing an absent id is a
// no-op, not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	items := s.snapshot()
	s.mu.Unlock()

	return s.persist(ctx, items)
}

// List returns the favorited products in insertion order.
func (s *Store) List() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// indexOf returns the position of id in items, or -1. Caller holds mu.
func (s *Store) indexOf(id string) int {
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// snapshot copies items so callers never alias the guarded slice. Caller
// holds mu.
func (s *Store) snapshot() []catalog.Product {
	out := make([]catalog.Product, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) persist(ctx context.Context, items []catalog.Product) error {
	if err := storage.WriteList(ctx, s.gw, storage.KeyFavorites, items); err != nil {
		// In-memory state stays authoritative for the rest of the session.
		s.lg.Warn("Failed to persist favorites", zap.Error(err))
		return err
	}
	return nil
}
