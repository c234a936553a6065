// Package cart maintains the quantity-annotated cart collection, persisted
// write-through on every mutation.
package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/domain/catalog"
	"github.com/sneakstore/storefront/internal/storage"
)

// ErrAlreadyInCart signals that Add found an existing entry for the product.
// It is informational: adding a duplicate from the detail view never bumps
// the quantity, that is done through the cart's own increment control.
var ErrAlreadyInCart = errors.New("product already in cart")

// Entry is a product snapshot with a positive quantity. Quantities are never
// persisted as zero or negative: removing the last unit removes the entry.
type Entry struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Store owns the persisted cart collection, one entry per product id. Same
// reload-on-focus and best-effort persistence model as the favorites store.
type Store struct {
	gw storage.Gateway
	lg *zap.Logger

	mu    sync.Mutex
	items []Entry
}

// NewStore creates a cart Store over the given gateway. Call Refresh to load
// the persisted collection.
func NewStore(gw storage.Gateway, lg *zap.Logger) *Store {
	return &Store{gw: gw, lg: lg}
}

// Refresh reloads the collection from storage, replacing the in-memory copy.
// On a read failure the current in-memory state is kept.
func (s *Store) Refresh(ctx context.Context) error {
	items, err := storage.ReadList[Entry](ctx, s.gw, storage.KeyCart)
	if err != nil {
		s.lg.Warn("Failed to reload cart", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Add inserts a new entry with quantity 1. When an entry for the product
// already exists the cart is left untouched and ErrAlreadyInCart is returned.
func (s *Store) Add(ctx context.Context, p catalog.Product) error {
	s.mu.Lock()
	if s.indexOf(p.ID) >= 0 {
		s.mu.Unlock()
		return ErrAlreadyInCart
	}
	s.items = append(s.items, Entry{Product: p, Quantity: 1})
	items := s.snapshot()
	s.mu.Unlock()

	return s.persist(ctx, items)
}

// Increment raises the quantity of the matching entry by one. Absent ids are
// a no-op.
func (s *Store) Increment(ctx context.Context, id string) error {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i].Quantity++
	}
	items := s.snapshot()
	s.mu.Unlock()

	return s.persist(ctx, items)
}

// Decrement lowers the quantity of the matching entry by one, floored at 1.
// Absent ids are a no-op.
func (s *Store) Decrement(ctx context.Context, id string) error {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i].Quantity--
		if s.items[i].Quantity < 1 {
			s.items[i].Quantity = 1
		}
	}
	// Non-positive quantities must never survive, whatever produced them.
	kept := s.items[:0]
	for _, e := range s.items {
		if e.Quantity > 0 {
			kept = append(kept, e)
		}
	}
	s.items = kept
	items := s.snapshot()
	s.mu.Unlock()

	return s.persist(ctx, items)
}

// Remove deletes the entry with the given id regardless of quantity. Removing
// an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	items := s.snapshot()
	s.mu.Unlock()

	return s.persist(ctx, items)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	items := s.snapshot()
	s.mu.Unlock()

	return s.persist(ctx, items)
}

// Items returns the cart entries in insertion order.
func (s *Store) Items() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Total sums price×quantity over all entries at full precision and rounds to
// 2 decimal places (half away from zero) only for the final display value.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, e := range s.items {
		total = total.Add(e.Price.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total.Round(2)
}

// indexOf returns the position of id in items, or -1. Caller holds mu.
func (s *Store) indexOf(id string) int {
	for i, e := range s.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// snapshot copies items so callers never alias the guarded slice. Caller
// holds mu.
func (s *Store) snapshot() []Entry {
	out := make([]Entry, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) persist(ctx context.Context, items []Entry) error {
	if err := storage.WriteList(ctx, s.gw, storage.KeyCart, items); err != nil {
		// In-memory state stays authoritative for the rest of the session.
		s.lg.Warn("Failed to persist cart", zap.Error(err))
		return err
	}
	return nil
}
