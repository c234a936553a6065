// Package memory provides an in-memory storage gateway, used by tests and as
// a fallback when no database path is configured.
package memory

import (
	"context"
	"sync"

	"github.com/sneakstore/storefront/internal/storage"
)

var _ storage.Gateway = (*Gateway)(nil)

// Gateway is a storage.Gateway held entirely in process memory.
type Gateway struct {
	mu     sync.RWMutex
	values map[string]string
}

// New returns an empty in-memory gateway.
func New() *Gateway {
	return &Gateway{values: make(map[string]string)}
}

func (g *Gateway) Get(_ context.Context, key string) (string, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.values[key]
	return v, ok, nil
}

func (g *Gateway) Set(_ context.Context, key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[key] = value
	return nil
}

func (g *Gateway) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.values, key)
	return nil
}
