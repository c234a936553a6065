// Package storage defines the key-value gateway the domain stores persist
// their collections through, plus JSON helpers for reading and writing them.
//
// The gateway deliberately conflates "no data yet" and "corrupt data": both
// read back as an empty collection with no error. First run and a damaged
// local file degrade the same way, to an empty but usable state. Only I/O
// failures surface as errors, and callers treat those as best-effort.
package storage

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
)

// Well-known collection keys.
const (
	KeyCatalogCache = "shoes_cache"
	KeyFavorites    = "favorites"
	KeyCart         = "cart"
)

// Gateway is a durable string-keyed store with UTF-8 JSON text values.
// Absence of a key is a valid, expected state.
type Gateway interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ReadList loads the collection stored under key. An absent key or a payload
// that fails to deserialize yields an empty slice and no error; only gateway
// I/O failures are returned.
func ReadList[T any](ctx context.Context, gw Gateway, key string) ([]T, error) {
	raw, ok, err := gw.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", key)
	}
	if !ok {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// Corrupt payload reads as empty, same as first run.
		return nil, nil
	}
	return items, nil
}

// WriteList serializes items and stores them under key, overwriting any
// previous value.
func WriteList[T any](ctx context.Context, gw Gateway, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "marshal %q", key)
	}
	if err := gw.Set(ctx, key, string(raw)); err != nil {
		return errors.Wrapf(err, "write %q", key)
	}
	return nil
}
