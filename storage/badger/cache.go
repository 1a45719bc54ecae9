package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/storage"
)

// ContentCache implements storage.ContentCache for BadgerDB.
type ContentCache struct {
	backend *Backend
}

var _ storage.ContentCache = (*ContentCache)(nil)

// NewContentCache creates a new ContentCache.
//
// Returns storage.ContentCache interface to enforce abstraction.
func NewContentCache(backend *Backend) (storage.ContentCache, error) {
	return &ContentCache{backend: backend}, nil
}

// Close releases resources. ContentCache has no resources of its own.
func (c *ContentCache) Close() error {
	return nil
}

// Get retrieves the cached unit for the key.
func (c *ContentCache) Get(ctx context.Context, key core.ID) (*core.ContentUnit, error) {
	var unit *core.ContentUnit

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeContentCacheKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return entry.Value(func(val []byte) error {
			unit, err = storage.UnmarshalContentUnit(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return unit, nil
}

// Put stores the unit under the key, replacing any previous value.
func (c *ContentCache) Put(ctx context.Context, key core.ID, unit *core.ContentUnit) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeContentCacheKey(key), storage.MarshalContentUnit(unit)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
