package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/storage"
)

// StagingRepository implements storage.StagingRepository for BadgerDB.
type StagingRepository struct {
	backend *Backend
}

var _ storage.StagingRepository = (*StagingRepository)(nil)

// NewStagingRepository creates a new StagingRepository.
//
// Returns storage.StagingRepository interface to enforce abstraction.
func NewStagingRepository(backend *Backend) (storage.StagingRepository, error) {
	return &StagingRepository{backend: backend}, nil
}

// Close releases resources. StagingRepository has no resources of its own.
func (r *StagingRepository) Close() error {
	return nil
}

// AddItems adds one or more staging items, assigning UUIDs and timestamps.
func (r *StagingRepository) AddItems(ctx context.Context, items ...*core.StagingItem) ([]*core.StagingItem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			if item.CreatedAt.IsZero() {
				item.CreatedAt = time.Now().UTC()
			}
			if item.State == 0 {
				item.State = core.StagingPending
			}

			if err := tx.Set(makeStagingItemKey(item.ID), storage.MarshalStagingItem(item)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// GetItem retrieves a single staging item by ID.
func (r *StagingRepository) GetItem(ctx context.Context, id string) (*core.StagingItem, error) {
	var item *core.StagingItem

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeStagingItemKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return entry.Value(func(val []byte) error {
			item, err = storage.UnmarshalStagingItem(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems retrieves staging items in the given state, oldest first.
// A zero state matches everything.
func (r *StagingRepository) ListItems(ctx context.Context, state core.StagingState) ([]*core.StagingItem, error) {
	var items []*core.StagingItem

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(stagingItemPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item *core.StagingItem
			err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalStagingItem(val)
				return err
			})
			if err != nil {
				return err
			}
			if state != 0 && item.State != state {
				continue
			}
			items = append(items, item)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(items, func(a, b *core.StagingItem) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return items, nil
}

// UpdateItems updates existing staging items.
func (r *StagingRepository) UpdateItems(ctx context.Context, items ...*core.StagingItem) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			key := makeStagingItemKey(item.ID)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Set(key, storage.MarshalStagingItem(item)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteItems removes staging items by their IDs.
func (r *StagingRepository) DeleteItems(ctx context.Context, ids ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeStagingItemKey(id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
