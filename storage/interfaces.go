package storage

import (
	"context"

	"github.com/poiesic/notegraph/core"
)

// StagingRepository persists staging items awaiting human review.
// Implementations must be thread-safe and support concurrent access.
type StagingRepository interface {
	// AddItems adds one or more staging items.
	// Items without an ID get a freshly generated UUID; CreatedAt is set if
	// zero and State defaults to StagingPending.
	// Returns the items with identifiers and timestamps populated.
	AddItems(ctx context.Context, items ...*core.StagingItem) ([]*core.StagingItem, error)

	// GetItem retrieves a single staging item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id string) (*core.StagingItem, error)

	// ListItems retrieves staging items in the given state, ordered by
	// creation time ascending. A zero state lists every item.
	ListItems(ctx context.Context, state core.StagingState) ([]*core.StagingItem, error)

	// UpdateItems updates existing staging items.
	// Returns ErrNotFound if any item doesn't exist.
	UpdateItems(ctx context.Context, items ...*core.StagingItem) error

	// DeleteItems removes staging items by their IDs.
	// Returns ErrNotFound if any item doesn't exist.
	DeleteItems(ctx context.Context, ids ...string) error

	// Close closes the repository and releases resources.
	Close() error
}

// ContentCache stores normalized content units keyed by a content hash of
// the source reference. It makes re-normalizing a source idempotent: a hit
// returns the cached unit byte-for-byte without re-downloading or
// re-transcribing.
type ContentCache interface {
	// Get retrieves the cached unit for the key.
	// Returns ErrNotFound on a miss.
	Get(ctx context.Context, key core.ID) (*core.ContentUnit, error)

	// Put stores the unit under the key, replacing any previous value.
	Put(ctx context.Context, key core.ID, unit *core.ContentUnit) error

	// Close closes the cache and releases resources.
	Close() error
}
