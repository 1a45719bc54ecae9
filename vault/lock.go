package vault

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFileName lives inside the vault directory so the lock travels with it.
const lockFileName = ".notegraph.lock"

// ErrVaultLocked indicates another ingestion process holds the vault lock.
var ErrVaultLocked = errors.New("vault is locked by another process")

// Lock is a process-level advisory lock around the vault directory.
// It enforces the single-writer model: no two ingestion runs may commit to
// the vault concurrently.
type Lock struct {
	fl *flock.Flock
}

// NewLock creates a lock for the given store.
func NewLock(store *Store) *Lock {
	return &Lock{fl: flock.New(filepath.Join(store.Root(), lockFileName))}
}

// Acquire takes the lock, failing immediately if another process holds it.
func (l *Lock) Acquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire vault lock: %w", err)
	}
	if !ok {
		return ErrVaultLocked
	}
	return nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
