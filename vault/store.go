// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/notegraph/core"
)

// Store reads and writes the vault: a flat directory of markdown note files,
// one per entity, named by slug. The vault is the system's source of truth;
// only the note generator and staging approval write here.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore opens the vault directory, creating it if necessary.
// Returns core.ErrVaultUnavailable if the directory cannot be used.
func NewStore(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(root, 0755); err != nil {
				return nil, fmt.Errorf("%w: %w", core.ErrVaultUnavailable, err)
			}
		} else {
			return nil, fmt.Errorf("%w: %w", core.ErrVaultUnavailable, err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", core.ErrVaultUnavailable, root)
	}

	return &Store{
		root:   root,
		logger: slog.Default().With("component", "vault-store"),
	}, nil
}

// Root returns the vault directory path.
func (s *Store) Root() string {
	return s.root
}

// NotePath returns the file path for a slug.
func (s *Store) NotePath(slug core.Slug) string {
	return filepath.Join(s.root, string(slug)+".md")
}

// Exists reports whether a note file exists for the slug.
func (s *Store) Exists(slug core.Slug) bool {
	_, err := os.Stat(s.NotePath(slug))
	return err == nil
}

// Load reads and parses the note for the slug.
// Returns os.ErrNotExist if there is no such note.
func (s *Store) Load(slug core.Slug) (*core.VaultEntity, error) {
	data, err := os.ReadFile(s.NotePath(slug))
	if err != nil {
		return nil, err
	}
	return ParseNote(slug, data)
}

// LoadAll parses every note in the vault. Unparseable files are skipped with
// a logged warning so one hand-mangled note cannot take ingestion down.
func (s *Store) LoadAll() ([]*core.VaultEntity, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrVaultUnavailable, err)
	}

	var entities []*core.VaultEntity
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		slug := core.Slug(strings.TrimSuffix(name, ".md"))
		entity, err := s.Load(slug)
		if err != nil {
			s.logger.Warn("skipping unparseable note", "slug", slug, "err", err)
			continue
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// SaveAll writes a batch of entities atomically with respect to crashes:
// every note is first written to a temporary file in the vault directory,
// and the batch is renamed into place only after all writes succeeded.
// On any error the temporary files are removed and the vault is untouched.
func (s *Store) SaveAll(entities ...*core.VaultEntity) error {
	type staged struct {
		tmp   string
		final string
	}

	stagedFiles := make([]staged, 0, len(entities))
	cleanup := func() {
		for _, f := range stagedFiles {
			os.Remove(f.tmp)
		}
	}

	for _, entity := range entities {
		data, err := RenderNote(entity)
		if err != nil {
			cleanup()
			return err
		}

		final := s.NotePath(entity.ID)
		tmp := final + ".tmp"
		if err := os.WriteFile(tmp, data, 0644); err != nil {
			cleanup()
			return fmt.Errorf("%w: %w", core.ErrVaultUnavailable, err)
		}
		stagedFiles = append(stagedFiles, staged{tmp: tmp, final: final})
	}

	for _, f := range stagedFiles {
		if err := os.Rename(f.tmp, f.final); err != nil {
			// Rename on the same filesystem should not fail after the writes
			// succeeded; if it does, later files are withheld.
			cleanup()
			return fmt.Errorf("%w: %w", core.ErrVaultUnavailable, err)
		}
	}
	return nil
}

// Save writes a single entity.
func (s *Store) Save(entity *core.VaultEntity) error {
	return s.SaveAll(entity)
}

// IsNotExist reports whether err means the requested note is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
