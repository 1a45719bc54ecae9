package vault

import (
	"slices"

	"github.com/poiesic/notegraph/core"
)

// Ref is the index entry for one vault entity: everything resolution needs
// without holding note bodies in memory.
type Ref struct {
	Slug     core.Slug
	Kind     core.EntityKind
	Title    string
	Aliases  []string
	Inbound  int // backlinks recorded on the note
	Outbound int // wikilinks in the note body
	Updated  int64
}

// Index is an immutable snapshot of the vault taken at batch start.
// Resolution within one extraction batch reads only this snapshot, so
// resolving entity X never depends on whether entity Y has already been
// committed, and concurrent human edits during a long extraction call cannot
// corrupt resolution.
type Index struct {
	bySlug map[core.Slug]*Ref
	byName map[string][]*Ref // normalized title/alias -> refs
	refs   []*Ref            // ordered newest-updated first
}

// BuildIndex constructs an index snapshot from fully parsed entities.
func BuildIndex(entities []*core.VaultEntity) *Index {
	idx := &Index{
		bySlug: make(map[core.Slug]*Ref, len(entities)),
		byName: make(map[string][]*Ref),
	}

	for _, entity := range entities {
		ref := &Ref{
			Slug:     entity.ID,
			Kind:     entity.Kind,
			Title:    entity.Title,
			Aliases:  entity.Aliases,
			Inbound:  len(entity.Backlinks),
			Outbound: len(ExtractWikilinks(entity.Body)),
			Updated:  entity.UpdatedAt.UnixMicro(),
		}
		idx.bySlug[ref.Slug] = ref
		idx.refs = append(idx.refs, ref)

		names := map[string]struct{}{core.NormalizeName(entity.Title): {}}
		for _, alias := range entity.Aliases {
			names[core.NormalizeName(alias)] = struct{}{}
		}
		for name := range names {
			if name == "" {
				continue
			}
			idx.byName[name] = append(idx.byName[name], ref)
		}
	}

	slices.SortFunc(idx.refs, func(a, b *Ref) int {
		switch {
		case a.Updated > b.Updated:
			return -1
		case a.Updated < b.Updated:
			return 1
		default:
			return 0
		}
	})
	return idx
}

// Len returns the number of indexed entities.
func (idx *Index) Len() int {
	return len(idx.refs)
}

// BySlug looks up a ref by slug.
func (idx *Index) BySlug(slug core.Slug) (*Ref, bool) {
	ref, ok := idx.bySlug[slug]
	return ref, ok
}

// LookupName returns every entity whose title or alias matches the
// normalized name.
func (idx *Index) LookupName(normalized string) []*Ref {
	return idx.byName[normalized]
}

// All returns the refs ordered newest-updated first.
func (idx *Index) All() []*Ref {
	return idx.refs
}

// Orphans returns entities with neither inbound nor outbound links,
// newest first. Orphans are not an error; they are review material.
func (idx *Index) Orphans() []*Ref {
	var orphans []*Ref
	for _, ref := range idx.refs {
		if ref.Inbound == 0 && ref.Outbound == 0 {
			orphans = append(orphans, ref)
		}
	}
	return orphans
}

// ContextNames returns entity titles for the extraction prompt, newest
// first, truncated oldest-first so the cumulative size stays within
// budgetBytes (the extraction service's input limit share).
func (idx *Index) ContextNames(budgetBytes int) []string {
	var (
		names []string
		used  int
	)
	for _, ref := range idx.refs {
		cost := len(ref.Title) + 1
		if used+cost > budgetBytes {
			break
		}
		used += cost
		names = append(names, ref.Title)
	}
	return names
}
