package notegen

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/vault"
)

// IndexSlug is the slug of the regenerated index note.
const IndexSlug core.Slug = "index"

// WriteIndexNote regenerates the vault's index note: every entity grouped
// by kind, sorted by title, as wikilinks. The note body is replaced
// wholesale on every run; regeneration is how it stays current. Backlinks
// from the index are navigational and not recorded on the linked notes.
func (g *Generator) WriteIndexNote() (*core.VaultEntity, error) {
	entities, err := g.store.LoadAll()
	if err != nil {
		return nil, err
	}

	groups := make(map[core.EntityKind][]*core.VaultEntity)
	for _, entity := range entities {
		if entity.ID == IndexSlug {
			continue
		}
		groups[entity.Kind] = append(groups[entity.Kind], entity)
	}

	headings := []struct {
		kind    core.EntityKind
		heading string
	}{
		{core.KindConcept, "Concepts"},
		{core.KindPerson, "People"},
		{core.KindSource, "Sources"},
	}

	var b strings.Builder
	for _, h := range headings {
		group := groups[h.kind]
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return strings.ToLower(group[i].Title) < strings.ToLower(group[j].Title)
		})

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## %s\n", h.heading)
		for _, entity := range group {
			fmt.Fprintf(&b, "\n- %s", wikilink(entity.ID, entity.Title))
		}
	}

	now := time.Now().UTC()
	note := &core.VaultEntity{
		ID:        IndexSlug,
		Kind:      core.KindSource,
		Title:     "Index",
		Body:      b.String(),
		Tags:      []string{"index"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := g.store.Load(IndexSlug); err == nil {
		note.CreatedAt = existing.CreatedAt
		note.Backlinks = existing.Backlinks
	} else if !vault.IsNotExist(err) {
		return nil, err
	}

	if err := g.store.Save(note); err != nil {
		return nil, err
	}
	g.logger.Info("index note regenerated", "entities", len(entities))
	return note, nil
}
