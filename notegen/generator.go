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


package notegen

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/resolve"
	"github.com/poiesic/notegraph/vault"
)

// Relations maps a normalized related name to the slug it resolved to.
// Only names present here render as wikilinks; everything else stays plain
// text, so a dangling link can never be written.
type Relations map[string]core.Slug

// Generator writes resolved entities into the vault. It is the only
// component that mutates the note store.
type Generator struct {
	store  *vault.Store
	logger *slog.Logger
}

// NewGenerator creates a note generator over the given store.
func NewGenerator(store *vault.Store) (*Generator, error) {
	if store == nil {
		return nil, fmt.Errorf("vault store required")
	}
	return &Generator{
		store:  store,
		logger: slog.Default().With("component", "notegen"),
	}, nil
}

// Batch accumulates the note writes for one content unit in memory.
// Nothing touches disk until Flush, which persists everything through an
// all-or-nothing rename pass. Abandoning a batch leaves the vault untouched.
//
// Backlink patching is deferred to Flush: links between entities of the same
// batch may point at a note that is committed later, so targets are patched
// only once every staged note exists in the batch.
type Batch struct {
	gen     *Generator
	unit    *core.ContentUnit
	now     time.Time
	pending map[core.Slug]*core.VaultEntity
	order   []core.Slug
	links   []linkEdge
}

// linkEdge is a body link from one note to another, recorded at commit time
// and turned into a backlink on the target at Flush.
type linkEdge struct {
	from   core.Slug
	target core.Slug
}

// NewBatch starts a commit batch for one content unit.
func (g *Generator) NewBatch(unit *core.ContentUnit) *Batch {
	return &Batch{
		gen:     g,
		unit:    unit,
		now:     time.Now().UTC(),
		pending: make(map[core.Slug]*core.VaultEntity),
	}
}

// Commit applies one resolution outcome to the batch. DecisionCreate writes
// a new note, DecisionMerge appends a dated section to the existing one.
// Ambiguous outcomes never reach the vault; passing one is a caller bug and
// fails with core.ErrAmbiguousResolution.
func (b *Batch) Commit(outcome resolve.Outcome, candidate *core.CandidateEntity, relations Relations) (*core.VaultEntity, error) {
	if err := core.ValidateCandidate(candidate); err != nil {
		return nil, err
	}

	switch outcome.Decision {
	case resolve.DecisionCreate:
		return b.createNew(outcome.Slug, candidate, relations)
	case resolve.DecisionMerge:
		return b.mergeInto(outcome.Slug, candidate, relations)
	default:
		return nil, fmt.Errorf("%w: %q cannot be committed", core.ErrAmbiguousResolution, candidate.Name)
	}
}

// AddSourceNote writes a literature note for the ingested unit itself,
// linking to every entity committed in this batch so far. Re-ingesting a
// source whose note already exists leaves the existing note untouched.
func (b *Batch) AddSourceNote() (*core.VaultEntity, error) {
	title := b.unit.Title
	if title == "" {
		title = b.unit.SourceURL
	}
	slug := core.SlugFromName(title)
	if slug == "" {
		return nil, fmt.Errorf("%w: source title %q yields no slug", core.ErrInvalidContentUnit, title)
	}

	if existing, ok := b.pending[slug]; ok {
		return existing, nil
	}
	if b.gen.store.Exists(slug) {
		b.gen.logger.Debug("source note already present", "slug", slug)
		return b.gen.store.Load(slug)
	}

	linked := make([]*core.VaultEntity, 0, len(b.order))
	for _, s := range b.order {
		linked = append(linked, b.pending[s])
	}

	entity := &core.VaultEntity{
		ID:        slug,
		Kind:      core.KindSource,
		Title:     title,
		Body:      renderSourceBody(b.unit, linked),
		SourceURL: b.unit.SourceURL,
		Tags:      []string{core.KindSource.String(), b.unit.SourceType.String()},
		CreatedAt: b.now,
		UpdatedAt: b.now,
	}
	b.stage(entity)

	for _, target := range linked {
		b.recordLink(slug, target.ID)
	}
	return entity, nil
}

// Promote commits a single approved candidate outside a pipeline run, used
// by the staging gate. Related names are re-resolved against the current
// vault by exact name match so approved notes still link to what exists;
// anything unmatched renders as plain text.
//
// A create whose slug has been taken since staging gets a kind-suffixed
// slug instead of clobbering the existing note.
func (g *Generator) Promote(outcome resolve.Outcome, candidate *core.CandidateEntity) (*core.VaultEntity, error) {
	if err := core.ValidateCandidate(candidate); err != nil {
		return nil, err
	}

	entities, err := g.store.LoadAll()
	if err != nil {
		return nil, err
	}
	index := vault.BuildIndex(entities)

	relations := make(Relations)
	for _, name := range candidate.RelatedNames {
		norm := core.NormalizeName(name)
		if refs := index.LookupName(norm); len(refs) == 1 {
			relations[norm] = refs[0].Slug
		}
	}

	if outcome.Decision == resolve.DecisionCreate {
		if outcome.Slug == "" {
			outcome.Slug = core.SlugFromName(candidate.Name)
		}
		if g.store.Exists(outcome.Slug) {
			outcome.Slug = core.Slug(string(outcome.Slug) + "-" + candidate.Kind.String())
		}
	}

	batch := g.NewBatch(&core.ContentUnit{})
	entity, err := batch.Commit(outcome, candidate, relations)
	if err != nil {
		return nil, err
	}
	if err := batch.Flush(); err != nil {
		return nil, err
	}
	return entity, nil
}

// Flush patches backlinks and persists the batch. All staged notes land
// together or not at all.
func (b *Batch) Flush() error {
	if len(b.order) == 0 {
		return nil
	}
	for _, edge := range b.links {
		if err := b.patchBacklink(edge.target, edge.from); err != nil {
			return err
		}
	}
	entities := make([]*core.VaultEntity, 0, len(b.order))
	for _, slug := range b.order {
		entities = append(entities, b.pending[slug])
	}
	if err := b.gen.store.SaveAll(entities...); err != nil {
		return err
	}
	b.gen.logger.Info("committed notes", "source", b.unit.SourceURL, "notes", len(entities))
	return nil
}

// Len returns the number of notes staged in the batch.
func (b *Batch) Len() int {
	return len(b.order)
}

func (b *Batch) createNew(slug core.Slug, candidate *core.CandidateEntity, relations Relations) (*core.VaultEntity, error) {
	if slug == "" {
		slug = core.SlugFromName(candidate.Name)
	}
	if _, ok := b.pending[slug]; ok {
		return nil, fmt.Errorf("%w: slug %q already staged in this batch", core.ErrVaultWriteConflict, slug)
	}
	// The slug was free when the resolution snapshot was taken; a note
	// appearing since means a concurrent edit and needs re-resolution.
	if b.gen.store.Exists(slug) {
		return nil, fmt.Errorf("%w: note %q created since resolution", core.ErrVaultWriteConflict, slug)
	}

	body, links := renderBody(candidate, relations)
	entity := &core.VaultEntity{
		ID:        slug,
		Kind:      candidate.Kind,
		Title:     candidate.Name,
		Aliases:   candidate.Aliases,
		Body:      body,
		SourceURL: b.unit.SourceURL,
		Tags:      []string{candidate.Kind.String()},
		CreatedAt: b.now,
		UpdatedAt: b.now,
	}
	b.stage(entity)
	b.recordLinks(slug, links)
	return entity, nil
}

func (b *Batch) mergeInto(slug core.Slug, candidate *core.CandidateEntity, relations Relations) (*core.VaultEntity, error) {
	entity, err := b.entity(slug)
	if err != nil {
		if vault.IsNotExist(err) {
			return nil, fmt.Errorf("%w: note %q removed since resolution", core.ErrVaultWriteConflict, slug)
		}
		return nil, err
	}

	section, links := renderMergeSection(candidate, relations, b.now)
	hash := core.IDFromContent(section)
	if entity.HasSectionHash(hash) {
		b.gen.logger.Debug("merge section already present, skipping", "slug", slug)
		return entity, nil
	}

	if entity.Body == "" {
		entity.Body = section
	} else {
		entity.Body = entity.Body + "\n\n" + section
	}
	entity.SectionHashes = append(entity.SectionHashes, hash)
	entity.Aliases = mergeAliases(entity, candidate)
	entity.UpdatedAt = b.now
	b.stage(entity)
	b.recordLinks(slug, links)
	return entity, nil
}

// recordLink defers one backlink patch to Flush.
func (b *Batch) recordLink(from, target core.Slug) {
	b.links = append(b.links, linkEdge{from: from, target: target})
}

// recordLinks defers backlink patches for every link target to Flush.
func (b *Batch) recordLinks(from core.Slug, targets []core.Slug) {
	for _, target := range targets {
		b.recordLink(from, target)
	}
}

// patchBacklink records on the target note that `from` now links to it.
// Called from Flush, after every note of the batch has been staged, so a
// target created by this same batch is found in pending rather than on disk.
func (b *Batch) patchBacklink(target, from core.Slug) error {
	if target == from {
		return nil
	}
	entity, err := b.entity(target)
	if err != nil {
		if vault.IsNotExist(err) {
			return fmt.Errorf("%w: link target %q removed since resolution", core.ErrVaultWriteConflict, target)
		}
		return err
	}
	if entity.HasBacklink(from) {
		return nil
	}
	entity.Backlinks = append(entity.Backlinks, from)
	entity.UpdatedAt = b.now
	b.stage(entity)
	return nil
}

// entity fetches a note from the batch if staged, falling back to disk.
func (b *Batch) entity(slug core.Slug) (*core.VaultEntity, error) {
	if entity, ok := b.pending[slug]; ok {
		return entity, nil
	}
	return b.gen.store.Load(slug)
}

// stage enqueues an entity for Flush, keeping first-staged order.
func (b *Batch) stage(entity *core.VaultEntity) {
	if _, ok := b.pending[entity.ID]; !ok {
		b.order = append(b.order, entity.ID)
	}
	b.pending[entity.ID] = entity
}

// mergeAliases unions the candidate's name and aliases into the entity's
// alias list. A merged-in name that differs from the title is worth keeping
// as an alias so later resolutions match it exactly.
func mergeAliases(entity *core.VaultEntity, candidate *core.CandidateEntity) []string {
	seen := make(map[string]struct{}, len(entity.Aliases)+1)
	seen[core.NormalizeName(entity.Title)] = struct{}{}
	aliases := entity.Aliases
	for _, a := range aliases {
		seen[core.NormalizeName(a)] = struct{}{}
	}
	for _, a := range append([]string{candidate.Name}, candidate.Aliases...) {
		norm := core.NormalizeName(a)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		aliases = append(aliases, a)
	}
	return aliases
}
