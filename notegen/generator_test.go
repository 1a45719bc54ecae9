package notegen

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/resolve"
	"github.com/poiesic/notegraph/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnit() *core.ContentUnit {
	return &core.ContentUnit{
		SourceURL:  "https://example.com/episodes/focus",
		SourceType: core.SourceTypePodcast,
		RawText:    "transcript",
		Title:      "The Focus Episode",
		Duration:   45 * time.Minute,
	}
}

func newTestGenerator(t *testing.T) (*Generator, *vault.Store) {
	t.Helper()
	store, err := vault.NewStore(t.TempDir())
	require.NoError(t, err)
	gen, err := NewGenerator(store)
	require.NoError(t, err)
	return gen, store
}

func TestCommitCreateWithBacklinks(t *testing.T) {
	gen, store := newTestGenerator(t)
	batch := gen.NewBatch(testUnit())

	relations := Relations{
		"deep work":   "deep-work",
		"cal newport": "cal-newport",
	}

	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionCreate, Slug: "deep-work", Confidence: 1.0},
		&core.CandidateEntity{
			Kind:         core.KindConcept,
			Name:         "Deep Work",
			Summary:      "Distraction-free focus.",
			RelatedNames: []string{"Cal Newport"},
		},
		relations,
	)
	require.NoError(t, err)

	_, err = batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionCreate, Slug: "cal-newport", Confidence: 1.0},
		&core.CandidateEntity{
			Kind:         core.KindPerson,
			Name:         "Cal Newport",
			Summary:      "Author and professor.",
			RelatedNames: []string{"Deep Work"},
		},
		relations,
	)
	require.NoError(t, err)
	require.NoError(t, batch.Flush())

	deepWork, err := store.Load("deep-work")
	require.NoError(t, err)
	calNewport, err := store.Load("cal-newport")
	require.NoError(t, err)

	// Body links imply reverse backlinks, in both directions.
	assert.Contains(t, deepWork.Body, "[[cal-newport|Cal Newport]]")
	assert.True(t, calNewport.HasBacklink("deep-work"))
	assert.Contains(t, calNewport.Body, "[[deep-work|Deep Work]]")
	assert.True(t, deepWork.HasBacklink("cal-newport"))
}

func TestCommitForwardLinkToLaterBatchEntry(t *testing.T) {
	gen, store := newTestGenerator(t)
	batch := gen.NewBatch(testUnit())

	relations := Relations{"cal newport": "cal-newport"}

	// The link target is committed after the note that links to it.
	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionCreate, Slug: "deep-work", Confidence: 1.0},
		&core.CandidateEntity{
			Kind:         core.KindConcept,
			Name:         "Deep Work",
			Summary:      "Distraction-free focus.",
			RelatedNames: []string{"Cal Newport"},
		},
		relations,
	)
	require.NoError(t, err)

	_, err = batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionCreate, Slug: "cal-newport", Confidence: 1.0},
		&core.CandidateEntity{Kind: core.KindPerson, Name: "Cal Newport", Summary: "Author."},
		relations,
	)
	require.NoError(t, err)
	require.NoError(t, batch.Flush())

	calNewport, err := store.Load("cal-newport")
	require.NoError(t, err)
	assert.True(t, calNewport.HasBacklink("deep-work"),
		"backlink must land even when the target is staged later in the batch")
}

func TestFlushConflictsWhenLinkTargetRemoved(t *testing.T) {
	gen, store := newTestGenerator(t)

	require.NoError(t, store.Save(&core.VaultEntity{
		ID: "cal-newport", Kind: core.KindPerson, Title: "Cal Newport",
		Body: "x", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))

	batch := gen.NewBatch(testUnit())
	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionCreate, Slug: "deep-work", Confidence: 1.0},
		&core.CandidateEntity{
			Kind:         core.KindConcept,
			Name:         "Deep Work",
			Summary:      "s",
			RelatedNames: []string{"Cal Newport"},
		},
		Relations{"cal newport": "cal-newport"},
	)
	require.NoError(t, err)

	// Target vanishes between resolution and Flush.
	require.NoError(t, os.Remove(store.NotePath("cal-newport")))

	err = batch.Flush()
	assert.ErrorIs(t, err, core.ErrVaultWriteConflict)
	assert.False(t, store.Exists("deep-work"), "a failed flush must not land any note")
}

func TestCommitUnresolvedRelatedNameStaysPlain(t *testing.T) {
	gen, store := newTestGenerator(t)
	batch := gen.NewBatch(testUnit())

	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionCreate, Slug: "flow-state", Confidence: 1.0},
		&core.CandidateEntity{
			Kind:         core.KindConcept,
			Name:         "Flow State",
			Summary:      "Complete absorption in an activity.",
			RelatedNames: []string{"Mihaly Csikszentmihalyi"},
		},
		Relations{},
	)
	require.NoError(t, err)
	require.NoError(t, batch.Flush())

	entity, err := store.Load("flow-state")
	require.NoError(t, err)

	assert.Contains(t, entity.Body, "Mihaly Csikszentmihalyi")
	assert.NotContains(t, entity.Body, "[[", "unresolved names must never become links")
	assert.Empty(t, vault.ExtractWikilinks(entity.Body))
}

func TestCommitMergeAppendsDatedSection(t *testing.T) {
	gen, store := newTestGenerator(t)

	seed := &core.VaultEntity{
		ID:        "deep-work",
		Kind:      core.KindConcept,
		Title:     "Deep Work",
		Body:      "Original body text.",
		CreatedAt: time.Now().UTC().Add(-24 * time.Hour),
		UpdatedAt: time.Now().UTC().Add(-24 * time.Hour),
	}
	require.NoError(t, store.Save(seed))

	batch := gen.NewBatch(testUnit())
	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionMerge, Slug: "deep-work", Confidence: 1.0},
		&core.CandidateEntity{
			Kind:    core.KindConcept,
			Name:    "Deep Work",
			Summary: "Also discussed as a trainable skill.",
		},
		Relations{},
	)
	require.NoError(t, err)
	require.NoError(t, batch.Flush())

	entity, err := store.Load("deep-work")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(entity.Body, "Original body text."),
		"existing content preserved verbatim")
	assert.Contains(t, entity.Body, "## Update "+time.Now().UTC().Format("2006-01-02"))
	assert.Contains(t, entity.Body, "Also discussed as a trainable skill.")
	require.Len(t, entity.SectionHashes, 1)
}

func TestCommitMergeIsIdempotent(t *testing.T) {
	gen, store := newTestGenerator(t)

	seed := &core.VaultEntity{
		ID:        "deep-work",
		Kind:      core.KindConcept,
		Title:     "Deep Work",
		Body:      "Original body text.",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Save(seed))

	candidate := &core.CandidateEntity{
		Kind:    core.KindConcept,
		Name:    "Deep Work",
		Summary: "Also discussed as a trainable skill.",
	}
	outcome := resolve.Outcome{Decision: resolve.DecisionMerge, Slug: "deep-work", Confidence: 1.0}

	// Same outcome committed twice across separate batches.
	for i := 0; i < 2; i++ {
		batch := gen.NewBatch(testUnit())
		_, err := batch.Commit(outcome, candidate, Relations{})
		require.NoError(t, err)
		require.NoError(t, batch.Flush())
	}

	entity, err := store.Load("deep-work")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(entity.Body, "Also discussed as a trainable skill."),
		"re-committed merge must not duplicate the section")
	assert.Len(t, entity.SectionHashes, 1)
}

func TestCommitCreateConflictsWithConcurrentEdit(t *testing.T) {
	gen, store := newTestGenerator(t)

	// Note appears after the resolution snapshot decided on CreateNew.
	require.NoError(t, store.Save(&core.VaultEntity{
		ID: "deep-work", Kind: core.KindConcept, Title: "Deep Work",
		Body: "x", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))

	batch := gen.NewBatch(testUnit())
	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionCreate, Slug: "deep-work", Confidence: 1.0},
		&core.CandidateEntity{Kind: core.KindConcept, Name: "Deep Work", Summary: "s"},
		Relations{},
	)
	assert.ErrorIs(t, err, core.ErrVaultWriteConflict)
}

func TestCommitMergeConflictsWhenNoteRemoved(t *testing.T) {
	gen, _ := newTestGenerator(t)

	batch := gen.NewBatch(testUnit())
	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionMerge, Slug: "gone", Confidence: 1.0},
		&core.CandidateEntity{Kind: core.KindConcept, Name: "Gone", Summary: "s"},
		Relations{},
	)
	assert.ErrorIs(t, err, core.ErrVaultWriteConflict)
}

func TestCommitAmbiguousIsRejected(t *testing.T) {
	gen, _ := newTestGenerator(t)

	batch := gen.NewBatch(testUnit())
	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionAmbiguous},
		&core.CandidateEntity{Kind: core.KindConcept, Name: "Deep Work", Summary: "s"},
		Relations{},
	)
	assert.ErrorIs(t, err, core.ErrAmbiguousResolution)
}

func TestAddSourceNoteLinksCommittedEntities(t *testing.T) {
	gen, store := newTestGenerator(t)
	batch := gen.NewBatch(testUnit())

	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionCreate, Slug: "deep-work", Confidence: 1.0},
		&core.CandidateEntity{Kind: core.KindConcept, Name: "Deep Work", Summary: "s"},
		Relations{},
	)
	require.NoError(t, err)

	source, err := batch.AddSourceNote()
	require.NoError(t, err)
	require.NoError(t, batch.Flush())

	loaded, err := store.Load(source.ID)
	require.NoError(t, err)
	assert.Equal(t, core.KindSource, loaded.Kind)
	assert.Equal(t, "https://example.com/episodes/focus", loaded.SourceURL)
	assert.Contains(t, loaded.Body, "[[deep-work|Deep Work]]")

	deepWork, err := store.Load("deep-work")
	require.NoError(t, err)
	assert.True(t, deepWork.HasBacklink(source.ID))
}

func TestAbandonedBatchLeavesVaultUntouched(t *testing.T) {
	gen, store := newTestGenerator(t)
	batch := gen.NewBatch(testUnit())

	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionCreate, Slug: "deep-work", Confidence: 1.0},
		&core.CandidateEntity{Kind: core.KindConcept, Name: "Deep Work", Summary: "s"},
		Relations{},
	)
	require.NoError(t, err)
	// No Flush: cancellation path.

	assert.False(t, store.Exists("deep-work"))
	entities, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestMergeAddsMatchedNameAsAlias(t *testing.T) {
	gen, store := newTestGenerator(t)

	require.NoError(t, store.Save(&core.VaultEntity{
		ID: "quiet-confidence", Kind: core.KindConcept, Title: "Quiet Confidence",
		Body: "x", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))

	batch := gen.NewBatch(testUnit())
	_, err := batch.Commit(
		resolve.Outcome{Decision: resolve.DecisionMerge, Slug: "quiet-confidence", Confidence: 1.0},
		&core.CandidateEntity{
			Kind: core.KindConcept, Name: "Calm Assurance", Summary: "s",
		},
		Relations{},
	)
	require.NoError(t, err)
	require.NoError(t, batch.Flush())

	entity, err := store.Load("quiet-confidence")
	require.NoError(t, err)
	assert.Contains(t, entity.Aliases, "Calm Assurance")
}
