package staging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/resolve"
	"github.com/poiesic/notegraph/storage"
	badgerstore "github.com/poiesic/notegraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommitter struct {
	outcomes   []resolve.Outcome
	candidates []*core.CandidateEntity
	err        error
}

func (f *fakeCommitter) Promote(outcome resolve.Outcome, candidate *core.CandidateEntity) (*core.VaultEntity, error) {
	f.outcomes = append(f.outcomes, outcome)
	f.candidates = append(f.candidates, candidate)
	if f.err != nil {
		return nil, f.err
	}
	return &core.VaultEntity{
		ID:        core.SlugFromName(candidate.Name),
		Kind:      candidate.Kind,
		Title:     candidate.Name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func newTestGate(t *testing.T, committer Committer) *Gate {
	t.Helper()

	repo, cache, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		cache.Close()
		backend.Close()
	})

	gate, err := NewGate(repo, committer)
	require.NoError(t, err)
	return gate
}

func pendingItem(name string) *core.StagingItem {
	return &core.StagingItem{
		Candidate: core.CandidateEntity{
			Kind:    core.KindConcept,
			Name:    name,
			Summary: "staged for review.",
		},
		Confidence: 0.5,
		Reason:     "fuzzy match below threshold",
	}
}

func TestGateAddAndList(t *testing.T) {
	gate := newTestGate(t, &fakeCommitter{})
	ctx := context.Background()

	stored, err := gate.Add(ctx, pendingItem("Flow State"), pendingItem("Deep Work"))
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.NotEmpty(t, stored[0].ID)
	assert.Equal(t, core.StagingPending, stored[0].State)

	items, err := gate.List(ctx, core.StagingPending)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGateApproveCreate(t *testing.T) {
	committer := &fakeCommitter{}
	gate := newTestGate(t, committer)
	ctx := context.Background()

	stored, err := gate.Add(ctx, pendingItem("Flow State"))
	require.NoError(t, err)

	entity, err := gate.Approve(ctx, stored[0].ID)
	require.NoError(t, err)
	assert.Equal(t, core.Slug("flow-state"), entity.ID)

	require.Len(t, committer.outcomes, 1)
	assert.Equal(t, resolve.DecisionCreate, committer.outcomes[0].Decision)

	// The item stays as an audit record, marked approved.
	item, err := gate.Get(ctx, stored[0].ID)
	require.NoError(t, err)
	assert.Equal(t, core.StagingApproved, item.State)

	// A second approval must not reach the vault again.
	_, err = gate.Approve(ctx, stored[0].ID)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Len(t, committer.outcomes, 1)
}

func TestGateApproveConflictingItemMerges(t *testing.T) {
	committer := &fakeCommitter{}
	gate := newTestGate(t, committer)
	ctx := context.Background()

	item := pendingItem("Confidence")
	item.ConflictingWith = "quiet-confidence"
	stored, err := gate.Add(ctx, item)
	require.NoError(t, err)

	_, err = gate.Approve(ctx, stored[0].ID)
	require.NoError(t, err)

	require.Len(t, committer.outcomes, 1)
	assert.Equal(t, resolve.DecisionMerge, committer.outcomes[0].Decision)
	assert.Equal(t, core.Slug("quiet-confidence"), committer.outcomes[0].Slug)
}

func TestGateApproveCommitFailureKeepsItemPending(t *testing.T) {
	committer := &fakeCommitter{err: errors.New("vault unavailable")}
	gate := newTestGate(t, committer)
	ctx := context.Background()

	stored, err := gate.Add(ctx, pendingItem("Flow State"))
	require.NoError(t, err)

	_, err = gate.Approve(ctx, stored[0].ID)
	require.Error(t, err)

	item, err := gate.Get(ctx, stored[0].ID)
	require.NoError(t, err)
	assert.Equal(t, core.StagingPending, item.State, "failed approval must stay reviewable")
}

func TestGateReject(t *testing.T) {
	committer := &fakeCommitter{}
	gate := newTestGate(t, committer)
	ctx := context.Background()

	stored, err := gate.Add(ctx, pendingItem("Flow State"))
	require.NoError(t, err)

	require.NoError(t, gate.Reject(ctx, stored[0].ID))

	_, err = gate.Get(ctx, stored[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, committer.outcomes, "rejection never touches the vault")
}

func TestGateRejectUnknownID(t *testing.T) {
	gate := newTestGate(t, &fakeCommitter{})
	err := gate.Reject(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
