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


package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/resolve"
	"github.com/poiesic/notegraph/storage"
)

// ErrNotPending means the item has already been approved or rejected.
var ErrNotPending = errors.New("staging item is not pending")

// Committer promotes an approved candidate into the vault. Implemented by
// the note generator; an interface here keeps the gate testable without a
// vault on disk.
type Committer interface {
	Promote(outcome resolve.Outcome, candidate *core.CandidateEntity) (*core.VaultEntity, error)
}

// Gate is the review queue in front of the vault. Candidates land here when
// resolution could not be trusted; nothing reaches the vault without either
// a high-confidence automatic resolution or an explicit approval through
// the gate. Pending items never expire.
type Gate struct {
	repo      storage.StagingRepository
	committer Committer
	logger    *slog.Logger
}

// NewGate creates a staging gate over the given queue and committer.
func NewGate(repo storage.StagingRepository, committer Committer) (*Gate, error) {
	if repo == nil {
		return nil, fmt.Errorf("staging repository required")
	}
	if committer == nil {
		return nil, fmt.Errorf("committer required")
	}
	return &Gate{
		repo:      repo,
		committer: committer,
		logger:    slog.Default().With("component", "staging-gate"),
	}, nil
}

// Add queues candidates for review. Items arrive Pending with identifiers
// and timestamps assigned by the repository.
func (g *Gate) Add(ctx context.Context, items ...*core.StagingItem) ([]*core.StagingItem, error) {
	for _, item := range items {
		if err := core.ValidateCandidate(&item.Candidate); err != nil {
			return nil, err
		}
	}
	stored, err := g.repo.AddItems(ctx, items...)
	if err != nil {
		return nil, err
	}
	for _, item := range stored {
		g.logger.Info("candidate staged for review",
			"id", item.ID,
			"name", item.Candidate.Name,
			"kind", item.Candidate.Kind,
			"reason", item.Reason)
	}
	return stored, nil
}

// List returns items in the given state ordered oldest first; a zero state
// lists everything.
func (g *Gate) List(ctx context.Context, state core.StagingState) ([]*core.StagingItem, error) {
	return g.repo.ListItems(ctx, state)
}

// Get returns a single item by ID.
func (g *Gate) Get(ctx context.Context, id string) (*core.StagingItem, error) {
	return g.repo.GetItem(ctx, id)
}

// Approve promotes a pending item into the vault as if the original
// resolution had succeeded: MergeInto when the item names a conflicting
// entity, CreateNew otherwise. The item is kept, marked Approved, as the
// audit trail of what a human let through.
func (g *Gate) Approve(ctx context.Context, id string) (*core.VaultEntity, error) {
	item, err := g.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.State != core.StagingPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, id, item.State)
	}

	outcome := resolve.Outcome{
		Decision:   resolve.DecisionCreate,
		Confidence: item.Confidence,
	}
	if item.ConflictingWith != "" {
		outcome.Decision = resolve.DecisionMerge
		outcome.Slug = item.ConflictingWith
	}

	entity, err := g.committer.Promote(outcome, &item.Candidate)
	if err != nil {
		return nil, err
	}

	item.State = core.StagingApproved
	if err := g.repo.UpdateItems(ctx, item); err != nil {
		// The note is already in the vault; a stale queue entry is the
		// smaller failure and the operator can re-approve harmlessly.
		g.logger.Error("approved item not marked in queue", "id", id, "err", err)
		return entity, err
	}

	g.logger.Info("staging item approved",
		"id", id,
		"name", item.Candidate.Name,
		"slug", entity.ID)
	return entity, nil
}

// Reject discards a pending item permanently. Rejected candidates are never
// retried.
func (g *Gate) Reject(ctx context.Context, id string) error {
	item, err := g.repo.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item.State != core.StagingPending {
		return fmt.Errorf("%w: %s is %s", ErrNotPending, id, item.State)
	}
	if err := g.repo.DeleteItems(ctx, id); err != nil {
		return err
	}
	g.logger.Info("staging item rejected", "id", id, "name", item.Candidate.Name)
	return nil
}
