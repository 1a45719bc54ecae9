package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/storage"
)

func TestStagingItemBasics(t *testing.T) {
	stagingRepo, cache, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		cache.Close()
		stagingRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	item := &core.StagingItem{
		Candidate: core.CandidateEntity{
			Kind:         core.KindConcept,
			Name:         "Quiet Confidence",
			Summary:      "Confidence that does not need an audience.",
			Aliases:      []string{"quiet confidence"},
			RelatedNames: []string{"Humility", "Self-Trust"},
		},
		Confidence: 0.5,
		Reason:     "fuzzy alias overlap",
	}

	added, err := stagingRepo.AddItems(ctx, item)
	if err != nil {
		t.Fatalf("Failed to add staging item: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(added))
	}
	if added[0].ID == "" {
		t.Fatal("Expected a generated ID")
	}
	if added[0].State != core.StagingPending {
		t.Fatalf("Expected pending state, got %v", added[0].State)
	}
	if added[0].CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be set")
	}

	retrieved, err := stagingRepo.GetItem(ctx, added[0].ID)
	if err != nil {
		t.Fatalf("Failed to get staging item: %v", err)
	}
	if retrieved.Candidate.Name != "Quiet Confidence" {
		t.Fatalf("Expected candidate name preserved, got %q", retrieved.Candidate.Name)
	}
	if len(retrieved.Candidate.RelatedNames) != 2 || retrieved.Candidate.RelatedNames[0] != "Humility" {
		t.Fatalf("Related names not preserved: %v", retrieved.Candidate.RelatedNames)
	}
	if retrieved.Confidence != 0.5 {
		t.Fatalf("Expected confidence 0.5, got %f", retrieved.Confidence)
	}
}

func TestStagingListByState(t *testing.T) {
	stagingRepo, cache, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cache.Close(); stagingRepo.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	items := []*core.StagingItem{
		{Candidate: core.CandidateEntity{Kind: core.KindPerson, Name: "Alex Rivera"}, CreatedAt: now.Add(-2 * time.Hour)},
		{Candidate: core.CandidateEntity{Kind: core.KindSource, Name: "Alex Rivera"}, CreatedAt: now.Add(-1 * time.Hour)},
		{Candidate: core.CandidateEntity{Kind: core.KindConcept, Name: "Habits"}, State: core.StagingRejected, CreatedAt: now},
	}
	if _, err := stagingRepo.AddItems(ctx, items...); err != nil {
		t.Fatalf("Failed to add staging items: %v", err)
	}

	pending, err := stagingRepo.ListItems(ctx, core.StagingPending)
	if err != nil {
		t.Fatalf("Failed to list pending items: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending items, got %d", len(pending))
	}
	if !pending[0].CreatedAt.Before(pending[1].CreatedAt) {
		t.Fatal("Expected items ordered oldest first")
	}

	all, err := stagingRepo.ListItems(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list all items: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(all))
	}
}

func TestStagingUpdateAndDelete(t *testing.T) {
	stagingRepo, cache, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cache.Close(); stagingRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := stagingRepo.AddItems(ctx, &core.StagingItem{
		Candidate: core.CandidateEntity{Kind: core.KindConcept, Name: "Deep Work"},
	})
	if err != nil {
		t.Fatalf("Failed to add staging item: %v", err)
	}

	added[0].State = core.StagingApproved
	if err := stagingRepo.UpdateItems(ctx, added[0]); err != nil {
		t.Fatalf("Failed to update staging item: %v", err)
	}

	retrieved, err := stagingRepo.GetItem(ctx, added[0].ID)
	if err != nil {
		t.Fatalf("Failed to get staging item: %v", err)
	}
	if retrieved.State != core.StagingApproved {
		t.Fatalf("Expected approved state, got %v", retrieved.State)
	}

	if err := stagingRepo.DeleteItems(ctx, added[0].ID); err != nil {
		t.Fatalf("Failed to delete staging item: %v", err)
	}

	if _, err := stagingRepo.GetItem(ctx, added[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	if err := stagingRepo.UpdateItems(ctx, added[0]); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound updating deleted item, got %v", err)
	}
}

func TestContentCacheRoundTrip(t *testing.T) {
	stagingRepo, cache, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cache.Close(); stagingRepo.Close(); backend.Close() }()

	ctx := context.Background()

	unit := &core.ContentUnit{
		SourceURL:   "https://example.com/episode-1.mp3",
		SourceType:  core.SourceTypePodcast,
		RawText:     "full transcript text",
		Title:       "Episode 1",
		PublishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:    55 * time.Minute,
	}

	key := core.IDFromContent(unit.SourceURL)

	if _, err := cache.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on cold cache, got %v", err)
	}

	if err := cache.Put(ctx, key, unit); err != nil {
		t.Fatalf("Failed to put cached unit: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Failed to get cached unit: %v", err)
	}
	if got.RawText != unit.RawText {
		t.Fatalf("Expected byte-identical raw text, got %q", got.RawText)
	}
	if got.SourceType != core.SourceTypePodcast || got.Duration != unit.Duration {
		t.Fatalf("Metadata not preserved: %+v", got)
	}
	if !got.PublishedAt.Equal(unit.PublishedAt) {
		t.Fatalf("PublishedAt not preserved: %v", got.PublishedAt)
	}
}
