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


package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/notegraph/content"
	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/extract"
	"github.com/poiesic/notegraph/notegen"
	"github.com/poiesic/notegraph/resolve"
	"github.com/poiesic/notegraph/staging"
	"github.com/poiesic/notegraph/vault"
)

// Pipeline orchestrates ingestion end to end: normalize, extract, resolve,
// then either commit to the vault or stage for review. Normalization and
// extraction run concurrently per source on a worker pool; resolution and
// vault commits are serialized under the vault lock, one content unit at a
// time.
type Pipeline struct {
	normalizer  *content.Normalizer
	extractor   *extract.ConceptExtractor
	generator   *notegen.Generator
	gate        *staging.Gate
	store       *vault.Store
	lock        *vault.Lock
	pool        *ants.Pool
	threshold   float64
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent normalization and
// extraction. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithConfidenceThreshold sets the resolution confidence below which a
// candidate routes to staging instead of the vault.
// Default is resolve.DefaultConfidenceThreshold.
func WithConfidenceThreshold(threshold float64) Option {
	return func(p *Pipeline) error {
		if threshold <= 0 || threshold > 1 {
			return fmt.Errorf("confidence threshold must be in (0, 1]")
		}
		p.threshold = threshold
		return nil
	}
}

// WithRetryPolicy sets the bounded retry policy applied to transient
// failures of external calls. Default is 3 attempts with a 500ms base delay.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	normalizer *content.Normalizer,
	extractor *extract.ConceptExtractor,
	generator *notegen.Generator,
	gate *staging.Gate,
	store *vault.Store,
	opts ...Option,
) (*Pipeline, error) {
	if normalizer == nil {
		return nil, fmt.Errorf("normalizer required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor required")
	}
	if generator == nil {
		return nil, fmt.Errorf("note generator required")
	}
	if gate == nil {
		return nil, fmt.Errorf("staging gate required")
	}
	if store == nil {
		return nil, fmt.Errorf("vault store required")
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		normalizer:  normalizer,
		extractor:   extractor,
		generator:   generator,
		gate:        gate,
		store:       store,
		lock:        vault.NewLock(store),
		pool:        pool,
		threshold:   resolve.DefaultConfidenceThreshold,
		maxAttempts: 3,
		baseDelay:   500 * time.Millisecond,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	return p, nil
}

// UnitResult reports what happened to one source reference.
type UnitResult struct {
	SourceRef string
	Committed int // notes written or patched in the vault
	Staged    int // candidates routed to review
	Err       error
}

// prepared carries a source through the concurrent stage to the serial
// commit stage.
type prepared struct {
	idx        int
	sourceRef  string
	unit       *core.ContentUnit
	candidates []core.CandidateEntity
	err        error
}

// Ingest processes the source references end to end and returns one result
// per source, positionally aligned. Per-source failures land in the result,
// not the returned error; the error covers run-level failures such as the
// vault lock being held or cancellation.
func (p *Pipeline) Ingest(ctx context.Context, sourceRefs ...string) ([]UnitResult, error) {
	if len(sourceRefs) == 0 {
		return nil, nil
	}

	// One writer at a time; a second ingestion run fails fast here.
	if err := p.lock.Acquire(); err != nil {
		return nil, err
	}
	defer p.lock.Release()

	results := make([]UnitResult, len(sourceRefs))
	preparedCh := make(chan prepared, len(sourceRefs))

	var wg sync.WaitGroup
	for i, ref := range sourceRefs {
		results[i].SourceRef = ref

		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			preparedCh <- p.prepare(ctx, i, ref)
		}); err != nil {
			wg.Done()
			preparedCh <- prepared{idx: i, sourceRef: ref, err: err}
		}
	}

	go func() {
		wg.Wait()
		close(preparedCh)
	}()

	// Commits are serial: one content unit lands fully before the next
	// starts, so resolution snapshots always see completed state.
	for pr := range preparedCh {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := &results[pr.idx]
		switch {
		case pr.err == nil:
			result.Committed, result.Staged, result.Err = p.commitUnit(ctx, pr.unit, pr.candidates)

		case errors.Is(pr.err, core.ErrMalformedExtraction) && pr.unit != nil:
			// Fail safe, not fail fast: the whole unit goes to review
			// rather than being dropped. The vault stays untouched.
			staged, stageErr := p.stageWholeUnit(ctx, pr.unit, pr.err)
			result.Staged = staged
			result.Err = stageErr

		default:
			p.logger.Error("skipping source", "source", pr.sourceRef, "err", pr.err)
			result.Err = pr.err
		}
	}

	return results, ctx.Err()
}

// prepare runs the concurrent half of ingestion for one source: normalize,
// then extract, each under the bounded retry policy for transient failures.
func (p *Pipeline) prepare(ctx context.Context, idx int, sourceRef string) prepared {
	pr := prepared{idx: idx, sourceRef: sourceRef}

	pr.err = RetryWithBackoff(ctx, func() error {
		unit, err := p.normalizer.Normalize(ctx, sourceRef)
		if err != nil {
			return err
		}
		pr.unit = unit
		return nil
	}, p.maxAttempts, p.baseDelay)
	if pr.err != nil {
		return pr
	}

	snapshot, err := p.snapshot()
	if err != nil {
		pr.err = err
		return pr
	}

	pr.err = RetryWithBackoff(ctx, func() error {
		candidates, err := p.extractor.Extract(ctx, pr.unit, snapshot)
		if err != nil {
			return err
		}
		pr.candidates = candidates
		return nil
	}, p.maxAttempts, p.baseDelay)
	return pr
}

// commitUnit runs the serial half: resolve against a fresh snapshot, write
// trusted outcomes to the vault all-or-nothing, stage the rest.
func (p *Pipeline) commitUnit(ctx context.Context, unit *core.ContentUnit, candidates []core.CandidateEntity) (committed, staged int, err error) {
	index, err := p.snapshot()
	if err != nil {
		return 0, 0, err
	}
	resolver, err := resolve.NewResolver(index, resolve.WithThreshold(p.threshold))
	if err != nil {
		return 0, 0, err
	}

	outcomes := resolver.ResolveBatch(candidates)
	relations := buildRelations(index, candidates, outcomes)

	batch := p.generator.NewBatch(unit)
	var toStage []*core.StagingItem

	for i := range candidates {
		outcome := outcomes[i]
		candidate := &candidates[i]

		if outcome.Decision == resolve.DecisionAmbiguous {
			toStage = append(toStage, stagingItem(candidate, outcome))
			continue
		}

		if _, err := batch.Commit(outcome, candidate, relations); err != nil {
			// A write conflict means the vault moved under us; the unit
			// needs re-resolution, so none of it may land.
			return 0, 0, err
		}
	}

	if batch.Len() > 0 {
		if _, err := batch.AddSourceNote(); err != nil {
			return 0, 0, err
		}
	}
	if err := batch.Flush(); err != nil {
		return 0, 0, err
	}

	if len(toStage) > 0 {
		if _, err := p.gate.Add(ctx, toStage...); err != nil {
			return batch.Len(), 0, err
		}
	}

	p.logger.Info("ingested source",
		"source", unit.SourceURL,
		"committed", batch.Len(),
		"staged", len(toStage))
	return batch.Len(), len(toStage), nil
}

// stageWholeUnit routes an unresolvable content unit to review as a single
// source-kind staging item.
func (p *Pipeline) stageWholeUnit(ctx context.Context, unit *core.ContentUnit, cause error) (int, error) {
	title := unit.Title
	if title == "" {
		title = unit.SourceURL
	}
	item := &core.StagingItem{
		Candidate: core.CandidateEntity{
			Kind:    core.KindSource,
			Name:    title,
			Summary: snippet(unit.RawText, 500),
		},
		Reason: cause.Error(),
	}
	if _, err := p.gate.Add(ctx, item); err != nil {
		return 0, err
	}
	return 1, nil
}

// snapshot loads the vault and builds an immutable index.
func (p *Pipeline) snapshot() (*vault.Index, error) {
	entities, err := p.store.LoadAll()
	if err != nil {
		return nil, err
	}
	return vault.BuildIndex(entities), nil
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// buildRelations maps every candidate and related name that resolved to a
// target slug. Names whose candidate ended Ambiguous stay out of the map,
// so they render as plain text instead of dangling links.
func buildRelations(index *vault.Index, candidates []core.CandidateEntity, outcomes []resolve.Outcome) notegen.Relations {
	relations := make(notegen.Relations)

	for i := range candidates {
		if outcomes[i].Decision == resolve.DecisionAmbiguous {
			continue
		}
		relations[candidates[i].NormalizedName()] = outcomes[i].Slug
		for _, alias := range candidates[i].Aliases {
			if norm := core.NormalizeName(alias); norm != "" {
				relations[norm] = outcomes[i].Slug
			}
		}
	}

	// Related names pointing outside the batch resolve against the
	// snapshot, exact and unambiguous matches only.
	for i := range candidates {
		for _, name := range candidates[i].RelatedNames {
			norm := core.NormalizeName(name)
			if norm == "" {
				continue
			}
			if _, ok := relations[norm]; ok {
				continue
			}
			if refs := index.LookupName(norm); len(refs) == 1 {
				relations[norm] = refs[0].Slug
			}
		}
	}
	return relations
}

// stagingItem converts an ambiguous outcome into a review queue entry.
func stagingItem(candidate *core.CandidateEntity, outcome resolve.Outcome) *core.StagingItem {
	item := &core.StagingItem{
		Candidate:  *candidate,
		Confidence: outcome.Confidence,
		Reason:     outcome.Reason,
	}
	if len(outcome.Candidates) == 1 {
		item.ConflictingWith = outcome.Candidates[0]
	}
	return item
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back up to a rune boundary so the cut never splits a multi-byte rune.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
