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


package resolve

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/vault"
)

const (
	// DefaultConfidenceThreshold is the policy knob below which a match is
	// forced to DecisionAmbiguous. The fuzzy shared-token rule scores 0.5,
	// so by default fuzzy matches always route to staging.
	DefaultConfidenceThreshold = 0.75

	fuzzyConfidence = 0.5
)

// Resolver matches candidate entities against an immutable vault snapshot.
// Because the snapshot never changes during a batch, resolving candidate X
// never depends on whether candidate Y has already been committed, and a
// batch resolves to the same outcomes in any order.
type Resolver struct {
	index     *vault.Index
	threshold float64
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithThreshold overrides the confidence threshold.
func WithThreshold(threshold float64) Option {
	return func(r *Resolver) {
		if threshold > 0 {
			r.threshold = threshold
		}
	}
}

// NewResolver creates a resolver over the given snapshot.
func NewResolver(index *vault.Index, opts ...Option) (*Resolver, error) {
	if index == nil {
		return nil, fmt.Errorf("vault index required")
	}
	r := &Resolver{
		index:     index,
		threshold: DefaultConfidenceThreshold,
		logger:    slog.Default().With("component", "resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve matches one candidate against the snapshot.
func (r *Resolver) Resolve(candidate *core.CandidateEntity) Outcome {
	if err := core.ValidateCandidate(candidate); err != nil {
		return Outcome{
			Decision: DecisionAmbiguous,
			Reason:   err.Error(),
		}
	}

	// Exact match on normalized title or alias, the candidate's own name
	// and its aliases both count.
	sameKind, crossKind := r.exactMatches(candidate)

	switch {
	case len(sameKind) == 1 && len(crossKind) == 0:
		return r.enforceThreshold(Outcome{
			Decision:   DecisionMerge,
			Slug:       sameKind[0].Slug,
			Confidence: 1.0,
		}, candidate)

	case len(sameKind)+len(crossKind) > 0:
		outcome := Outcome{
			Decision:   DecisionAmbiguous,
			Candidates: refSlugs(append(sameKind, crossKind...)),
			Confidence: 0,
		}
		if len(crossKind) > 0 {
			outcome.Reason = fmt.Sprintf("name %q collides with an existing entity of a different kind", candidate.Name)
		} else {
			outcome.Reason = fmt.Sprintf("name %q matches multiple existing entities", candidate.Name)
		}
		if len(outcome.Candidates) == 1 {
			outcome.Slug = outcome.Candidates[0]
		}
		return outcome
	}

	// No exact match. A slug collision still signals trouble: same kind is
	// a match the name rules missed, cross kind needs a human.
	slug := core.SlugFromName(candidate.Name)
	if ref, ok := r.index.BySlug(slug); ok {
		if ref.Kind == candidate.Kind {
			return r.enforceThreshold(Outcome{
				Decision:   DecisionMerge,
				Slug:       ref.Slug,
				Confidence: 1.0,
			}, candidate)
		}
		return Outcome{
			Decision:   DecisionAmbiguous,
			Slug:       ref.Slug,
			Candidates: []core.Slug{ref.Slug},
			Reason:     fmt.Sprintf("slug %q already belongs to a %s entity", slug, ref.Kind),
		}
	}

	// Fuzzy rule: shared token subset between the candidate's names and an
	// existing same-kind entity's names.
	if fuzzy := r.fuzzyMatches(candidate); len(fuzzy) > 0 {
		outcome := Outcome{
			Decision:   DecisionMerge,
			Slug:       fuzzy[0].Slug,
			Candidates: refSlugs(fuzzy),
			Confidence: fuzzyConfidence,
		}
		return r.enforceThreshold(outcome, candidate)
	}

	return Outcome{
		Decision:   DecisionCreate,
		Slug:       slug,
		Confidence: 1.0,
	}
}

// ResolveBatch resolves a batch of candidates in one pass. Outcomes are
// positionally aligned with the input. Intra-batch collisions are handled
// here: two candidates sharing a name or slug across different kinds both
// become DecisionAmbiguous, since the model conflated two interpretations
// of one name.
func (r *Resolver) ResolveBatch(candidates []core.CandidateEntity) []Outcome {
	kindsBySlug := make(map[core.Slug]map[core.EntityKind]struct{})
	for i := range candidates {
		slug := core.SlugFromName(candidates[i].Name)
		if slug == "" {
			continue
		}
		if kindsBySlug[slug] == nil {
			kindsBySlug[slug] = make(map[core.EntityKind]struct{})
		}
		kindsBySlug[slug][candidates[i].Kind] = struct{}{}
	}

	outcomes := make([]Outcome, len(candidates))
	for i := range candidates {
		slug := core.SlugFromName(candidates[i].Name)
		if kinds := kindsBySlug[slug]; len(kinds) > 1 {
			outcomes[i] = Outcome{
				Decision: DecisionAmbiguous,
				Reason:   fmt.Sprintf("name %q appears in this batch with conflicting kinds", candidates[i].Name),
			}
			r.logger.Warn("intra-batch kind conflict", "name", candidates[i].Name)
			continue
		}
		outcomes[i] = r.Resolve(&candidates[i])
	}
	return outcomes
}

// enforceThreshold demotes a merge below the confidence threshold to
// DecisionAmbiguous.
func (r *Resolver) enforceThreshold(outcome Outcome, candidate *core.CandidateEntity) Outcome {
	if outcome.Decision == DecisionMerge && outcome.Confidence < r.threshold {
		r.logger.Debug("confidence below threshold, routing to staging",
			"name", candidate.Name,
			"confidence", outcome.Confidence,
			"threshold", r.threshold)
		outcome.Decision = DecisionAmbiguous
		if outcome.Reason == "" {
			outcome.Reason = fmt.Sprintf("fuzzy match for %q at confidence %.2f, below threshold %.2f",
				candidate.Name, outcome.Confidence, r.threshold)
		}
	}
	return outcome
}

// exactMatches partitions normalized title/alias matches by kind agreement.
func (r *Resolver) exactMatches(candidate *core.CandidateEntity) (sameKind, crossKind []*vault.Ref) {
	seen := make(map[core.Slug]struct{})
	for _, name := range candidateNames(candidate) {
		for _, ref := range r.index.LookupName(name) {
			if _, dup := seen[ref.Slug]; dup {
				continue
			}
			seen[ref.Slug] = struct{}{}
			if ref.Kind == candidate.Kind {
				sameKind = append(sameKind, ref)
			} else {
				crossKind = append(crossKind, ref)
			}
		}
	}
	return sameKind, crossKind
}

// fuzzyMatches finds same-kind entities whose name tokens are a superset
// or subset of the candidate's, newest-updated first.
func (r *Resolver) fuzzyMatches(candidate *core.CandidateEntity) []*vault.Ref {
	var matches []*vault.Ref
	candidateTokens := tokenSets(candidateNames(candidate))

	for _, ref := range r.index.All() {
		if ref.Kind != candidate.Kind {
			continue
		}
		refNames := append([]string{core.NormalizeName(ref.Title)}, normalizeAll(ref.Aliases)...)
		if tokenOverlap(candidateTokens, tokenSets(refNames)) {
			matches = append(matches, ref)
		}
	}
	return matches
}

// candidateNames returns the candidate's normalized name plus aliases.
func candidateNames(candidate *core.CandidateEntity) []string {
	names := []string{candidate.NormalizedName()}
	return append(names, normalizeAll(candidate.Aliases)...)
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := core.NormalizeName(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func tokenSets(names []string) []map[string]struct{} {
	sets := make([]map[string]struct{}, 0, len(names))
	for _, name := range names {
		set := make(map[string]struct{})
		for _, tok := range core.NameTokens(name) {
			set[tok] = struct{}{}
		}
		if len(set) > 0 {
			sets = append(sets, set)
		}
	}
	return sets
}

// tokenOverlap reports whether any pair of token sets stands in a subset
// relation, in either direction.
func tokenOverlap(a, b []map[string]struct{}) bool {
	for _, sa := range a {
		for _, sb := range b {
			if isSubset(sa, sb) || isSubset(sb, sa) {
				return true
			}
		}
	}
	return false
}

func isSubset(sub, super map[string]struct{}) bool {
	if len(sub) == 0 || len(sub) > len(super) {
		return false
	}
	for tok := range sub {
		if _, ok := super[tok]; !ok {
			return false
		}
	}
	return true
}

func refSlugs(refs []*vault.Ref) []core.Slug {
	slugs := make([]core.Slug, len(refs))
	for i, ref := range refs {
		slugs[i] = ref.Slug
	}
	return slugs
}
