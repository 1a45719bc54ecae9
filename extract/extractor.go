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


package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/notegraph/ai"
	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/vault"
)

const (
	// parseAttempts bounds re-asking the model when it returns unparseable
	// JSON. A parsed response missing a required section is never re-asked.
	parseAttempts = 3

	// defaultContextBudget caps how many bytes of known entity names get
	// embedded in the prompt.
	defaultContextBudget = 2048
)

// ConceptExtractor turns normalized content units into candidate entities
// using the extraction capability.
type ConceptExtractor struct {
	extractor     ai.Extractor
	contextBudget int
	logger        *slog.Logger
}

// Option configures a ConceptExtractor.
type Option func(*ConceptExtractor)

// WithContextBudget overrides the byte budget for vault context names
// embedded in the prompt.
func WithContextBudget(budgetBytes int) Option {
	return func(ce *ConceptExtractor) {
		if budgetBytes > 0 {
			ce.contextBudget = budgetBytes
		}
	}
}

// NewConceptExtractor creates a concept extractor over the given
// extraction capability.
func NewConceptExtractor(extractor ai.Extractor, opts ...Option) (*ConceptExtractor, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extraction capability required")
	}
	ce := &ConceptExtractor{
		extractor:     extractor,
		contextBudget: defaultContextBudget,
		logger:        slog.Default().With("component", "concept-extractor"),
	}
	for _, opt := range opts {
		opt(ce)
	}
	return ce, nil
}

// Extract produces candidate entities from the content unit. The index
// snapshot supplies names of entities already in the vault so the model
// reuses established names; nil means an empty vault.
//
// Unparseable responses are re-asked up to parseAttempts times. A response
// that parses but omits a required section fails immediately with
// core.ErrMalformedExtraction; the caller routes the whole unit to staging.
// Transport failures pass through unchanged, keeping their transient marker.
func (ce *ConceptExtractor) Extract(ctx context.Context, unit *core.ContentUnit, snapshot *vault.Index) ([]core.CandidateEntity, error) {
	if err := core.ValidateContentUnit(unit); err != nil {
		return nil, err
	}

	var knownNames []string
	if snapshot != nil {
		knownNames = snapshot.ContextNames(ce.contextBudget)
	}

	prompt := buildSystemPrompt(knownNames) + "\n\n" + buildUserPrompt(unit.Title, unit.RawText)

	var lastParseErr error
	for attempt := 1; attempt <= parseAttempts; attempt++ {
		responseText, err := ce.extractor.GenerateExtraction(ctx, prompt)
		if err != nil {
			return nil, err
		}

		candidates, err := parseResponse(responseText)
		if err != nil {
			if errors.Is(err, core.ErrMalformedExtraction) {
				ce.logger.Error("extraction response missing required sections",
					"source", unit.SourceURL, "err", err)
				return nil, err
			}
			lastParseErr = err
			ce.logger.Warn("error parsing extraction response",
				"attempt", attempt,
				"source", unit.SourceURL,
				"err", err)
			continue
		}

		deduped := dedupCandidates(candidates)
		ce.logger.Debug("extracted candidates",
			"source", unit.SourceURL,
			"raw", len(candidates),
			"deduped", len(deduped))
		return deduped, nil
	}

	ce.logger.Error("failed to parse extraction response after retries",
		"source", unit.SourceURL, "err", lastParseErr)
	return nil, fmt.Errorf("%w: %w", core.ErrMalformedExtraction, lastParseErr)
}
