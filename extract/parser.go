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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/notegraph/core"
)

// entry is the per-entity shape the model is asked to produce.
type entry struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary"`
	Aliases []string `json:"aliases"`
	Related []string `json:"related"`
}

// extraction is the wrapper structure for the model's JSON response.
// Sections are pointers so a present-but-empty array is distinguishable
// from a section the model left out entirely.
type extraction struct {
	Concepts *[]entry `json:"concepts"`
	People   *[]entry `json:"people"`
	Sources  *[]entry `json:"sources"`
}

// parseResponse turns a raw model response into candidate entities.
// A response that does not parse as JSON fails with a plain error so the
// caller can re-ask the model; a response that parses but is missing a
// required section fails with core.ErrMalformedExtraction, which is final.
func parseResponse(responseText string) ([]core.CandidateEntity, error) {
	cleaned := stripFences(responseText)
	cleaned = repairJSON(cleaned)

	var result extraction
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	var missing []string
	if result.Concepts == nil {
		missing = append(missing, "concepts")
	}
	if result.People == nil {
		missing = append(missing, "people")
	}
	if result.Sources == nil {
		missing = append(missing, "sources")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required sections %s",
			core.ErrMalformedExtraction, strings.Join(missing, ", "))
	}

	var candidates []core.CandidateEntity
	candidates = appendEntries(candidates, core.KindConcept, *result.Concepts)
	candidates = appendEntries(candidates, core.KindPerson, *result.People)
	candidates = appendEntries(candidates, core.KindSource, *result.Sources)
	return candidates, nil
}

// appendEntries converts one section's entries, dropping nameless ones.
func appendEntries(candidates []core.CandidateEntity, kind core.EntityKind, entries []entry) []core.CandidateEntity {
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		candidates = append(candidates, core.CandidateEntity{
			Kind:         kind,
			Name:         name,
			Summary:      strings.TrimSpace(e.Summary),
			Aliases:      trimAll(e.Aliases),
			RelatedNames: trimAll(e.Related),
		})
	}
	return candidates
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// stripFences removes markdown code fences the model sometimes wraps
// around its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// repairJSON attempts to fix common JSON formatting issues from LLM responses.
// It specifically handles missing opening quotes before keys in JSON objects.
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+100)

	i := 0
	for i < len(result) {
		ch := result[i]

		// After { or , look for unquoted keys
		if ch == '{' || ch == ',' {
			fixed = append(fixed, ch)
			i++

			for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
				fixed = append(fixed, result[i])
				i++
			}

			// Check if we have an unquoted key (starts with letter, not with quote)
			if i < len(result) && result[i] != '"' && isLetter(result[i]) {
				keyStart := i
				for i < len(result) && (isLetter(result[i]) || result[i] == '_' || result[i] == ' ') {
					i++
				}
				keyEnd := i

				// Followed by ": means the opening quote was dropped
				if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
					fixed = append(fixed, '"')
					for j := keyStart; j < keyEnd; j++ {
						if result[j] != ' ' || (j > keyStart && j < keyEnd-1) {
							fixed = append(fixed, result[j])
						}
					}
					continue
				}
				// Not an unquoted key, copy what was skipped
				for j := keyStart; j < i; j++ {
					fixed = append(fixed, result[j])
				}
			}
		} else {
			fixed = append(fixed, ch)
			i++
		}
	}

	return string(fixed)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
