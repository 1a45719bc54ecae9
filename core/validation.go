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


package core

import "fmt"

// ValidateContentUnit validates a ContentUnit according to domain rules.
//
// Validation rules:
//   - RawText must not be empty
//   - SourceType must be valid
//   - SourceURL must not be empty
//
// NOT validated:
//   - PublishedAt and Duration (optional, zero when unknown)
//   - Title (the normalizer falls back to the source reference)
func ValidateContentUnit(unit *ContentUnit) error {
	if unit == nil {
		return fmt.Errorf("%w: unit is nil", ErrInvalidContentUnit)
	}

	if unit.RawText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContentUnit, ErrEmptyContent)
	}

	if err := ValidateSourceType(unit.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContentUnit, err)
	}

	if unit.SourceURL == "" {
		return fmt.Errorf("%w: source URL cannot be empty", ErrInvalidContentUnit)
	}

	return nil
}

// ValidateCandidate validates a CandidateEntity according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Kind must be valid
//
// NOT validated:
//   - Summary, Aliases, RelatedNames (all optional)
func ValidateCandidate(candidate *CandidateEntity) error {
	if candidate == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if candidate.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyEntityName)
	}

	if err := ValidateEntityKind(candidate.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
	}

	return nil
}

// ValidateSourceType validates that a SourceType has a valid value.
func ValidateSourceType(st SourceType) error {
	if st != SourceTypePodcast && st != SourceTypeVideo && st != SourceTypeArticle {
		return fmt.Errorf("%w: value %d", ErrInvalidSourceType, st)
	}
	return nil
}

// ValidateEntityKind validates that an EntityKind has a valid value.
func ValidateEntityKind(kind EntityKind) error {
	if kind != KindConcept && kind != KindPerson && kind != KindSource {
		return fmt.Errorf("%w: value %d", ErrInvalidEntityKind, kind)
	}
	return nil
}
