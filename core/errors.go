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

import "errors"

// Pipeline error taxonomy
var (
	// ErrUnsupportedSource indicates a source reference that matches no
	// known source-type pattern. Never retried.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrFetch indicates a download failure after the collaborator's retry
	// policy is exhausted. Transient.
	ErrFetch = errors.New("fetch failed")

	// ErrTranscription indicates a speech-to-text failure. Transient or
	// fatal depending on cause; transient causes are wrapped with Transient.
	ErrTranscription = errors.New("transcription failed")

	// ErrMalformedExtraction indicates the extraction response is missing
	// one of the required sections (concepts, people, sources). Fatal for
	// the content unit, not the process: the whole unit is routed to staging.
	ErrMalformedExtraction = errors.New("malformed extraction response")

	// ErrAmbiguousResolution is a routing signal, not a failure: the
	// candidate needs human resolution and goes to the staging gate.
	ErrAmbiguousResolution = errors.New("ambiguous resolution")

	// ErrVaultWriteConflict indicates the vault changed between the index
	// snapshot and commit. Re-resolution is required; never silently overwritten.
	ErrVaultWriteConflict = errors.New("vault write conflict")

	// ErrVaultUnavailable indicates the vault directory is missing or
	// unwritable. This is the process-level failure mode.
	ErrVaultUnavailable = errors.New("vault unavailable")
)

// Domain validation errors
var (
	// ErrInvalidCandidate indicates a CandidateEntity failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate entity")

	// ErrInvalidEntityKind indicates an invalid EntityKind value.
	ErrInvalidEntityKind = errors.New("invalid entity kind")

	// ErrEmptyEntityName indicates the entity Name field is empty.
	ErrEmptyEntityName = errors.New("entity name cannot be empty")

	// ErrInvalidContentUnit indicates a ContentUnit failed validation.
	ErrInvalidContentUnit = errors.New("invalid content unit")

	// ErrEmptyContent indicates the RawText field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidSourceType indicates an invalid SourceType value.
	ErrInvalidSourceType = errors.New("invalid source type")
)

// transientError marks an error as retryable by bounded backoff.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so that IsTransient reports true for it.
// Components that own an external call mark timeouts and rate limits this
// way; deterministic failures are left unwrapped and never retried.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err (or any error it wraps) was marked Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
