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


// Package ai provides abstractions for the external AI capabilities used in
// notegraph: concept extraction and speech-to-text transcription.
//
// Both capabilities are consumed as black boxes. Extraction is text-in,
// text-out: the extract package owns parsing and validating the structured
// response, so the parsing logic is independently testable with canned
// responses. Transcription takes a local audio file and returns a transcript
// plus duration metadata.
//
// # Implementation Packages
//
//   - ai/openai: extraction via OpenAI-compatible chat APIs (langchaingo)
//   - ai/whisper: transcription via a local whisper server's HTTP API
//   - ai/mock: test doubles for unit testing without external services
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewExtractor, whisper.NewTranscriber,
// NewProvider) return INTERFACE types to enforce abstraction and prevent
// accidental coupling to concrete implementations.
//
// Mock constructors return CONCRETE types so tests can inject behavior via
// function fields and assert on call counts.
//
// # Error Semantics
//
// Implementations distinguish transient failures (timeouts, rate limiting,
// service unavailable) from deterministic ones by wrapping the former with
// core.Transient. Callers apply bounded retry with backoff only to transient
// errors.
package ai
