package ai

import (
	"context"
	"time"
)

// Extractor is the concept-extraction capability: opaque text in, text out.
// The extract package owns parsing and validating the response; this
// interface only covers transport to the language-model service.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// GenerateExtraction sends the prompt to the extraction service and
	// returns the raw response text. Transient transport failures (timeouts,
	// rate limits) are wrapped with core.Transient so callers can apply a
	// bounded retry policy.
	GenerateExtraction(ctx context.Context, prompt string) (string, error)
}

// TranscriptResult is the output of the transcription capability.
type TranscriptResult struct {
	Text     string
	Duration time.Duration
}

// Transcriber is the speech-to-text capability. Given a local audio file it
// produces a transcript plus duration metadata.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe converts the audio file at path to text using the given
	// model size (tiny, base, small, medium, large). Transient failures are
	// wrapped with core.Transient; deterministic failures (unreadable file,
	// rejected format) are not.
	Transcribe(ctx context.Context, path string, modelSize string) (*TranscriptResult, error)
}

// Provider aggregates AI capabilities for convenient initialization and
// lifecycle management. A provider creates and manages Extractor and
// Transcriber instances, ensuring they share configuration appropriately.
type Provider interface {
	// Extractor returns the concept-extraction capability.
	// The returned Extractor is safe for concurrent use.
	Extractor() Extractor

	// Transcriber returns the speech-to-text capability.
	// The returned Transcriber is safe for concurrent use.
	Transcriber() Transcriber

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
