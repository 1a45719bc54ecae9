package mock

import (
	"context"
	"time"

	"github.com/poiesic/notegraph/ai"
)

// MockTranscriber is a test double for ai.Transcriber.
// It allows custom behavior injection via function fields.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, a fixed transcript is returned.
	TranscribeFunc func(ctx context.Context, path string, modelSize string) (*ai.TranscriptResult, error)

	callCount int
}

// NewMockTranscriber creates a mock transcriber with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe returns the injected result, or a fixed transcript if no
// function is set.
func (m *MockTranscriber) Transcribe(ctx context.Context, path string, modelSize string) (*ai.TranscriptResult, error) {
	m.callCount++

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, path, modelSize)
	}

	return &ai.TranscriptResult{
		Text:     "mock transcript of " + path,
		Duration: 42 * time.Second,
	}, nil
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockTranscriber) Reset() {
	m.callCount = 0
	m.TranscribeFunc = nil
}

var _ ai.Transcriber = (*MockTranscriber)(nil)
