package mock

import (
	"context"
	"encoding/json"

	"github.com/poiesic/notegraph/ai"
)

// MockExtractor is a test double for ai.Extractor.
// It allows custom behavior injection via function fields.
type MockExtractor struct {
	// GenerateExtractionFunc is called by GenerateExtraction if set.
	// If nil, a minimal well-formed response is returned.
	GenerateExtractionFunc func(ctx context.Context, prompt string) (string, error)

	callCount int
	prompts   []string
}

// NewMockExtractor creates a mock extractor with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// GenerateExtraction records the prompt and returns the injected response,
// or a minimal well-formed empty extraction if no function is set.
func (m *MockExtractor) GenerateExtraction(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.prompts = append(m.prompts, prompt)

	if m.GenerateExtractionFunc != nil {
		return m.GenerateExtractionFunc(ctx, prompt)
	}

	empty := map[string]any{
		"concepts": []any{},
		"people":   []any{},
		"sources":  []any{},
	}
	out, _ := json.Marshal(empty)
	return string(out), nil
}

// CallCount returns the number of times GenerateExtraction was called.
func (m *MockExtractor) CallCount() int {
	return m.callCount
}

// Prompts returns the prompts received so far, in call order.
func (m *MockExtractor) Prompts() []string {
	return m.prompts
}

// Reset clears the call history and custom functions.
func (m *MockExtractor) Reset() {
	m.callCount = 0
	m.prompts = nil
	m.GenerateExtractionFunc = nil
}

var _ ai.Extractor = (*MockExtractor)(nil)
