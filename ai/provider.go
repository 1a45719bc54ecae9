package ai

// provider is the default Provider implementation: a plain aggregate over
// independently constructed capabilities.
type provider struct {
	extractor   Extractor
	transcriber Transcriber
}

// NewProviderFrom aggregates already-constructed capabilities into a Provider.
// Implementation packages (ai/openai, ai/whisper, ai/mock) construct the
// parts; callers that need both wire them together with this.
func NewProviderFrom(extractor Extractor, transcriber Transcriber) Provider {
	return &provider{
		extractor:   extractor,
		transcriber: transcriber,
	}
}

// Extractor returns the concept-extraction capability.
func (p *provider) Extractor() Extractor {
	return p.extractor
}

// Transcriber returns the speech-to-text capability.
func (p *provider) Transcriber() Transcriber {
	return p.transcriber
}

// Close releases resources held by the provider.
// The underlying HTTP clients don't require explicit cleanup.
func (p *provider) Close() error {
	return nil
}
