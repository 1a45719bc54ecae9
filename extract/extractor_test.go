package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/notegraph/ai/mock"
	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullResponse = `{
  "concepts": [
    {"name": "Deep Work", "summary": "Distraction-free focus on demanding tasks.", "aliases": ["focused work"], "related": ["Cal Newport"]},
    {"name": "deep work", "summary": "Described as a trainable skill.", "aliases": ["Deep Work"], "related": ["Attention Residue"]},
    {"name": "Attention Residue", "summary": "Lingering thoughts about a previous task reduce performance on the next."}
  ],
  "people": [
    {"name": "Cal Newport", "summary": "Computer science professor and author.", "related": ["Deep Work"]}
  ],
  "sources": []
}`

func testUnit() *core.ContentUnit {
	return &core.ContentUnit{
		SourceURL:  "https://example.com/deep-work",
		SourceType: core.SourceTypeArticle,
		RawText:    "Cal Newport on deep work and attention residue.",
		Title:      "Deep Work",
	}
}

func TestExtractParsesAndDedups(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.GenerateExtractionFunc = func(ctx context.Context, prompt string) (string, error) {
		return fullResponse, nil
	}
	ce, err := NewConceptExtractor(extractor)
	require.NoError(t, err)

	candidates, err := ce.Extract(context.Background(), testUnit(), nil)
	require.NoError(t, err)

	// The two "Deep Work" concept entries merge into one.
	require.Len(t, candidates, 3)

	var deepWork *core.CandidateEntity
	for i := range candidates {
		if candidates[i].NormalizedName() == "deep work" && candidates[i].Kind == core.KindConcept {
			deepWork = &candidates[i]
		}
	}
	require.NotNil(t, deepWork, "merged deep work candidate missing")

	assert.Equal(t, "Deep Work", deepWork.Name, "first occurrence keeps display casing")
	assert.Contains(t, deepWork.Summary, "Distraction-free focus")
	assert.Contains(t, deepWork.Summary, "trainable skill")
	assert.Equal(t, []string{"focused work"}, deepWork.Aliases, "self-alias dropped")
	assert.Equal(t, []string{"Cal Newport", "Attention Residue"}, deepWork.RelatedNames)
}

func TestExtractFencedResponse(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.GenerateExtractionFunc = func(ctx context.Context, prompt string) (string, error) {
		return "```json\n" + fullResponse + "\n```", nil
	}
	ce, err := NewConceptExtractor(extractor)
	require.NoError(t, err)

	candidates, err := ce.Extract(context.Background(), testUnit(), nil)
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
}

func TestExtractReasksOnInvalidJSON(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.GenerateExtractionFunc = func(ctx context.Context, prompt string) (string, error) {
		if extractor.CallCount() == 1 {
			return "sure! here are the concepts you asked for:", nil
		}
		return fullResponse, nil
	}
	ce, err := NewConceptExtractor(extractor)
	require.NoError(t, err)

	candidates, err := ce.Extract(context.Background(), testUnit(), nil)
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
	assert.Equal(t, 2, extractor.CallCount())
}

func TestExtractGivesUpAfterAttempts(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.GenerateExtractionFunc = func(ctx context.Context, prompt string) (string, error) {
		return "not json, never json", nil
	}
	ce, err := NewConceptExtractor(extractor)
	require.NoError(t, err)

	_, err = ce.Extract(context.Background(), testUnit(), nil)
	require.ErrorIs(t, err, core.ErrMalformedExtraction)
	assert.Equal(t, parseAttempts, extractor.CallCount())
}

func TestExtractMissingSectionIsFatal(t *testing.T) {
	// Parses fine but the people section is absent entirely.
	response := `{"concepts": [], "sources": []}`
	extractor := mock.NewMockExtractor()
	extractor.GenerateExtractionFunc = func(ctx context.Context, prompt string) (string, error) {
		return response, nil
	}
	ce, err := NewConceptExtractor(extractor)
	require.NoError(t, err)

	_, err = ce.Extract(context.Background(), testUnit(), nil)
	require.ErrorIs(t, err, core.ErrMalformedExtraction)
	assert.Equal(t, 1, extractor.CallCount(), "missing section must not be re-asked")
}

func TestExtractEmptySectionsAreValid(t *testing.T) {
	extractor := mock.NewMockExtractor()
	extractor.GenerateExtractionFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"concepts": [], "people": [], "sources": []}`, nil
	}
	ce, err := NewConceptExtractor(extractor)
	require.NoError(t, err)

	candidates, err := ce.Extract(context.Background(), testUnit(), nil)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestExtractTransportErrorPassesThrough(t *testing.T) {
	transportErr := core.Transient(errors.New("connection refused"))
	extractor := mock.NewMockExtractor()
	extractor.GenerateExtractionFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", transportErr
	}
	ce, err := NewConceptExtractor(extractor)
	require.NoError(t, err)

	_, err = ce.Extract(context.Background(), testUnit(), nil)
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
	assert.Equal(t, 1, extractor.CallCount(), "transport errors are the caller's retry, not ours")
}

func TestExtractIncludesVaultContext(t *testing.T) {
	existing := []*core.VaultEntity{
		{ID: "spaced-repetition", Kind: core.KindConcept, Title: "Spaced Repetition", UpdatedAt: time.Now()},
	}
	snapshot := vault.BuildIndex(existing)

	extractor := mock.NewMockExtractor()
	extractor.GenerateExtractionFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"concepts": [], "people": [], "sources": []}`, nil
	}
	ce, err := NewConceptExtractor(extractor)
	require.NoError(t, err)

	_, err = ce.Extract(context.Background(), testUnit(), snapshot)
	require.NoError(t, err)
	require.Len(t, extractor.Prompts(), 1)
	assert.Contains(t, extractor.Prompts()[0], "Spaced Repetition")
}

func TestRepairJSONMissingKeyQuote(t *testing.T) {
	broken := `{"concepts": [{name": "Flow", "summary": "A state of absorption."}], "people": [], "sources": []}`
	candidates, err := parseResponse(broken)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Flow", candidates[0].Name)
}
