package notegraph

import (
	"path/filepath"
	"testing"

	"github.com/poiesic/notegraph/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndClose(t *testing.T) {
	dir := t.TempDir()

	graph, err := Open(filepath.Join(dir, "vault"), filepath.Join(dir, "db"))
	require.NoError(t, err)

	assert.NotNil(t, graph.VaultStore())
	assert.NotNil(t, graph.StagingGate())
	assert.NotNil(t, graph.Generator())

	require.NoError(t, graph.Close())
}

func TestOpenWithAIConfig(t *testing.T) {
	dir := t.TempDir()

	cfg := ai.NewConfig(
		ai.WithExtractorHost("http://localhost:9999"),
		ai.WithExtractorModel("test-model"),
	)

	graph, err := Open(filepath.Join(dir, "vault"), filepath.Join(dir, "db"), WithAIConfig(cfg))
	require.NoError(t, err)
	defer graph.Close()

	assert.Equal(t, "http://localhost:9999/v1", cfg.ExtractorHost, "host normalized with /v1")
}

func TestNewIngestionPipeline(t *testing.T) {
	dir := t.TempDir()

	graph, err := Open(filepath.Join(dir, "vault"), filepath.Join(dir, "db"))
	require.NoError(t, err)
	defer graph.Close()

	p, err := graph.NewIngestionPipeline()
	require.NoError(t, err)
	p.Release()
}
