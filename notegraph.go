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


package notegraph

import (
	"log/slog"

	"github.com/poiesic/notegraph/ai"
	"github.com/poiesic/notegraph/ai/openai"
	"github.com/poiesic/notegraph/ai/whisper"
	"github.com/poiesic/notegraph/content"
	"github.com/poiesic/notegraph/extract"
	"github.com/poiesic/notegraph/notegen"
	"github.com/poiesic/notegraph/pipeline"
	"github.com/poiesic/notegraph/staging"
	"github.com/poiesic/notegraph/storage"
	"github.com/poiesic/notegraph/storage/badger"
	"github.com/poiesic/notegraph/vault"
)

// Graph bundles the vault, the staging queue, the content cache and the AI
// capabilities behind one handle. It is the integration point the CLI (or
// any embedding program) works with.
type Graph struct {
	backend     *badger.Backend
	stagingRepo storage.StagingRepository
	cache       storage.ContentCache
	store       *vault.Store
	provider    ai.Provider
	generator   *notegen.Generator
	gate        *staging.Gate
	downloader  content.Downloader
	fetcher     content.Fetcher
	aiConfig    *ai.Config
	logger      *slog.Logger
}

// GraphOption configures a Graph.
type GraphOption func(*graphOptions)

type graphOptions struct {
	aiConfig   *ai.Config
	downloader content.Downloader
	fetcher    content.Fetcher
}

// WithAIConfig overrides the AI service configuration.
func WithAIConfig(cfg *ai.Config) GraphOption {
	return func(o *graphOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithDownloader overrides the media download collaborator.
func WithDownloader(d content.Downloader) GraphOption {
	return func(o *graphOptions) {
		if d != nil {
			o.downloader = d
		}
	}
}

// WithFetcher overrides the article fetch collaborator.
func WithFetcher(f content.Fetcher) GraphOption {
	return func(o *graphOptions) {
		if f != nil {
			o.fetcher = f
		}
	}
}

// Open wires up a knowledge graph rooted at vaultPath, with the staging
// queue and content cache persisted in a badger database at dbPath.
func Open(vaultPath, dbPath string, opts ...GraphOption) (*Graph, error) {
	options := &graphOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.fetcher == nil {
		options.fetcher = content.NewHTTPFetcher(0)
	}
	if options.downloader == nil {
		options.downloader = content.NewMediaDownloader("")
	}

	store, err := vault.NewStore(vaultPath)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, err
	}

	stagingRepo, err := badger.NewStagingRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	cache, err := badger.NewContentCache(backend)
	if err != nil {
		stagingRepo.Close()
		backend.Close()
		return nil, err
	}

	extractor, err := openai.NewExtractor(options.aiConfig)
	if err != nil {
		cache.Close()
		stagingRepo.Close()
		backend.Close()
		return nil, err
	}
	transcriber, err := whisper.NewTranscriber(options.aiConfig)
	if err != nil {
		cache.Close()
		stagingRepo.Close()
		backend.Close()
		return nil, err
	}

	generator, err := notegen.NewGenerator(store)
	if err != nil {
		cache.Close()
		stagingRepo.Close()
		backend.Close()
		return nil, err
	}

	gate, err := staging.NewGate(stagingRepo, generator)
	if err != nil {
		cache.Close()
		stagingRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Graph{
		backend:     backend,
		stagingRepo: stagingRepo,
		cache:       cache,
		store:       store,
		provider:    ai.NewProviderFrom(extractor, transcriber),
		generator:   generator,
		gate:        gate,
		downloader:  options.downloader,
		fetcher:     options.fetcher,
		aiConfig:    options.aiConfig,
		logger:      slog.Default(),
	}, nil
}

// Close releases the storage backend and AI provider.
func (g *Graph) Close() error {
	if err := g.provider.Close(); err != nil {
		g.logger.Error("error closing AI provider", "err", err)
	}
	if err := g.cache.Close(); err != nil {
		g.logger.Error("error closing content cache", "err", err)
		return err
	}
	if err := g.stagingRepo.Close(); err != nil {
		g.logger.Error("error closing staging repository", "err", err)
		return err
	}
	if err := g.backend.Close(); err != nil {
		g.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// VaultStore returns the note store.
func (g *Graph) VaultStore() *vault.Store {
	return g.store
}

// StagingGate returns the review queue.
func (g *Graph) StagingGate() *staging.Gate {
	return g.gate
}

// Generator returns the note generator.
func (g *Graph) Generator() *notegen.Generator {
	return g.generator
}

// NewIngestionPipeline assembles an ingestion pipeline over this graph.
// Callers release the pipeline after use.
func (g *Graph) NewIngestionPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	normalizer, err := content.NewNormalizer(
		g.provider.Transcriber(),
		g.downloader,
		g.fetcher,
		g.cache,
		g.aiConfig.WhisperModel,
	)
	if err != nil {
		return nil, err
	}

	conceptExtractor, err := extract.NewConceptExtractor(g.provider.Extractor())
	if err != nil {
		return nil, err
	}

	return pipeline.NewPipeline(normalizer, conceptExtractor, g.generator, g.gate, g.store, opts...)
}
