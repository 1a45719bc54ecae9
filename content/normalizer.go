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


package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/notegraph/ai"
	"github.com/poiesic/notegraph/core"
	"github.com/poiesic/notegraph/storage"
)

// Downloader fetches an audio/video source to a local file.
// Implementations own their retry policy; a failure surfacing here is final.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// Fetcher retrieves an article's HTML payload.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Normalizer converts an arbitrary source reference into a canonical
// ContentUnit, transcribing audio and video through the transcription
// capability and stripping articles down to plain text.
//
// Normalized units are cached by a content hash of the source reference, so
// re-normalizing the same source returns the cached transcript byte-for-byte
// without re-downloading or re-transcribing.
type Normalizer struct {
	transcriber ai.Transcriber
	downloader  Downloader
	fetcher     Fetcher
	cache       storage.ContentCache
	modelSize   string
	logger      *slog.Logger
}

// NewNormalizer creates a normalizer. The cache is required; it is what
// makes re-runs idempotent.
func NewNormalizer(
	transcriber ai.Transcriber,
	downloader Downloader,
	fetcher Fetcher,
	cache storage.ContentCache,
	modelSize string,
) (*Normalizer, error) {
	if transcriber == nil {
		return nil, fmt.Errorf("transcriber required")
	}
	if downloader == nil {
		return nil, fmt.Errorf("downloader required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher required")
	}
	if cache == nil {
		return nil, fmt.Errorf("content cache required")
	}
	if modelSize == "" {
		modelSize = "base"
	}
	return &Normalizer{
		transcriber: transcriber,
		downloader:  downloader,
		fetcher:     fetcher,
		cache:       cache,
		modelSize:   modelSize,
		logger:      slog.Default().With("component", "normalizer"),
	}, nil
}

// Normalize classifies the source reference and produces a ContentUnit.
// Fails with core.ErrUnsupportedSource for references matching no known
// pattern and core.ErrFetch when the download collaborator gives up.
func (n *Normalizer) Normalize(ctx context.Context, sourceRef string) (*core.ContentUnit, error) {
	sourceType, err := Classify(sourceRef)
	if err != nil {
		return nil, err
	}

	key := core.IDFromContent(sourceRef)
	if unit, err := n.cache.Get(ctx, key); err == nil {
		n.logger.Debug("content cache hit", "source", sourceRef)
		return unit, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	var unit *core.ContentUnit
	switch sourceType {
	case core.SourceTypePodcast, core.SourceTypeVideo:
		unit, err = n.normalizeAudio(ctx, sourceRef, sourceType)
	case core.SourceTypeArticle:
		unit, err = n.normalizeArticle(ctx, sourceRef)
	default:
		return nil, fmt.Errorf("%w: %v", core.ErrUnsupportedSource, sourceType)
	}
	if err != nil {
		return nil, err
	}

	if err := core.ValidateContentUnit(unit); err != nil {
		return nil, err
	}

	if err := n.cache.Put(ctx, key, unit); err != nil {
		// A dead cache costs a re-transcription on the next run, nothing more.
		n.logger.Warn("failed to cache normalized content", "source", sourceRef, "err", err)
	}
	return unit, nil
}

func (n *Normalizer) normalizeAudio(ctx context.Context, sourceRef string, sourceType core.SourceType) (*core.ContentUnit, error) {
	localPath, err := n.downloader.Download(ctx, sourceRef)
	if err != nil {
		return nil, core.Transient(fmt.Errorf("%w: %s: %w", core.ErrFetch, sourceRef, err))
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			n.logger.Warn("failed to remove downloaded media", "path", localPath, "err", err)
		}
	}()

	n.logger.Info("transcribing media", "source", sourceRef, "model", n.modelSize)
	result, err := n.transcriber.Transcribe(ctx, localPath, n.modelSize)
	if err != nil {
		return nil, err
	}

	return &core.ContentUnit{
		SourceURL:  sourceRef,
		SourceType: sourceType,
		RawText:    strings.TrimSpace(result.Text),
		Title:      titleFromRef(sourceRef),
		Duration:   result.Duration,
	}, nil
}

func (n *Normalizer) normalizeArticle(ctx context.Context, sourceRef string) (*core.ContentUnit, error) {
	payload, err := n.fetcher.Fetch(ctx, sourceRef)
	if err != nil {
		return nil, core.Transient(fmt.Errorf("%w: %s: %w", core.ErrFetch, sourceRef, err))
	}

	text, title := stripHTML(payload)
	if title == "" {
		title = titleFromRef(sourceRef)
	}

	return &core.ContentUnit{
		SourceURL:  sourceRef,
		SourceType: core.SourceTypeArticle,
		RawText:    text,
		Title:      title,
	}, nil
}

// titleFromRef derives a fallback title from the last URL path segment.
func titleFromRef(sourceRef string) string {
	trimmed := strings.TrimRight(sourceRef, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if idx := strings.LastIndex(trimmed, "."); idx > 0 {
		trimmed = trimmed[:idx]
	}
	trimmed = strings.NewReplacer("-", " ", "_", " ").Replace(trimmed)
	if trimmed == "" {
		return sourceRef
	}
	return strings.TrimSpace(trimmed)
}
