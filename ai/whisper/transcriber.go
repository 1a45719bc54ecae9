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


package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/notegraph/ai"
	"github.com/poiesic/notegraph/core"
)

// Transcriber implements ai.Transcriber against a local whisper server
// exposing the OpenAI-compatible /audio/transcriptions endpoint
// (whisper.cpp server, faster-whisper-server, LocalAI).
type Transcriber struct {
	host   string
	client *http.Client
	logger *slog.Logger
}

var _ ai.Transcriber = (*Transcriber)(nil)

// transcriptionResponse matches the verbose_json response shape.
type transcriptionResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
}

// newTranscriber is an internal constructor that returns the concrete type.
func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Transcriber{
		host: config.WhisperHost,
		client: &http.Client{
			// Transcribing an hour of audio on CPU takes a while.
			Timeout: 30 * time.Minute,
		},
		logger: slog.Default().With("component", "whisper-transcriber"),
	}, nil
}

// NewTranscriber creates a new transcription capability using the provided
// configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe uploads the audio file and returns the transcript.
// Network failures and 5xx/429 responses are wrapped with core.Transient;
// 4xx responses are deterministic rejections and are not retried.
func (t *Transcriber) Transcribe(ctx context.Context, path string, modelSize string) (*ai.TranscriptResult, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTranscription, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTranscription, err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTranscription, err)
	}
	if err := writer.WriteField("model", modelSize); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTranscription, err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTranscription, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTranscription, err)
	}

	url := t.host + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTranscription, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	t.logger.Debug("transcribing audio", "file", path, "model", modelSize, "bytes", len(audio))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, core.Transient(fmt.Errorf("%w: %w", core.ErrTranscription, err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.Transient(fmt.Errorf("%w: %w", core.ErrTranscription, err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: whisper server returned %d: %s", core.ErrTranscription, resp.StatusCode, truncate(payload, 200))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, core.Transient(err)
		}
		return nil, err
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", core.ErrTranscription, err)
	}

	return &ai.TranscriptResult{
		Text:     parsed.Text,
		Duration: time.Duration(parsed.Duration * float64(time.Second)),
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
