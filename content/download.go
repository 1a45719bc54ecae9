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
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const fetchUserAgent = "notegraph/1.0"

// HTTPFetcher retrieves article payloads over plain HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads the URL body. Non-2xx statuses fail.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var _ Fetcher = (*HTTPFetcher)(nil)

// MediaDownloader fetches audio and video sources to local files. Direct
// audio URLs download over HTTP; everything else (YouTube, podcast platform
// pages) goes through yt-dlp, which must be on PATH.
type MediaDownloader struct {
	client *http.Client
	dir    string
	ytdlp  string
}

// NewMediaDownloader creates a downloader writing into dir (a temp
// directory when empty).
func NewMediaDownloader(dir string) *MediaDownloader {
	if dir == "" {
		dir = os.TempDir()
	}
	return &MediaDownloader{
		client: &http.Client{Timeout: 30 * time.Minute},
		dir:    dir,
		ytdlp:  "yt-dlp",
	}
}

// Download fetches the source's audio to a local file and returns its path.
// The caller owns the file and removes it when done.
func (d *MediaDownloader) Download(ctx context.Context, url string) (string, error) {
	if _, ok := audioExtensions[strings.ToLower(path.Ext(strings.SplitN(url, "?", 2)[0]))]; ok {
		return d.downloadDirect(ctx, url)
	}
	return d.downloadExtracted(ctx, url)
}

func (d *MediaDownloader) downloadDirect(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("downloading %s: status %d", url, resp.StatusCode)
	}

	out, err := os.CreateTemp(d.dir, "notegraph-media-*"+path.Ext(strings.SplitN(url, "?", 2)[0]))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

func (d *MediaDownloader) downloadExtracted(ctx context.Context, url string) (string, error) {
	tmpDir, err := os.MkdirTemp(d.dir, "notegraph-ytdlp-*")
	if err != nil {
		return "", err
	}

	target := filepath.Join(tmpDir, "audio.%(ext)s")
	cmd := exec.CommandContext(ctx, d.ytdlp,
		"--extract-audio",
		"--audio-format", "mp3",
		"--output", target,
		"--no-playlist",
		url)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(tmpDir)
		return "", fmt.Errorf("yt-dlp failed for %s: %w: %s", url, err, strings.TrimSpace(string(out)))
	}

	extracted := filepath.Join(tmpDir, "audio.mp3")
	if _, err := os.Stat(extracted); err != nil {
		os.RemoveAll(tmpDir)
		return "", fmt.Errorf("yt-dlp produced no audio for %s", url)
	}

	// Move the file out so removing it cleans everything up.
	out, err := os.CreateTemp(d.dir, "notegraph-media-*.mp3")
	if err != nil {
		os.RemoveAll(tmpDir)
		return "", err
	}
	out.Close()
	if err := os.Rename(extracted, out.Name()); err != nil {
		os.Remove(out.Name())
		os.RemoveAll(tmpDir)
		return "", err
	}
	os.RemoveAll(tmpDir)
	return out.Name(), nil
}

var _ Downloader = (*MediaDownloader)(nil)
