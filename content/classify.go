package content

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/poiesic/notegraph/core"
)

// Podcast platforms recognized by URL shape. Anything else with an audio
// file extension also counts as a podcast.
var podcastDomains = []string{
	"podcasts.apple.com",
	"open.spotify.com",
	"podcasts.google.com",
	"overcast.fm",
	"pocketcasts.com",
	"castro.fm",
}

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".wav":  {},
	".ogg":  {},
	".flac": {},
}

// Classify determines the source type of a reference from its shape alone;
// no content sniffing. Ambiguous http(s) URLs default to article. A
// reference that is not an http(s) URL fails with core.ErrUnsupportedSource.
func Classify(sourceRef string) (core.SourceType, error) {
	parsed, err := url.Parse(strings.TrimSpace(sourceRef))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return 0, fmt.Errorf("%w: %q is not a URL", core.ErrUnsupportedSource, sourceRef)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return 0, fmt.Errorf("%w: scheme %q", core.ErrUnsupportedSource, parsed.Scheme)
	}

	domain := strings.ToLower(parsed.Host)

	if strings.Contains(domain, "youtube.com") || strings.Contains(domain, "youtu.be") {
		return core.SourceTypeVideo, nil
	}

	for _, pd := range podcastDomains {
		if strings.Contains(domain, pd) {
			return core.SourceTypePodcast, nil
		}
	}

	if _, ok := audioExtensions[strings.ToLower(path.Ext(parsed.Path))]; ok {
		return core.SourceTypePodcast, nil
	}

	return core.SourceTypeArticle, nil
}
