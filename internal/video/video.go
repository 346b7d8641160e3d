package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// DefaultSearchURL is the public results page queried for videos
const DefaultSearchURL = "https://www.youtube.com/results"

// maxPageBytes caps how much of the results page is scanned
const maxPageBytes = 4 << 20

var videoIDPattern = regexp.MustCompile(`watch\?v=([a-zA-Z0-9_-]{11})`)

// ErrNoVideo is returned when the results page holds no video link
var ErrNoVideo = errors.New("no video found")

// Finder scrapes a video search results page for the first video id
type Finder struct {
	searchURL string
	client    *http.Client
}

// NewFinder creates a Finder. An empty searchURL uses DefaultSearchURL.
func NewFinder(searchURL string, timeout time.Duration) *Finder {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Finder{
		searchURL: searchURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// FindVideoID returns the first video id on the results page for query
func (f *Finder) FindVideoID(ctx context.Context, query string) (string, error) {
	endpoint := f.searchURL + "?search_query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build video search request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; VoxoBot/1.0)")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("video search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("video search returned status %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read video search page: %w", err)
	}

	m := videoIDPattern.FindSubmatch(page)
	if m == nil {
		return "", ErrNoVideo
	}
	return string(m[1]), nil
}

// EmbedHTML returns the inline player block prepended to article bodies
func EmbedHTML(videoID string) string {
	return fmt.Sprintf(`<div class="video-embed"><iframe width="100%%" height="400" src="https://www.youtube.com/embed/%s" title="YouTube video player" frameborder="0" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe></div>`, url.PathEscape(videoID))
}
