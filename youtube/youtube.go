// Package youtube implements the public, unauthenticated YouTube surfaces
// used by the video strategy chain: caption tracks resolved from the watch
// page, the oEmbed endpoint, and watch/listing page scraping. All requests go through
// a harvest.Fetcher so they carry the same browser headers and timeouts as
// article fetches.
package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fwojciec/harvest"
)

// DefaultBaseURL is the origin every service targets unless overridden.
const DefaultBaseURL = "https://www.youtube.com"

// ThumbnailURL returns the thumbnail every public video has, derived from
// its id alone.
func ThumbnailURL(videoID string) string {
	return "https://i.ytimg.com/vi/" + url.PathEscape(videoID) + "/hqdefault.jpg"
}

// Option configures a YouTube service.
type Option func(*client)

// WithBaseURL points a service at another origin, e.g. an httptest server.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithThresholds sets the minimum field lengths used when scraping.
func WithThresholds(t harvest.Thresholds) Option {
	return func(c *client) {
		c.thresholds = t
	}
}

type client struct {
	fetcher    harvest.Fetcher
	baseURL    string
	thresholds harvest.Thresholds
}

func newClient(fetcher harvest.Fetcher, opts []Option) client {
	c := client{
		fetcher:    fetcher,
		baseURL:    DefaultBaseURL,
		thresholds: harvest.DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// fetch retrieves a page and maps throttling and consent walls to a
// "blocked" error.
func (c client) fetch(ctx context.Context, pageURL string) (string, error) {
	page, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "HTTP 429") || strings.Contains(msg, "HTTP 403") {
			return "", fmt.Errorf("request blocked by YouTube: %w", err)
		}
		return "", fmt.Errorf("fetching page: %w", err)
	}
	if consentRe.MatchString(page) {
		return "", harvest.Errorf(harvest.EUNAVAILABLE, "request blocked by a consent page")
	}
	return page, nil
}
