package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fwojciec/harvest"
)

// Ensure OEmbedService implements harvest.OEmbedService at compile time.
var _ harvest.OEmbedService = (*OEmbedService)(nil)

// OEmbedService queries the public oEmbed endpoint, which answers with a
// canonical title and channel even when the watch page is unreadable.
type OEmbedService struct {
	client
}

// NewOEmbedService creates an OEmbedService fetching through fetcher.
func NewOEmbedService(fetcher harvest.Fetcher, opts ...Option) *OEmbedService {
	return &OEmbedService{client: newClient(fetcher, opts)}
}

// OEmbed returns the oEmbed record of a video URL.
// Returns ENOTFOUND if the response carries no title.
func (s *OEmbedService) OEmbed(ctx context.Context, rawURL string) (*harvest.OEmbed, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "URL required")
	}

	q := url.Values{"url": {rawURL}, "format": {"json"}}
	body, err := s.fetcher.Fetch(ctx, s.baseURL+"/oembed?"+q.Encode())
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "HTTP 401"):
			return nil, fmt.Errorf("video is private: %w", err)
		case strings.Contains(msg, "HTTP 403"):
			return nil, fmt.Errorf("video embedding is restricted: %w", err)
		case strings.Contains(msg, "HTTP 404"):
			return nil, fmt.Errorf("video unavailable: %w", err)
		}
		return nil, fmt.Errorf("fetching oEmbed: %w", err)
	}

	var out harvest.OEmbed
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, harvest.Errorf(harvest.EUNAVAILABLE, "invalid oEmbed response: %v", err)
	}
	out.Title = strings.TrimSpace(out.Title)
	if out.Title == "" {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "oEmbed response has no title")
	}
	return &out, nil
}
