// Package ytdata implements harvest.VideoService on the YouTube Data API v3.
// It is only wired when an operator supplies an API key.
package ytdata

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/fwojciec/harvest"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Ensure Service implements harvest.VideoService at compile time.
var _ harvest.VideoService = (*Service)(nil)

var videoParts = []string{"snippet", "statistics", "contentDetails"}

// Service queries video metadata from the Data API.
type Service struct {
	yt *youtube.Service
}

// NewService creates a Service authenticated with apiKey. Extra client
// options (e.g. option.WithEndpoint for tests) are appended.
func NewService(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Service, error) {
	if apiKey == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "YouTube API key required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	yt, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating YouTube client: %w", err)
	}
	return &Service{yt: yt}, nil
}

// FindVideo returns the metadata of a public video.
// Returns ENOTFOUND if the API does not list it.
func (s *Service) FindVideo(ctx context.Context, videoID string) (*harvest.VideoDetails, error) {
	if videoID == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "video ID required")
	}

	resp, err := s.yt.Videos.List(videoParts).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, harvest.Errorf(harvest.EUNAVAILABLE, "YouTube API: %v", err)
	}
	if len(resp.Items) == 0 {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "video %s is private or unavailable", videoID)
	}

	return details(resp.Items[0]), nil
}

func details(v *youtube.Video) *harvest.VideoDetails {
	d := &harvest.VideoDetails{ID: v.Id}
	if sn := v.Snippet; sn != nil {
		d.Title = sn.Title
		d.Description = sn.Description
		d.Channel = sn.ChannelTitle
		if t, err := time.Parse(time.RFC3339, sn.PublishedAt); err == nil {
			d.PublishedDate = t.Format("2006-01-02")
		}
		d.Thumbnails = thumbnails(sn.Thumbnails)
	}
	if st := v.Statistics; st != nil && st.ViewCount > 0 {
		d.ViewCount = strconv.FormatUint(st.ViewCount, 10)
	}
	if cd := v.ContentDetails; cd != nil {
		d.Duration = harvest.FormatDuration(ParseISODuration(cd.Duration))
	}
	return d
}

// thumbnails returns the available thumbnails, largest first.
func thumbnails(t *youtube.ThumbnailDetails) []string {
	if t == nil {
		return nil
	}
	var urls []string
	for _, th := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			urls = append(urls, th.Url)
		}
	}
	return urls
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration parses the ISO 8601 durations the API reports, such as
// PT4M13S or P1DT2H. Unparseable input yields 0.
func ParseISODuration(s string) time.Duration {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	var d time.Duration
	for i, unit := range []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second} {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		d += time.Duration(n) * unit
	}
	return d
}
