package harvest

import (
	"context"
	"fmt"
	"time"
)

// TranscriptSegment is one timed line of a caption track.
type TranscriptSegment struct {
	Text     string
	Start    time.Duration
	Duration time.Duration
}

// TranscriptService retrieves structured caption tracks for videos.
type TranscriptService interface {
	// FetchTranscript returns the caption segments of a video in the given
	// language. An empty lang asks for the default track.
	// Returns ENOTFOUND if the video has no such track.
	FetchTranscript(ctx context.Context, videoID, lang string) ([]TranscriptSegment, error)
}

// Transcriber produces a transcript from the media itself, for videos that
// have no caption track. Implementations are backed by a metered third-party
// service and are only configured when a credential is present.
type Transcriber interface {
	Transcribe(ctx context.Context, videoURL string) (string, error)
}

// VideoDetails is scraped or queried video (or listing) metadata.
// Any field may be empty.
type VideoDetails struct {
	ID            string
	Title         string
	Description   string
	Channel       string
	ViewCount     string
	PublishedDate string
	Duration      string
	Thumbnails    []string
}

// Fields converts the details into a strategy field set.
func (d *VideoDetails) Fields() Fields {
	if d == nil {
		return Fields{}
	}
	return Fields{
		Title:         d.Title,
		Description:   d.Description,
		Author:        d.Channel,
		ViewCount:     d.ViewCount,
		PublishedDate: d.PublishedDate,
		Duration:      d.Duration,
		Thumbnails:    d.Thumbnails,
	}
}

// VideoPageService scrapes public video pages.
type VideoPageService interface {
	// ScrapeVideo fetches the watch page of a video and extracts what it can.
	ScrapeVideo(ctx context.Context, videoID string) (*VideoDetails, error)

	// ScrapeListing fetches a channel or playlist page.
	ScrapeListing(ctx context.Context, rawURL string) (*VideoDetails, error)
}

// OEmbed is the subset of an oEmbed response used for corrections.
type OEmbed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ProviderName string `json:"provider_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// OEmbedService queries a platform's public oEmbed endpoint.
type OEmbedService interface {
	OEmbed(ctx context.Context, rawURL string) (*OEmbed, error)
}

// VideoService queries an official platform API for canonical metadata.
type VideoService interface {
	// FindVideo returns the metadata of a video.
	// Returns ENOTFOUND if the video does not exist or is private.
	FindVideo(ctx context.Context, videoID string) (*VideoDetails, error)
}

// FormatDuration renders a video length as M:SS, or H:MM:SS for an hour
// or more. Non-positive durations render as "".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
