package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var (
	_ harvest.TranscriptService = (*TranscriptService)(nil)
	_ harvest.Transcriber       = (*Transcriber)(nil)
	_ harvest.VideoPageService  = (*VideoPageService)(nil)
	_ harvest.OEmbedService     = (*OEmbedService)(nil)
	_ harvest.VideoService      = (*VideoService)(nil)
)

// TranscriptService is a mock implementation of harvest.TranscriptService.
type TranscriptService struct {
	FetchTranscriptFn func(ctx context.Context, videoID, lang string) ([]harvest.TranscriptSegment, error)
}

func (s *TranscriptService) FetchTranscript(ctx context.Context, videoID, lang string) ([]harvest.TranscriptSegment, error) {
	return s.FetchTranscriptFn(ctx, videoID, lang)
}

// Transcriber is a mock implementation of harvest.Transcriber.
type Transcriber struct {
	TranscribeFn func(ctx context.Context, videoURL string) (string, error)
}

func (t *Transcriber) Transcribe(ctx context.Context, videoURL string) (string, error) {
	return t.TranscribeFn(ctx, videoURL)
}

// VideoPageService is a mock implementation of harvest.VideoPageService.
type VideoPageService struct {
	ScrapeVideoFn   func(ctx context.Context, videoID string) (*harvest.VideoDetails, error)
	ScrapeListingFn func(ctx context.Context, rawURL string) (*harvest.VideoDetails, error)
}

func (s *VideoPageService) ScrapeVideo(ctx context.Context, videoID string) (*harvest.VideoDetails, error) {
	return s.ScrapeVideoFn(ctx, videoID)
}

func (s *VideoPageService) ScrapeListing(ctx context.Context, rawURL string) (*harvest.VideoDetails, error) {
	return s.ScrapeListingFn(ctx, rawURL)
}

// OEmbedService is a mock implementation of harvest.OEmbedService.
type OEmbedService struct {
	OEmbedFn func(ctx context.Context, rawURL string) (*harvest.OEmbed, error)
}

func (s *OEmbedService) OEmbed(ctx context.Context, rawURL string) (*harvest.OEmbed, error) {
	return s.OEmbedFn(ctx, rawURL)
}

// VideoService is a mock implementation of harvest.VideoService.
type VideoService struct {
	FindVideoFn func(ctx context.Context, videoID string) (*harvest.VideoDetails, error)
}

func (s *VideoService) FindVideo(ctx context.Context, videoID string) (*harvest.VideoDetails, error) {
	return s.FindVideoFn(ctx, videoID)
}
