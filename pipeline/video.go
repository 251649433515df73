package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/youtube"
)

// Video strategy names, as they appear in reports.
const (
	StrategyTranscript  = "transcript"
	StrategyTranscriber = "transcriber"
	StrategyPage        = "page"
	StrategyOEmbed      = "oembed"
	StrategyAPI         = "api"
	StrategyListing     = "listing"
)

// Failure messages for video extractions, chosen from the text of the last
// strategy error.
const (
	msgVideoTranscript = "Could not retrieve a transcript for this video, and not enough other information was available."
	msgVideoPrivate    = "This video appears to be private or unavailable."
	msgVideoBlocked    = "Access to this video was blocked or restricted."
	msgVideoGeneric    = "Could not extract enough information from this video."
)

// DefaultTranscriptLanguages are the caption tracks tried in order. The
// empty hint asks for the video's default track.
var DefaultTranscriptLanguages = []string{"en", "ar", ""}

var annotationRe = regexp.MustCompile(`\[[^\]]*\]`)

// VideoChain extracts YouTube videos, channels and playlists. Every service
// is optional; a nil service drops its strategy.
type VideoChain struct {
	Transcripts harvest.TranscriptService
	Transcriber harvest.Transcriber
	Pages       harvest.VideoPageService
	OEmbed      harvest.OEmbedService
	Videos      harvest.VideoService

	// Languages overrides DefaultTranscriptLanguages.
	Languages []string

	// Thresholds defaults to harvest.DefaultThresholds.
	Thresholds *harvest.Thresholds

	Logger *slog.Logger
}

// Run extracts the video at req.URL. On failure the returned result, if
// non-nil, carries only strategy reports.
func (c *VideoChain) Run(ctx context.Context, req harvest.ExtractionRequest) (*harvest.ExtractionResult, error) {
	rawURL := strings.TrimSpace(req.URL)

	id, ok := harvest.ExtractYouTubeVideoID(rawURL)
	if !ok {
		if kind, ok := harvest.YouTubeListing(rawURL); ok {
			return c.runListing(ctx, rawURL, kind)
		}
		return nil, harvest.Errorf(harvest.EINVALID, "Could not find a YouTube video ID in %s.", rawURL)
	}

	var (
		fields   harvest.Fields
		outcomes []harvest.StrategyOutcome
	)
	record := func(o harvest.StrategyOutcome) {
		c.logger().Debug("strategy", "strategy", o.Strategy, "attempted", o.Attempted, "contributed", o.Contributed(), "reason", o.Reason())
		outcomes = append(outcomes, o)
	}

	transcript := c.transcript(ctx, id)
	record(transcript)
	if transcript.Contributed() {
		fields.Merge(transcript.Fields)
		record(harvest.Skipped(StrategyTranscriber, "caption track available"))
	} else {
		o := c.transcribe(ctx, rawURL)
		record(o)
		if o.Contributed() {
			fields.Merge(o.Fields)
		}
	}

	page := c.scrape(ctx, id)
	record(page)
	if page.Contributed() {
		fields.Merge(page.Fields)
	}

	record(c.correctTitle(ctx, rawURL, &fields))
	record(c.fillFromAPI(ctx, id, &fields))

	if !slices.Contains(fields.Thumbnails, youtube.ThumbnailURL(id)) {
		fields.Thumbnails = append(fields.Thumbnails, youtube.ThumbnailURL(id))
	}

	meta := &harvest.Metadata{
		Type:          harvest.MetadataVideo,
		Author:        fields.Author,
		Duration:      fields.Duration,
		PublishedDate: fields.PublishedDate,
		Description:   fields.Description,
		Thumbnails:    fields.Thumbnails,
		Platform:      "YouTube",
		URL:           rawURL,
		ViewCount:     fields.ViewCount,
	}
	return c.accept(videoTitle(fields, "YouTube video "+id), "video", fields, meta, outcomes)
}

func (c *VideoChain) runListing(ctx context.Context, rawURL string, kind harvest.MetadataType) (*harvest.ExtractionResult, error) {
	var outcomes []harvest.StrategyOutcome
	var fields harvest.Fields

	o := harvest.Skipped(StrategyListing, "no page service configured")
	if c.Pages != nil {
		d, err := c.Pages.ScrapeListing(ctx, rawURL)
		if err != nil {
			o = harvest.Failed(StrategyListing, err)
		} else {
			o = harvest.Succeeded(StrategyListing, d.Fields())
			fields.Merge(o.Fields)
		}
	}
	c.logger().Debug("strategy", "strategy", o.Strategy, "attempted", o.Attempted, "contributed", o.Contributed(), "reason", o.Reason())
	outcomes = append(outcomes, o)

	meta := &harvest.Metadata{
		Type:        kind,
		Author:      fields.Author,
		Description: fields.Description,
		Thumbnails:  fields.Thumbnails,
		Platform:    "YouTube",
		URL:         rawURL,
	}
	return c.accept(videoTitle(fields, "YouTube "+string(kind)), string(kind), fields, meta, outcomes)
}

// accept synthesizes the content and applies the final gate.
func (c *VideoChain) accept(title, noun string, fields harvest.Fields, meta *harvest.Metadata, outcomes []harvest.StrategyOutcome) (*harvest.ExtractionResult, error) {
	th := c.thresholds()
	s := synthesize(fields, th, noun)

	if harvest.CharCount(s.Content) <= th.MinVideo {
		res := &harvest.ExtractionResult{Reports: reports(outcomes)}
		return res, classifyVideoFailure(outcomes)
	}

	meta.Sources = s.Sources
	if s.Degraded {
		meta.Note = "limited metadata, low confidence"
	}
	res := harvest.NewSuccess(title, s.Content, meta)
	res.Reports = reports(outcomes)
	return finalize(res), nil
}

func (c *VideoChain) transcript(ctx context.Context, id string) harvest.StrategyOutcome {
	if c.Transcripts == nil {
		return harvest.Skipped(StrategyTranscript, "no transcript service configured")
	}

	langs := c.Languages
	if len(langs) == 0 {
		langs = DefaultTranscriptLanguages
	}

	th := c.thresholds()
	var lastErr error
	for _, lang := range langs {
		segments, err := c.Transcripts.FetchTranscript(ctx, id, lang)
		if err != nil {
			lastErr = err
			continue
		}
		text := CleanTranscript(segments)
		if harvest.CharCount(text) <= th.MinTranscript {
			lastErr = harvest.Errorf(harvest.EINSUFFICIENT, "transcript too short (%d chars, lang %q)", harvest.CharCount(text), lang)
			continue
		}
		return harvest.Succeeded(StrategyTranscript, harvest.Fields{Content: text})
	}
	return harvest.Failed(StrategyTranscript, fmt.Errorf("no usable transcript: %w", lastErr))
}

func (c *VideoChain) transcribe(ctx context.Context, rawURL string) harvest.StrategyOutcome {
	if c.Transcriber == nil {
		return harvest.Skipped(StrategyTranscriber, "no transcriber configured")
	}

	text, err := c.Transcriber.Transcribe(ctx, rawURL)
	if err != nil {
		return harvest.Failed(StrategyTranscriber, fmt.Errorf("transcription failed: %w", err))
	}
	text = harvest.CollapseWhitespace(annotationRe.ReplaceAllString(text, " "))
	if harvest.CharCount(text) <= c.thresholds().MinTranscript {
		return harvest.Failed(StrategyTranscriber, harvest.Errorf(harvest.EINSUFFICIENT, "transcription too short (%d chars)", harvest.CharCount(text)))
	}
	return harvest.Succeeded(StrategyTranscriber, harvest.Fields{Content: text})
}

func (c *VideoChain) scrape(ctx context.Context, id string) harvest.StrategyOutcome {
	if c.Pages == nil {
		return harvest.Skipped(StrategyPage, "no page service configured")
	}
	d, err := c.Pages.ScrapeVideo(ctx, id)
	if err != nil {
		return harvest.Failed(StrategyPage, err)
	}
	return harvest.Succeeded(StrategyPage, d.Fields())
}

// correctTitle asks oEmbed for the canonical title when the scraped one is
// missing or looks like a counter (e.g. "12K") picked up by mistake.
func (c *VideoChain) correctTitle(ctx context.Context, rawURL string, f *harvest.Fields) harvest.StrategyOutcome {
	th := c.thresholds()
	if !th.IsWeakTitle(f.Title) {
		return harvest.Skipped(StrategyOEmbed, "title is strong")
	}
	if c.OEmbed == nil {
		return harvest.Skipped(StrategyOEmbed, "no oEmbed service configured")
	}

	oe, err := c.OEmbed.OEmbed(ctx, rawURL)
	if err != nil {
		return harvest.Failed(StrategyOEmbed, err)
	}

	got := harvest.Fields{Author: oe.AuthorName}
	if !th.IsWeakTitle(oe.Title) {
		got.Title = oe.Title
		f.Title = oe.Title
	}
	if oe.ThumbnailURL != "" {
		got.Thumbnails = []string{oe.ThumbnailURL}
	}
	f.Merge(got)
	return harvest.Succeeded(StrategyOEmbed, got)
}

// fillFromAPI completes missing fields from the platform API.
func (c *VideoChain) fillFromAPI(ctx context.Context, id string, f *harvest.Fields) harvest.StrategyOutcome {
	if c.Videos == nil {
		return harvest.Skipped(StrategyAPI, "no API key configured")
	}
	th := c.thresholds()
	if !th.IsWeakTitle(f.Title) && f.Description != "" {
		return harvest.Skipped(StrategyAPI, "title and description present")
	}

	d, err := c.Videos.FindVideo(ctx, id)
	if err != nil {
		return harvest.Failed(StrategyAPI, err)
	}
	got := d.Fields()
	if th.IsWeakTitle(f.Title) && !th.IsWeakTitle(got.Title) {
		f.Title = got.Title
	}
	f.Merge(got)
	return harvest.Succeeded(StrategyAPI, got)
}

func (c *VideoChain) thresholds() harvest.Thresholds {
	if c.Thresholds != nil {
		return *c.Thresholds
	}
	return harvest.DefaultThresholds()
}

func (c *VideoChain) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discard
}

// CleanTranscript joins caption segments into plain text, dropping
// bracketed annotations such as [Music] and collapsing whitespace.
func CleanTranscript(segments []harvest.TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	text := annotationRe.ReplaceAllString(strings.Join(parts, " "), " ")
	return harvest.CollapseWhitespace(text)
}

// classifyVideoFailure maps the last strategy error to a user-facing
// message. The failure is EUNAVAILABLE, and so retried, only when every
// attempted strategy failed in transport; otherwise it is EINSUFFICIENT.
func classifyVideoFailure(outcomes []harvest.StrategyOutcome) error {
	code := harvest.EINSUFFICIENT
	if transportOnly(outcomes) {
		code = harvest.EUNAVAILABLE
	}

	text := ""
	if err := lastError(outcomes); err != nil {
		text = strings.ToLower(err.Error())
	}
	switch {
	case strings.Contains(text, "transcript"):
		return harvest.Errorf(code, "%s", msgVideoTranscript)
	case strings.Contains(text, "private"), strings.Contains(text, "unavailable"):
		return harvest.Errorf(code, "%s", msgVideoPrivate)
	case strings.Contains(text, "blocked"), strings.Contains(text, "restricted"):
		return harvest.Errorf(code, "%s", msgVideoBlocked)
	}
	return harvest.Errorf(code, "%s", msgVideoGeneric)
}

// transportOnly reports whether at least one strategy ran and every one
// that ran failed with EUNAVAILABLE.
func transportOnly(outcomes []harvest.StrategyOutcome) bool {
	attempted := false
	for _, o := range outcomes {
		if !o.Attempted {
			continue
		}
		attempted = true
		if harvest.ErrorCode(o.Err) != harvest.EUNAVAILABLE {
			return false
		}
	}
	return attempted
}

func videoTitle(f harvest.Fields, fallback string) string {
	if t := strings.TrimSpace(f.Title); t != "" {
		return t
	}
	return fallback
}
