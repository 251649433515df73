package youtube

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/goquery"
)

// Ensure Scraper implements harvest.VideoPageService at compile time.
var _ harvest.VideoPageService = (*Scraper)(nil)

func re(pattern string) harvest.FieldExtractor {
	return harvest.NewRegexExtractor(pattern)
}

// Watch page patterns, in priority order. Inline player state comes first,
// meta tags after, document title last.
var (
	watchTitle = []harvest.FieldExtractor{
		re(`"videoDetails":\{"videoId":"[^"]*","title":` + harvest.JSONString),
		re(`"title":\{"runs":\[\{"text":` + harvest.JSONString),
		goquery.Attr(`meta[name="title"]`, "content"),
		goquery.Attr(`meta[property="og:title"]`, "content"),
		re(`<title>(.*?) - YouTube</title>`),
	}
	watchDescription = []harvest.FieldExtractor{
		re(`"shortDescription":` + harvest.JSONString),
		goquery.Attr(`meta[property="og:description"]`, "content"),
		goquery.Attr(`meta[name="description"]`, "content"),
	}
	watchChannel = []harvest.FieldExtractor{
		re(`"ownerChannelName":` + harvest.JSONString),
		re(`"author":` + harvest.JSONString),
		goquery.Attr(`span[itemprop="author"] link[itemprop="name"]`, "content"),
		goquery.Attr(`link[itemprop="name"]`, "content"),
	}
	watchViews = []harvest.FieldExtractor{
		re(`"viewCount":"(\d+)"`),
		goquery.Attr(`meta[itemprop="interactionCount"]`, "content"),
	}
	watchPublished = []harvest.FieldExtractor{
		re(`"publishDate":"([^"]+)"`),
		re(`"uploadDate":"([^"]+)"`),
		goquery.Attr(`meta[itemprop="datePublished"]`, "content"),
	}
	watchLength = []harvest.FieldExtractor{
		re(`"lengthSeconds":"(\d+)"`),
	}
	ogImage = []harvest.FieldExtractor{
		goquery.Attr(`meta[property="og:image"]`, "content"),
	}
)

// Listing (channel and playlist) page patterns.
var (
	listingTitle = []harvest.FieldExtractor{
		goquery.Attr(`meta[property="og:title"]`, "content"),
		goquery.Attr(`meta[name="title"]`, "content"),
		re(`"channelMetadataRenderer":\{"title":` + harvest.JSONString),
		re(`<title>(.*?) - YouTube</title>`),
	}
	listingDescription = []harvest.FieldExtractor{
		goquery.Attr(`meta[property="og:description"]`, "content"),
		goquery.Attr(`meta[name="description"]`, "content"),
		re(`"description":\{"simpleText":` + harvest.JSONString),
	}
	listingAuthor = []harvest.FieldExtractor{
		re(`"ownerChannelName":` + harvest.JSONString),
		re(`"ownerText":\{"runs":\[\{"text":` + harvest.JSONString),
		goquery.Attr(`link[itemprop="name"]`, "content"),
		re(`"channelMetadataRenderer":\{"title":` + harvest.JSONString),
	}
	listingID = []harvest.FieldExtractor{
		goquery.Attr(`meta[itemprop="identifier"]`, "content"),
		goquery.Attr(`meta[itemprop="channelId"]`, "content"),
		re(`"externalId":"([^"]+)"`),
		re(`"playlistId":"([^"]+)"`),
	}
)

var (
	playabilityRe = regexp.MustCompile(`"playabilityStatus":\{"status":"([A-Z_]+)"(?:,"reason":` + harvest.JSONString + `)?`)
	consentRe     = regexp.MustCompile(`action="https://consent\.(?:youtube|google)\.com`)
)

// Scraper extracts metadata from public watch and listing pages.
type Scraper struct {
	client
}

// NewScraper creates a Scraper fetching through fetcher.
func NewScraper(fetcher harvest.Fetcher, opts ...Option) *Scraper {
	return &Scraper{client: newClient(fetcher, opts)}
}

// ScrapeVideo fetches the watch page of a video.
//
// Private, removed and age-restricted videos are reported as errors naming
// the cause, so the caller can tell the user why nothing was extracted.
func (s *Scraper) ScrapeVideo(ctx context.Context, videoID string) (*harvest.VideoDetails, error) {
	if videoID == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "video ID required")
	}

	page, err := s.fetch(ctx, s.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, err
	}
	if err := playability(page); err != nil {
		return nil, err
	}

	d := &harvest.VideoDetails{ID: videoID}
	d.Title, _ = harvest.ExtractField(page, 0, watchTitle...)
	d.Description, _ = harvest.ExtractField(page, s.thresholds.MinDescription, watchDescription...)
	d.Channel, _ = harvest.ExtractField(page, 0, watchChannel...)
	d.ViewCount, _ = harvest.ExtractField(page, 0, watchViews...)
	d.PublishedDate, _ = harvest.ExtractField(page, 0, watchPublished...)
	if secs, ok := harvest.ExtractField(page, 0, watchLength...); ok {
		if n, err := strconv.Atoi(secs); err == nil {
			d.Duration = harvest.FormatDuration(time.Duration(n) * time.Second)
		}
	}
	if thumb, ok := harvest.ExtractField(page, 0, ogImage...); ok {
		d.Thumbnails = []string{thumb}
	}

	if d.Fields().IsZero() {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "no metadata found on watch page for %s", videoID)
	}
	return d, nil
}

// ScrapeListing fetches a channel or playlist page.
func (s *Scraper) ScrapeListing(ctx context.Context, rawURL string) (*harvest.VideoDetails, error) {
	if _, ok := harvest.YouTubeListing(rawURL); !ok {
		return nil, harvest.Errorf(harvest.EINVALID, "not a channel or playlist URL: %s", rawURL)
	}

	page, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	d := &harvest.VideoDetails{}
	d.ID, _ = harvest.ExtractField(page, 0, listingID...)
	d.Title, _ = harvest.ExtractField(page, 0, listingTitle...)
	d.Description, _ = harvest.ExtractField(page, s.thresholds.MinDescription, listingDescription...)
	d.Channel, _ = harvest.ExtractField(page, 0, listingAuthor...)
	if thumb, ok := harvest.ExtractField(page, 0, ogImage...); ok {
		d.Thumbnails = []string{thumb}
	}

	if d.Fields().IsZero() {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "no metadata found on listing page %s", rawURL)
	}
	return d, nil
}

// playability reports the page's player status as an error when the video
// cannot be watched anonymously.
func playability(page string) error {
	m := playabilityRe.FindStringSubmatch(page)
	if m == nil {
		return nil
	}
	status := m[1]
	reason := strings.TrimSpace(harvest.Unescape(m[2]))
	if reason == "" {
		reason = strings.ToLower(strings.ReplaceAll(status, "_", " "))
	}

	switch status {
	case "OK", "LIVE_STREAM_OFFLINE":
		return nil
	case "AGE_CHECK_REQUIRED", "CONTENT_CHECK_REQUIRED":
		return harvest.Errorf(harvest.EUNAVAILABLE, "video restricted: %s", reason)
	case "LOGIN_REQUIRED":
		return harvest.Errorf(harvest.ENOTFOUND, "video is private or requires sign-in: %s", reason)
	default:
		return harvest.Errorf(harvest.ENOTFOUND, "video unavailable: %s", reason)
	}
}
