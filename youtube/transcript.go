package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/fwojciec/harvest"
)

// Ensure TranscriptService implements harvest.TranscriptService at compile time.
var _ harvest.TranscriptService = (*TranscriptService)(nil)

// CaptionTrack is a caption track listed in a watch page's player response.
// URL is signed by YouTube and only valid for a limited time.
type CaptionTrack struct {
	Language string `json:"languageCode"`
	URL      string `json:"baseUrl"`
	// Kind is "asr" for automatic speech recognition tracks.
	Kind string `json:"kind"`
}

const captionTracksKey = `"captionTracks":`

// ParseCaptionTracks returns the caption tracks listed in the
// ytInitialPlayerResponse of a watch page. A page without captions yields
// no tracks and no error.
func ParseCaptionTracks(page string) ([]CaptionTrack, error) {
	i := strings.Index(page, captionTracksKey)
	if i < 0 {
		return nil, nil
	}
	var tracks []CaptionTrack
	dec := json.NewDecoder(strings.NewReader(page[i+len(captionTracksKey):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, harvest.Errorf(harvest.EUNAVAILABLE, "parsing caption tracks: %v", err)
	}
	return tracks, nil
}

// SelectTrack picks the track for lang: an exact language code match, or a
// regional variant ("en-GB" for "en"), preferring manual captions over asr.
// An empty lang selects the default track: the first manual track, else
// the first track.
func SelectTrack(tracks []CaptionTrack, lang string) (CaptionTrack, bool) {
	var fallback *CaptionTrack
	for i := range tracks {
		t := &tracks[i]
		if t.URL == "" {
			continue
		}
		if lang != "" && !matchesLanguage(t.Language, lang) {
			continue
		}
		if t.Kind != "asr" {
			return *t, true
		}
		if fallback == nil {
			fallback = t
		}
	}
	if fallback == nil {
		return CaptionTrack{}, false
	}
	return *fallback, true
}

func matchesLanguage(code, lang string) bool {
	code, lang = strings.ToLower(code), strings.ToLower(lang)
	return code == lang || strings.HasPrefix(code, lang+"-")
}

// TranscriptService retrieves caption tracks through the signed track URLs
// of the watch page. The track list of the most recent video is kept so that
// trying several languages costs one page fetch.
type TranscriptService struct {
	client

	mu     sync.Mutex
	recent struct {
		videoID string
		tracks  []CaptionTrack
	}
}

// NewTranscriptService creates a TranscriptService fetching through fetcher.
func NewTranscriptService(fetcher harvest.Fetcher, opts ...Option) *TranscriptService {
	return &TranscriptService{client: newClient(fetcher, opts)}
}

// FetchTranscript returns the caption segments of a video. An empty lang
// requests the default track. Returns ENOTFOUND when the video has no
// matching track or the track is empty.
func (s *TranscriptService) FetchTranscript(ctx context.Context, videoID, lang string) ([]harvest.TranscriptSegment, error) {
	if videoID == "" {
		return nil, harvest.Errorf(harvest.EINVALID, "video ID required")
	}

	tracks, err := s.tracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	track, ok := SelectTrack(tracks, lang)
	if !ok {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "no transcript track for video %s (lang %q)", videoID, lang)
	}

	body, err := s.fetcher.Fetch(ctx, track.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching transcript: %w", err)
	}
	if strings.TrimSpace(body) == "" {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "empty transcript track for video %s (lang %q)", videoID, lang)
	}

	segments, err := ParseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "empty transcript track for video %s (lang %q)", videoID, lang)
	}
	return segments, nil
}

// tracks returns the caption tracks of a video, fetching its watch page
// unless the tracks of the same video were just resolved.
func (s *TranscriptService) tracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	s.mu.Lock()
	if s.recent.videoID == videoID {
		tracks := s.recent.tracks
		s.mu.Unlock()
		return tracks, nil
	}
	s.mu.Unlock()

	page, err := s.fetch(ctx, s.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, fmt.Errorf("fetching transcript list: %w", err)
	}
	if err := playability(page); err != nil {
		return nil, err
	}
	tracks, err := ParseCaptionTracks(page)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.recent.videoID = videoID
	s.recent.tracks = tracks
	s.mu.Unlock()
	return tracks, nil
}

// ParseTimedText parses a timedtext caption document. Both the legacy
// <transcript><text start dur> format (seconds) and the srv3
// <timedtext><body><p t d> format (milliseconds) are understood.
func ParseTimedText(body string) ([]harvest.TranscriptSegment, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "parsing transcript XML: %v", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "empty transcript XML")
	}

	var segments []harvest.TranscriptSegment
	switch root.Tag {
	case "transcript":
		for _, el := range root.SelectElements("text") {
			segments = appendSegment(segments, el,
				seconds(el.SelectAttrValue("start", "")),
				seconds(el.SelectAttrValue("dur", "")))
		}
	case "timedtext":
		body := root.SelectElement("body")
		if body == nil {
			return nil, nil
		}
		for _, el := range body.SelectElements("p") {
			segments = appendSegment(segments, el,
				millis(el.SelectAttrValue("t", "")),
				millis(el.SelectAttrValue("d", "")))
		}
	default:
		return nil, harvest.Errorf(harvest.EINVALID, "unexpected transcript root <%s>", root.Tag)
	}
	return segments, nil
}

func appendSegment(segments []harvest.TranscriptSegment, el *etree.Element, start, dur time.Duration) []harvest.TranscriptSegment {
	var sb strings.Builder
	collectText(&sb, el)
	text := harvest.CollapseWhitespace(html.UnescapeString(sb.String()))
	if text == "" {
		return segments
	}
	return append(segments, harvest.TranscriptSegment{Text: text, Start: start, Duration: dur})
}

// collectText writes the character data of el and its descendants in
// document order. srv3 tracks put words in <s> children.
func collectText(sb *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch v := tok.(type) {
		case *etree.CharData:
			sb.WriteString(v.Data)
		case *etree.Element:
			collectText(sb, v)
			sb.WriteByte(' ')
		}
	}
}

func seconds(v string) time.Duration {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func millis(v string) time.Duration {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}
