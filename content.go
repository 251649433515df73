package harvest

import (
	"net/url"
	"regexp"
	"strings"
)

// ContentType identifies the class of content behind a URL.
// The class decides which strategy chain extracts it.
type ContentType string

// Supported content types.
const (
	ContentYouTube   ContentType = "youtube"
	ContentTikTok    ContentType = "tiktok"
	ContentInstagram ContentType = "instagram"
	ContentURL       ContentType = "url"
)

// ParseContentType maps a declared type string to a ContentType.
// Returns false for empty or unrecognized values so callers can fall back
// to Classify.
func ParseContentType(s string) (ContentType, bool) {
	switch ContentType(strings.ToLower(strings.TrimSpace(s))) {
	case ContentYouTube:
		return ContentYouTube, true
	case ContentTikTok:
		return ContentTikTok, true
	case ContentInstagram:
		return ContentInstagram, true
	case ContentURL:
		return ContentURL, true
	}
	return "", false
}

// Classify maps a URL to a content type by inspecting its hostname.
// It never fails: anything unrecognized, including unparseable input,
// is treated as a generic article.
func Classify(rawURL string) ContentType {
	host := hostname(rawURL)
	switch {
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtu.be"):
		return ContentYouTube
	case strings.Contains(host, "tiktok.com"):
		return ContentTikTok
	case strings.Contains(host, "instagram.com"):
		return ContentInstagram
	}
	return ContentURL
}

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractYouTubeVideoID returns the 11-character video id from the common
// YouTube URL shapes: watch?v=, youtu.be/, /embed/, /shorts/, /live/ and /v/.
// Returns false for non-YouTube URLs and for YouTube URLs without a video.
func ExtractYouTubeVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch {
	case strings.Contains(host, "youtu.be"):
		id = segments[0]
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtube-nocookie.com"):
		if segments[0] == "watch" {
			id = u.Query().Get("v")
			break
		}
		if len(segments) >= 2 {
			switch segments[0] {
			case "embed", "shorts", "live", "v":
				id = segments[1]
			}
		}
	default:
		return "", false
	}

	if !videoIDRe.MatchString(id) {
		return "", false
	}
	return id, true
}

// YouTubeListing reports whether a YouTube URL points at a channel or a
// playlist rather than a single video.
func YouTubeListing(rawURL string) (MetadataType, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !strings.Contains(strings.ToLower(u.Hostname()), "youtube.com") {
		return "", false
	}
	switch {
	case u.Path == "/playlist" && u.Query().Get("list") != "":
		return MetadataPlaylist, true
	case strings.HasPrefix(u.Path, "/channel/"),
		strings.HasPrefix(u.Path, "/c/"),
		strings.HasPrefix(u.Path, "/user/"),
		strings.HasPrefix(u.Path, "/@"):
		return MetadataChannel, true
	}
	return "", false
}

// hostname returns the lowercased host of rawURL, or "" if it cannot be parsed.
func hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
