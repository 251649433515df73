package youtube_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/mock"
	"github.com/fwojciec/harvest/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyTrack = `<?xml version="1.0" encoding="utf-8" ?>
<transcript>
<text start="0.5" dur="2.25">[Music]</text>
<text start="2.75" dur="3">Welcome back to the channel</text>
<text start="5.75" dur="1.5">it&amp;#39;s good to see you</text>
<text start="7.25" dur="1"></text>
</transcript>`

const srv3Track = `<?xml version="1.0" encoding="utf-8" ?>
<timedtext format="3">
<body>
<p t="1200" d="2500">Hello <s>there</s> friends</p>
<p t="3700" d="1000"><s>second</s><s> line</s></p>
</body>
</timedtext>`

func TestParseTimedText(t *testing.T) {
	t.Parallel()

	t.Run("parses legacy track", func(t *testing.T) {
		t.Parallel()

		segments, err := youtube.ParseTimedText(legacyTrack)

		require.NoError(t, err)
		require.Len(t, segments, 3)
		assert.Equal(t, "[Music]", segments[0].Text)
		assert.Equal(t, 500*time.Millisecond, segments[0].Start)
		assert.Equal(t, 2250*time.Millisecond, segments[0].Duration)
		assert.Equal(t, "it's good to see you", segments[2].Text)
	})

	t.Run("parses srv3 track", func(t *testing.T) {
		t.Parallel()

		segments, err := youtube.ParseTimedText(srv3Track)

		require.NoError(t, err)
		require.Len(t, segments, 2)
		assert.Equal(t, "Hello there friends", segments[0].Text)
		assert.Equal(t, 1200*time.Millisecond, segments[0].Start)
		assert.Equal(t, "second line", segments[1].Text)
	})

	t.Run("rejects unknown document", func(t *testing.T) {
		t.Parallel()

		_, err := youtube.ParseTimedText(`<html></html>`)

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}

// captionWatchPage embeds a player response listing caption tracks the way a watch
// page does, with \u0026 escaped query separators.
const captionWatchPage = `<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},` +
	`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
	`{"baseUrl":"http://yt.test/api/timedtext?v=dQw4w9WgXcQ\u0026lang=en\u0026kind=asr\u0026signature=a","languageCode":"en","kind":"asr"},` +
	`{"baseUrl":"http://yt.test/api/timedtext?v=dQw4w9WgXcQ\u0026lang=en-GB\u0026signature=b","languageCode":"en-GB"},` +
	`{"baseUrl":"http://yt.test/api/timedtext?v=dQw4w9WgXcQ\u0026lang=ar\u0026kind=asr\u0026signature=c","languageCode":"ar","kind":"asr"}` +
	`],"audioTracks":[]}}};</script>`

func TestParseCaptionTracks(t *testing.T) {
	t.Parallel()

	t.Run("decodes tracks from the player response", func(t *testing.T) {
		t.Parallel()

		tracks, err := youtube.ParseCaptionTracks(captionWatchPage)

		require.NoError(t, err)
		require.Len(t, tracks, 3)
		assert.Equal(t, youtube.CaptionTrack{
			Language: "en",
			URL:      "http://yt.test/api/timedtext?v=dQw4w9WgXcQ&lang=en&kind=asr&signature=a",
			Kind:     "asr",
		}, tracks[0])
		assert.Equal(t, "en-GB", tracks[1].Language)
		assert.Empty(t, tracks[1].Kind)
	})

	t.Run("returns no tracks for a page without captions", func(t *testing.T) {
		t.Parallel()

		tracks, err := youtube.ParseCaptionTracks(`{"playabilityStatus":{"status":"OK"}}`)

		require.NoError(t, err)
		assert.Empty(t, tracks)
	})

	t.Run("rejects a malformed track list", func(t *testing.T) {
		t.Parallel()

		_, err := youtube.ParseCaptionTracks(`"captionTracks":[{"baseUrl":`)

		require.Error(t, err)
		assert.Equal(t, harvest.EUNAVAILABLE, harvest.ErrorCode(err))
	})
}

func TestSelectTrack(t *testing.T) {
	t.Parallel()

	tracks, err := youtube.ParseCaptionTracks(captionWatchPage)
	require.NoError(t, err)

	tests := []struct {
		name     string
		lang     string
		wantLang string
		wantOK   bool
	}{
		{name: "prefers manual regional track", lang: "en", wantLang: "en-GB", wantOK: true},
		{name: "falls back to asr track", lang: "ar", wantLang: "ar", wantOK: true},
		{name: "default picks first manual track", lang: "", wantLang: "en-GB", wantOK: true},
		{name: "matches case insensitively", lang: "EN-gb", wantLang: "en-GB", wantOK: true},
		{name: "misses absent language", lang: "fr", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			track, ok := youtube.SelectTrack(tracks, tt.lang)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLang, track.Language)
		})
	}

	t.Run("default falls back to first asr track", func(t *testing.T) {
		t.Parallel()

		track, ok := youtube.SelectTrack([]youtube.CaptionTrack{
			{Language: "ar", URL: "http://yt.test/ar", Kind: "asr"},
			{Language: "en", URL: "http://yt.test/en", Kind: "asr"},
		}, "")

		assert.True(t, ok)
		assert.Equal(t, "ar", track.Language)
	})
}

// trackFetcher serves captionWatchPage for the watch URL and body for any other URL,
// recording every requested URL in order.
func trackFetcher(body string, urls *[]string) *mock.Fetcher {
	var mu sync.Mutex
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, u string) (string, error) {
			mu.Lock()
			*urls = append(*urls, u)
			mu.Unlock()
			if strings.Contains(u, "/watch?") {
				return captionWatchPage, nil
			}
			return body, nil
		},
	}
}

func TestTranscriptService_FetchTranscript(t *testing.T) {
	t.Parallel()

	t.Run("fetches the signed url of the selected track", func(t *testing.T) {
		t.Parallel()

		var urls []string
		svc := youtube.NewTranscriptService(trackFetcher(legacyTrack, &urls), youtube.WithBaseURL("http://yt.test/"))
		segments, err := svc.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "en")

		require.NoError(t, err)
		assert.Len(t, segments, 3)
		assert.Equal(t, []string{
			"http://yt.test/watch?v=dQw4w9WgXcQ",
			"http://yt.test/api/timedtext?v=dQw4w9WgXcQ&lang=en-GB&signature=b",
		}, urls)
	})

	t.Run("resolves the track list once per video", func(t *testing.T) {
		t.Parallel()

		var urls []string
		svc := youtube.NewTranscriptService(trackFetcher(srv3Track, &urls), youtube.WithBaseURL("http://yt.test"))

		for _, lang := range []string{"en", "ar", ""} {
			_, err := svc.FetchTranscript(context.Background(), "dQw4w9WgXcQ", lang)
			require.NoError(t, err)
		}

		watches := 0
		for _, u := range urls {
			if strings.Contains(u, "/watch?") {
				watches++
			}
		}
		assert.Equal(t, 1, watches)
		assert.Len(t, urls, 4)
	})

	t.Run("returns not found for a missing language", func(t *testing.T) {
		t.Parallel()

		var urls []string
		svc := youtube.NewTranscriptService(trackFetcher(legacyTrack, &urls))
		_, err := svc.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "fr")

		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
		assert.Equal(t, []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}, urls)
	})

	t.Run("returns not found for a video without captions", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return `{"playabilityStatus":{"status":"OK"}}`, nil
			},
		}

		_, err := youtube.NewTranscriptService(fetcher).FetchTranscript(context.Background(), "dQw4w9WgXcQ", "")

		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})

	t.Run("returns not found for empty body", func(t *testing.T) {
		t.Parallel()

		var urls []string
		_, err := youtube.NewTranscriptService(trackFetcher("", &urls)).FetchTranscript(context.Background(), "dQw4w9WgXcQ", "ar")

		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
		assert.Contains(t, err.Error(), "transcript")
	})

	t.Run("reports unplayable videos", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`, nil
			},
		}

		_, err := youtube.NewTranscriptService(fetcher).FetchTranscript(context.Background(), "dQw4w9WgXcQ", "en")

		require.Error(t, err)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
		assert.Contains(t, err.Error(), "video unavailable")
	})

	t.Run("wraps track fetch errors", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, u string) (string, error) {
				if strings.Contains(u, "/watch?") {
					return captionWatchPage, nil
				}
				return "", harvest.Errorf(harvest.EUNAVAILABLE, "HTTP 404 for timedtext")
			},
		}

		_, err := youtube.NewTranscriptService(fetcher).FetchTranscript(context.Background(), "dQw4w9WgXcQ", "en")

		require.Error(t, err)
		assert.Equal(t, harvest.EUNAVAILABLE, harvest.ErrorCode(err))
		assert.Contains(t, err.Error(), "fetching transcript")
	})

	t.Run("rejects empty video id without fetching", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", errors.New("should not be called")
			},
		}

		_, err := youtube.NewTranscriptService(fetcher).FetchTranscript(context.Background(), "", "en")

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}
