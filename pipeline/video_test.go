package pipeline_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/mock"
	"github.com/fwojciec/harvest/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	videoID  = "dQw4w9WgXcQ"
	videoURL = "https://www.youtube.com/watch?v=" + videoID
)

var longDescription = strings.Repeat("A detailed description of the video. ", 8)

func noTranscripts() *mock.TranscriptService {
	return &mock.TranscriptService{
		FetchTranscriptFn: func(_ context.Context, id, lang string) ([]harvest.TranscriptSegment, error) {
			return nil, harvest.Errorf(harvest.ENOTFOUND, "no transcript track for video %s (lang %q)", id, lang)
		},
	}
}

func pages(d *harvest.VideoDetails, err error) *mock.VideoPageService {
	return &mock.VideoPageService{
		ScrapeVideoFn: func(context.Context, string) (*harvest.VideoDetails, error) {
			return d, err
		},
	}
}

func runVideo(t *testing.T, c *pipeline.VideoChain, rawURL string) (*harvest.ExtractionResult, error) {
	t.Helper()
	return c.Run(context.Background(), harvest.ExtractionRequest{URL: rawURL, Type: harvest.ContentYouTube})
}

func TestVideoChain_Transcript(t *testing.T) {
	t.Parallel()

	t.Run("uses first usable caption track", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var langs []string
		transcripts := &mock.TranscriptService{
			FetchTranscriptFn: func(_ context.Context, _, lang string) ([]harvest.TranscriptSegment, error) {
				mu.Lock()
				langs = append(langs, lang)
				mu.Unlock()
				if lang == "en" {
					return nil, harvest.Errorf(harvest.ENOTFOUND, "no transcript track")
				}
				return []harvest.TranscriptSegment{
					{Text: "[Music]"},
					{Text: strings.Repeat("spoken words ", 20)},
					{Text: "[Applause] the end"},
				}, nil
			},
		}
		c := &pipeline.VideoChain{
			Transcripts: transcripts,
			Pages:       pages(&harvest.VideoDetails{Title: "Never Gonna Give You Up", Channel: "Rick Astley"}, nil),
		}

		res, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, []string{"en", "ar"}, langs)
		assert.True(t, strings.HasPrefix(res.Content, "Transcript:\n"))
		assert.NotContains(t, res.Content, "[Music]")
		assert.NotContains(t, res.Content, "[Applause]")
		assert.Contains(t, res.Content, "Title:\nNever Gonna Give You Up")
		assert.Equal(t, []string{harvest.SourceTranscript, harvest.SourceTitle, harvest.SourceChannel}, res.Metadata.Sources)
		assert.Equal(t, "Never Gonna Give You Up", res.Title)
	})

	t.Run("rejects short transcripts", func(t *testing.T) {
		t.Parallel()

		transcripts := &mock.TranscriptService{
			FetchTranscriptFn: func(context.Context, string, string) ([]harvest.TranscriptSegment, error) {
				return []harvest.TranscriptSegment{{Text: "too short"}}, nil
			},
		}
		c := &pipeline.VideoChain{
			Transcripts: transcripts,
			Pages:       pages(&harvest.VideoDetails{Title: "A Good Title", Description: longDescription}, nil),
		}

		res, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
		assert.NotContains(t, res.Metadata.Sources, harvest.SourceTranscript)
		assert.NotContains(t, res.Content, "too short")
	})

	t.Run("falls back to transcriber", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		c := &pipeline.VideoChain{
			Transcripts: noTranscripts(),
			Transcriber: &mock.Transcriber{
				TranscribeFn: func(_ context.Context, u string) (string, error) {
					gotURL = u
					return strings.Repeat("transcribed speech ", 15), nil
				},
			},
		}

		res, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
		assert.Equal(t, videoURL, gotURL)
		assert.Contains(t, res.Content, "transcribed speech")
		assert.Equal(t, []string{harvest.SourceTranscript}, res.Metadata.Sources)
	})

	t.Run("skips transcriber when captions exist", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Transcripts: &mock.TranscriptService{
				FetchTranscriptFn: func(context.Context, string, string) ([]harvest.TranscriptSegment, error) {
					return []harvest.TranscriptSegment{{Text: strings.Repeat("caption ", 30)}}, nil
				},
			},
			Transcriber: &mock.Transcriber{
				TranscribeFn: func(context.Context, string) (string, error) {
					t.Error("transcriber should not be called")
					return "", nil
				},
			},
		}

		_, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
	})
}

func TestVideoChain_TitleCorrection(t *testing.T) {
	t.Parallel()

	t.Run("replaces weak title from oEmbed", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Pages: pages(&harvest.VideoDetails{Title: "12K", Description: longDescription}, nil),
			OEmbed: &mock.OEmbedService{
				OEmbedFn: func(_ context.Context, u string) (*harvest.OEmbed, error) {
					assert.Equal(t, videoURL, u)
					return &harvest.OEmbed{Title: "Real Title", AuthorName: "Some Channel"}, nil
				},
			},
		}

		res, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
		assert.Equal(t, "Real Title", res.Title)
		assert.Contains(t, res.Content, "Title:\nReal Title")
		assert.NotContains(t, res.Content, "12K")
		assert.Equal(t, "Some Channel", res.Metadata.Author)
	})

	t.Run("keeps strong title without calling oEmbed", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Pages: pages(&harvest.VideoDetails{Title: "A Strong Title", Description: longDescription}, nil),
			OEmbed: &mock.OEmbedService{
				OEmbedFn: func(context.Context, string) (*harvest.OEmbed, error) {
					t.Error("oEmbed should not be called")
					return nil, nil
				},
			},
		}

		res, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
		assert.Equal(t, "A Strong Title", res.Title)
	})

	t.Run("fills missing fields from API", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Pages: pages(&harvest.VideoDetails{Title: "A Strong Title", Channel: "Scraped Channel"}, nil),
			Videos: &mock.VideoService{
				FindVideoFn: func(_ context.Context, id string) (*harvest.VideoDetails, error) {
					assert.Equal(t, videoID, id)
					return &harvest.VideoDetails{
						Title:       "API Title",
						Description: longDescription,
						Channel:     "API Channel",
						ViewCount:   "1234",
						Duration:    "3:33",
					}, nil
				},
			},
		}

		res, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
		assert.Equal(t, "A Strong Title", res.Title)
		assert.Equal(t, "Scraped Channel", res.Metadata.Author)
		assert.Equal(t, strings.TrimSpace(longDescription), strings.TrimSpace(res.Metadata.Description))
		assert.Equal(t, "1234", res.Metadata.ViewCount)
		assert.Equal(t, "3:33", res.Metadata.Duration)
	})

	t.Run("does not call API when title and description exist", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Pages: pages(&harvest.VideoDetails{Title: "A Strong Title", Description: longDescription}, nil),
			Videos: &mock.VideoService{
				FindVideoFn: func(context.Context, string) (*harvest.VideoDetails, error) {
					t.Error("API should not be called")
					return nil, nil
				},
			},
		}

		_, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
	})
}

func TestVideoChain_Synthesis(t *testing.T) {
	t.Parallel()

	t.Run("substitutes enhanced analysis for thin content", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Pages: pages(&harvest.VideoDetails{Title: "Real Title", Channel: "Some Channel", ViewCount: "1200"}, nil),
		}

		res, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.True(t, strings.HasPrefix(res.Content, harvest.SourceEnhancedAnalysis+":\n"))
		assert.Contains(t, res.Content, "Real Title")
		assert.Contains(t, res.Content, "Some Channel")
		assert.Contains(t, res.Content, "1200")
		assert.Equal(t, []string{harvest.SourceEnhancedAnalysis}, res.Metadata.Sources)
		assert.GreaterOrEqual(t, harvest.CharCount(res.Content), harvest.MinContentLength)
	})

	t.Run("keeps a short transcript under a short title", func(t *testing.T) {
		t.Parallel()

		caption := strings.Repeat("caption words ", 11)
		c := &pipeline.VideoChain{
			Transcripts: &mock.TranscriptService{
				FetchTranscriptFn: func(context.Context, string, string) ([]harvest.TranscriptSegment, error) {
					return []harvest.TranscriptSegment{{Text: caption}}, nil
				},
			},
			Pages: pages(&harvest.VideoDetails{Title: "Hi"}, nil),
		}

		res, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Contains(t, res.Content, strings.TrimSpace(caption))
		assert.Equal(t, []string{harvest.SourceTranscript, harvest.SourceTitle}, res.Metadata.Sources)
		assert.Empty(t, res.Metadata.Note)
	})

	t.Run("fills metadata and derived counters", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Pages: pages(&harvest.VideoDetails{
				Title:         "A Strong Title",
				Description:   longDescription,
				Channel:       "Some Channel",
				PublishedDate: "2009-10-25",
				Duration:      "3:33",
			}, nil),
		}

		res, err := runVideo(t, c, videoURL)

		require.NoError(t, err)
		m := res.Metadata
		assert.Equal(t, harvest.MetadataVideo, m.Type)
		assert.Equal(t, "YouTube", m.Platform)
		assert.Equal(t, videoURL, m.URL)
		assert.Equal(t, "2009-10-25", m.PublishedDate)
		assert.Contains(t, m.Thumbnails, "https://i.ytimg.com/vi/"+videoID+"/hqdefault.jpg")
		assert.Equal(t, harvest.CharCount(res.Content), m.ContentLength)
		assert.Equal(t, len(strings.Fields(res.Content)), m.WordCount)
		assert.NotEmpty(t, m.ContentHash)
		assert.NotEmpty(t, res.Reports)
	})
}

func TestVideoChain_Failure(t *testing.T) {
	t.Parallel()

	t.Run("names private videos", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Transcripts: noTranscripts(),
			Pages:       pages(nil, harvest.Errorf(harvest.ENOTFOUND, "video is private or requires sign-in: This video is private")),
		}

		res, err := runVideo(t, c, videoURL)

		require.Error(t, err)
		assert.Equal(t, harvest.EINSUFFICIENT, harvest.ErrorCode(err))
		assert.Contains(t, err.Error(), "private or unavailable")
		require.NotNil(t, res)
		assert.NotEmpty(t, res.Reports)
	})

	t.Run("names missing transcripts", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Transcripts: noTranscripts(),
			Pages:       pages(&harvest.VideoDetails{ViewCount: "5"}, nil),
		}

		_, err := runVideo(t, c, videoURL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "transcript")
	})

	t.Run("names blocked requests and allows retry", func(t *testing.T) {
		t.Parallel()

		c := &pipeline.VideoChain{
			Pages: pages(nil, harvest.Errorf(harvest.EUNAVAILABLE, "request blocked by YouTube: HTTP 429")),
		}

		_, err := runVideo(t, c, videoURL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "blocked or restricted")
		assert.Equal(t, harvest.EUNAVAILABLE, harvest.ErrorCode(err))
	})

	t.Run("gives generic message without strategies", func(t *testing.T) {
		t.Parallel()

		_, err := runVideo(t, &pipeline.VideoChain{}, videoURL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Could not extract enough information")
	})

	t.Run("rejects URL without video id", func(t *testing.T) {
		t.Parallel()

		_, err := runVideo(t, &pipeline.VideoChain{}, "https://example.com/not-a-video")

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}

func TestVideoChain_Listing(t *testing.T) {
	t.Parallel()

	c := &pipeline.VideoChain{
		Pages: &mock.VideoPageService{
			ScrapeListingFn: func(_ context.Context, u string) (*harvest.VideoDetails, error) {
				assert.Equal(t, "https://www.youtube.com/@somechannel", u)
				return &harvest.VideoDetails{
					ID:          "UC123",
					Title:       "Some Channel",
					Description: "Weekly videos about building furniture in a small garage workshop.",
					Channel:     "Some Channel",
				}, nil
			},
		},
	}

	res, err := runVideo(t, c, "https://www.youtube.com/@somechannel")

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Some Channel", res.Title)
	assert.Equal(t, harvest.MetadataChannel, res.Metadata.Type)
}

func TestCleanTranscript(t *testing.T) {
	t.Parallel()

	got := pipeline.CleanTranscript([]harvest.TranscriptSegment{
		{Text: "[Music]"},
		{Text: "hello   there"},
		{Text: "\n[Laughter] general  kenobi "},
	})

	assert.Equal(t, "hello there general kenobi", got)
}
