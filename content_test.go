package harvest_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want harvest.ContentType
	}{
		{"https://youtu.be/abc123", harvest.ContentYouTube},
		{"https://www.youtube.com/watch?v=abc123", harvest.ContentYouTube},
		{"https://youtube.com/embed/abc123", harvest.ContentYouTube},
		{"https://m.youtube.com/shorts/abc123", harvest.ContentYouTube},
		{"https://www.tiktok.com/@user/video/123", harvest.ContentTikTok},
		{"https://www.instagram.com/p/Cxyz/", harvest.ContentInstagram},
		{"https://example.com/blog/post", harvest.ContentURL},
		{"not a url at all", harvest.ContentURL},
		{"", harvest.ContentURL},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, harvest.Classify(tt.url))
		})
	}
}

func TestClassify_IsDeterministic(t *testing.T) {
	t.Parallel()

	for range 10 {
		assert.Equal(t, harvest.ContentYouTube, harvest.Classify("https://youtu.be/abc123"))
	}
}

func TestParseContentType(t *testing.T) {
	t.Parallel()

	t.Run("accepts known types case-insensitively", func(t *testing.T) {
		t.Parallel()

		ct, ok := harvest.ParseContentType(" YouTube ")
		assert.True(t, ok)
		assert.Equal(t, harvest.ContentYouTube, ct)
	})

	t.Run("rejects unknown and empty types", func(t *testing.T) {
		t.Parallel()

		_, ok := harvest.ParseContentType("podcast")
		assert.False(t, ok)
		_, ok = harvest.ParseContentType("")
		assert.False(t, ok)
	})
}

func TestExtractYouTubeVideoID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{"watch with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=30s", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"shorts", "https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"live", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"non-youtube", "https://example.com/watch?v=dQw4w9WgXcQ", "", false},
		{"channel page", "https://www.youtube.com/@somechannel", "", false},
		{"malformed id", "https://www.youtube.com/watch?v=short", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, ok := harvest.ExtractYouTubeVideoID(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestYouTubeListing(t *testing.T) {
	t.Parallel()

	typ, ok := harvest.YouTubeListing("https://www.youtube.com/playlist?list=PL123")
	assert.True(t, ok)
	assert.Equal(t, harvest.MetadataPlaylist, typ)

	typ, ok = harvest.YouTubeListing("https://www.youtube.com/@golang")
	assert.True(t, ok)
	assert.Equal(t, harvest.MetadataChannel, typ)

	typ, ok = harvest.YouTubeListing("https://www.youtube.com/channel/UC123")
	assert.True(t, ok)
	assert.Equal(t, harvest.MetadataChannel, typ)

	_, ok = harvest.YouTubeListing("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.False(t, ok)

	_, ok = harvest.YouTubeListing("https://example.com/@someone")
	assert.False(t, ok)
}
