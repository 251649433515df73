package harvest_test

import (
	"testing"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, ""},
		{-time.Second, ""},
		{9 * time.Second, "0:09"},
		{253 * time.Second, "4:13"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, harvest.FormatDuration(tt.in), tt.in.String())
	}
}

func TestVideoDetails_Fields(t *testing.T) {
	t.Parallel()

	var nilDetails *harvest.VideoDetails
	assert.True(t, nilDetails.Fields().IsZero())

	d := &harvest.VideoDetails{
		Title:      "Real Title",
		Channel:    "Some Channel",
		ViewCount:  "1200",
		Thumbnails: []string{"https://i.ytimg.com/vi/x/hqdefault.jpg"},
	}
	f := d.Fields()

	assert.Equal(t, "Real Title", f.Title)
	assert.Equal(t, "Some Channel", f.Author)
	assert.Equal(t, "1200", f.ViewCount)
	assert.Len(t, f.Thumbnails, 1)
}
