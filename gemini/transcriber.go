// Package gemini implements harvest.Transcriber on Google Gemini, which can
// read a public YouTube URL directly and transcribe its audio track.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/harvest"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Transcriber implements harvest.Transcriber at compile time.
var _ harvest.Transcriber = (*Transcriber)(nil)

// Transcriber implements harvest.Transcriber using Google Gemini.
type Transcriber struct {
	client *genai.Client
}

// NewTranscriber creates a new Transcriber.
func NewTranscriber(client *genai.Client) *Transcriber {
	return &Transcriber{client: client}
}

// Transcribe returns a plain-text transcript of the video at videoURL.
func (t *Transcriber) Transcribe(ctx context.Context, videoURL string) (string, error) {
	if strings.TrimSpace(videoURL) == "" {
		return "", harvest.Errorf(harvest.EINVALID, "video URL required")
	}
	if _, ok := harvest.ExtractYouTubeVideoID(videoURL); !ok {
		return "", harvest.Errorf(harvest.EINVALID, "not a YouTube video URL: %s", videoURL)
	}

	result, err := t.client.Models.GenerateContent(ctx, model,
		BuildContents(videoURL),
		BuildConfig(),
	)
	if err != nil {
		return "", harvest.Errorf(harvest.EUNAVAILABLE, "gemini transcription: %v", err)
	}
	if result == nil {
		return "", harvest.Errorf(harvest.EINTERNAL, "gemini returned nil result")
	}

	text := strings.TrimSpace(result.Text())
	if text == "" || strings.EqualFold(text, noSpeech) {
		return "", harvest.Errorf(harvest.ENOTFOUND, "gemini found no speech to transcribe")
	}
	return text, nil
}

// noSpeech is the reply the model is instructed to give for silent videos.
const noSpeech = "NO_SPEECH"

// BuildConfig returns the GenerateContentConfig for transcription calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You transcribe videos. Output only the spoken words as plain text in the original language, without timestamps, speaker labels or commentary. If there is no speech, output " + noSpeech + ".",
			}},
		},
		Temperature: &temp,
	}
}

// BuildContents returns the request contents: the video itself followed by
// the instruction.
func BuildContents(videoURL string) []*genai.Content {
	return []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{FileData: &genai.FileData{FileURI: videoURL, MIMEType: "video/mp4"}},
			{Text: "Transcribe this video."},
		},
	}}
}
