package harvest

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MinContentLength is the shortest trimmed content a successful result may
// carry. Results below it are reported as failures.
const MinContentLength = 50

// ExtractionRequest asks for the content behind a single URL.
// Type is optional; when empty the content type is inferred from the URL.
type ExtractionRequest struct {
	URL  string      `json:"url"`
	Type ContentType `json:"type,omitempty"`
}

// Validate returns an error if the request cannot be extracted.
func (r ExtractionRequest) Validate() error {
	raw := strings.TrimSpace(r.URL)
	if raw == "" {
		return Errorf(EINVALID, "URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Errorf(EINVALID, "invalid URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Errorf(EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return Errorf(EINVALID, "URL %q has no host", raw)
	}
	return nil
}

// ResolvedType returns the declared type, or the classified type when no
// type was declared.
func (r ExtractionRequest) ResolvedType() ContentType {
	if t, ok := ParseContentType(string(r.Type)); ok {
		return t
	}
	return Classify(r.URL)
}

// MetadataType describes the shape of the extracted item.
type MetadataType string

// Metadata types.
const (
	MetadataVideo    MetadataType = "video"
	MetadataArticle  MetadataType = "article"
	MetadataSocial   MetadataType = "social"
	MetadataChannel  MetadataType = "channel"
	MetadataPlaylist MetadataType = "playlist"
)

// Metadata describes an extracted item. It is built fresh for every
// extraction and owned by the result that carries it.
type Metadata struct {
	Type          MetadataType `json:"type"`
	Author        string       `json:"author,omitempty"`
	Duration      string       `json:"duration,omitempty"`
	PublishedDate string       `json:"publishedDate,omitempty"`
	Description   string       `json:"description,omitempty"`
	Thumbnails    []string     `json:"thumbnails,omitempty"`
	Highlights    []string     `json:"highlights,omitempty"`
	Sentiment     string       `json:"sentiment,omitempty"`
	Entities      []string     `json:"entities,omitempty"`
	Platform      string       `json:"platform,omitempty"`
	URL           string       `json:"url"`
	ViewCount     string       `json:"viewCount,omitempty"`
	Note          string       `json:"note,omitempty"`
	ContentLength int          `json:"contentLength,omitempty"`
	WordCount     int          `json:"wordCount,omitempty"`
	ContentHash   string       `json:"contentHash,omitempty"`
	Sources       []string     `json:"sources,omitempty"`
}

// ExtractionResult is the outcome of one extraction.
// A successful result always has content of at least MinContentLength
// characters; a failed result has an error and no title or content.
type ExtractionResult struct {
	Success  bool      `json:"success"`
	Title    string    `json:"title,omitempty"`
	Content  string    `json:"content,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Error    string    `json:"error,omitempty"`

	// Reports describes what each strategy contributed. Diagnostic only.
	Reports []StrategyReport `json:"-"`
}

// NewSuccess returns a successful result. Content shorter than
// MinContentLength turns the result into a failure.
func NewSuccess(title, content string, meta *Metadata) *ExtractionResult {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < MinContentLength {
		return NewFailure("Extracted content is too short to be useful.")
	}
	return &ExtractionResult{
		Success:  true,
		Title:    title,
		Content:  content,
		Metadata: meta,
	}
}

// NewFailure returns a failed result with the given message.
func NewFailure(message string) *ExtractionResult {
	if strings.TrimSpace(message) == "" {
		message = "Extraction failed."
	}
	return &ExtractionResult{Error: message}
}

// Pipeline extracts content from URLs.
// Implementations never return nil and never panic on malformed input;
// every failure is reported through ExtractionResult.Error.
type Pipeline interface {
	Extract(ctx context.Context, req ExtractionRequest) *ExtractionResult
}
