package harvest

import (
	"strings"
	"unicode/utf8"
)

// summaryLength is how much of the body is used as a summary when a page
// has no description.
const summaryLength = 300

// Article is the normalized form of a generic web page.
type Article struct {
	Title         string
	Author        string
	PublishedDate string
	Description   string
	URL           string
	Body          string
}

// FormatArticle renders an article as the structured block consumers
// receive regardless of the source site: Title, Author, Published, Source,
// Content and Summary, in that order.
func FormatArticle(a Article) string {
	var sb strings.Builder
	sb.WriteString("Title: " + orUnknown(a.Title) + "\n")
	sb.WriteString("Author: " + orUnknown(a.Author) + "\n")
	sb.WriteString("Published: " + orUnknown(a.PublishedDate) + "\n")
	sb.WriteString("Source: " + a.URL + "\n\n")
	sb.WriteString("Content:\n" + strings.TrimSpace(a.Body) + "\n\n")
	sb.WriteString("Summary:\n" + Summarize(a.Description, a.Body))
	return sb.String()
}

// Summarize returns description when present, otherwise the leading part
// of body cut at a word boundary.
func Summarize(description, body string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	body = CollapseWhitespace(body)
	if utf8.RuneCountInString(body) <= summaryLength {
		return body
	}
	cut := string([]rune(body)[:summaryLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// Section is a labeled block of synthesized content.
type Section struct {
	Label string
	Text  string
}

// FormatSections joins sections as "Label:\ntext" blocks separated by
// blank lines. Sections with empty text are skipped.
func FormatSections(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		parts = append(parts, s.Label+":\n"+text)
	}
	return strings.Join(parts, "\n\n")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
