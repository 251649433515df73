package harvest

import (
	"encoding/json"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FieldExtractor pulls one field out of a raw HTML or JSON document.
// Each implementation understands a single markup shape (a meta tag,
// JSON-LD, inline JSON state, a CSS selector, ...).
type FieldExtractor interface {
	// TryExtract returns the raw candidate value, or false if the shape
	// is not present in text.
	TryExtract(text string) (string, bool)
}

// FieldExtractorFunc adapts a function to the FieldExtractor interface.
type FieldExtractorFunc func(text string) (string, bool)

// TryExtract calls f(text).
func (f FieldExtractorFunc) TryExtract(text string) (string, bool) {
	return f(text)
}

// JSONString is a regular expression fragment capturing the body of a JSON
// string literal, escapes included.
const JSONString = `"((?:[^"\\]|\\.)*)"`

// RegexExtractor extracts the first capture group of a regular expression.
// Without capture groups the whole match is returned. Captures come from
// raw markup, so they are passed through Unescape.
type RegexExtractor struct {
	re *regexp.Regexp
}

// NewRegexExtractor compiles pattern. It panics if the pattern is invalid,
// so it is meant for package-level pattern tables.
func NewRegexExtractor(pattern string) *RegexExtractor {
	return &RegexExtractor{re: regexp.MustCompile(pattern)}
}

// TryExtract implements FieldExtractor.
func (e *RegexExtractor) TryExtract(text string) (string, bool) {
	m := e.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return Unescape(m[1]), true
	}
	return Unescape(m[0]), true
}

// ExtractField evaluates extractors in priority order and returns the first
// candidate that, once trimmed, is longer than min characters. Candidates
// are used as the extractor decoded them; DOM extractors return text the
// HTML parser has already entity-decoded.
// Returns false if no extractor yields a long enough value; that means the
// field was not found, not that extraction failed.
func ExtractField(text string, min int, extractors ...FieldExtractor) (string, bool) {
	for _, e := range extractors {
		raw, ok := e.TryExtract(text)
		if !ok {
			continue
		}
		v := strings.TrimSpace(raw)
		if utf8.RuneCountInString(v) > min {
			return v, true
		}
	}
	return "", false
}

var (
	unicodeEscapeRe = regexp.MustCompile(`\\u([0-9a-fA-F]{4})`)
	escapeReplacer  = strings.NewReplacer(`\"`, `"`, `\/`, `/`, `\n`, "\n", `\t`, " ", `\r`, "", `\\`, `\`)
)

// Unescape decodes the encodings commonly found in scraped markup:
// JSON string escapes (including \uXXXX), backslash-escaped quotes, and
// HTML entities.
func Unescape(s string) string {
	if strings.Contains(s, `\`) {
		var decoded string
		if err := json.Unmarshal([]byte(`"`+s+`"`), &decoded); err == nil {
			s = decoded
		} else {
			s = unicodeEscapeRe.ReplaceAllStringFunc(s, func(m string) string {
				n, err := strconv.ParseUint(m[2:], 16, 32)
				if err != nil {
					return m
				}
				return string(rune(n))
			})
			s = escapeReplacer.Replace(s)
		}
	}
	return html.UnescapeString(s)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CollapseWhitespace replaces every run of whitespace with a single space
// and trims the result.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CharCount returns the number of characters in s after trimming.
func CharCount(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
