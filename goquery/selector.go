// Package goquery implements harvest.FieldExtractor shapes that need a
// parsed DOM: CSS selectors over meta tags and content blocks, and the
// paragraph aggregate used as the last article fallback.
package goquery

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
)

// Ensure extractors implement harvest.FieldExtractor at compile time.
var (
	_ harvest.FieldExtractor = (*SelectorExtractor)(nil)
	_ harvest.FieldExtractor = (*ParagraphExtractor)(nil)
)

// noise is removed from every block before its text is read.
const noise = "script, style, noscript, template, svg, iframe"

// SelectorExtractor extracts a value from the first element matching a CSS
// selector: either an attribute value or the element's sanitized text.
type SelectorExtractor struct {
	selector string
	attr     string
}

// Attr returns an extractor for attribute attr of the first element
// matching selector, e.g. Attr(`meta[property="og:title"]`, "content").
func Attr(selector, attr string) *SelectorExtractor {
	return &SelectorExtractor{selector: selector, attr: attr}
}

// Text returns an extractor for the text of the first element matching
// selector. Scripts, styles and all tags are stripped and whitespace is
// collapsed.
func Text(selector string) *SelectorExtractor {
	return &SelectorExtractor{selector: selector}
}

// TryExtract implements harvest.FieldExtractor.
func (e *SelectorExtractor) TryExtract(html string) (string, bool) {
	doc, err := parse(html)
	if err != nil {
		return "", false
	}

	sel := doc.Find(e.selector).First()
	if sel.Length() == 0 {
		return "", false
	}

	if e.attr != "" {
		return sel.Attr(e.attr)
	}

	text := blockText(sel)
	return text, text != ""
}

// ParagraphExtractor aggregates the text of every <p> element longer than
// a minimum length, joined with blank lines.
type ParagraphExtractor struct {
	min int
}

// Paragraphs returns a ParagraphExtractor keeping paragraphs longer than
// min characters.
func Paragraphs(min int) *ParagraphExtractor {
	return &ParagraphExtractor{min: min}
}

// TryExtract implements harvest.FieldExtractor.
func (e *ParagraphExtractor) TryExtract(html string) (string, bool) {
	doc, err := parse(html)
	if err != nil {
		return "", false
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered(noise).Length() > 0 {
			return
		}
		text := blockText(sel)
		if harvest.CharCount(text) > e.min {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return "", false
	}
	return strings.Join(paragraphs, "\n\n"), true
}

// PlainText strips scripts, styles and tags from an HTML fragment and
// collapses whitespace. Input without markup is returned trimmed.
func PlainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return harvest.CollapseWhitespace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return harvest.CollapseWhitespace(fragment)
	}
	doc.Find(noise).Remove()
	return harvest.CollapseWhitespace(doc.Text())
}

// blockText returns the collapsed text of sel without its noise elements.
// Parsed documents are shared between extractors, so noise is removed from
// a copy.
func blockText(sel *goquery.Selection) string {
	block := sel.Clone()
	block.Find(noise).Remove()
	return harvest.CollapseWhitespace(block.Text())
}

// cacheSize bounds the number of parsed pages kept by parse.
const cacheSize = 8

var docs = struct {
	sync.Mutex
	next    int
	entries [cacheSize]struct {
		html string
		doc  *goquery.Document
	}
}{}

// parse returns the document for html, reusing the parse of a recent call
// with the same input. Article extraction runs many extractors over one
// page, each of which would otherwise parse it again.
func parse(html string) (*goquery.Document, error) {
	docs.Lock()
	for _, e := range docs.entries {
		if e.doc != nil && e.html == html {
			docs.Unlock()
			return e.doc, nil
		}
	}
	docs.Unlock()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	docs.Lock()
	docs.entries[docs.next].html = html
	docs.entries[docs.next].doc = doc
	docs.next = (docs.next + 1) % cacheSize
	docs.Unlock()
	return doc, nil
}
