package harvest

// ExtractResult holds the main content recovered from an HTML page by a
// boilerplate-removal library.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string

	// Author, Description and PublishedDate come from page metadata
	// when the library recognizes it.
	Author        string
	Description   string
	PublishedDate string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
// It is the last resort of the article chain when no markup pattern matched.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts clean HTML into readable text.
type Converter interface {
	// Convert transforms HTML content into Markdown text.
	Convert(html string) (string, error)
}
