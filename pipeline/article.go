package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/goquery"
)

// Article strategy names, as they appear in reports.
const (
	StrategyFetch     = "fetch"
	StrategyTitle     = "title"
	StrategyBody      = "body"
	StrategyParagraph = "paragraphs"
	StrategyMetadata  = "metadata"
	StrategyFallback  = "main-content"
)

const msgArticleInsufficient = "Could not extract enough content from this page. The site may rely on heavy JavaScript or access restrictions."

func re(pattern string) harvest.FieldExtractor {
	return harvest.NewRegexExtractor(pattern)
}

// sanitized strips markup from the values of an extractor whose source may
// embed HTML, such as JSON-LD articleBody. Values are already unescaped.
func sanitized(e harvest.FieldExtractor) harvest.FieldExtractor {
	return harvest.FieldExtractorFunc(func(text string) (string, bool) {
		v, ok := e.TryExtract(text)
		if !ok {
			return "", false
		}
		return goquery.PlainText(v), true
	})
}

// Article page patterns, in priority order.
var (
	articleTitle = []harvest.FieldExtractor{
		goquery.Text("title"),
		goquery.Attr(`meta[property="og:title"]`, "content"),
		goquery.Attr(`meta[name="title"]`, "content"),
		goquery.Text("h1"),
	}
	articleBody = []harvest.FieldExtractor{
		sanitized(re(`"articleBody"\s*:\s*` + harvest.JSONString)),
		sanitized(re(`"text"\s*:\s*` + harvest.JSONString)),
		goquery.Text("article"),
		goquery.Text("main"),
		goquery.Text(`div[class*="content"]`),
		goquery.Text(`div[class*="article"]`),
	}
	articleAuthor = []harvest.FieldExtractor{
		goquery.Attr(`meta[name="author"]`, "content"),
		goquery.Attr(`meta[property="article:author"]`, "content"),
		re(`"author"\s*:\s*\{[^{}]*"name"\s*:\s*` + harvest.JSONString),
		re(`"author"\s*:\s*\[\s*\{[^{}]*"name"\s*:\s*` + harvest.JSONString),
		goquery.Text(`[rel="author"]`),
	}
	articlePublished = []harvest.FieldExtractor{
		goquery.Attr(`meta[property="article:published_time"]`, "content"),
		re(`"datePublished"\s*:\s*"([^"]+)"`),
		goquery.Attr(`time[datetime]`, "datetime"),
	}
	articleDescription = []harvest.FieldExtractor{
		goquery.Attr(`meta[name="description"]`, "content"),
		goquery.Attr(`meta[property="og:description"]`, "content"),
	}
	articleImage = []harvest.FieldExtractor{
		goquery.Attr(`meta[property="og:image"]`, "content"),
	}
)

// ArticleChain extracts generic web pages.
type ArticleChain struct {
	Fetcher harvest.Fetcher

	// Extractor and Converter recover a body from the main-content node
	// when no pattern matches, and fill metadata gaps. Both are optional;
	// without a Converter the node's text is used.
	Extractor harvest.Extractor
	Converter harvest.Converter

	// Thresholds defaults to harvest.DefaultThresholds.
	Thresholds *harvest.Thresholds

	Logger *slog.Logger
}

// Run fetches req.URL once and extracts its article. On failure the
// returned result, if non-nil, carries only strategy reports.
func (c *ArticleChain) Run(ctx context.Context, req harvest.ExtractionRequest) (*harvest.ExtractionResult, error) {
	rawURL := strings.TrimSpace(req.URL)
	th := c.thresholds()

	if c.Fetcher == nil {
		return nil, harvest.Errorf(harvest.EINTERNAL, "no fetcher configured")
	}

	page, err := c.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		o := harvest.Failed(StrategyFetch, err)
		return &harvest.ExtractionResult{Reports: reports([]harvest.StrategyOutcome{o})}, err
	}

	var (
		f        harvest.Fields
		outcomes []harvest.StrategyOutcome
	)
	record := func(o harvest.StrategyOutcome) {
		c.logger().Debug("strategy", "strategy", o.Strategy, "attempted", o.Attempted, "contributed", o.Contributed(), "reason", o.Reason())
		outcomes = append(outcomes, o)
		if o.Contributed() {
			f.Merge(o.Fields)
		}
	}

	record(extract(StrategyTitle, page, func(p string) harvest.Fields {
		v, _ := harvest.ExtractField(p, th.MinTitle, articleTitle...)
		return harvest.Fields{Title: v}
	}))
	record(extract(StrategyBody, page, func(p string) harvest.Fields {
		v, _ := harvest.ExtractField(p, th.ArticleCandidate, articleBody...)
		return harvest.Fields{Content: v}
	}))
	if f.Content == "" {
		record(extract(StrategyParagraph, page, func(p string) harvest.Fields {
			v, _ := harvest.ExtractField(p, 0, goquery.Paragraphs(th.MinParagraph))
			return harvest.Fields{Content: v}
		}))
	}
	record(extract(StrategyMetadata, page, func(p string) harvest.Fields {
		var m harvest.Fields
		m.Author, _ = harvest.ExtractField(p, 0, articleAuthor...)
		m.PublishedDate, _ = harvest.ExtractField(p, 0, articlePublished...)
		m.Description, _ = harvest.ExtractField(p, th.MinDescription, articleDescription...)
		if img, ok := harvest.ExtractField(p, 0, articleImage...); ok {
			m.Thumbnails = []string{img}
		}
		return m
	}))
	if f.Content == "" || f.Author == "" || f.PublishedDate == "" || f.Description == "" {
		record(c.mainContent(page))
	}

	if harvest.CharCount(f.Content) < th.MinArticleContent {
		return &harvest.ExtractionResult{Reports: reports(outcomes)},
			harvest.Errorf(harvest.EINSUFFICIENT, "%s", msgArticleInsufficient)
	}

	title := f.Title
	if title == "" {
		title = hostname(rawURL)
	}

	content := harvest.FormatArticle(harvest.Article{
		Title:         title,
		Author:        f.Author,
		PublishedDate: f.PublishedDate,
		Description:   f.Description,
		URL:           rawURL,
		Body:          f.Content,
	})
	meta := &harvest.Metadata{
		Type:          harvest.MetadataArticle,
		Author:        f.Author,
		PublishedDate: f.PublishedDate,
		Description:   f.Description,
		Thumbnails:    f.Thumbnails,
		Platform:      hostname(rawURL),
		URL:           rawURL,
		Sources:       []string{harvest.SourceArticle},
	}

	res := harvest.NewSuccess(title, content, meta)
	res.Reports = reports(outcomes)
	return finalize(res), nil
}

// mainContent runs the boilerplate-removing extractor over the page.
func (c *ArticleChain) mainContent(page string) harvest.StrategyOutcome {
	if c.Extractor == nil {
		return harvest.Skipped(StrategyFallback, "no extractor configured")
	}

	ext, err := c.Extractor.Extract(page)
	if err != nil {
		return harvest.Failed(StrategyFallback, err)
	}

	f := harvest.Fields{
		Title:         strings.TrimSpace(ext.Title),
		Author:        strings.TrimSpace(ext.Author),
		Description:   strings.TrimSpace(ext.Description),
		PublishedDate: ext.PublishedDate,
	}
	if strings.TrimSpace(ext.ContentHTML) != "" {
		if c.Converter != nil {
			md, err := c.Converter.Convert(ext.ContentHTML)
			if err != nil {
				return harvest.Failed(StrategyFallback, err)
			}
			f.Content = md
		} else {
			f.Content = goquery.PlainText(ext.ContentHTML)
		}
	}
	return harvest.Succeeded(StrategyFallback, f)
}

func (c *ArticleChain) thresholds() harvest.Thresholds {
	if c.Thresholds != nil {
		return *c.Thresholds
	}
	return harvest.DefaultThresholds()
}

func (c *ArticleChain) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discard
}

// extract runs a pattern strategy. Patterns never fail; an empty field set
// is reported as "no fields extracted".
func extract(strategy, page string, fn func(string) harvest.Fields) harvest.StrategyOutcome {
	return harvest.Succeeded(strategy, fn(page))
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
