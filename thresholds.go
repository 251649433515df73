package harvest

import "regexp"

// Thresholds holds the tunable acceptance limits used by the strategy
// chains. All lengths are in characters after trimming; a value passes a
// limit when it is strictly longer than it, except MinArticleContent which
// is an inclusive floor.
type Thresholds struct {
	// MinTitle is the length a scraped title must exceed.
	MinTitle int
	// MinDescription is the length a description or content block must exceed.
	MinDescription int
	// MinParagraph is the length a paragraph must exceed to be aggregated.
	MinParagraph int
	// MinTranscript is the length a transcript must exceed to be used.
	MinTranscript int
	// RichVideo is the length below which video content is replaced by
	// the enhanced analysis fallback.
	RichVideo int
	// MinVideo is the length final video content must exceed.
	MinVideo int
	// ArticleCandidate is the length a structured article body candidate
	// must exceed before later candidates are skipped.
	ArticleCandidate int
	// MinArticleContent is the shortest article body that is not a failure.
	MinArticleContent int
	// WeakTitle matches scraped titles that are probably not titles at all,
	// such as view counts ("12K").
	WeakTitle *regexp.Regexp
	// MinStrongTitle is the length below which a title is considered weak.
	MinStrongTitle int
}

// DefaultThresholds returns the limits tuned against the supported sites.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTitle:          5,
		MinDescription:    20,
		MinParagraph:      20,
		MinTranscript:     100,
		RichVideo:         200,
		MinVideo:          50,
		ArticleCandidate:  200,
		MinArticleContent: 100,
		WeakTitle:         regexp.MustCompile(`^\d+(?:[.,]\d+)?\s*[KMBkmb]?$`),
		MinStrongTitle:    3,
	}
}

// IsWeakTitle reports whether title is empty, too short, or looks like a
// number with an optional magnitude suffix.
func (t Thresholds) IsWeakTitle(title string) bool {
	if CharCount(title) < t.MinStrongTitle {
		return true
	}
	return t.WeakTitle != nil && t.WeakTitle.MatchString(CollapseWhitespace(title))
}
