package pipeline

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/harvest"
)

// Section labels used in synthesized video content.
const (
	labelTranscript  = "Transcript"
	labelTitle       = "Title"
	labelDescription = "Description"
	labelChannel     = "Channel"
	labelViews       = "Views"
)

// synthesis is assembled video content and the sources that produced it.
type synthesis struct {
	Content string
	Sources []string
	// Degraded is set when the labeled sections were too thin and the
	// enhanced analysis block was substituted.
	Degraded bool
}

// synthesize builds the content body in priority order transcript, title,
// description, channel, view count. Below th.RichVideo characters and
// without a transcript, the sections are replaced by an analysis block built
// only from the metadata fields that exist, provided the block is longer.
// A transcript is never dropped. noun names the kind of item ("video",
// "channel").
func synthesize(f harvest.Fields, th harvest.Thresholds, noun string) synthesis {
	candidates := []struct {
		section harvest.Section
		source  string
	}{
		{harvest.Section{Label: labelTranscript, Text: f.Content}, harvest.SourceTranscript},
		{harvest.Section{Label: labelTitle, Text: f.Title}, harvest.SourceTitle},
		{harvest.Section{Label: labelDescription, Text: f.Description}, harvest.SourceDescription},
		{harvest.Section{Label: labelChannel, Text: f.Author}, harvest.SourceChannel},
		{harvest.Section{Label: labelViews, Text: f.ViewCount}, harvest.SourceViews},
	}

	var (
		sections []harvest.Section
		sources  []string
	)
	for _, c := range candidates {
		if strings.TrimSpace(c.section.Text) == "" {
			continue
		}
		sections = append(sections, c.section)
		sources = append(sources, c.source)
	}

	content := harvest.FormatSections(sections)
	if harvest.CharCount(content) >= th.RichVideo || strings.TrimSpace(f.Content) != "" {
		return synthesis{Content: content, Sources: sources}
	}

	analysis := enhancedAnalysis(f, noun)
	if harvest.CharCount(analysis) <= harvest.CharCount(content) {
		return synthesis{Content: content, Sources: sources}
	}
	return synthesis{
		Content:  analysis,
		Sources:  []string{harvest.SourceEnhancedAnalysis},
		Degraded: true,
	}
}

// enhancedAnalysis restates the known metadata as a labeled block. It never
// adds a statement that is not derived from a field.
func enhancedAnalysis(f harvest.Fields, noun string) string {
	var lines []string
	if f.Title != "" {
		lines = append(lines, fmt.Sprintf("This %s is titled %q.", noun, f.Title))
	}
	if f.Author != "" {
		lines = append(lines, fmt.Sprintf("It was published by %s.", f.Author))
	}
	if f.ViewCount != "" {
		lines = append(lines, fmt.Sprintf("It has %s views.", f.ViewCount))
	}
	if f.Description != "" {
		lines = append(lines, "Its description reads: "+harvest.CollapseWhitespace(f.Description))
	}
	if len(lines) == 0 {
		return ""
	}
	return harvest.FormatSections([]harvest.Section{{
		Label: harvest.SourceEnhancedAnalysis,
		Text:  strings.Join(lines, "\n"),
	}})
}

// finalize fills the derived metadata counters of a successful result.
func finalize(res *harvest.ExtractionResult) *harvest.ExtractionResult {
	if !res.Success || res.Metadata == nil {
		return res
	}
	res.Metadata.ContentLength = harvest.CharCount(res.Content)
	res.Metadata.WordCount = len(strings.Fields(res.Content))
	res.Metadata.ContentHash = fmt.Sprintf("%x", xxhash.Sum64String(res.Content))
	return res
}

// reports summarizes outcomes for diagnostics.
func reports(outcomes []harvest.StrategyOutcome) []harvest.StrategyReport {
	out := make([]harvest.StrategyReport, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Report()
	}
	return out
}

// lastError returns the error of the last strategy that was attempted and
// failed, falling back to the last skip reason.
func lastError(outcomes []harvest.StrategyOutcome) error {
	var skipped error
	for i := len(outcomes) - 1; i >= 0; i-- {
		o := outcomes[i]
		if o.Err == nil {
			continue
		}
		if o.Attempted {
			return o.Err
		}
		if skipped == nil {
			skipped = o.Err
		}
	}
	return skipped
}
