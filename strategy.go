package harvest

// Content source labels recorded in Metadata.Sources.
const (
	SourceTranscript        = "Video Transcript"
	SourceTitle             = "Video Title"
	SourceDescription       = "Video Description"
	SourceChannel           = "Channel Information"
	SourceViews             = "View Statistics"
	SourceEnhancedAnalysis  = "Enhanced Analysis"
	SourceArticle           = "Article Content"
	SourceSocialPlaceholder = "Social Placeholder"
)

// Fields is the partial record a single strategy can fill in.
type Fields struct {
	Title         string
	Content       string
	Description   string
	Author        string
	ViewCount     string
	PublishedDate string
	Duration      string
	Thumbnails    []string
}

// Merge fills every empty field of f from other. Fields already set win.
func (f *Fields) Merge(other Fields) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&f.Title, other.Title)
	fill(&f.Content, other.Content)
	fill(&f.Description, other.Description)
	fill(&f.Author, other.Author)
	fill(&f.ViewCount, other.ViewCount)
	fill(&f.PublishedDate, other.PublishedDate)
	fill(&f.Duration, other.Duration)
	if len(f.Thumbnails) == 0 && len(other.Thumbnails) > 0 {
		f.Thumbnails = append([]string(nil), other.Thumbnails...)
	}
}

// IsZero reports whether no field is set.
func (f Fields) IsZero() bool {
	return f.Title == "" && f.Content == "" && f.Description == "" &&
		f.Author == "" && f.ViewCount == "" && f.PublishedDate == "" &&
		f.Duration == "" && len(f.Thumbnails) == 0
}

// StrategyOutcome is what one strategy invocation produced.
// A strategy that was skipped has Attempted false; a strategy that failed
// carries the cause in Err and contributes nothing.
type StrategyOutcome struct {
	Strategy  string
	Attempted bool
	Fields    Fields
	Err       error
}

// Skipped returns the outcome of a strategy that was not eligible to run.
func Skipped(strategy, reason string) StrategyOutcome {
	return StrategyOutcome{Strategy: strategy, Err: Errorf(ENOTFOUND, "%s", reason)}
}

// Failed returns the outcome of a strategy that ran and failed.
func Failed(strategy string, err error) StrategyOutcome {
	return StrategyOutcome{Strategy: strategy, Attempted: true, Err: err}
}

// Succeeded returns the outcome of a strategy that produced fields.
func Succeeded(strategy string, fields Fields) StrategyOutcome {
	return StrategyOutcome{Strategy: strategy, Attempted: true, Fields: fields}
}

// Contributed reports whether the outcome carries any field.
func (o StrategyOutcome) Contributed() bool {
	return o.Err == nil && !o.Fields.IsZero()
}

// Reason returns why the strategy contributed nothing, or "".
func (o StrategyOutcome) Reason() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	if o.Fields.IsZero() {
		return "no fields extracted"
	}
	return ""
}

// Report summarizes the outcome for diagnostics.
func (o StrategyOutcome) Report() StrategyReport {
	return StrategyReport{
		Strategy:    o.Strategy,
		Attempted:   o.Attempted,
		Contributed: o.Contributed(),
		Reason:      o.Reason(),
	}
}

// StrategyReport is the diagnostic summary of a strategy outcome.
type StrategyReport struct {
	Strategy    string `json:"strategy"`
	Attempted   bool   `json:"attempted"`
	Contributed bool   `json:"contributed"`
	Reason      string `json:"reason,omitempty"`
}
