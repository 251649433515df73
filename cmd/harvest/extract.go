package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/pipeline"
)

// extractOutput is one line of extract output.
type extractOutput struct {
	URL       string `json:"url"`
	Duplicate bool   `json:"duplicate,omitempty"`
	*harvest.ExtractionResult
}

// Run executes the extract command. Results are printed in input order,
// one JSON object per line. Returns an error if any extraction failed.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	var typ harvest.ContentType
	if c.Type != "" {
		t, ok := harvest.ParseContentType(c.Type)
		if !ok {
			return fmt.Errorf("unknown content type %q", c.Type)
		}
		typ = t
	}

	reqs := make([]harvest.ExtractionRequest, len(c.URLs))
	for i, u := range c.URLs {
		reqs[i] = harvest.ExtractionRequest{URL: u, Type: typ}
	}

	batch := &pipeline.Batch{
		Pipeline:    deps.Pipeline,
		Limiter:     deps.Limiter,
		Concurrency: deps.Concurrency,
	}
	items := batch.Run(deps.Ctx, reqs)

	enc := json.NewEncoder(deps.Stdout)
	enc.SetEscapeHTML(false)

	var failed int
	for _, item := range items {
		if !item.Result.Success {
			failed++
		}
		out := extractOutput{
			URL:              item.Request.URL,
			Duplicate:        item.Duplicate,
			ExtractionResult: item.Result,
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d extractions failed", failed, len(items))
	}
	return nil
}
