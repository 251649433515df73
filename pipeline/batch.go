package pipeline

import (
	"context"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds a Batch without an explicit Concurrency.
const DefaultConcurrency = 4

// duplicateFPRate keeps false duplicate reports negligible for batches of
// command-line size.
const duplicateFPRate = 1e-6

// BatchItem is the outcome of one request in a batch.
type BatchItem struct {
	Request harvest.ExtractionRequest
	Result  *harvest.ExtractionResult

	// Duplicate is set when the URL already appeared earlier in the batch.
	// Duplicates are not extracted and their Result is a failure.
	Duplicate bool
}

// Batch runs many independent extractions concurrently. It keeps no state
// between runs.
type Batch struct {
	Pipeline harvest.Pipeline

	// Limiter, if set, spaces out requests to the same host.
	Limiter *HostLimiter

	Concurrency int
}

// Run extracts every request and returns the items in input order.
func (b *Batch) Run(ctx context.Context, reqs []harvest.ExtractionRequest) []BatchItem {
	items := make([]BatchItem, len(reqs))

	seen := bloom.NewFilter(uint(len(reqs)), duplicateFPRate)
	for i, req := range reqs {
		items[i].Request = req
		if req.URL != "" && seen.Seen(req.URL) {
			items[i].Duplicate = true
			items[i].Result = harvest.NewFailure("Duplicate of an earlier URL in this batch.")
		}
	}

	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range items {
		if items[i].Duplicate {
			continue
		}
		g.Go(func() error {
			items[i].Result = b.extract(gctx, items[i].Request)
			return nil
		})
	}
	_ = g.Wait()

	return items
}

func (b *Batch) extract(ctx context.Context, req harvest.ExtractionRequest) *harvest.ExtractionResult {
	if b.Limiter != nil && req.Validate() == nil {
		if err := b.Limiter.Wait(ctx, req.URL); err != nil {
			return harvest.NewFailure("Extraction canceled: " + err.Error())
		}
	}
	return b.Pipeline.Extract(ctx, req)
}
