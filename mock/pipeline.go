package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.Pipeline = (*Pipeline)(nil)

// Pipeline is a mock implementation of harvest.Pipeline.
type Pipeline struct {
	ExtractFn func(ctx context.Context, req harvest.ExtractionRequest) *harvest.ExtractionResult
}

func (p *Pipeline) Extract(ctx context.Context, req harvest.ExtractionRequest) *harvest.ExtractionResult {
	return p.ExtractFn(ctx, req)
}
