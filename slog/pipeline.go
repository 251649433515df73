package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/google/uuid"
)

// Ensure LoggingPipeline implements harvest.Pipeline.
var _ harvest.Pipeline = (*LoggingPipeline)(nil)

// LoggingPipeline wraps a Pipeline with one log line per extraction.
// Strategy reports are logged at debug level under the same request id.
type LoggingPipeline struct {
	next   harvest.Pipeline
	logger *slog.Logger
}

// NewLoggingPipeline creates a new LoggingPipeline.
func NewLoggingPipeline(next harvest.Pipeline, logger *slog.Logger) *LoggingPipeline {
	return &LoggingPipeline{next: next, logger: logger}
}

// Extract delegates to the wrapped pipeline and logs the outcome.
func (p *LoggingPipeline) Extract(ctx context.Context, req harvest.ExtractionRequest) *harvest.ExtractionResult {
	id := uuid.NewString()
	begin := time.Now()

	res := p.next.Extract(ctx, req)

	logger := p.logger.With("request", id)
	for _, r := range res.Reports {
		logger.Debug("strategy",
			"strategy", r.Strategy,
			"attempted", r.Attempted,
			"contributed", r.Contributed,
			"reason", r.Reason,
		)
	}

	attrs := []any{
		"url", req.URL,
		"type", req.ResolvedType(),
		"success", res.Success,
		"duration", time.Since(begin),
	}
	if res.Success {
		attrs = append(attrs, "chars", harvest.CharCount(res.Content))
		logger.Info("extract", attrs...)
	} else {
		attrs = append(attrs, "err", res.Error)
		logger.Warn("extract", attrs...)
	}
	return res
}
