// Package pipeline implements the content extraction pipeline: per-class
// strategy chains for videos, articles and social posts, the synthesis of
// their outcomes, and the retry envelope around each extraction.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure Pipeline implements harvest.Pipeline at compile time.
var _ harvest.Pipeline = (*Pipeline)(nil)

var discard = slog.New(slog.DiscardHandler)

// Chain runs one class-specific strategy chain for a validated request.
// On failure the returned result, if non-nil, carries only strategy
// reports.
type Chain interface {
	Run(ctx context.Context, req harvest.ExtractionRequest) (*harvest.ExtractionResult, error)
}

// Pipeline routes a request to the chain for its content class and wraps
// the chain in the retry envelope. A nil chain makes its class fail with a
// message instead of panicking.
type Pipeline struct {
	Video   Chain
	Article Chain
	Social  Chain

	Retry  Retry
	Logger *slog.Logger
}

// NewPipeline returns a Pipeline with the default retry envelope and the
// social placeholder.
func NewPipeline(video, article Chain) *Pipeline {
	return &Pipeline{
		Video:   video,
		Article: article,
		Social:  SocialStrategy{},
		Retry:   DefaultRetry(),
	}
}

// Extract implements harvest.Pipeline. Invalid requests fail before any
// network access.
func (p *Pipeline) Extract(ctx context.Context, req harvest.ExtractionRequest) *harvest.ExtractionResult {
	if err := req.Validate(); err != nil {
		return harvest.NewFailure(failureMessage(err))
	}

	typ := req.ResolvedType()
	chain := p.chainFor(typ)
	if chain == nil {
		return harvest.NewFailure(fmt.Sprintf("No extractor is configured for %s content.", typ))
	}

	retry := p.Retry
	if retry.Logger == nil {
		retry.Logger = p.Logger
	}

	begin := time.Now()
	res, err := retry.Do(ctx, func(ctx context.Context) (*harvest.ExtractionResult, error) {
		return chain.Run(ctx, req)
	})
	p.logger().Debug("extract", "url", req.URL, "type", typ, "duration", time.Since(begin), "err", err)

	if err != nil {
		failure := harvest.NewFailure(failureMessage(err))
		if res != nil {
			failure.Reports = res.Reports
		}
		return failure
	}
	if res == nil {
		return harvest.NewFailure("")
	}
	return res
}

func (p *Pipeline) chainFor(t harvest.ContentType) Chain {
	switch t {
	case harvest.ContentYouTube:
		return p.Video
	case harvest.ContentTikTok, harvest.ContentInstagram:
		return p.Social
	default:
		return p.Article
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return discard
}

// failureMessage returns the user-facing text of err. Errors without an
// application message keep their own text so the cause is never lost.
func failureMessage(err error) string {
	if harvest.ErrorCode(err) == harvest.EINTERNAL {
		if msg := harvest.ErrorMessage(err); msg != "Internal error." {
			return msg
		}
		return err.Error()
	}
	return harvest.ErrorMessage(err)
}
