package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Retry envelope defaults.
const (
	DefaultAttempts  = 3
	DefaultTimeout   = 30 * time.Second
	DefaultBaseDelay = time.Second
	DefaultMaxDelay  = 5 * time.Second
)

// AttemptFunc runs one full extraction attempt.
type AttemptFunc func(ctx context.Context) (*harvest.ExtractionResult, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Retry wraps an extraction attempt in a bounded number of tries, each with
// a hard timeout, backing off exponentially between tries.
type Retry struct {
	Attempts  int
	Timeout   time.Duration
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Sleep defaults to a context-aware timer. Tests replace it to record
	// delays without waiting.
	Sleep SleepFunc

	Logger *slog.Logger
}

// DefaultRetry returns the envelope used by NewPipeline: 3 attempts of at
// most 30s each, with delays of 1s and 2s in between, capped at 5s.
func DefaultRetry() Retry {
	return Retry{
		Attempts:  DefaultAttempts,
		Timeout:   DefaultTimeout,
		BaseDelay: DefaultBaseDelay,
		MaxDelay:  DefaultMaxDelay,
	}
}

// Delay returns the wait after the given failed attempt (1-based):
// min(BaseDelay * 2^(attempt-1), MaxDelay).
func (r Retry) Delay(attempt int) time.Duration {
	d := r.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if r.MaxDelay > 0 && d >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	if r.MaxDelay > 0 && d > r.MaxDelay {
		return r.MaxDelay
	}
	return d
}

// Retryable reports whether a failed attempt is worth repeating. Invalid
// input, insufficient content and application errors coded EINTERNAL
// (misconfiguration) are deterministic and are not retried. Errors without
// an application code, such as raw transport errors, are retried.
func Retryable(err error) bool {
	var e *harvest.Error
	if errors.As(err, &e) {
		switch e.Code {
		case harvest.EINVALID, harvest.EINSUFFICIENT, harvest.EINTERNAL:
			return false
		}
	}
	return !errors.Is(err, context.Canceled)
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. An attempt that outlives Timeout is abandoned
// and its result discarded.
//
// The result of the last attempt is returned alongside its error so callers
// can inspect diagnostics. Exhausting the budget yields an error reading
// "failed after N attempts: <last error>" with the last error's code.
func (r Retry) Do(ctx context.Context, fn AttemptFunc) (*harvest.ExtractionResult, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := r.Logger
	if logger == nil {
		logger = discard
	}

	var (
		res     *harvest.ExtractionResult
		lastErr error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		res, lastErr = r.attempt(ctx, fn)
		if lastErr == nil {
			return res, nil
		}
		if !Retryable(lastErr) {
			return res, lastErr
		}
		if err := ctx.Err(); err != nil {
			return res, lastErr
		}
		if attempt == attempts {
			break
		}

		delay := r.Delay(attempt)
		logger.Debug("retry", "attempt", attempt+1, "delay", delay, "err", lastErr)
		if err := sleep(ctx, delay); err != nil {
			return res, lastErr
		}
	}

	return res, harvest.Errorf(harvest.ErrorCode(lastErr), "failed after %d attempts: %s", attempts, lastErr.Error())
}

type attemptResult struct {
	res *harvest.ExtractionResult
	err error
}

func (r Retry) attempt(ctx context.Context, fn AttemptFunc) (*harvest.ExtractionResult, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		res, err := fn(actx)
		done <- attemptResult{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return out.res, harvest.Errorf(harvest.EUNAVAILABLE, "attempt timed out after %s", timeout)
		}
		return out.res, out.err
	case <-actx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, harvest.Errorf(harvest.EUNAVAILABLE, "attempt timed out after %s", timeout)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
