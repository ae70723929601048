package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/visit-recap/internal/service"
)

var (
	// ErrRateLimit indicates that the backend asked us to slow down.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError marks whether a failure is worth another attempt.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return &RetryableError{Err: err, Retryable: false}
}

// IsRetryable reports whether WithRetry would try again after err.
// Unclassified errors are retried.
func IsRetryable(err error) bool {
	_, stop := finalError(err)
	return !stop
}

// finalError decides whether err ends the retry loop, and what to return if so.
func finalError(err error) (error, bool) {
	var re *RetryableError
	switch {
	case errors.As(err, &re) && !re.Retryable:
		return re.Err, true
	case errors.Is(err, ErrUpstreamData), errors.Is(err, context.Canceled):
		return err, true
	default:
		return nil, false
	}
}

// backoff yields the wait before each retry.
type backoff struct {
	opts service.RetryOptions
	next time.Duration
}

func newBackoff(opts service.RetryOptions) *backoff {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	return &backoff{opts: opts, next: opts.InitialDelay}
}

// delay returns the wait after err. A rate limit waits the maximum.
func (b *backoff) delay(err error) time.Duration {
	if errors.Is(err, ErrRateLimit) {
		b.next = b.opts.MaxDelay
	}
	d := b.next
	b.next = min(time.Duration(float64(b.next)*b.opts.Multiplier), b.opts.MaxDelay)
	return d
}

// WithRetry runs operation until it succeeds, fails permanently or runs out
// of attempts. Permanent errors come back unwrapped.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	b := newBackoff(opts)

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if final, stop := finalError(err); stop {
			return final
		}
		if attempt >= b.opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		wait := b.delay(err)
		slog.Warn("Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", b.opts.MaxAttempts,
			"delay", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
