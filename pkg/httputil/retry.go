package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. [Retry] keeps attempting
// the operation only for errors wrapped in this type; everything else is
// treated as permanent. The redis and mongo dials wrap refused
// connections and timeouts this way so a backend that is still booting
// does not fail server startup.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, a permanent error occurs, the attempt
// budget is spent, or ctx ends. The wait between attempts starts at delay
// and doubles each round. Fewer than one attempt is treated as one.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error

	for remaining := max(attempts, 1); remaining > 0; remaining-- {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.As(err, new(*RetryableError)) {
			return err
		}
		lastErr = err

		if remaining == 1 {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return lastErr
}

// RetryWithBackoff calls [Retry] with the defaults used for backend
// dials: three attempts starting at one second.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}
