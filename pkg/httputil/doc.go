// Package httputil provides transport utilities shared by the server's
// backing-service clients.
//
// # Retry
//
// [Retry] re-runs an operation that failed transiently. The redis and
// mongo stores use it to ride out a backing service that is still
// starting next to the server; HTTP callers wrap network and 5xx
// failures the same way:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    if err := client.Ping(ctx).Err(); err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    return nil
//	})
//
// Only errors wrapped in [RetryableError] are retried; anything else
// aborts immediately. The defaults are 3 attempts with a 1 second base
// delay, doubling after each failure.
package httputil
