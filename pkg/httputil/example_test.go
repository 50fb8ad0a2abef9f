package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/capicuhq/capicu/pkg/httputil"
)

func ExampleRetry() {
	attempts := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return &httputil.RetryableError{Err: errors.New("connection refused")}
		}
		return nil
	})
	fmt.Println("attempts:", attempts)
	fmt.Println("err:", err)
	// Output:
	// attempts: 3
	// err: <nil>
}

func ExampleRetry_permanentError() {
	// Errors not wrapped in RetryableError abort immediately.
	attempts := 0
	err := httputil.Retry(context.Background(), 5, time.Millisecond, func() error {
		attempts++
		return errors.New("bad request")
	})
	fmt.Println("attempts:", attempts)
	fmt.Println("err:", err)
	// Output:
	// attempts: 1
	// err: bad request
}
