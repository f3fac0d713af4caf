package index

import (
	"context"
	"time"
)

// runWithTimeout races fn against a timer and the parent context. The context passed
// to fn is also cancelled on timeout, but a store that ignores it may keep running;
// its late result is dropped.
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	// Buffered so a straggler can finish without blocking forever
	results := make(chan outcome, 1)
	go func() {
		value, err := fn(callCtx)
		results <- outcome{value: value, err: err}
	}()

	select {
	case result := <-results:
		return result.value, result.err
	case <-callCtx.Done():
		var zero T
		return zero, callCtx.Err()
	}
}
