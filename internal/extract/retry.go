package extract

import (
	"context"
	"time"
)

// Retry runs op up to attempts times with a fixed delay between attempts,
// returning the first success or the last attempt's error unchanged. The
// delay is interruptible: a cancelled context returns ctx.Err() immediately.
// The delay is fixed, no jitter or backoff.
func Retry[T any](ctx context.Context, attempts int, delay time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}

	return zero, lastErr
}
