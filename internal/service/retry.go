package service

import (
	"context"
	"fmt"
	"time"
)

// DelayFunc returns the sleep duration before retrying attempt number
// attempt (1-based, counted after the attempt that failed).
type DelayFunc func(attempt int) time.Duration

// LinearDelay produces delays of step, 2*step, 3*step, ...
func LinearDelay(step time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Retry runs fn up to maxAttempts times, sleeping delay(attempt) between
// failures. It stops early when the context is cancelled and returns the
// last error once attempts are exhausted.
func Retry(ctx context.Context, maxAttempts int, delay DelayFunc, fn func(ctx context.Context) error) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		wait := time.Duration(0)
		if delay != nil {
			wait = delay(attempt)
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}
