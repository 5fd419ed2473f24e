// Package services – retry helper
//
// Retry wraps fallible external calls (log fetches, notification inserts,
// summarization requests) with a bounded, deterministic delay ladder. The
// scheduled jobs depend on the exact 0s/3s/10s schedule, so this is a fixed
// ladder rather than a geometric backoff.
package services

import (
	"context"
	"time"
)

// DefaultRetryDelays is the wait applied before each attempt: nothing
// before the first, 3s before the second, 10s before the third.
var DefaultRetryDelays = []time.Duration{0, 3 * time.Second, 10 * time.Second}

// DefaultRetryAttempts bounds how many times an operation is tried before
// the final error is surfaced to the caller.
const DefaultRetryAttempts = 3

// SleepFunc abstracts time.Sleep so tests can run the ladder instantly.
type SleepFunc func(time.Duration)

// Retry executes op up to maxAttempts times, sleeping delays[i] before
// attempt i. On success it returns the operation's value; after the final
// failure it returns the last error unchanged; nothing is swallowed.
//
// maxAttempts <= 0 and a nil delays slice fall back to the defaults; when
// there are more attempts than delays, the last delay is reused. A nil
// sleep uses time.Sleep. The context is passed through to op; there is no
// mid-sleep cancellation, a run always completes or exhausts its attempts.
func Retry[T any](ctx context.Context, maxAttempts int, delays []time.Duration, sleep SleepFunc, op func(context.Context) (T, error)) (T, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultRetryAttempts
	}
	if delays == nil {
		delays = DefaultRetryDelays
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		d := time.Duration(0)
		if attempt < len(delays) {
			d = delays[attempt]
		} else if len(delays) > 0 {
			d = delays[len(delays)-1]
		}
		if d > 0 {
			sleep(d)
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
