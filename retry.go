package proaudio

import (
	"context"
	"time"
)

// RetryConfig defines retry behavior for post-apply verification.
// Backends restart after a reload and may briefly report stale values.
type RetryConfig struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig returns sensible defaults for retries
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		InitialBackoff:  500 * time.Millisecond,
		MaxBackoff:      5 * time.Second,
		BackoffMultiple: 2.0,
	}
}

// Backoff returns the wait before the given attempt (attempt 0 waits nothing)
func (r RetryConfig) Backoff(attempt int) time.Duration {
	if attempt <= 0 || r.InitialBackoff <= 0 {
		return 0
	}

	multiple := r.BackoffMultiple
	if multiple < 1 {
		multiple = 1
	}

	d := float64(r.InitialBackoff)
	for i := 1; i < attempt; i++ {
		d *= multiple
		if r.MaxBackoff > 0 && time.Duration(d) >= r.MaxBackoff {
			return r.MaxBackoff
		}
	}

	if r.MaxBackoff > 0 && time.Duration(d) > r.MaxBackoff {
		return r.MaxBackoff
	}
	return time.Duration(d)
}

// sleepFunc is a variable for testing
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// timeNow is a variable for testing
var timeNow = time.Now
