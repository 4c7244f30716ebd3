package analysis

import (
	"context"
	"time"
)

// RetryPolicy describes the backoff schedule for transient upstream
// failures. It is decoupled from the transport so tests can substitute a
// fake sleeper and assert attempt counts and delays deterministically.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
}

// DefaultRetryPolicy retries up to 3 attempts total, waiting 1s then 2s
// between attempts (exponential, base 1s, factor 2).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
	}
}

// Delay returns the wait after the given failed attempt (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
	}
	return d
}

// Sleeper abstracts backoff waits so tests can run without real sleeping.
type Sleeper interface {
	// Sleep blocks for d or until ctx is cancelled, in which case it
	// returns the context error.
	Sleep(ctx context.Context, d time.Duration) error
}

// ClockSleeper is the production Sleeper backed by the wall clock.
type ClockSleeper struct{}

// Sleep waits for d or until ctx is done.
func (ClockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
