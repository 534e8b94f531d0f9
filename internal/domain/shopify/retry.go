package shopify

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy defines the retry behavior for Admin API calls.
type RetryPolicy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	jitterFactor float64
}

// DefaultRetryPolicy returns a production-ready retry policy.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		maxAttempts:  3,
		initialDelay: 1 * time.Second,
		maxDelay:     30 * time.Second,
		multiplier:   2.0,
		jitterFactor: 0.1,
	}
}

// NoRetryPolicy returns a policy that never retries.
func NoRetryPolicy() *RetryPolicy {
	return &RetryPolicy{maxAttempts: 1}
}

// WithMaxAttempts sets the maximum number of attempts.
func (p *RetryPolicy) WithMaxAttempts(n int) *RetryPolicy {
	p.maxAttempts = n
	return p
}

// WithInitialDelay sets the initial delay between retries.
func (p *RetryPolicy) WithInitialDelay(d time.Duration) *RetryPolicy {
	p.initialDelay = d
	return p
}

// MaxAttempts returns the maximum number of attempts.
func (p *RetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// ShouldRetry determines if an error should be retried.
func (p *RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.maxAttempts || err == nil {
		return false
	}
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.IsRetryable()
	}
	return false
}

// DelayForAttempt calculates the delay before the next retry attempt.
func (p *RetryPolicy) DelayForAttempt(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(p.initialDelay) * math.Pow(p.multiplier, float64(attempt-1))

	if p.jitterFactor > 0 {
		jitter := delay * p.jitterFactor * (rand.Float64()*2 - 1)
		delay += jitter
	}

	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}

	return time.Duration(delay)
}

// WaitForRetry waits for the calculated delay before retry.
// Returns false if the context is cancelled during the wait.
func (p *RetryPolicy) WaitForRetry(ctx context.Context, attempt int) bool {
	delay := p.DelayForAttempt(attempt)
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
